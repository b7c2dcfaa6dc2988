package paymentintent

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Provider-side statuses we track locally.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusFailed                = "payment_failed"
	StatusCanceled              = "canceled"
)

type PaymentIntent struct {
	ID                    string                      `gorm:"column:id;type:uuid;primaryKey"`
	StripePaymentIntentID string                      `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	CampaignID            string                      `gorm:"column:campaign_id;type:uuid;not null;index"`
	Amount                float64                     `gorm:"column:amount;not null"`
	Currency              string                      `gorm:"column:currency;not null;default:usd"`
	Status                string                      `gorm:"column:status;not null;index"`
	DonorEmail            string                      `gorm:"column:donor_email;not null"`
	DonorName             *string                     `gorm:"column:donor_name"`
	PhotoIDs              datatypes.JSONSlice[string] `gorm:"column:photo_ids"`
	LastReconciledAt      *time.Time                  `gorm:"column:last_reconciled_at"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}

func (p *PaymentIntent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the provider will not move the intent any further.
func (p *PaymentIntent) IsTerminal() bool {
	return p.Status == StatusSucceeded || p.Status == StatusCanceled
}
