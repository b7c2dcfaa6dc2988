package donation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Donation rows are written once and never updated.
type Donation struct {
	ID              string                      `gorm:"column:id;type:uuid;primaryKey"`
	CampaignID      string                      `gorm:"column:campaign_id;type:uuid;not null;index"`
	DonorEmail      string                      `gorm:"column:donor_email;not null"`
	DonorName       *string                     `gorm:"column:donor_name"`
	Amount          float64                     `gorm:"column:amount;not null"`
	StripePaymentID string                      `gorm:"column:stripe_payment_id;not null;uniqueIndex"`
	PhotoIDs        datatypes.JSONSlice[string] `gorm:"column:photo_ids"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
