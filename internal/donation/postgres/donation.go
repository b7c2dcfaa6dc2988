package postgres

import (
	"context"
	stderrors "errors"
	"strings"

	donationmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/donation"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, d *donationmodel.Donation) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if isUniqueViolation(err) {
		return donation.ErrDuplicatePayment
	}
	return err
}

func (r *DonationRepository) GetByStripePaymentID(ctx context.Context, stripePaymentID string) (*donationmodel.Donation, error) {
	var d donationmodel.Donation
	err := r.db.WithContext(ctx).Where("stripe_payment_id = ?", stripePaymentID).First(&d).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*donationmodel.Donation, error) {
	var rows []*donationmodel.Donation
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *DonationRepository) ListRecent(ctx context.Context, limit int) ([]*donationmodel.Donation, error) {
	var rows []*donationmodel.Donation
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// isUniqueViolation recognises duplicate keys whether or not the gorm
// session was opened with TranslateError.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
