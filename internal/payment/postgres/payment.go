package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	"gorm.io/gorm"
)

type PaymentIntentRepository struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{
		db: db,
	}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, p *paymentintent.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentIntentRepository) GetByProviderID(ctx context.Context, providerID string) (*paymentintent.PaymentIntent, error) {
	var p paymentintent.PaymentIntent
	err := r.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", providerID).First(&p).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentIntentRepository) UpdateStatus(ctx context.Context, providerID, status string) error {
	return r.db.WithContext(ctx).
		Model(&paymentintent.PaymentIntent{}).
		Where("stripe_payment_intent_id = ?", providerID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// ListPending returns non-terminal intents created before the cutoff. Intents
// never reconciled come first, then the ones checked longest ago, so rows that
// stay pending forever cannot starve newer ones.
func (r *PaymentIntentRepository) ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*paymentintent.PaymentIntent, error) {
	var rows []*paymentintent.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{paymentintent.StatusSucceeded, paymentintent.StatusCanceled}).
		Where("created_at < ?", createdBefore).
		Order("last_reconciled_at IS NOT NULL").
		Order("last_reconciled_at ASC").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *PaymentIntentRepository) MarkReconciled(ctx context.Context, providerID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&paymentintent.PaymentIntent{}).
		Where("stripe_payment_intent_id = ?", providerID).
		UpdateColumn("last_reconciled_at", at).Error
}
