package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
)

// Settler is the part of the relay reconciliation reuses.
type Settler interface {
	RecordSucceeded(ctx context.Context, intent *ProviderIntent) error
	MarkStatus(ctx context.Context, providerID, status string) error
}

type ReconcileReport struct {
	Checked   int `json:"checked"`
	Recorded  int `json:"recorded"`
	Canceled  int `json:"canceled"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Reconciler asks the provider about intents that never reached a terminal
// state locally, for deliveries the webhook missed.
type Reconciler struct {
	repo     RepositoryAPI
	provider Provider
	settler  Settler
	logger   *slog.Logger
	now      func() time.Time
}

func NewReconciler(repo RepositoryAPI, provider Provider, settler Settler, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		repo:     repo,
		provider: provider,
		settler:  settler,
		logger:   logger,
		now:      time.Now,
	}
}

// Run checks at most limit records created more than olderThan ago. Every
// checked record is stamped, so the next run starts with records not yet
// looked at. A failure on one record is counted and the run moves on.
func (r *Reconciler) Run(ctx context.Context, olderThan time.Duration, limit int) (ReconcileReport, error) {
	var report ReconcileReport

	pending, err := r.repo.ListPending(ctx, r.now().Add(-olderThan), limit)
	if err != nil {
		return report, err
	}

	for _, record := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		lg := r.logger.With("stripe_payment_intent_id", record.StripePaymentIntentID)
		r.check(ctx, lg, record, &report)

		if err := r.repo.MarkReconciled(ctx, record.StripePaymentIntentID, r.now()); err != nil {
			lg.Error("failed to stamp reconciled intent", "error", err)
		}
	}

	r.logger.Info("reconciliation finished",
		"checked", report.Checked,
		"recorded", report.Recorded,
		"canceled", report.Canceled,
		"updated", report.Updated,
		"failed", report.Failed)

	return report, nil
}

func (r *Reconciler) check(ctx context.Context, lg *slog.Logger, record *paymentintent.PaymentIntent, report *ReconcileReport) {
	intent, err := r.provider.GetIntent(ctx, record.StripePaymentIntentID)
	if err != nil {
		lg.Error("failed to fetch intent from provider", "error", err)
		report.Failed++
		return
	}

	switch intent.Status {
	case paymentintent.StatusSucceeded:
		if err := r.settler.RecordSucceeded(ctx, intent); err != nil {
			lg.Error("failed to record succeeded intent", "error", err)
			report.Failed++
			return
		}
		report.Recorded++
	case paymentintent.StatusCanceled:
		if err := r.settler.MarkStatus(ctx, intent.ID, paymentintent.StatusCanceled); err != nil {
			lg.Error("failed to mark intent canceled", "error", err)
			report.Failed++
			return
		}
		report.Canceled++
	default:
		if intent.Status == record.Status {
			report.Unchanged++
			return
		}
		if err := r.settler.MarkStatus(ctx, intent.ID, intent.Status); err != nil {
			lg.Error("failed to update intent status", "error", err)
			report.Failed++
			return
		}
		report.Updated++
	}
}
