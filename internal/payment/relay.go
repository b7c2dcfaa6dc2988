package payment

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/core/money"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
)

// Relay converts verified provider events into ledger writes.
//
// A delivery is acknowledged only once its effects are durable. Datastore
// failures are returned so the provider redelivers; redelivery is safe
// because donations are keyed by provider intent id.
type Relay struct {
	verifier  EventVerifier
	repo      RepositoryAPI
	donations DonationRecorder
	publisher events.Publisher
	logger    *slog.Logger
}

func NewRelay(verifier EventVerifier, repo RepositoryAPI, donations DonationRecorder, publisher events.Publisher, logger *slog.Logger) *Relay {
	return &Relay{
		verifier:  verifier,
		repo:      repo,
		donations: donations,
		publisher: publisher,
		logger:    logger,
	}
}

func (r *Relay) HandleWebhook(ctx context.Context, payload []byte, signature string) (Ack, error) {
	event, err := r.verifier.VerifyEvent(payload, signature)
	if err != nil {
		r.logger.Warn("webhook signature verification failed", "error", err)
		return Ack{}, errors.NewSignatureInvalidError(err)
	}

	lg := r.logger.With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case EventIntentSucceeded:
		if err := r.RecordSucceeded(ctx, event.Intent); err != nil {
			if isPermanent(err) {
				lg.Error("dropping succeeded event that can never be recorded", "error", err)
				return Ack{Received: true}, nil
			}
			return Ack{}, err
		}
	case EventIntentPaymentFailed:
		if err := r.markStatus(ctx, event.Intent, paymentintent.StatusFailed); err != nil {
			return Ack{}, err
		}
	case EventIntentCanceled:
		if err := r.markStatus(ctx, event.Intent, paymentintent.StatusCanceled); err != nil {
			return Ack{}, err
		}
	default:
		lg.Info("unhandled webhook event type")
	}

	return Ack{Received: true}, nil
}

// RecordSucceeded writes the donation for a succeeded intent and marks the
// local record. It is idempotent and shared with reconciliation.
func (r *Relay) RecordSucceeded(ctx context.Context, intent *ProviderIntent) error {
	if intent == nil || intent.ID == "" {
		return ErrMalformedMetadata
	}

	meta, err := ParseIntentMetadata(intent.Metadata)
	if err != nil {
		return err
	}

	amount := money.ToMajor(intent.AmountMinor)
	lg := r.logger.With("stripe_payment_intent_id", intent.ID, "campaign_id", meta.CampaignID)

	record, err := r.repo.GetByProviderID(ctx, intent.ID)
	if err != nil {
		lg.Error("failed to load payment intent record", "error", err)
		return errors.NewUpstreamError("failed to load payment intent", errors.ErrCodeDatastoreFailed, err)
	}
	if record == nil {
		lg.Warn("no local record for succeeded intent; recording from metadata")
	} else if money.ToMinor(record.Amount) != intent.AmountMinor {
		lg.Warn("provider amount differs from requested amount",
			"requested", record.Amount,
			"confirmed", amount)
	}

	d, created, err := r.donations.Record(ctx, donation.NewDonation{
		CampaignID:      meta.CampaignID,
		DonorEmail:      meta.DonorEmail,
		DonorName:       meta.DonorName,
		Amount:          amount,
		StripePaymentID: intent.ID,
		PhotoIDs:        meta.PhotoIDs,
	})
	if err != nil {
		return err
	}

	if record != nil && record.Status != paymentintent.StatusSucceeded {
		if err := r.repo.UpdateStatus(ctx, intent.ID, paymentintent.StatusSucceeded); err != nil {
			lg.Error("failed to mark payment intent succeeded", "error", err)
			return errors.NewUpstreamError("failed to update payment intent", errors.ErrCodeDatastoreFailed, err)
		}
	}

	if !created {
		lg.Info("succeeded event already applied", "donation_id", d.ID)
		return nil
	}

	r.publish(ctx, events.NewDonationRecordedEvent(d.ID, d.CampaignID, d.Amount, d.StripePaymentID))
	r.publish(ctx, events.NewCampaignInvalidatedEvent(d.CampaignID, "donation recorded"))
	return nil
}

// MarkStatus mirrors a non-success provider status onto the local record.
func (r *Relay) MarkStatus(ctx context.Context, providerID, status string) error {
	return r.markStatus(ctx, &ProviderIntent{ID: providerID}, status)
}

func (r *Relay) markStatus(ctx context.Context, intent *ProviderIntent, status string) error {
	if intent == nil || intent.ID == "" {
		r.logger.Warn("status event without intent", "status", status)
		return nil
	}
	record, err := r.repo.GetByProviderID(ctx, intent.ID)
	if err != nil {
		return errors.NewUpstreamError("failed to load payment intent", errors.ErrCodeDatastoreFailed, err)
	}
	if record == nil {
		r.logger.Info("status event for unknown intent", "stripe_payment_intent_id", intent.ID, "status", status)
		return nil
	}
	// a late failure event must not undo a success
	if record.Status == status || record.Status == paymentintent.StatusSucceeded {
		return nil
	}
	if err := r.repo.UpdateStatus(ctx, intent.ID, status); err != nil {
		return errors.NewUpstreamError("failed to update payment intent", errors.ErrCodeDatastoreFailed, err)
	}
	r.logger.Info("payment intent status updated", "stripe_payment_intent_id", intent.ID, "from", record.Status, "to", status)
	return nil
}

func (r *Relay) publish(ctx context.Context, e events.Event) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, e); err != nil {
		r.logger.Error("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}

// isPermanent reports failures that no amount of redelivery can fix.
func isPermanent(err error) bool {
	return stderrors.Is(err, ErrMalformedMetadata) || errors.IsType(err, errors.ErrorTypeInvalidRequest)
}
