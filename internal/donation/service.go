package donation

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	donationmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/donation"
)

// RepositoryAPI is append-only: donations are never updated or deleted.
type RepositoryAPI interface {
	Create(ctx context.Context, d *donationmodel.Donation) error
	GetByStripePaymentID(ctx context.Context, stripePaymentID string) (*donationmodel.Donation, error)
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*donationmodel.Donation, error)
	ListRecent(ctx context.Context, limit int) ([]*donationmodel.Donation, error)
}

type CampaignReader interface {
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
}

type Service struct {
	repo      RepositoryAPI
	campaigns CampaignReader
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, campaigns CampaignReader, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		logger:    logger,
	}
}

// Record writes the donation for a provider payment exactly once. The bool is
// false when the payment had already been recorded; the existing row is
// returned in that case.
func (s *Service) Record(ctx context.Context, in NewDonation) (*Donation, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByStripePaymentID(ctx, in.StripePaymentID)
	if err != nil {
		s.logger.Error("failed to look up donation", "error", err, "stripe_payment_id", in.StripePaymentID)
		return nil, false, errors.NewUpstreamError("failed to look up donation", errors.ErrCodeDatastoreFailed, err)
	}
	if existing != nil {
		s.logger.Info("donation already recorded", "donation_id", existing.ID, "stripe_payment_id", in.StripePaymentID)
		return FromDataModel(existing), false, nil
	}

	row := in.toDataModel()
	if err := s.repo.Create(ctx, row); err != nil {
		if stderrors.Is(err, ErrDuplicatePayment) {
			// lost a race with a concurrent delivery of the same event
			existing, getErr := s.repo.GetByStripePaymentID(ctx, in.StripePaymentID)
			if getErr == nil && existing != nil {
				return FromDataModel(existing), false, nil
			}
		}
		s.logger.Error("failed to record donation", "error", err, "stripe_payment_id", in.StripePaymentID)
		return nil, false, errors.NewUpstreamError("failed to record donation", errors.ErrCodeDatastoreFailed, err)
	}

	s.logger.Info("donation recorded",
		"donation_id", row.ID,
		"campaign_id", row.CampaignID,
		"amount", row.Amount,
		"stripe_payment_id", row.StripePaymentID)

	return FromDataModel(row), true, nil
}

// ListByCampaign returns the newest donations first. Donor emails are only
// included for the campaign organizer.
func (s *Service) ListByCampaign(ctx context.Context, campaignID string) ([]DonationResponse, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if c == nil {
		return nil, errors.ErrCampaignNotFound
	}

	rows, err := s.repo.ListByCampaign(ctx, campaignID, maxCampaignPage)
	if err != nil {
		s.logger.Error("failed to list donations", "error", err, "campaign_id", campaignID)
		return nil, errors.NewUpstreamError("failed to list donations", errors.ErrCodeDatastoreFailed, err)
	}

	viewer, _ := errors.ViewerFromContext(ctx)
	showEmail := viewer != nil && viewer.ID == c.OrganizerID

	out := make([]DonationResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse(showEmail))
	}
	return out, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]DonationResponse, error) {
	if limit < 0 {
		return nil, errInvalidLimit
	}
	rows, err := s.repo.ListRecent(ctx, clampRecent(limit))
	if err != nil {
		s.logger.Error("failed to list recent donations", "error", err)
		return nil, errors.NewUpstreamError("failed to list donations", errors.ErrCodeDatastoreFailed, err)
	}

	out := make([]DonationResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse(false))
	}
	return out, nil
}
