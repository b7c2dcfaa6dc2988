package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	"github.com/frahmantamala/photo-fundraising/internal/core/money"
	"gorm.io/datatypes"
)

// Issuer turns a validated donation request into a provider payment intent
// and a pending local record.
type Issuer struct {
	campaigns CampaignReader
	repo      RepositoryAPI
	provider  Provider
	logger    *slog.Logger
}

func NewIssuer(campaigns CampaignReader, repo RepositoryAPI, provider Provider, logger *slog.Logger) *Issuer {
	return &Issuer{
		campaigns: campaigns,
		repo:      repo,
		provider:  provider,
		logger:    logger,
	}
}

// CreatePaymentIntent performs no provider call and no write until the
// request is valid and the campaign is payable.
func (s *Issuer) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*IntentResult, error) {
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	req.DonorEmail = strings.TrimSpace(req.DonorEmail)
	req.DonorName = strings.TrimSpace(req.DonorName)

	if err := req.Validate(); err != nil {
		s.logger.Warn("payment intent request rejected", "error", err)
		return nil, err
	}

	campaign, err := s.campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		s.logger.Error("campaign lookup failed", "error", err, "campaign_id", req.CampaignID)
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if campaign == nil {
		return nil, errors.ErrCampaignNotFound
	}
	if campaign.Status != campaignmodel.StatusActive {
		s.logger.Info("payment intent refused for inactive campaign", "campaign_id", campaign.ID, "status", campaign.Status)
		return nil, errors.ErrCampaignNotActive
	}

	meta := IntentMetadata{
		CampaignID: campaign.ID,
		DonorEmail: req.DonorEmail,
		DonorName:  req.DonorName,
		PhotoIDs:   req.PhotoIDs,
	}

	intent, err := s.provider.CreateIntent(ctx, CreateIntentParams{
		AmountMinor:  money.ToMinor(req.Amount),
		Currency:     money.Currency,
		Description:  fmt.Sprintf("Donation to campaign: %s", campaign.Title),
		ReceiptEmail: req.DonorEmail,
		Metadata:     meta.Encode(),
	})
	if err != nil {
		s.logger.Error("provider rejected payment intent", "error", err, "campaign_id", campaign.ID)
		return nil, errors.NewUpstreamError("payment provider rejected the request", errors.ErrCodeProviderFailed, err)
	}

	record := &paymentintent.PaymentIntent{
		StripePaymentIntentID: intent.ID,
		CampaignID:            campaign.ID,
		Amount:                money.Round2(req.Amount),
		Currency:              money.Currency,
		Status:                intent.Status,
		DonorEmail:            req.DonorEmail,
		PhotoIDs:              datatypes.NewJSONSlice(nonNil(req.PhotoIDs)),
	}
	if req.DonorName != "" {
		name := req.DonorName
		record.DonorName = &name
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// the provider intent now has no local mirror; the webhook still
		// records the donation from its metadata
		s.logger.Error("failed to persist payment intent record",
			"error", err,
			"stripe_payment_intent_id", intent.ID,
			"campaign_id", campaign.ID)
		return nil, errors.NewUpstreamError("failed to record payment intent", errors.ErrCodeDatastoreFailed, err)
	}

	s.logger.Info("payment intent created",
		"stripe_payment_intent_id", intent.ID,
		"campaign_id", campaign.ID,
		"amount_minor", intent.AmountMinor,
		"status", intent.Status)

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		ID:           intent.ID,
		Amount:       money.ToMajor(intent.AmountMinor),
		Currency:     intent.Currency,
		Status:       intent.Status,
	}, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
