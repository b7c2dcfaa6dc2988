// Package checkout drives a donation from photo selection to a payment
// intent the browser can confirm.
package checkout

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/core/money"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	"github.com/frahmantamala/photo-fundraising/internal/photo"
)

var (
	ErrNoPhotosSelected = errors.NewValidationFieldError("photoIds", "Please select at least one photo", errors.ErrCodeMissingField)
	ErrPhotoUnavailable = errors.NewInvalidRequestError("one or more selected photos are not available", errors.ErrCodeInvalidPhoto)
	ErrMissingIntent    = errors.NewValidationFieldError("paymentIntentId", "paymentIntentId is required", errors.ErrCodeMissingField)
)

type CampaignReader interface {
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
}

type PhotoReader interface {
	ApprovedPhotos(ctx context.Context, campaignID string, ids []string) ([]*photo.Photo, error)
}

// Keys are the public credentials the browser SDKs are initialised with.
type Keys struct {
	PublishableKey string
	AnonKey        string
}

type Flow struct {
	campaigns CampaignReader
	photos    PhotoReader
	issuer    payment.IssuerAPI
	publisher events.Publisher
	keys      Keys
	logger    *slog.Logger
}

func NewFlow(campaigns CampaignReader, photos PhotoReader, issuer payment.IssuerAPI, publisher events.Publisher, keys Keys, logger *slog.Logger) *Flow {
	return &Flow{
		campaigns: campaigns,
		photos:    photos,
		issuer:    issuer,
		publisher: publisher,
		keys:      keys,
		logger:    logger,
	}
}

func (f *Flow) Config() ClientConfig {
	return ClientConfig{
		PublishableKey: f.keys.PublishableKey,
		AnonKey:        f.keys.AnonKey,
	}
}

// Quote prices a selection: approved photos at the campaign's unit price
// plus the optional additional donation.
func (f *Flow) Quote(ctx context.Context, campaignID string, req QuoteRequest) (*Quote, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}
	c, err := f.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return f.quote(ctx, c, req.PhotoIDs, req.AdditionalAmount)
}

// Start checks the donor may give to the campaign, prices the selection and
// asks the issuer for a payment intent.
func (f *Flow) Start(ctx context.Context, campaignID string, req StartRequest) (*Session, error) {
	c, err := f.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if viewer, ok := errors.ViewerFromContext(ctx); ok && c.IsParticipant(viewer.ID) {
		f.logger.Info("self donation blocked", "campaign_id", c.ID, "user_id", viewer.ID)
		return nil, errors.ErrSelfDonation
	}

	req.normalize()
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}
	if !c.IsPayable() {
		return nil, errors.ErrCampaignNotActive
	}

	q, err := f.quote(ctx, c, req.PhotoIDs, req.AdditionalAmount)
	if err != nil {
		return nil, err
	}

	intent, err := f.issuer.CreatePaymentIntent(ctx, payment.CreatePaymentIntentRequest{
		CampaignID: c.ID,
		Amount:     q.Total,
		DonorEmail: req.DonorEmail,
		DonorName:  req.DonorName,
		PhotoIDs:   unique(req.PhotoIDs),
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info("checkout started",
		"campaign_id", c.ID,
		"stripe_payment_intent_id", intent.ID,
		"photo_count", q.PhotoCount,
		"total", q.Total)

	return &Session{
		CampaignID:      c.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  f.keys.PublishableKey,
		Currency:        intent.Currency,
		Status:          intent.Status,
		Quote:           *q,
	}, nil
}

// Complete is called once the browser has confirmed the intent. The ledger
// row is written by the webhook; here we only drop cached campaign views.
func (f *Flow) Complete(ctx context.Context, campaignID string, req CompleteRequest) (*CompleteResponse, error) {
	if !validation.IsUUID(campaignID) {
		return nil, errors.ErrCampaignNotFound
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return nil, ErrMissingIntent
	}

	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, events.NewCampaignInvalidatedEvent(campaignID, "checkout_completed")); err != nil {
			f.logger.Warn("failed to publish campaign invalidation", "error", err, "campaign_id", campaignID)
		}
	}

	f.logger.Info("checkout completed", "campaign_id", campaignID, "stripe_payment_intent_id", intentID)
	return &CompleteResponse{
		CampaignID:      campaignID,
		PaymentIntentID: intentID,
		Message:         "Thank you for your donation!",
	}, nil
}

func (f *Flow) quote(ctx context.Context, c *campaign.Campaign, photoIDs []string, additional float64) (*Quote, error) {
	ids := unique(photoIDs)
	if len(ids) > 0 {
		approved, err := f.photos.ApprovedPhotos(ctx, c.ID, ids)
		if err != nil {
			return nil, err
		}
		if len(approved) != len(ids) {
			return nil, ErrPhotoUnavailable
		}
	}

	unit := c.UnitPhotoPrice()
	photosTotal := money.Round2(float64(len(ids)) * unit)
	total := money.Round2(photosTotal + additional)
	return &Quote{
		PhotoCount:       len(ids),
		UnitPrice:        unit,
		PhotosTotal:      photosTotal,
		AdditionalAmount: money.Round2(additional),
		Total:            total,
		DisplayTotal:     money.Display(total),
	}, nil
}

func (f *Flow) loadCampaign(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	if !validation.IsUUID(campaignID) {
		return nil, errors.ErrCampaignNotFound
	}
	row, err := f.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if row == nil {
		return nil, errors.ErrCampaignNotFound
	}
	return campaign.FromDataModel(row), nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
