package payment

import (
	"context"
	"time"

	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
)

// Provider event types the relay acts on.
const (
	EventIntentSucceeded     = "payment_intent.succeeded"
	EventIntentPaymentFailed = "payment_intent.payment_failed"
	EventIntentCanceled      = "payment_intent.canceled"
)

// ProviderIntent is a payment intent as the payment provider reports it.
// Amounts are in minor units.
type ProviderIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

type ProviderEvent struct {
	ID     string
	Type   string
	Intent *ProviderIntent
}

type CreateIntentParams struct {
	AmountMinor  int64
	Currency     string
	Description  string
	ReceiptEmail string
	Metadata     map[string]string
}

// Provider creates and fetches payment intents on the hosted payment API.
type Provider interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*ProviderIntent, error)
	GetIntent(ctx context.Context, id string) (*ProviderIntent, error)
}

// EventVerifier authenticates a webhook delivery and decodes it.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*ProviderEvent, error)
}

// RepositoryAPI stores the local mirror of provider intents. Getters return
// (nil, nil) when the row does not exist.
type RepositoryAPI interface {
	Create(ctx context.Context, p *paymentintent.PaymentIntent) error
	GetByProviderID(ctx context.Context, providerID string) (*paymentintent.PaymentIntent, error)
	UpdateStatus(ctx context.Context, providerID, status string) error
	ListPending(ctx context.Context, createdBefore time.Time, limit int) ([]*paymentintent.PaymentIntent, error)
	MarkReconciled(ctx context.Context, providerID string, at time.Time) error
}

// CampaignReader returns (nil, nil) for an unknown campaign.
type CampaignReader interface {
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
}

type DonationRecorder interface {
	Record(ctx context.Context, in donation.NewDonation) (*donation.Donation, bool, error)
}
