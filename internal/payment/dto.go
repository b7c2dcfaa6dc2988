package payment

import (
	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
)

type CreatePaymentIntentRequest struct {
	CampaignID string   `json:"campaignId"`
	Amount     float64  `json:"amount"`
	DonorEmail string   `json:"donorEmail"`
	DonorName  string   `json:"donorName,omitempty"`
	PhotoIDs   []string `json:"photoIds,omitempty"`
}

// Validate checks presence first, then shape, then range, and stops at the
// first failure.
func (r *CreatePaymentIntentRequest) Validate() error {
	presence := validation.NewValidator()
	presence.Field("campaignId", r.CampaignID).Required()
	presence.Field("amount", r.Amount).Required()
	presence.Field("donorEmail", r.DonorEmail).Required()
	if appErr := presence.Validate(); appErr != nil {
		return errors.NewInvalidRequestError("Missing required payment data", errors.ErrCodeMissingField).
			WithDetails(appErr.Details)
	}

	v := validation.NewValidator().FailFast()
	v.Field("campaignId", r.CampaignID).UUID()
	v.Field("donorEmail", r.DonorEmail).Email()
	v.Field("amount", r.Amount).PositiveAtMost(validation.MaxDonationAmount)
	v.Field("donorName", r.DonorName).MaxLength(200)
	v.Field("photoIds", r.PhotoIDs).EachUUID()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type IntentResult struct {
	ClientSecret string  `json:"client_secret"`
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
}

// Ack is the body returned to the provider for an accepted delivery.
type Ack struct {
	Received bool `json:"received"`
}
