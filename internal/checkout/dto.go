package checkout

import (
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
)

type QuoteRequest struct {
	PhotoIDs         []string `json:"photoIds"`
	AdditionalAmount float64  `json:"additionalAmount"`
}

func (r *QuoteRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("photoIds", r.PhotoIDs).EachUUID()
	v.Field("additionalAmount", r.AdditionalAmount).NonNegative()
	return v.Validate()
}

type StartRequest struct {
	DonorName        string   `json:"donorName"`
	DonorEmail       string   `json:"donorEmail"`
	PhotoIDs         []string `json:"photoIds"`
	AdditionalAmount float64  `json:"additionalAmount"`
}

func (r *StartRequest) normalize() {
	r.DonorName = strings.TrimSpace(r.DonorName)
	r.DonorEmail = strings.TrimSpace(r.DonorEmail)
}

// Validate mirrors the checkout form: name, then email, then the selection.
func (r *StartRequest) Validate() *errors.AppError {
	v := validation.NewValidator().FailFast()
	v.Field("donorName", r.DonorName).Required().MaxLength(200)
	v.Field("donorEmail", r.DonorEmail).Email()
	v.Field("photoIds", r.PhotoIDs).Custom(func(value interface{}) *errors.AppError {
		if ids, _ := value.([]string); len(ids) == 0 {
			return ErrNoPhotosSelected
		}
		return nil
	}).EachUUID()
	v.Field("additionalAmount", r.AdditionalAmount).NonNegative()
	return v.Validate()
}

type CompleteRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// Quote is the price breakdown shown before the donor pays.
type Quote struct {
	PhotoCount       int     `json:"photo_count"`
	UnitPrice        float64 `json:"unit_price"`
	PhotosTotal      float64 `json:"photos_total"`
	AdditionalAmount float64 `json:"additional_amount"`
	Total            float64 `json:"total"`
	DisplayTotal     string  `json:"display_total"`
}

// Session is everything the browser needs to confirm the payment with the
// provider's client SDK.
type Session struct {
	CampaignID      string `json:"campaign_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	PublishableKey  string `json:"publishable_key"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Quote
}

// ClientConfig holds the public keys handed to the browser.
type ClientConfig struct {
	PublishableKey string `json:"publishable_key"`
	AnonKey        string `json:"anon_key"`
}

type CompleteResponse struct {
	CampaignID      string `json:"campaign_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Message         string `json:"message"`
}
