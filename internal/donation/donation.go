package donation

import (
	stderrors "errors"
	"strings"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
	donationmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/donation"
	"github.com/frahmantamala/photo-fundraising/internal/core/money"
	"gorm.io/datatypes"
)

// ErrDuplicatePayment is returned by repositories when a donation for the
// same provider payment already exists.
var ErrDuplicatePayment = stderrors.New("donation already recorded for payment")

type Donation struct {
	ID              string
	CampaignID      string
	DonorEmail      string
	DonorName       *string
	Amount          float64
	StripePaymentID string
	PhotoIDs        []string
	CreatedAt       time.Time
}

// NewDonation is everything the ledger needs to write one row.
type NewDonation struct {
	CampaignID      string
	DonorEmail      string
	DonorName       string
	Amount          float64
	StripePaymentID string
	PhotoIDs        []string
}

func (n NewDonation) Validate() error {
	v := validation.NewValidator()
	v.Field("campaign_id", n.CampaignID).Required().UUID()
	v.Field("stripe_payment_id", n.StripePaymentID).Required()
	v.Field("amount", n.Amount).Required().NonNegative()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (n NewDonation) toDataModel() *donationmodel.Donation {
	var name *string
	if s := strings.TrimSpace(n.DonorName); s != "" {
		name = &s
	}
	ids := n.PhotoIDs
	if ids == nil {
		ids = []string{}
	}
	return &donationmodel.Donation{
		CampaignID:      n.CampaignID,
		DonorEmail:      n.DonorEmail,
		DonorName:       name,
		Amount:          money.Round2(n.Amount),
		StripePaymentID: n.StripePaymentID,
		PhotoIDs:        datatypes.NewJSONSlice(ids),
	}
}

func FromDataModel(d *donationmodel.Donation) *Donation {
	ids := []string(d.PhotoIDs)
	if ids == nil {
		ids = []string{}
	}
	return &Donation{
		ID:              d.ID,
		CampaignID:      d.CampaignID,
		DonorEmail:      d.DonorEmail,
		DonorName:       d.DonorName,
		Amount:          d.Amount,
		StripePaymentID: d.StripePaymentID,
		PhotoIDs:        ids,
		CreatedAt:       d.CreatedAt,
	}
}

// ToResponse hides the donor email unless the reader may see it.
func (d *Donation) ToResponse(showEmail bool) DonationResponse {
	resp := DonationResponse{
		ID:         d.ID,
		CampaignID: d.CampaignID,
		DonorName:  "Anonymous",
		Amount:     d.Amount,
		PhotoCount: len(d.PhotoIDs),
		CreatedAt:  d.CreatedAt,
	}
	if d.DonorName != nil && *d.DonorName != "" {
		resp.DonorName = *d.DonorName
	}
	if showEmail {
		resp.DonorEmail = d.DonorEmail
		resp.PhotoIDs = d.PhotoIDs
	}
	return resp
}

var errInvalidLimit = errors.NewValidationFieldError("limit", "limit must be a positive number", errors.ErrCodeValidationFailed)
