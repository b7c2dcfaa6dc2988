package campaign

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
)

type CreateCampaignRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CauseType       *string    `json:"cause_type,omitempty"`
	CharityName     *string    `json:"charity_name,omitempty"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	GoalAmount      float64    `json:"goal_amount"`
	PhotographerID  *string    `json:"photographer_id,omitempty"`
	Visibility      string     `json:"visibility,omitempty"`
	Status          string     `json:"status,omitempty"`
	PhotoPrice      *float64   `json:"photo_price,omitempty"`
	PlatformFee     *float64   `json:"platform_fee,omitempty"`
	PhotographerFee *float64   `json:"photographer_fee,omitempty"`
	CharityFee      *float64   `json:"charity_fee,omitempty"`
	FundraiserURL   *string    `json:"fundraiser_url,omitempty"`
}

func (r CreateCampaignRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("title", r.Title).Required().MaxLength(200)
	v.Field("description", r.Description).Required().MaxLength(5000)
	v.Field("goal_amount", r.GoalAmount).NonNegative()
	if r.PhotographerID != nil {
		v.Field("photographer_id", *r.PhotographerID).UUID()
	}
	if r.PhotoPrice != nil {
		v.Field("photo_price", *r.PhotoPrice).NonNegative()
	}
	v.Field("visibility", r.Visibility).Custom(oneOf("visibility", "", VisibilityPublic, VisibilityPrivate))
	v.Field("status", r.Status).Custom(oneOf("status", "", StatusDraft, StatusActive))
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// toCampaign applies defaults for everything the organizer left out.
func (r CreateCampaignRequest) toCampaign(organizerID string) *Campaign {
	c := &Campaign{
		Title:           strings.TrimSpace(r.Title),
		Description:     strings.TrimSpace(r.Description),
		CauseType:       r.CauseType,
		CharityName:     r.CharityName,
		EventDate:       r.EventDate,
		GoalAmount:      r.GoalAmount,
		PhotographerID:  r.PhotographerID,
		OrganizerID:     organizerID,
		Visibility:      r.Visibility,
		Status:          r.Status,
		PhotoPrice:      valueOr(r.PhotoPrice, DefaultPhotoPrice),
		PlatformFee:     valueOr(r.PlatformFee, DefaultPlatformFee),
		PhotographerFee: valueOr(r.PhotographerFee, DefaultPhotographerFee),
		CharityFee:      valueOr(r.CharityFee, DefaultCharityFee),
		FundraiserURL:   r.FundraiserURL,
	}
	if c.Visibility == "" {
		c.Visibility = VisibilityPublic
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	return c
}

// UpdateCampaignRequest is a partial update; nil fields are left alone.
type UpdateCampaignRequest struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CauseType       *string    `json:"cause_type,omitempty"`
	CharityName     *string    `json:"charity_name,omitempty"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	GoalAmount      *float64   `json:"goal_amount,omitempty"`
	PhotographerID  *string    `json:"photographer_id,omitempty"`
	Visibility      *string    `json:"visibility,omitempty"`
	Status          *string    `json:"status,omitempty"`
	PhotoPrice      *float64   `json:"photo_price,omitempty"`
	PlatformFee     *float64   `json:"platform_fee,omitempty"`
	PhotographerFee *float64   `json:"photographer_fee,omitempty"`
	CharityFee      *float64   `json:"charity_fee,omitempty"`
	FundraiserURL   *string    `json:"fundraiser_url,omitempty"`
}

func (r UpdateCampaignRequest) Validate() error {
	v := validation.NewValidator()
	if r.Title != nil {
		v.Field("title", *r.Title).Required().MaxLength(200)
	}
	if r.Description != nil {
		v.Field("description", *r.Description).Required().MaxLength(5000)
	}
	if r.GoalAmount != nil {
		v.Field("goal_amount", *r.GoalAmount).NonNegative()
	}
	if r.PhotoPrice != nil {
		v.Field("photo_price", *r.PhotoPrice).NonNegative()
	}
	if r.PhotographerID != nil && *r.PhotographerID != "" {
		v.Field("photographer_id", *r.PhotographerID).UUID()
	}
	if r.Visibility != nil {
		v.Field("visibility", *r.Visibility).Custom(oneOf("visibility", VisibilityPublic, VisibilityPrivate))
	}
	if r.Status != nil && !isKnownStatus(*r.Status) {
		return errors.NewValidationFieldError("status", "unknown campaign status", errors.ErrCodeInvalidStatus)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// apply copies the set fields onto c. Status is handled by the caller.
func (r UpdateCampaignRequest) apply(c *Campaign) {
	if r.Title != nil {
		c.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		c.Description = strings.TrimSpace(*r.Description)
	}
	if r.CauseType != nil {
		c.CauseType = r.CauseType
	}
	if r.CharityName != nil {
		c.CharityName = r.CharityName
	}
	if r.EventDate != nil {
		c.EventDate = r.EventDate
	}
	if r.GoalAmount != nil {
		c.GoalAmount = *r.GoalAmount
	}
	if r.PhotographerID != nil {
		if *r.PhotographerID == "" {
			c.PhotographerID = nil
		} else {
			c.PhotographerID = r.PhotographerID
		}
	}
	if r.Visibility != nil {
		c.Visibility = *r.Visibility
	}
	if r.PhotoPrice != nil {
		c.PhotoPrice = *r.PhotoPrice
	}
	if r.PlatformFee != nil {
		c.PlatformFee = *r.PlatformFee
	}
	if r.PhotographerFee != nil {
		c.PhotographerFee = *r.PhotographerFee
	}
	if r.CharityFee != nil {
		c.CharityFee = *r.CharityFee
	}
	if r.FundraiserURL != nil {
		c.FundraiserURL = r.FundraiserURL
	}
}

// StatusAny disables the status filter.
const StatusAny = "any"

// ListFilter narrows a listing. An empty or "all" status means active
// campaigns. Private campaigns are only included on request.
type ListFilter struct {
	Status         string
	CauseType      string
	Search         string
	OrganizerID    string
	IncludePrivate bool
}

type CampaignResponse struct {
	Campaign
	PhotoCount     int     `json:"photo_count"`
	TotalDonations float64 `json:"total_donations"`
	DonationCount  int     `json:"donation_count"`
	DonorCount     int     `json:"donor_count"`
}

type CampaignsResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
}

func NewCampaignResponse(c *Campaign, stats Stats) CampaignResponse {
	return CampaignResponse{
		Campaign:       *c,
		PhotoCount:     stats.ApprovedPhotos,
		TotalDonations: stats.TotalDonations,
		DonationCount:  stats.DonationCount,
		DonorCount:     stats.DonorCount,
	}
}

func oneOf(field string, allowed ...string) func(interface{}) *errors.AppError {
	return func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return errors.NewValidationFieldError(field, field+" must be one of "+strings.Join(nonEmpty(allowed), ", "), errors.ErrCodeValidationFailed)
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
