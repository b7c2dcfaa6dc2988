package campaign

import (
	"math"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
)

const (
	StatusDraft     = campaignmodel.StatusDraft
	StatusActive    = campaignmodel.StatusActive
	StatusPaused    = campaignmodel.StatusPaused
	StatusCompleted = campaignmodel.StatusCompleted

	VisibilityPublic  = campaignmodel.VisibilityPublic
	VisibilityPrivate = campaignmodel.VisibilityPrivate

	DefaultPhotoPrice      = 5.0
	DefaultPlatformFee     = 10.0
	DefaultPhotographerFee = 20.0
	DefaultCharityFee      = 70.0
)

var (
	ErrInvalidFeeSplit   = errors.NewInvalidRequestError("platform, photographer and charity fees must add up to 100", errors.ErrCodeInvalidFeeSplit)
	ErrCampaignHasFunds  = errors.NewConflictError("campaigns with donations cannot be deleted", errors.ErrCodeCampaignHasFunds)
	ErrInvalidTransition = errors.NewConflictError("campaign status change not allowed", errors.ErrCodeInvalidStatus)
)

var transitions = map[string][]string{
	StatusDraft:  {StatusActive},
	StatusActive: {StatusPaused, StatusCompleted},
	StatusPaused: {StatusActive, StatusCompleted},
}

type Campaign struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CauseType       *string    `json:"cause_type,omitempty"`
	CharityName     *string    `json:"charity_name,omitempty"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	GoalAmount      float64    `json:"goal_amount"`
	RaisedAmount    float64    `json:"raised_amount"`
	PhotographerID  *string    `json:"photographer_id,omitempty"`
	OrganizerID     string     `json:"organizer_id"`
	Visibility      string     `json:"visibility"`
	Status          string     `json:"status"`
	PhotoPrice      float64    `json:"photo_price"`
	PlatformFee     float64    `json:"platform_fee"`
	PhotographerFee float64    `json:"photographer_fee"`
	CharityFee      float64    `json:"charity_fee"`
	FundraiserURL   *string    `json:"fundraiser_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Stats are the aggregates shown next to a campaign.
type Stats struct {
	TotalDonations float64 `db:"total_donations"`
	DonationCount  int     `db:"donation_count"`
	DonorCount     int     `db:"donor_count"`
	ApprovedPhotos int     `db:"approved_photos"`
}

// IsPayable reports whether donations may be started for the campaign.
func (c *Campaign) IsPayable() bool {
	return c.Status == StatusActive
}

func (c *Campaign) IsOwnedBy(userID string) bool {
	return userID != "" && c.OrganizerID == userID
}

// IsParticipant is true for the organizer and the assigned photographer.
// Neither may donate to the campaign.
func (c *Campaign) IsParticipant(userID string) bool {
	if c.IsOwnedBy(userID) {
		return true
	}
	return userID != "" && c.PhotographerID != nil && *c.PhotographerID == userID
}

func (c *Campaign) IsPublic() bool {
	return c.Visibility != VisibilityPrivate
}

func (c *Campaign) CanTransitionTo(status string) bool {
	if status == c.Status {
		return true
	}
	for _, next := range transitions[c.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// UnitPhotoPrice is the price of one photo, falling back to the default.
func (c *Campaign) UnitPhotoPrice() float64 {
	if c.PhotoPrice <= 0 {
		return DefaultPhotoPrice
	}
	return c.PhotoPrice
}

// ValidateFeeSplit requires every share to be a percentage and the three to
// add up to 100.
func ValidateFeeSplit(platform, photographer, charity float64) error {
	for _, share := range []float64{platform, photographer, charity} {
		if share < 0 || share > 100 {
			return ErrInvalidFeeSplit
		}
	}
	if math.Abs(platform+photographer+charity-100) > 0.001 {
		return ErrInvalidFeeSplit
	}
	return nil
}

func isKnownStatus(status string) bool {
	switch status {
	case StatusDraft, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

func ToDataModel(c *Campaign) *campaignmodel.Campaign {
	return &campaignmodel.Campaign{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		CauseType:       c.CauseType,
		CharityName:     c.CharityName,
		EventDate:       c.EventDate,
		GoalAmount:      c.GoalAmount,
		RaisedAmount:    c.RaisedAmount,
		PhotographerID:  c.PhotographerID,
		OrganizerID:     c.OrganizerID,
		Visibility:      c.Visibility,
		Status:          c.Status,
		PhotoPrice:      c.PhotoPrice,
		PlatformFee:     c.PlatformFee,
		PhotographerFee: c.PhotographerFee,
		CharityFee:      c.CharityFee,
		FundraiserURL:   c.FundraiserURL,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func FromDataModel(c *campaignmodel.Campaign) *Campaign {
	return &Campaign{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		CauseType:       c.CauseType,
		CharityName:     c.CharityName,
		EventDate:       c.EventDate,
		GoalAmount:      c.GoalAmount,
		RaisedAmount:    c.RaisedAmount,
		PhotographerID:  c.PhotographerID,
		OrganizerID:     c.OrganizerID,
		Visibility:      c.Visibility,
		Status:          c.Status,
		PhotoPrice:      c.PhotoPrice,
		PlatformFee:     c.PlatformFee,
		PhotographerFee: c.PhotographerFee,
		CharityFee:      c.CharityFee,
		FundraiserURL:   c.FundraiserURL,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
