package donation

import "time"

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
	maxCampaignPage    = 200
)

type DonationResponse struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	DonorName  string    `json:"donor_name"`
	DonorEmail string    `json:"donor_email,omitempty"`
	Amount     float64   `json:"amount"`
	PhotoCount int       `json:"photo_count"`
	PhotoIDs   []string  `json:"photo_ids,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type DonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
}

// clampRecent applies the default and the ceiling to a recent-donations limit.
func clampRecent(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}
