package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDonationRecorded    = "donation.recorded"
	EventTypeCampaignInvalidated = "campaign.invalidated"
)

type DonationRecordedEvent struct {
	BaseEvent
	DonationID      string  `json:"donation_id"`
	CampaignID      string  `json:"campaign_id"`
	Amount          float64 `json:"amount"`
	StripePaymentID string  `json:"stripe_payment_id"`
}

func NewDonationRecordedEvent(donationID, campaignID string, amount float64, stripePaymentID string) *DonationRecordedEvent {
	return &DonationRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"donation_id":       donationID,
				"campaign_id":       campaignID,
				"amount":            amount,
				"stripe_payment_id": stripePaymentID,
			},
		},
		DonationID:      donationID,
		CampaignID:      campaignID,
		Amount:          amount,
		StripePaymentID: stripePaymentID,
	}
}

// CampaignInvalidatedEvent tells every holder of a cached campaign view to drop it.
type CampaignInvalidatedEvent struct {
	BaseEvent
	CampaignID string `json:"campaign_id"`
	Reason     string `json:"reason"`
}

func NewCampaignInvalidatedEvent(campaignID, reason string) *CampaignInvalidatedEvent {
	return &CampaignInvalidatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCampaignInvalidated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"campaign_id": campaignID,
				"reason":      reason,
			},
		},
		CampaignID: campaignID,
		Reason:     reason,
	}
}
