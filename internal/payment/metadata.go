package payment

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

const (
	metaCampaignID = "campaignId"
	metaDonorEmail = "donorEmail"
	metaDonorName  = "donorName"
	metaPhotoIDs   = "photoIds"
)

// ErrMalformedMetadata marks intent metadata that redelivery can never fix.
var ErrMalformedMetadata = stderrors.New("malformed payment intent metadata")

// IntentMetadata is the context the relay needs to turn a succeeded intent
// into a donation. It travels on the provider object as string values.
type IntentMetadata struct {
	CampaignID string
	DonorEmail string
	DonorName  string
	PhotoIDs   []string
}

func (m IntentMetadata) Encode() map[string]string {
	ids := m.PhotoIDs
	if ids == nil {
		ids = []string{}
	}
	encoded, _ := json.Marshal(ids)
	return map[string]string{
		metaCampaignID: m.CampaignID,
		metaDonorEmail: m.DonorEmail,
		metaDonorName:  m.DonorName,
		metaPhotoIDs:   string(encoded),
	}
}

func ParseIntentMetadata(raw map[string]string) (IntentMetadata, error) {
	campaignID := strings.TrimSpace(raw[metaCampaignID])
	if campaignID == "" {
		return IntentMetadata{}, fmt.Errorf("%w: missing %s", ErrMalformedMetadata, metaCampaignID)
	}

	meta := IntentMetadata{
		CampaignID: campaignID,
		DonorEmail: raw[metaDonorEmail],
		DonorName:  raw[metaDonorName],
		PhotoIDs:   []string{},
	}

	if s := strings.TrimSpace(raw[metaPhotoIDs]); s != "" {
		var ids []string
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return IntentMetadata{}, fmt.Errorf("%w: %s is not a JSON string array: %v", ErrMalformedMetadata, metaPhotoIDs, err)
		}
		if ids != nil {
			meta.PhotoIDs = ids
		}
	}

	return meta, nil
}
