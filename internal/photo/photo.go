package photo

import (
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	photomodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/photo"
)

const (
	ModerationPending  = photomodel.ModerationPending
	ModerationApproved = photomodel.ModerationApproved
	ModerationRejected = photomodel.ModerationRejected
)

var (
	ErrNotUploader     = errors.NewForbiddenError("only the campaign organizer or photographer can upload photos", errors.ErrCodeNotCampaignOwner)
	ErrNotAnImage      = errors.NewInvalidRequestError("only image uploads are accepted", errors.ErrCodeInvalidPhoto)
	ErrMissingFile     = errors.NewInvalidRequestError("a photo file is required", errors.ErrCodeInvalidPhoto)
	ErrInvalidDecision = errors.NewValidationFieldError("status", "status must be approved or rejected", errors.ErrCodeInvalidStatus)
)

type Photo struct {
	ID               string    `json:"id"`
	CampaignID       string    `json:"campaign_id"`
	URL              string    `json:"url"`
	ThumbnailURL     *string   `json:"thumbnail_url,omitempty"`
	WatermarkURL     *string   `json:"watermark_url,omitempty"`
	Filename         string    `json:"filename"`
	FileSize         int64     `json:"file_size"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	UploadedBy       string    `json:"uploaded_by"`
	ModerationStatus string    `json:"moderation_status"`
	Tags             []string  `json:"tags"`
	BibNumber        *string   `json:"bib_number,omitempty"`
	UploadDate       time.Time `json:"upload_date"`
}

// IsPurchasable reports whether donors may select the photo.
func (p *Photo) IsPurchasable() bool {
	return p.ModerationStatus == ModerationApproved
}

func FromDataModel(p *photomodel.Photo) *Photo {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &Photo{
		ID:               p.ID,
		CampaignID:       p.CampaignID,
		URL:              p.URL,
		ThumbnailURL:     p.ThumbnailURL,
		WatermarkURL:     p.WatermarkURL,
		Filename:         p.Filename,
		FileSize:         p.FileSize,
		Width:            p.Width,
		Height:           p.Height,
		UploadedBy:       p.UploadedBy,
		ModerationStatus: p.ModerationStatus,
		Tags:             tags,
		BibNumber:        p.BibNumber,
		UploadDate:       p.UploadDate,
	}
}

func FromDataModelSlice(rows []*photomodel.Photo) []*Photo {
	out := make([]*Photo, len(rows))
	for i, p := range rows {
		out[i] = FromDataModel(p)
	}
	return out
}
