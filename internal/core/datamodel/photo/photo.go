package photo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

type Photo struct {
	ID               string                      `gorm:"column:id;type:uuid;primaryKey"`
	CampaignID       string                      `gorm:"column:campaign_id;type:uuid;not null;index"`
	URL              string                      `gorm:"column:url;not null"`
	ThumbnailURL     *string                     `gorm:"column:thumbnail_url"`
	WatermarkURL     *string                     `gorm:"column:watermark_url"`
	StorageKey       string                      `gorm:"column:storage_key"`
	Filename         string                      `gorm:"column:filename;not null"`
	FileSize         int64                       `gorm:"column:file_size;not null;default:0"`
	Width            int                         `gorm:"column:width;not null;default:0"`
	Height           int                         `gorm:"column:height;not null;default:0"`
	UploadedBy       string                      `gorm:"column:uploaded_by;type:uuid;not null"`
	ModerationStatus string                      `gorm:"column:moderation_status;not null;default:pending;index"`
	Tags             datatypes.JSONSlice[string] `gorm:"column:tags"`
	BibNumber        *string                     `gorm:"column:bib_number"`
	UploadDate       time.Time                   `gorm:"column:upload_date;autoCreateTime"`
}

func (Photo) TableName() string {
	return "photos"
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
