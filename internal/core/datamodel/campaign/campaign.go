package campaign

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Campaign struct {
	ID              string     `gorm:"column:id;type:uuid;primaryKey"`
	Title           string     `gorm:"column:title;not null"`
	Description     string     `gorm:"column:description;not null"`
	CauseType       *string    `gorm:"column:cause_type"`
	CharityName     *string    `gorm:"column:charity_name"`
	EventDate       *time.Time `gorm:"column:event_date"`
	GoalAmount      float64    `gorm:"column:goal_amount;not null;default:0"`
	RaisedAmount    float64    `gorm:"column:raised_amount;not null;default:0"`
	PhotoCount      int        `gorm:"column:photo_count;not null;default:0"`
	PhotographerID  *string    `gorm:"column:photographer_id;type:uuid"`
	OrganizerID     string     `gorm:"column:organizer_id;type:uuid;not null;index"`
	Visibility      string     `gorm:"column:visibility;not null;default:public"`
	Status          string     `gorm:"column:status;not null;default:draft;index"`
	PhotoPrice      float64    `gorm:"column:photo_price;not null;default:5"`
	PlatformFee     float64    `gorm:"column:platform_fee;not null;default:10"`
	PhotographerFee float64    `gorm:"column:photographer_fee;not null;default:20"`
	CharityFee      float64    `gorm:"column:charity_fee;not null;default:70"`
	FundraiserURL   *string    `gorm:"column:fundraiser_url"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
