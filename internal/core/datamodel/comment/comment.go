package comment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	CampaignID string    `gorm:"column:campaign_id;type:uuid;not null;index"`
	UserID     string    `gorm:"column:user_id;type:uuid;not null"`
	AuthorName *string   `gorm:"column:author_name"`
	Content    string    `gorm:"column:content;not null"`
	IsUpdate   bool      `gorm:"column:is_update;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
