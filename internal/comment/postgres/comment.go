package postgres

import (
	"context"

	commentmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/comment"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *commentmodel.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*commentmodel.Comment, error) {
	var rows []*commentmodel.Comment
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
