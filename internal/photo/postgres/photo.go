package postgres

import (
	"context"
	stderrors "errors"

	photomodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/photo"
	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, p *photomodel.Photo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*photomodel.Photo, error) {
	var p photomodel.Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCampaign returns the campaign's photos, oldest first. An empty
// status returns every photo.
func (r *PhotoRepository) ListByCampaign(ctx context.Context, campaignID, moderationStatus string) ([]*photomodel.Photo, error) {
	q := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if moderationStatus != "" {
		q = q.Where("moderation_status = ?", moderationStatus)
	}
	var rows []*photomodel.Photo
	err := q.Order("upload_date ASC").Find(&rows).Error
	return rows, err
}

func (r *PhotoRepository) ListByIDs(ctx context.Context, campaignID string, ids []string) ([]*photomodel.Photo, error) {
	var rows []*photomodel.Photo
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND id IN ?", campaignID, ids).
		Find(&rows).Error
	return rows, err
}

// UpdateModeration changes the status and refreshes the campaign's
// approved photo count in the same transaction.
func (r *PhotoRepository) UpdateModeration(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p photomodel.Photo
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Model(&photomodel.Photo{}).Where("id = ?", id).Update("moderation_status", status).Error; err != nil {
			return err
		}
		return tx.Exec(
			"UPDATE campaigns SET photo_count = (SELECT COUNT(*) FROM photos WHERE campaign_id = ? AND moderation_status = ?) WHERE id = ?",
			p.CampaignID, photomodel.ModerationApproved, p.CampaignID,
		).Error
	})
}
