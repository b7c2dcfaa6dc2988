package postgres

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *campaignmodel.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// GetByID returns nil, nil when the campaign does not exist.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error) {
	var c campaignmodel.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Update(ctx context.Context, c *campaignmodel.Campaign) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&campaignmodel.Campaign{}).Error
}

func (r *CampaignRepository) List(ctx context.Context, filter campaign.ListFilter) ([]*campaignmodel.Campaign, error) {
	q := r.db.WithContext(ctx).Model(&campaignmodel.Campaign{})

	switch filter.Status {
	case "", "all":
		q = q.Where("status = ?", campaign.StatusActive)
	case campaign.StatusAny:
	default:
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.IncludePrivate {
		q = q.Where("visibility = ?", campaign.VisibilityPublic)
	}
	if filter.CauseType != "" && filter.CauseType != "all" {
		q = q.Where("cause_type = ?", filter.CauseType)
	}
	if filter.OrganizerID != "" {
		q = q.Where("organizer_id = ?", filter.OrganizerID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(COALESCE(charity_name, '')) LIKE ?)", like, like, like)
	}

	var rows []*campaignmodel.Campaign
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// SetRaisedAmount overwrites the denormalised raised total.
func (r *CampaignRepository) SetRaisedAmount(ctx context.Context, id string, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&campaignmodel.Campaign{}).
		Where("id = ?", id).
		Update("raised_amount", amount).Error
}
