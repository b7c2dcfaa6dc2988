package photo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	photomodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/photo"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *photomodel.Photo) error
	GetByID(ctx context.Context, id string) (*photomodel.Photo, error)
	ListByCampaign(ctx context.Context, campaignID, moderationStatus string) ([]*photomodel.Photo, error)
	ListByIDs(ctx context.Context, campaignID string, ids []string) ([]*photomodel.Photo, error)
	UpdateModeration(ctx context.Context, id, status string) error
}

type CampaignReader interface {
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
}

type Service struct {
	repo      RepositoryAPI
	campaigns CampaignReader
	storage   Storage
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, campaigns CampaignReader, storage Storage, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// Upload stores the object and records it as pending moderation.
func (s *Service) Upload(ctx context.Context, campaignID string, in UploadInput) (*Photo, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	c, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(viewer.ID) {
		return nil, ErrNotUploader
	}
	if in.Body == nil {
		return nil, ErrMissingFile
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, ErrNotAnImage
	}

	key := fmt.Sprintf("campaigns/%s/%s%s", campaignID, uuid.NewString(), in.extension())
	url, err := s.storage.Put(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		s.logger.Error("failed to store photo", "error", err, "campaign_id", campaignID, "key", key)
		return nil, errors.NewUpstreamError("failed to store photo", errors.ErrCodeStorageFailed, err)
	}

	row := &photomodel.Photo{
		CampaignID:       campaignID,
		URL:              url,
		StorageKey:       key,
		Filename:         in.Filename,
		FileSize:         in.Size,
		Width:            in.Width,
		Height:           in.Height,
		UploadedBy:       viewer.ID,
		ModerationStatus: ModerationPending,
		Tags:             datatypes.NewJSONSlice(cleanTags(in.Tags)),
	}
	if bib := strings.TrimSpace(in.BibNumber); bib != "" {
		row.BibNumber = &bib
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to record photo", "error", err, "campaign_id", campaignID, "key", key)
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned photo object", "error", delErr, "key", key)
		}
		return nil, errors.NewUpstreamError("failed to record photo", errors.ErrCodeDatastoreFailed, err)
	}

	s.logger.Info("photo uploaded", "photo_id", row.ID, "campaign_id", campaignID, "size", in.Size)
	return FromDataModel(row), nil
}

// Moderate records the organizer's decision on a photo.
func (s *Service) Moderate(ctx context.Context, photoID, status string) (*Photo, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	if status != ModerationApproved && status != ModerationRejected {
		return nil, ErrInvalidDecision
	}
	if !validation.IsUUID(photoID) {
		return nil, errors.ErrPhotoNotFound
	}

	row, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load photo", errors.ErrCodeDatastoreFailed, err)
	}
	if row == nil {
		return nil, errors.ErrPhotoNotFound
	}

	c, err := s.loadCampaign(ctx, row.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(viewer.ID) {
		return nil, errors.ErrNotCampaignOwner
	}

	if row.ModerationStatus != status {
		if err := s.repo.UpdateModeration(ctx, photoID, status); err != nil {
			s.logger.Error("failed to moderate photo", "error", err, "photo_id", photoID)
			return nil, errors.NewUpstreamError("failed to moderate photo", errors.ErrCodeDatastoreFailed, err)
		}
		row.ModerationStatus = status
		s.invalidate(ctx, row.CampaignID)
		s.logger.Info("photo moderated", "photo_id", photoID, "campaign_id", row.CampaignID, "status", status)
	}

	return FromDataModel(row), nil
}

// ListApproved is the public gallery of a campaign.
func (s *Service) ListApproved(ctx context.Context, campaignID string) ([]*Photo, error) {
	if _, err := s.loadCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.list(ctx, campaignID, ModerationApproved)
}

// ListForModeration returns every photo of the campaign to its organizer.
func (s *Service) ListForModeration(ctx context.Context, campaignID string) ([]*Photo, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	c, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsParticipant(viewer.ID) {
		return nil, errors.ErrNotCampaignOwner
	}
	return s.list(ctx, campaignID, "")
}

// ApprovedPhotos returns the purchasable photos of a campaign among ids.
// Unknown, foreign and unapproved ids are simply absent from the result.
func (s *Service) ApprovedPhotos(ctx context.Context, campaignID string, ids []string) ([]*Photo, error) {
	if len(ids) == 0 {
		return []*Photo{}, nil
	}
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validation.IsUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*Photo{}, nil
	}

	rows, err := s.repo.ListByIDs(ctx, campaignID, valid)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load photos", errors.ErrCodeDatastoreFailed, err)
	}
	out := make([]*Photo, 0, len(rows))
	for _, row := range rows {
		p := FromDataModel(row)
		if p.IsPurchasable() && p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, campaignID, status string) ([]*Photo, error) {
	rows, err := s.repo.ListByCampaign(ctx, campaignID, status)
	if err != nil {
		s.logger.Error("failed to list photos", "error", err, "campaign_id", campaignID)
		return nil, errors.NewUpstreamError("failed to list photos", errors.ErrCodeDatastoreFailed, err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) loadCampaign(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	if !validation.IsUUID(campaignID) {
		return nil, errors.ErrCampaignNotFound
	}
	row, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if row == nil {
		return nil, errors.ErrCampaignNotFound
	}
	return campaign.FromDataModel(row), nil
}

func (s *Service) invalidate(ctx context.Context, campaignID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewCampaignInvalidatedEvent(campaignID, "photos")); err != nil {
		s.logger.Warn("failed to publish campaign invalidation", "error", err, "campaign_id", campaignID)
	}
}
