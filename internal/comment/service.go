package comment

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	commentmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/comment"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *commentmodel.Comment) error
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*commentmodel.Comment, error)
}

// CampaignReader returns (nil, nil) for an unknown campaign.
type CampaignReader interface {
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
}

type Service struct {
	repo      RepositoryAPI
	campaigns CampaignReader
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, campaigns CampaignReader, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		logger:    logger,
	}
}

// ListByCampaign returns the newest comments first.
func (s *Service) ListByCampaign(ctx context.Context, campaignID string) ([]CommentResponse, error) {
	if _, err := s.visibleCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByCampaign(ctx, campaignID, maxCampaignPage)
	if err != nil {
		s.logger.Error("failed to list comments", "error", err, "campaign_id", campaignID)
		return nil, errors.NewUpstreamError("failed to list comments", errors.ErrCodeDatastoreFailed, err)
	}

	out := make([]CommentResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse())
	}
	return out, nil
}

// Create posts a comment as the viewer. Only the organizer may post updates.
func (s *Service) Create(ctx context.Context, campaignID string, req CreateCommentRequest) (*CommentResponse, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.NewUnauthorizedError("You must be logged in to comment.", errors.ErrCodeInvalidToken)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.visibleCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if req.IsUpdate && c.OrganizerID != viewer.ID {
		return nil, errors.ErrNotCampaignOwner
	}

	row := &commentmodel.Comment{
		CampaignID: campaignID,
		UserID:     viewer.ID,
		Content:    req.Content,
		IsUpdate:   req.IsUpdate,
	}
	if name := strings.TrimSpace(viewer.Name); name != "" {
		row.AuthorName = &name
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create comment", "error", err, "campaign_id", campaignID)
		return nil, errors.NewUpstreamError("failed to post comment", errors.ErrCodeDatastoreFailed, err)
	}

	s.logger.Info("comment posted",
		"comment_id", row.ID,
		"campaign_id", campaignID,
		"user_id", viewer.ID,
		"is_update", row.IsUpdate)

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// visibleCampaign hides private campaigns from everyone but their participants.
func (s *Service) visibleCampaign(ctx context.Context, id string) (*campaignmodel.Campaign, error) {
	if !validation.IsUUID(id) {
		return nil, errors.ErrCampaignNotFound
	}
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load campaign", "error", err, "campaign_id", id)
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if c == nil {
		return nil, errors.ErrCampaignNotFound
	}
	if c.Visibility == campaignmodel.VisibilityPrivate {
		viewer, _ := errors.ViewerFromContext(ctx)
		if viewer == nil || !isParticipant(c, viewer.ID) {
			return nil, errors.ErrCampaignNotFound
		}
	}
	return c, nil
}

func isParticipant(c *campaignmodel.Campaign, userID string) bool {
	return c.OrganizerID == userID || (c.PhotographerID != nil && *c.PhotographerID == userID)
}
