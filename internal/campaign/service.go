package campaign

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/common/validation"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
)

// DefaultViewTTL bounds how stale a cached campaign view can get when no
// invalidation arrives.
const DefaultViewTTL = time.Minute

type RepositoryAPI interface {
	Create(ctx context.Context, c *campaignmodel.Campaign) error
	GetByID(ctx context.Context, id string) (*campaignmodel.Campaign, error)
	Update(ctx context.Context, c *campaignmodel.Campaign) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*campaignmodel.Campaign, error)
}

// StatsReader serves the aggregate read model.
type StatsReader interface {
	StatsFor(ctx context.Context, campaignIDs []string) (map[string]Stats, error)
}

type Service struct {
	repo      RepositoryAPI
	stats     StatsReader
	publisher events.Publisher
	cache     *viewCache
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, stats StatsReader, publisher events.Publisher, viewTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		stats:     stats,
		publisher: publisher,
		cache:     newViewCache(viewTTL),
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]CampaignResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list campaigns", "error", err)
		return nil, errors.NewUpstreamError("failed to list campaigns", errors.ErrCodeDatastoreFailed, err)
	}
	return s.withStats(ctx, rows)
}

// Mine lists every campaign the viewer organizes, whatever its status.
func (s *Service) Mine(ctx context.Context) ([]CampaignResponse, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	return s.List(ctx, ListFilter{Status: StatusAny, OrganizerID: viewer.ID, IncludePrivate: true})
}

// Get returns one campaign with its aggregates. Private campaigns are only
// visible to the organizer and photographer.
func (s *Service) Get(ctx context.Context, id string) (*CampaignResponse, error) {
	if !validation.IsUUID(id) {
		return nil, errors.ErrCampaignNotFound
	}

	view, ok := s.cache.get(id)
	if !ok {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to load campaign", "error", err, "campaign_id", id)
			return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
		}
		if row == nil {
			return nil, errors.ErrCampaignNotFound
		}
		views, err := s.withStats(ctx, []*campaignmodel.Campaign{row})
		if err != nil {
			return nil, err
		}
		view = views[0]
		s.cache.put(view)
	}

	if !view.IsPublic() {
		viewer, _ := errors.ViewerFromContext(ctx)
		if viewer == nil || !view.IsParticipant(viewer.ID) {
			return nil, errors.ErrCampaignNotFound
		}
	}
	return &view, nil
}

func (s *Service) Create(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.toCampaign(viewer.ID)
	if err := ValidateFeeSplit(c.PlatformFee, c.PhotographerFee, c.CharityFee); err != nil {
		return nil, err
	}

	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create campaign", "error", err, "organizer_id", viewer.ID)
		return nil, errors.NewUpstreamError("failed to create campaign", errors.ErrCodeDatastoreFailed, err)
	}

	s.logger.Info("campaign created", "campaign_id", row.ID, "organizer_id", viewer.ID, "status", row.Status)

	resp := NewCampaignResponse(FromDataModel(row), Stats{})
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateCampaignRequest) (*CampaignResponse, error) {
	c, err := s.ownedCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.apply(c)
	if req.Status != nil {
		if !c.CanTransitionTo(*req.Status) {
			s.logger.Warn("rejected campaign status change", "campaign_id", id, "from", c.Status, "to", *req.Status)
			return nil, ErrInvalidTransition
		}
		c.Status = *req.Status
	}
	if err := ValidateFeeSplit(c.PlatformFee, c.PhotographerFee, c.CharityFee); err != nil {
		return nil, err
	}

	row := ToDataModel(c)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update campaign", "error", err, "campaign_id", id)
		return nil, errors.NewUpstreamError("failed to update campaign", errors.ErrCodeDatastoreFailed, err)
	}
	s.invalidate(ctx, id, "updated")

	views, err := s.withStats(ctx, []*campaignmodel.Campaign{row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a campaign that never received a donation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.ownedCampaign(ctx, id); err != nil {
		return err
	}

	stats, err := s.stats.StatsFor(ctx, []string{id})
	if err != nil {
		return errors.NewUpstreamError("failed to load campaign totals", errors.ErrCodeDatastoreFailed, err)
	}
	if stats[id].DonationCount > 0 {
		return ErrCampaignHasFunds
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete campaign", "error", err, "campaign_id", id)
		return errors.NewUpstreamError("failed to delete campaign", errors.ErrCodeDatastoreFailed, err)
	}
	s.invalidate(ctx, id, "deleted")
	s.logger.Info("campaign deleted", "campaign_id", id)
	return nil
}

// OnCampaignInvalidated is the event bus handler that drops cached views.
func (s *Service) OnCampaignInvalidated(ctx context.Context, event events.Event) error {
	id := invalidatedCampaignID(event)
	if id == "" {
		return nil
	}
	s.cache.drop(id)
	s.logger.Debug("campaign view dropped", "campaign_id", id)
	return nil
}

func (s *Service) ownedCampaign(ctx context.Context, id string) (*Campaign, error) {
	viewer, ok := errors.ViewerFromContext(ctx)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	if !validation.IsUUID(id) {
		return nil, errors.ErrCampaignNotFound
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewUpstreamError("failed to load campaign", errors.ErrCodeDatastoreFailed, err)
	}
	if row == nil {
		return nil, errors.ErrCampaignNotFound
	}
	c := FromDataModel(row)
	if !c.IsOwnedBy(viewer.ID) {
		s.logger.Warn("campaign change by non-organizer", "campaign_id", id, "viewer_id", viewer.ID)
		return nil, errors.ErrNotCampaignOwner
	}
	return c, nil
}

func (s *Service) withStats(ctx context.Context, rows []*campaignmodel.Campaign) ([]CampaignResponse, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	stats := map[string]Stats{}
	if len(ids) > 0 {
		var err error
		stats, err = s.stats.StatsFor(ctx, ids)
		if err != nil {
			s.logger.Error("failed to load campaign totals", "error", err)
			return nil, errors.NewUpstreamError("failed to load campaign totals", errors.ErrCodeDatastoreFailed, err)
		}
	}

	out := make([]CampaignResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewCampaignResponse(FromDataModel(row), stats[row.ID]))
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, campaignID, reason string) {
	s.cache.drop(campaignID)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewCampaignInvalidatedEvent(campaignID, reason)); err != nil {
		s.logger.Warn("failed to publish campaign invalidation", "error", err, "campaign_id", campaignID)
	}
}

func invalidatedCampaignID(event events.Event) string {
	if e, ok := event.(*events.CampaignInvalidatedEvent); ok {
		return e.CampaignID
	}
	if data, ok := event.Payload().(map[string]interface{}); ok {
		id, _ := data["campaign_id"].(string)
		return id
	}
	return ""
}
