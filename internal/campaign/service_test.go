package campaign_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		repo      *MockRepository
		stats     *MockStats
		publisher *RecordingPublisher
		service   *campaign.Service
		organizer *errors.Viewer
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		stats = &MockStats{stats: map[string]campaign.Stats{}}
		publisher = &RecordingPublisher{}
		service = campaign.NewService(repo, stats, publisher, time.Minute, quietLogger())
		organizer = &errors.Viewer{ID: uuid.NewString(), Email: "organizer@example.com"}
		ctx = errors.ContextWithViewer(context.Background(), organizer)
	})

	create := func(status string) *campaign.CampaignResponse {
		c, err := service.Create(ctx, campaign.CreateCampaignRequest{
			Title:       "Harbour 10K",
			Description: "Race photos for the harbour run",
			GoalAmount:  1000,
			Status:      status,
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("Create", func() {
		It("makes the viewer the organizer and applies defaults", func() {
			c := create("")

			Expect(c.OrganizerID).To(Equal(organizer.ID))
			Expect(c.Status).To(Equal(campaign.StatusDraft))
			Expect(c.Visibility).To(Equal(campaign.VisibilityPublic))
			Expect(c.RaisedAmount).To(BeZero())
			Expect(c.PhotoPrice).To(Equal(5.0))
			Expect(c.PlatformFee + c.PhotographerFee + c.CharityFee).To(Equal(100.0))
		})

		It("rejects a fee split that does not add up", func() {
			charity := 50.0
			_, err := service.Create(ctx, campaign.CreateCampaignRequest{
				Title:       "Harbour 10K",
				Description: "Race photos",
				CharityFee:  &charity,
			})
			Expect(err).To(MatchError(campaign.ErrInvalidFeeSplit))
		})

		It("requires a viewer", func() {
			_, err := service.Create(context.Background(), campaign.CreateCampaignRequest{Title: "x", Description: "y"})
			Expect(errors.IsType(err, errors.ErrorTypeUnauthorized)).To(BeTrue())
		})

		It("rejects missing titles", func() {
			_, err := service.Create(ctx, campaign.CreateCampaignRequest{Description: "y"})
			Expect(errors.IsType(err, errors.ErrorTypeInvalidRequest)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("includes aggregates and serves repeats from cache", func() {
			c := create(campaign.StatusActive)
			stats.stats[c.ID] = campaign.Stats{TotalDonations: 30, DonorCount: 2, ApprovedPhotos: 4}

			got, err := service.Get(context.Background(), c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TotalDonations).To(Equal(30.0))
			Expect(got.DonorCount).To(Equal(2))
			Expect(got.PhotoCount).To(Equal(4))

			before := repo.Gets()
			_, err = service.Get(context.Background(), c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Gets()).To(Equal(before))
		})

		It("reloads after a campaign.invalidated event", func() {
			c := create(campaign.StatusActive)
			_, err := service.Get(context.Background(), c.ID)
			Expect(err).NotTo(HaveOccurred())
			before := repo.Gets()

			Expect(service.OnCampaignInvalidated(context.Background(), events.NewCampaignInvalidatedEvent(c.ID, "raised_amount"))).To(Succeed())
			_, err = service.Get(context.Background(), c.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Gets()).To(Equal(before + 1))
		})

		It("hides private campaigns from strangers", func() {
			private := campaign.VisibilityPrivate
			c := create(campaign.StatusActive)
			_, err := service.Update(ctx, c.ID, campaign.UpdateCampaignRequest{Visibility: &private})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(context.Background(), c.ID)
			Expect(err).To(MatchError(errors.ErrCampaignNotFound))

			_, err = service.Get(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns not found for malformed ids without touching the store", func() {
			_, err := service.Get(ctx, "not-a-uuid")
			Expect(err).To(MatchError(errors.ErrCampaignNotFound))
			Expect(repo.Gets()).To(Equal(0))
		})
	})

	Describe("Update", func() {
		It("allows draft to active and publishes an invalidation", func() {
			c := create("")
			active := campaign.StatusActive

			got, err := service.Update(ctx, c.ID, campaign.UpdateCampaignRequest{Status: &active})

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(campaign.StatusActive))
			Expect(publisher.Types()).To(ContainElement(events.EventTypeCampaignInvalidated))
		})

		It("refuses to reopen a completed campaign", func() {
			c := create(campaign.StatusActive)
			completed, active := campaign.StatusCompleted, campaign.StatusActive
			_, err := service.Update(ctx, c.ID, campaign.UpdateCampaignRequest{Status: &completed})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, c.ID, campaign.UpdateCampaignRequest{Status: &active})
			Expect(err).To(MatchError(campaign.ErrInvalidTransition))
		})

		It("is limited to the organizer", func() {
			c := create(campaign.StatusActive)
			stranger := errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: uuid.NewString()})
			title := "Hijacked"

			_, err := service.Update(stranger, c.ID, campaign.UpdateCampaignRequest{Title: &title})

			Expect(err).To(MatchError(errors.ErrNotCampaignOwner))
		})
	})

	Describe("Delete", func() {
		It("removes a campaign without donations", func() {
			c := create("")
			Expect(service.Delete(ctx, c.ID)).To(Succeed())
			_, err := service.Get(ctx, c.ID)
			Expect(err).To(MatchError(errors.ErrCampaignNotFound))
		})

		It("keeps campaigns that have donations", func() {
			c := create(campaign.StatusActive)
			stats.stats[c.ID] = campaign.Stats{TotalDonations: 5, DonationCount: 1, DonorCount: 1}

			Expect(service.Delete(ctx, c.ID)).To(MatchError(campaign.ErrCampaignHasFunds))
		})

		It("keeps campaigns whose donations carry no donor email", func() {
			c := create(campaign.StatusActive)
			stats.stats[c.ID] = campaign.Stats{TotalDonations: 5, DonationCount: 1}

			Expect(service.Delete(ctx, c.ID)).To(MatchError(campaign.ErrCampaignHasFunds))
		})
	})

	Describe("Mine", func() {
		It("lists every campaign of the viewer", func() {
			create("")
			create(campaign.StatusActive)
			other := errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: uuid.NewString()})
			_, err := service.Create(other, campaign.CreateCampaignRequest{Title: "Other", Description: "Other"})
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.Mine(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))
		})
	})
})

var _ = Describe("Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		service := campaign.NewService(repo, &MockStats{stats: map[string]campaign.Stats{}}, nil, time.Minute, quietLogger())
		handler := campaign.NewHandler(transport.NewBaseHandler(quietLogger()), service)

		router = chi.NewRouter()
		router.Get("/api/v1/campaigns", handler.ListCampaigns)
		router.Get("/api/v1/campaigns/{id}", handler.GetCampaign)
		router.Post("/api/v1/campaigns", handler.CreateCampaign)
	})

	It("lists active campaigns", func() {
		Expect(repo.Create(context.Background(), &campaignmodel.Campaign{Title: "Open", Status: campaign.StatusActive, Visibility: campaign.VisibilityPublic})).To(Succeed())
		Expect(repo.Create(context.Background(), &campaignmodel.Campaign{Title: "Draft", Status: campaign.StatusDraft, Visibility: campaign.VisibilityPublic})).To(Succeed())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"title":"Open"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring(`"title":"Draft"`))
	})

	It("returns 404 for an unknown campaign", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/"+uuid.NewString(), nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 401 when creating without a viewer", func() {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"title":"Harbour 10K","description":"Race photos"}`)
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", body))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
