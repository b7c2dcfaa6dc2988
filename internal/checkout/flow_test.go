package checkout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/checkout"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Flow", func() {
	var (
		campaign     *campaignmodel.Campaign
		photographer string
		photoA       string
		photoB       string
		pending      string
		issuer       *MockIssuer
		publisher    *RecordingPublisher
		flow         *checkout.Flow
		ctx          context.Context
	)

	BeforeEach(func() {
		photographer = uuid.NewString()
		campaign = &campaignmodel.Campaign{
			ID:             uuid.NewString(),
			Title:          "Harbour 10K",
			OrganizerID:    uuid.NewString(),
			PhotographerID: &photographer,
			Status:         campaignmodel.StatusActive,
			PhotoPrice:     7.5,
		}
		photoA, photoB, pending = uuid.NewString(), uuid.NewString(), uuid.NewString()

		issuer = &MockIssuer{}
		publisher = &RecordingPublisher{}
		flow = checkout.NewFlow(
			&MockCampaigns{campaigns: map[string]*campaignmodel.Campaign{campaign.ID: campaign}},
			&MockPhotos{approved: map[string]string{photoA: campaign.ID, photoB: campaign.ID}},
			issuer,
			publisher,
			checkout.Keys{PublishableKey: "pk_test_123", AnonKey: "anon"},
			quietLogger(),
		)
		ctx = context.Background()
	})

	validStart := func() checkout.StartRequest {
		return checkout.StartRequest{
			DonorName:        "Ada Runner",
			DonorEmail:       "ada@example.com",
			PhotoIDs:         []string{photoA, photoB},
			AdditionalAmount: 10,
		}
	}

	Describe("Quote", func() {
		It("prices photos at the campaign price plus the additional amount", func() {
			q, err := flow.Quote(ctx, campaign.ID, checkout.QuoteRequest{
				PhotoIDs:         []string{photoA, photoB, photoA},
				AdditionalAmount: 2.25,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(q.PhotoCount).To(Equal(2))
			Expect(q.PhotosTotal).To(Equal(15.0))
			Expect(q.Total).To(Equal(17.25))
			Expect(q.DisplayTotal).To(ContainSubstring("17.25"))
		})

		It("falls back to the default photo price", func() {
			campaign.PhotoPrice = 0
			q, err := flow.Quote(ctx, campaign.ID, checkout.QuoteRequest{PhotoIDs: []string{photoA}})
			Expect(err).NotTo(HaveOccurred())
			Expect(q.Total).To(Equal(5.0))
		})

		It("rejects photos that are not approved", func() {
			_, err := flow.Quote(ctx, campaign.ID, checkout.QuoteRequest{PhotoIDs: []string{photoA, pending}})
			Expect(err).To(MatchError(checkout.ErrPhotoUnavailable))
		})

		It("rejects a negative additional amount", func() {
			_, err := flow.Quote(ctx, campaign.ID, checkout.QuoteRequest{AdditionalAmount: -1})
			Expect(errors.IsType(err, errors.ErrorTypeInvalidRequest)).To(BeTrue())
		})

		It("returns not found for an unknown campaign", func() {
			_, err := flow.Quote(ctx, uuid.NewString(), checkout.QuoteRequest{})
			Expect(err).To(MatchError(errors.ErrCampaignNotFound))
		})
	})

	Describe("Start", func() {
		It("creates a payment intent for the computed total", func() {
			session, err := flow.Start(ctx, campaign.ID, validStart())

			Expect(err).NotTo(HaveOccurred())
			Expect(session.ClientSecret).To(Equal("pi_test_secret_abc"))
			Expect(session.PublishableKey).To(Equal("pk_test_123"))
			Expect(session.Total).To(Equal(25.0))

			Expect(issuer.requests).To(HaveLen(1))
			req := issuer.requests[0]
			Expect(req.CampaignID).To(Equal(campaign.ID))
			Expect(req.Amount).To(Equal(25.0))
			Expect(req.DonorEmail).To(Equal("ada@example.com"))
			Expect(req.PhotoIDs).To(ConsistOf(photoA, photoB))
		})

		DescribeTable("blocks campaign participants regardless of the selection",
			func(who func() string, req checkout.StartRequest) {
				viewerCtx := errors.ContextWithViewer(ctx, &errors.Viewer{ID: who()})

				_, err := flow.Start(viewerCtx, campaign.ID, req)

				Expect(err).To(MatchError(errors.ErrSelfDonation))
				Expect(issuer.Calls()).To(BeZero())
			},
			Entry("organizer with photos", func() string { return campaign.OrganizerID }, checkout.StartRequest{DonorName: "Org", DonorEmail: "org@example.com", PhotoIDs: []string{uuid.NewString()}}),
			Entry("organizer with nothing", func() string { return campaign.OrganizerID }, checkout.StartRequest{}),
			Entry("photographer", func() string { return photographer }, checkout.StartRequest{AdditionalAmount: 500}),
		)

		It("lets other signed in users donate", func() {
			viewerCtx := errors.ContextWithViewer(ctx, &errors.Viewer{ID: uuid.NewString()})
			_, err := flow.Start(viewerCtx, campaign.ID, validStart())
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires at least one photo", func() {
			req := validStart()
			req.PhotoIDs = nil

			_, err := flow.Start(ctx, campaign.ID, req)

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("Please select at least one photo"))
			Expect(issuer.Calls()).To(BeZero())
		})

		It("requires the donor name and a valid email", func() {
			req := validStart()
			req.DonorName = "  "
			_, err := flow.Start(ctx, campaign.ID, req)
			Expect(errors.IsType(err, errors.ErrorTypeInvalidRequest)).To(BeTrue())

			req = validStart()
			req.DonorEmail = "not-an-email"
			_, err = flow.Start(ctx, campaign.ID, req)
			Expect(errors.IsType(err, errors.ErrorTypeInvalidRequest)).To(BeTrue())
			Expect(issuer.Calls()).To(BeZero())
		})

		It("refuses inactive campaigns", func() {
			campaign.Status = campaignmodel.StatusPaused
			_, err := flow.Start(ctx, campaign.ID, validStart())
			Expect(err).To(MatchError(errors.ErrCampaignNotActive))
			Expect(issuer.Calls()).To(BeZero())
		})

		It("surfaces issuer failures", func() {
			issuer.err = errors.NewUpstreamError("payment provider rejected the request", errors.ErrCodeProviderFailed, nil)
			_, err := flow.Start(ctx, campaign.ID, validStart())
			Expect(errors.IsType(err, errors.ErrorTypeUpstreamFailure)).To(BeTrue())
		})
	})

	Describe("Complete", func() {
		It("invalidates the campaign views", func() {
			resp, err := flow.Complete(ctx, campaign.ID, checkout.CompleteRequest{PaymentIntentID: "pi_test"})

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.PaymentIntentID).To(Equal("pi_test"))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeCampaignInvalidated}))
		})

		It("needs the payment intent id", func() {
			_, err := flow.Complete(ctx, campaign.ID, checkout.CompleteRequest{})
			Expect(err).To(MatchError(checkout.ErrMissingIntent))
			Expect(publisher.Types()).To(BeEmpty())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			handler := checkout.NewHandler(transport.NewBaseHandler(quietLogger()), flow)
			router = chi.NewRouter()
			router.Get("/api/v1/checkout/config", handler.GetConfig)
			router.Post("/api/v1/campaigns/{id}/checkout", handler.StartCheckout)
			router.Post("/api/v1/campaigns/{id}/checkout/quote", handler.QuoteCheckout)
		})

		It("hands out the public keys", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/config", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"publishable_key":"pk_test_123","anon_key":"anon"}`))
		})

		It("starts a checkout", func() {
			body := `{"donorName":"Ada","donorEmail":"ada@example.com","photoIds":["` + photoA + `"]}`
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/checkout", strings.NewReader(body))

			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"client_secret":"pi_test_secret_abc"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"total":7.5`))
		})

		It("rejects malformed bodies", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/checkout/quote", strings.NewReader("{"))

			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
