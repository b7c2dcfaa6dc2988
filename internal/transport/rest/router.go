package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/photo-fundraising/api"
	"github.com/frahmantamala/photo-fundraising/internal/auth"
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/checkout"
	"github.com/frahmantamala/photo-fundraising/internal/comment"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	"github.com/frahmantamala/photo-fundraising/internal/photo"
	"github.com/frahmantamala/photo-fundraising/internal/transport/middleware"
	"github.com/frahmantamala/photo-fundraising/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. A nil handler leaves its
// routes unregistered, except Docs which falls back to the local document.
type Handlers struct {
	Docs http.Handler

	Auth     *auth.Middleware
	Payment  *payment.Handler
	Webhook  *payment.WebhookHandler
	Campaign *campaign.Handler
	Photo    *photo.Handler
	Donation *donation.Handler
	Checkout *checkout.Handler
	Comment  *comment.Handler

	HealthChecks []Check
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, h.HealthChecks...)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	docs := h.Docs
	if docs == nil {
		docs = api.Handler("")
	}
	router.Method(http.MethodGet, "/openapi.yml", docs)
	router.Handle("/swagger/*", swagger.Handler())

	// the paths the hosted checkout and the Stripe dashboard were configured with
	if h.Payment != nil {
		router.Post("/create-payment-intent", h.Payment.CreatePaymentIntent)
	}
	if h.Webhook != nil {
		router.Post("/stripe-webhook", h.Webhook.HandleStripeWebhook)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Webhook != nil {
			r.Post("/payments/webhook", h.Webhook.HandleStripeWebhook)
		}
		if h.Checkout != nil {
			r.Get("/checkout/config", h.Checkout.GetConfig)
		}
		if h.Donation != nil {
			r.Get("/donations/recent", h.Donation.RecentDonations)
		}
		if h.Auth == nil {
			return
		}

		// anonymous callers are welcome, a signed in viewer sees more
		r.Group(func(or chi.Router) {
			or.Use(h.Auth.OptionalViewer)
			or.Use(middleware.ViewerContext)

			if h.Campaign != nil {
				or.Get("/campaigns", h.Campaign.ListCampaigns)
				or.Get("/campaigns/{id}", h.Campaign.GetCampaign)
			}
			if h.Photo != nil {
				or.Get("/campaigns/{id}/photos", h.Photo.ListPhotos)
			}
			if h.Donation != nil {
				or.Get("/campaigns/{id}/donations", h.Donation.ListCampaignDonations)
			}
			if h.Comment != nil {
				or.Get("/campaigns/{id}/comments", h.Comment.ListComments)
			}
			if h.Checkout != nil {
				or.Post("/campaigns/{id}/checkout/quote", h.Checkout.QuoteCheckout)
				or.Post("/campaigns/{id}/checkout", h.Checkout.StartCheckout)
				or.Post("/campaigns/{id}/checkout/complete", h.Checkout.CompleteCheckout)
			}
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.RequireViewer)
			pr.Use(middleware.ViewerContext)

			if h.Campaign != nil {
				pr.Get("/campaigns/mine", h.Campaign.MyCampaigns)
				pr.Post("/campaigns", h.Campaign.CreateCampaign)
				pr.Patch("/campaigns/{id}", h.Campaign.UpdateCampaign)
				pr.Delete("/campaigns/{id}", h.Campaign.DeleteCampaign)
			}
			if h.Photo != nil {
				pr.Post("/campaigns/{id}/photos", h.Photo.UploadPhoto)
				pr.Get("/campaigns/{id}/photos/moderation", h.Photo.ListModerationQueue)
				pr.Patch("/photos/{photoId}/moderation", h.Photo.ModeratePhoto)
			}
			if h.Comment != nil {
				pr.Post("/campaigns/{id}/comments", h.Comment.CreateComment)
			}
		})
	})
}
