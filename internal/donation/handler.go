package donation

import (
	"context"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]DonationResponse, error)
	Recent(ctx context.Context, limit int) ([]DonationResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListCampaignDonations handles GET /api/v1/campaigns/{id}/donations
func (h *Handler) ListCampaignDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.Service.ListByCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DonationsResponse{Donations: donations})
}

// RecentDonations handles GET /api/v1/donations/recent
func (h *Handler) RecentDonations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleError(w, errors.NewValidationFieldError("limit", "limit must be a number", errors.ErrCodeValidationFailed))
			return
		}
		limit = n
	}

	donations, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DonationsResponse{Donations: donations})
}
