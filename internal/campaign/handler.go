package campaign

import (
	"context"
	"net/http"

	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]CampaignResponse, error)
	Mine(ctx context.Context) ([]CampaignResponse, error)
	Get(ctx context.Context, id string) (*CampaignResponse, error)
	Create(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error)
	Update(ctx context.Context, id string, req UpdateCampaignRequest) (*CampaignResponse, error)
	Delete(ctx context.Context, id string) error
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

// ListCampaigns handles GET /api/v1/campaigns
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	causeType := q.Get("cause_type")
	if causeType == "" {
		causeType = q.Get("category")
	}
	filter := ListFilter{
		Status:      q.Get("status"),
		CauseType:   causeType,
		Search:      q.Get("search"),
		OrganizerID: q.Get("organizer"),
	}
	if filter.Status == StatusAny {
		filter.Status = ""
	}

	campaigns, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CampaignsResponse{Campaigns: campaigns})
}

// MyCampaigns handles GET /api/v1/campaigns/mine
func (h *Handler) MyCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Service.Mine(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CampaignsResponse{Campaigns: campaigns})
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req UpdateCampaignRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
