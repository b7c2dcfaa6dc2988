package checkout

import (
	"context"
	"net/http"

	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
)

type FlowAPI interface {
	Config() ClientConfig
	Quote(ctx context.Context, campaignID string, req QuoteRequest) (*Quote, error)
	Start(ctx context.Context, campaignID string, req StartRequest) (*Session, error)
	Complete(ctx context.Context, campaignID string, req CompleteRequest) (*CompleteResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Flow FlowAPI
}

func NewHandler(baseHandler *transport.BaseHandler, flow FlowAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Flow:        flow,
	}
}

// GetConfig handles GET /api/v1/checkout/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Flow.Config())
}

// QuoteCheckout handles POST /api/v1/campaigns/{id}/checkout/quote
func (h *Handler) QuoteCheckout(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	q, err := h.Flow.Quote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, q)
}

// StartCheckout handles POST /api/v1/campaigns/{id}/checkout
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	session, err := h.Flow.Start(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, session)
}

// CompleteCheckout handles POST /api/v1/campaigns/{id}/checkout/complete
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	resp, err := h.Flow.Complete(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
