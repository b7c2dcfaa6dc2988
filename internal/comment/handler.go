package comment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]CommentResponse, error)
	Create(ctx context.Context, campaignID string, req CreateCommentRequest) (*CommentResponse, error)
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

// ListComments handles GET /api/v1/campaigns/{id}/comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Service.ListByCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CommentsResponse{Comments: comments})
}

// CreateComment handles POST /api/v1/campaigns/{id}/comments
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	c, err := h.Service.Create(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}
