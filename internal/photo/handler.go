package photo

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Upload(ctx context.Context, campaignID string, in UploadInput) (*Photo, error)
	Moderate(ctx context.Context, photoID, status string) (*Photo, error)
	ListApproved(ctx context.Context, campaignID string) ([]*Photo, error)
	ListForModeration(ctx context.Context, campaignID string) ([]*Photo, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	maxUploadBytes int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 15
	}
	return &Handler{
		BaseHandler:    baseHandler,
		Service:        service,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// ListPhotos handles GET /api/v1/campaigns/{id}/photos
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.Service.ListApproved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PhotosResponse{Photos: photos})
}

// ListModerationQueue handles GET /api/v1/campaigns/{id}/photos/moderation
func (h *Handler) ListModerationQueue(w http.ResponseWriter, r *http.Request) {
	photos, err := h.Service.ListForModeration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PhotosResponse{Photos: photos})
}

// UploadPhoto handles POST /api/v1/campaigns/{id}/photos as multipart form
// data with a "file" part.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.HandleError(w, errors.NewInvalidRequestError("invalid upload", errors.ErrCodeInvalidPhoto).WithCause(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleError(w, ErrMissingFile)
		return
	}
	defer file.Close()

	in := UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Width:       formInt(r, "width"),
		Height:      formInt(r, "height"),
		Tags:        strings.Split(r.FormValue("tags"), ","),
		BibNumber:   r.FormValue("bib_number"),
	}

	p, err := h.Service.Upload(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

// ModeratePhoto handles PATCH /api/v1/photos/{photoId}/moderation
func (h *Handler) ModeratePhoto(w http.ResponseWriter, r *http.Request) {
	var req ModerationRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	p, err := h.Service.Moderate(r.Context(), chi.URLParam(r, "photoId"), req.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.FormValue(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
