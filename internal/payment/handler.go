package payment

import (
	"context"
	"net/http"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
)

type IssuerAPI interface {
	CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*IntentResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Issuer IssuerAPI
}

func NewHandler(baseHandler *transport.BaseHandler, issuer IssuerAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Issuer:      issuer,
	}
}

// CreatePaymentIntent handles POST /create-payment-intent
//
// Every caller-side failure is a 400 with a flat {"error": "..."} body.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentIntentRequest
	if appErr := h.DecodeJSON(w, r, &req); appErr != nil {
		h.WriteErrorMessage(w, http.StatusBadRequest, appErr.Message)
		return
	}

	result, err := h.Issuer.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		status, message := issuerFailure(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("CreatePaymentIntent: failed", "error", err)
		}
		h.WriteErrorMessage(w, status, message)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func issuerFailure(err error) (int, string) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		return http.StatusInternalServerError, "internal server error"
	}
	switch appErr.Type {
	case errors.ErrorTypeInvalidRequest, errors.ErrorTypeNotFound, errors.ErrorTypeConflict:
		if appErr.Code == errors.ErrCodeValidationFailed {
			return http.StatusBadRequest, appErr.GetDetailedMessage()
		}
		return http.StatusBadRequest, appErr.Message
	case errors.ErrorTypeUpstreamFailure:
		return http.StatusBadGateway, appErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
