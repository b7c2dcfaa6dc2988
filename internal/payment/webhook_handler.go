package payment

import (
	"context"
	"io"
	"net/http"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
)

// MaxWebhookBody caps provider payloads; real events are a few KiB.
const MaxWebhookBody = 64 << 10

const SignatureHeader = "Stripe-Signature"

type RelayAPI interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (Ack, error)
}

type WebhookHandler struct {
	*transport.BaseHandler
	Relay RelayAPI
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, relay RelayAPI) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		Relay:       relay,
	}
}

// HandleStripeWebhook handles POST /stripe-webhook
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBody))
	if err != nil {
		h.Logger.Warn("webhook body rejected", "error", err)
		h.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	ack, err := h.Relay.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeSignatureInvalid) {
			h.WriteErrorMessage(w, http.StatusBadRequest, "Webhook signature verification failed")
			return
		}
		// not acknowledged: the provider will redeliver
		h.Logger.Error("webhook processing failed", "error", err)
		h.WriteErrorMessage(w, http.StatusInternalServerError, "webhook processing failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, ack)
}
