package stripe

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/photo-fundraising/internal/payment"
	"github.com/stripe/stripe-go/v81/webhook"
)

type Verifier struct {
	secret string
}

func NewVerifier(webhookSecret string) *Verifier {
	return &Verifier{secret: webhookSecret}
}

// VerifyEvent checks the Stripe-Signature header before anything in the
// payload is trusted. Payment intent events carry the decoded intent.
func (v *Verifier) VerifyEvent(payload []byte, signature string) (*payment.ProviderEvent, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, webhook.ErrNotSigned
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &payment.ProviderEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(out.Type, "payment_intent.") && event.Data != nil {
		intent, err := decodeIntent(event.Data.Raw)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}
		out.Intent = intent
	}

	return out, nil
}
