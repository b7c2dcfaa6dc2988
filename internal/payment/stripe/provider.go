// Package stripe adapts stripe-go to the payment package's provider and
// webhook verifier interfaces.
package stripe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/frahmantamala/photo-fundraising/internal/payment"
	stripeapi "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type Provider struct {
	sc *client.API
}

// NewProvider builds a provider on the default Stripe backends.
func NewProvider(secretKey string) *Provider {
	return NewProviderWithBackends(secretKey, nil)
}

// NewProviderWithBackends lets callers point the client at another API host.
func NewProviderWithBackends(secretKey string, backends *stripeapi.Backends) *Provider {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &Provider{sc: sc}
}

func (p *Provider) CreateIntent(ctx context.Context, in payment.CreateIntentParams) (*payment.ProviderIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(in.AmountMinor),
		Currency: stripeapi.String(in.Currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	if in.Description != "" {
		params.Description = stripeapi.String(in.Description)
	}
	if in.ReceiptEmail != "" {
		params.ReceiptEmail = stripeapi.String(in.ReceiptEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, describe("create payment intent", err)
	}
	return toProviderIntent(pi), nil
}

func (p *Provider) GetIntent(ctx context.Context, id string) (*payment.ProviderIntent, error) {
	params := &stripeapi.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, describe("get payment intent", err)
	}
	return toProviderIntent(pi), nil
}

func toProviderIntent(pi *stripeapi.PaymentIntent) *payment.ProviderIntent {
	meta := make(map[string]string, len(pi.Metadata))
	for k, v := range pi.Metadata {
		meta[k] = v
	}
	return &payment.ProviderIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     meta,
	}
}

// describe keeps the Stripe error code and message, which are safe to log.
func describe(op string, err error) error {
	var se *stripeapi.Error
	if stderrors.As(err, &se) {
		return fmt.Errorf("%s: stripe %s (%s): %s: %w", op, se.Type, se.Code, se.Msg, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func decodeIntent(raw json.RawMessage) (*payment.ProviderIntent, error) {
	var pi stripeapi.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	return toProviderIntent(&pi), nil
}
