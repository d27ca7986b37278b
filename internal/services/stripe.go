package services

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeIntents creates card payment intents through the Stripe API.
type StripeIntents struct {
	client *paymentintent.Client
}

// NewStripeIntents builds a client with network retries disabled. apiURL
// overrides the Stripe endpoint when non-empty.
func NewStripeIntents(secretKey, apiURL string) *StripeIntents {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiURL != "" {
		cfg.URL = stripe.String(apiURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &StripeIntents{client: &paymentintent.Client{B: backend, Key: secretKey}}
}

func (s *StripeIntents) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.client.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
