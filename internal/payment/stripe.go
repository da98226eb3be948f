package payment

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

var _ Client = (*Stripe)(nil)

// Stripe implements Client against the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe builds a Stripe client with the given secret key.
func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api}
}

// CreateIntent creates a Stripe PaymentIntent with automatic payment methods
// enabled and returns its client secret. Card data never passes through this
// process.
func (s *Stripe) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (string, error) {
	if amountMinorUnits <= 0 {
		return "", ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		zctx.From(ctx).Error("Payment intent creation failed",
			zap.Int64("amount_minor_units", amountMinorUnits), zap.Error(err))
		return "", &ProcessorError{Err: err}
	}

	zctx.From(ctx).Info("Payment intent created",
		zap.String("intent", pi.ID), zap.Int64("amount_minor_units", amountMinorUnits))
	return pi.ClientSecret, nil
}
