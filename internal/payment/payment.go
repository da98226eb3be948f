// Package payment defines the payment-processor collaborator. The processor
// issues an opaque session handle (client secret) for a pending charge;
// confirming the charge happens in the processor's own client-side widget
// and is out of scope here.
package payment

import (
	"context"

	"github.com/go-faster/errors"
)

// Currency is the only currency the storefront charges in.
const Currency = "eur"

// ErrInvalidAmount is returned for non-positive minor-unit amounts before
// any call reaches the processor.
var ErrInvalidAmount = errors.New("payment amount must be a positive integer of minor units")

// ProcessorError wraps a failure reported by the payment processor. The
// checkout flow recovers by falling back to cash payment.
type ProcessorError struct {
	Err error
}

func (e *ProcessorError) Error() string {
	return "payment processor: " + e.Err.Error()
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// Client creates payment intents with the processor. Implementations are
// constructed once at process start and injected; no ambient globals.
type Client interface {
	// CreateIntent registers a pending charge of amountMinorUnits (cents) in
	// the given currency and returns the processor's opaque client secret.
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (clientSecret string, err error)
}
