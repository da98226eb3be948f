package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkpi/kefir-shop/internal/checkout"
	"github.com/dkpi/kefir-shop/internal/mail"
	"github.com/dkpi/kefir-shop/internal/payment"
)

// NotificationError indicates that at least one of the two order emails
// failed. The whole submission is reported as failed; the cart is left
// intact so the customer can retry.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return "order notification failed: " + e.Err.Error()
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// ValidationPolicy controls how strictly an order is re-validated server
// side before dispatch. The strictness differs by payment method: cash
// orders enforce the full checks, card orders only what is needed to not
// corrupt the notification emails (the address can still be collected
// later in the payment widget).
type ValidationPolicy struct {
	RequireCompleteAddress bool
}

// DefaultPolicies returns the per-method validation policies.
func DefaultPolicies() map[checkout.PaymentMethod]ValidationPolicy {
	return map[checkout.PaymentMethod]ValidationPolicy{
		checkout.PaymentCash: {RequireCompleteAddress: true},
		checkout.PaymentCard: {RequireCompleteAddress: false},
	}
}

// Dispatcher finalizes orders: server-side re-validation, payment session
// creation for card orders, and the two-way notification fan-out. All
// collaborators are injected at construction.
type Dispatcher struct {
	payments   payment.Client
	mailer     mail.Sender
	adminEmail string
	policies   map[checkout.PaymentMethod]ValidationPolicy
}

// NewDispatcher constructs a Dispatcher. adminEmail receives the
// administrator copy of every order.
func NewDispatcher(payments payment.Client, mailer mail.Sender, adminEmail string) *Dispatcher {
	return &Dispatcher{
		payments:   payments,
		mailer:     mailer,
		adminEmail: adminEmail,
		policies:   DefaultPolicies(),
	}
}

// Validate re-checks an order against the policy for its payment method.
// Critical checks (non-empty lines, email shape) always block; address
// completeness blocks only when the policy says so.
func (d *Dispatcher) Validate(o *Order) error {
	if len(o.Lines) == 0 {
		return checkout.ErrEmptyCart
	}
	if !checkout.ValidEmail(o.Contact.Email) {
		return checkout.ErrInvalidEmail
	}

	policy := d.policies[o.PaymentMethod]
	if o.DeliveryOption == checkout.DeliveryHome && policy.RequireCompleteAddress {
		if err := checkout.ValidateAddress(o.Address); err != nil {
			return err
		}
	}
	return nil
}

// SubmitCashOrder validates and finalizes a pay-on-delivery order, then
// sends both notifications. Either email failing fails the submission.
func (d *Dispatcher) SubmitCashOrder(ctx context.Context, o *Order) error {
	if err := d.Validate(o); err != nil {
		return err
	}

	if err := d.notify(ctx, o); err != nil {
		return err
	}

	zctx.From(ctx).Info("Cash order accepted",
		zap.String("order", o.ID), zap.String("total", o.Total.StringFixed(2)))
	return nil
}

// CreatePaymentSession asks the processor for a payment session covering the
// order total. The amount must be a positive integer of minor units; the
// returned client secret is handed to the client-side payment widget.
func (d *Dispatcher) CreatePaymentSession(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (string, error) {
	if amountMinorUnits <= 0 {
		return "", payment.ErrInvalidAmount
	}

	secret, err := d.payments.CreateIntent(ctx, amountMinorUnits, payment.Currency, metadata)
	if err != nil {
		return "", errors.Wrap(err, "create payment session")
	}
	return secret, nil
}

// ConfirmCardPayment finalizes an order whose card payment the processor
// already confirmed. A confirmed payment implies the processor validated
// the amount, so no server-side re-validation runs; only the notification
// path is shared with cash orders.
func (d *Dispatcher) ConfirmCardPayment(ctx context.Context, o *Order) error {
	if err := d.notify(ctx, o); err != nil {
		return err
	}

	zctx.From(ctx).Info("Card order confirmed",
		zap.String("order", o.ID), zap.String("total", o.Total.StringFixed(2)))
	return nil
}

// ResendConfirmation sends the customer confirmation again for an already
// accepted order, after its delivery slot was changed. Only the customer
// copy is resent; the administrator already holds the order.
func (d *Dispatcher) ResendConfirmation(ctx context.Context, o *Order) error {
	if len(o.Lines) == 0 {
		return checkout.ErrEmptyCart
	}
	if !checkout.ValidEmail(o.Contact.Email) {
		return checkout.ErrInvalidEmail
	}

	if err := d.mailer.Send(ctx, o.Contact.Email, customerSubject, CustomerBody(o)); err != nil {
		return &NotificationError{Err: err}
	}

	zctx.From(ctx).Info("Confirmation resent",
		zap.String("order", o.ID), zap.String("slot", o.TimeSlot))
	return nil
}

// notify fans out the administrator and customer emails concurrently and
// requires both to succeed.
func (d *Dispatcher) notify(ctx context.Context, o *Order) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.mailer.Send(ctx, d.adminEmail, adminSubject, AdminBody(o))
	})
	g.Go(func() error {
		return d.mailer.Send(ctx, o.Contact.Email, customerSubject, CustomerBody(o))
	})

	if err := g.Wait(); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}
