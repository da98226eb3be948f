// Package checkout implements the checkout flow as an explicit finite-state
// machine, independent of any rendering layer. The flow sequences cart
// review, delivery selection, payment selection, and submission; every
// forward transition re-validates its inputs, including after
// back-navigation.
package checkout

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// State identifies a step of the checkout flow.
type State string

const (
	StateCartReview        State = "cart_review"
	StateDeliverySelection State = "delivery_selection"
	StatePaymentSelection  State = "payment_selection"
	StateSubmission        State = "submission"
	StateConfirmed         State = "confirmed"
)

// IsTerminal reports whether the flow has completed.
func (s State) IsTerminal() bool {
	return s == StateConfirmed
}

func (s State) String() string {
	return string(s)
}

// DeliveryOption enumerates how the customer receives the order.
type DeliveryOption string

const (
	DeliveryPickupLevallois DeliveryOption = "pickup_levallois"
	DeliveryPickupParis     DeliveryOption = "pickup_paris"
	DeliveryHome            DeliveryOption = "home_delivery"
)

// Valid reports whether the option is one of the known delivery options.
func (o DeliveryOption) Valid() bool {
	switch o {
	case DeliveryPickupLevallois, DeliveryPickupParis, DeliveryHome:
		return true
	}
	return false
}

// Label returns the human-readable delivery option name used in emails.
func (o DeliveryOption) Label() string {
	switch o {
	case DeliveryPickupLevallois:
		return "Retrait à Levallois"
	case DeliveryPickupParis:
		return "Retrait à Paris"
	case DeliveryHome:
		return "Livraison à domicile"
	}
	return string(o)
}

// PaymentMethod enumerates how the customer pays.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// Valid reports whether the method is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

// Label returns the human-readable payment method name used in emails.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Carte bancaire"
	case PaymentCash:
		return "Espèces à la livraison"
	}
	return string(m)
}

// ContactInfo holds the customer's contact details. All fields are required
// (after trimming); Email must match the order email pattern and Phone must
// contain at least MinPhoneDigits digits after normalization.
type ContactInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required"`
	Phone     string `json:"phone"     validate:"required"`
}

// DeliveryAddress holds the home-delivery address. Required only when the
// delivery option is DeliveryHome.
type DeliveryAddress struct {
	Address    string `json:"address"    validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	City       string `json:"city"       validate:"required"`
}

// DeliveryFee is the fixed surcharge applied to home deliveries.
var DeliveryFee = decimal.RequireFromString("10.00")

// Total returns subtotal plus the delivery fee when the option is home
// delivery, and the subtotal unchanged otherwise.
func Total(subtotal decimal.Decimal, option DeliveryOption) decimal.Decimal {
	if option == DeliveryHome {
		return subtotal.Add(DeliveryFee)
	}
	return subtotal
}

// Event is a checkout flow input. Exactly one of the Event types below is
// passed to Flow.Transition.
type Event interface{ event() }

// Begin moves from cart review into delivery selection. Subtotal is the
// current cart subtotal; an empty cart cannot begin checkout.
type Begin struct {
	CartEmpty bool
}

// SetDelivery records contact info and the delivery selection, validating
// everything before advancing to payment selection.
type SetDelivery struct {
	Contact ContactInfo
	Option  DeliveryOption
	Address *DeliveryAddress
	Date    time.Time
	Slot    string
	// Now anchors the delivery date window; the zero value means time.Now().
	Now time.Time
}

// SelectPayment records the payment method choice. The flow stays in payment
// selection; submission is a separate event.
type SelectPayment struct {
	Method PaymentMethod
}

// PaymentFailed reverts the payment method to cash after a payment-processor
// failure, so the flow never dangles on an unusable card selection.
type PaymentFailed struct{}

// Submit moves from payment selection into submission.
type Submit struct{}

// Confirm marks the order as confirmed; the flow becomes terminal.
type Confirm struct{}

// Back navigates one step backwards. Validation is not skipped: moving
// forward again re-runs the full checks for that step.
type Back struct{}

func (Begin) event()         {}
func (SetDelivery) event()   {}
func (SelectPayment) event() {}
func (PaymentFailed) event() {}
func (Submit) event()        {}
func (Confirm) event()       {}
func (Back) event()          {}

// ErrInvalidTransition is returned when an event does not apply to the
// flow's current state.
var ErrInvalidTransition = errors.New("invalid checkout transition")

// Flow is the checkout state for one browsing session. It is not safe for
// concurrent use: each session is assumed to have a single writer, the one
// browser tab driving the checkout. The registry only guards its own map.
type Flow struct {
	state State

	Contact ContactInfo
	Option  DeliveryOption
	Address *DeliveryAddress
	Date    time.Time
	Slot    string
	Method  PaymentMethod
}

// NewFlow returns a flow positioned at cart review with cash payment
// preselected, matching the storefront default.
func NewFlow() *Flow {
	return &Flow{state: StateCartReview, Method: PaymentCash}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	return f.state
}

// Reset returns the flow to cart review and clears every recorded choice.
func (f *Flow) Reset() {
	*f = Flow{state: StateCartReview, Method: PaymentCash}
}

// Transition applies an event to the flow. On error the flow state is
// unchanged and the customer can correct the input and retry.
func (f *Flow) Transition(ev Event) (State, error) {
	switch e := ev.(type) {
	case Begin:
		if f.state != StateCartReview {
			return f.state, errors.Wrapf(ErrInvalidTransition, "begin from %s", f.state)
		}
		if e.CartEmpty {
			return f.state, ErrEmptyCart
		}
		f.state = StateDeliverySelection

	case SetDelivery:
		if f.state != StateDeliverySelection {
			return f.state, errors.Wrapf(ErrInvalidTransition, "set delivery from %s", f.state)
		}
		now := e.Now
		if now.IsZero() {
			now = time.Now()
		}
		if err := validateDelivery(e, now); err != nil {
			return f.state, err
		}
		f.Contact = trimContact(e.Contact)
		f.Option = e.Option
		f.Date = e.Date
		f.Slot = e.Slot
		if e.Option == DeliveryHome {
			addr := *e.Address
			f.Address = &addr
		} else {
			f.Address = nil
		}
		f.state = StatePaymentSelection

	case SelectPayment:
		if f.state != StatePaymentSelection {
			return f.state, errors.Wrapf(ErrInvalidTransition, "select payment from %s", f.state)
		}
		if !e.Method.Valid() {
			return f.state, errors.Errorf("unknown payment method %q", e.Method)
		}
		f.Method = e.Method

	case PaymentFailed:
		if f.state != StatePaymentSelection && f.state != StateSubmission {
			return f.state, errors.Wrapf(ErrInvalidTransition, "payment failed from %s", f.state)
		}
		f.Method = PaymentCash
		f.state = StatePaymentSelection

	case Submit:
		if f.state != StatePaymentSelection {
			return f.state, errors.Wrapf(ErrInvalidTransition, "submit from %s", f.state)
		}
		f.state = StateSubmission

	case Confirm:
		if f.state != StateSubmission {
			return f.state, errors.Wrapf(ErrInvalidTransition, "confirm from %s", f.state)
		}
		f.state = StateConfirmed

	case Back:
		switch f.state {
		case StateDeliverySelection:
			f.state = StateCartReview
		case StatePaymentSelection:
			f.state = StateDeliverySelection
		case StateSubmission:
			f.state = StatePaymentSelection
		default:
			return f.state, errors.Wrapf(ErrInvalidTransition, "back from %s", f.state)
		}

	default:
		return f.state, errors.Errorf("unknown event %T", ev)
	}

	return f.state, nil
}
