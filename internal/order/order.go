// Package order builds the immutable order snapshot at submission time and
// dispatches it: cash orders are validated and emailed, card orders go
// through the payment processor first.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkpi/kefir-shop/internal/cart"
	"github.com/dkpi/kefir-shop/internal/checkout"
)

// Order is a finalized snapshot of a cart plus checkout flow state. It is
// created only at submission time and never mutated afterwards; resubmission
// builds a new Order.
type Order struct {
	ID             string
	Contact        checkout.ContactInfo
	DeliveryOption checkout.DeliveryOption
	// Address is nil unless DeliveryOption is home delivery.
	Address       *checkout.DeliveryAddress
	DeliveryDate  time.Time
	TimeSlot      string
	PaymentMethod checkout.PaymentMethod
	Lines         []cart.Line
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// Build creates an order snapshot from the given cart lines and flow state.
// The subtotal is recomputed from the lines; the total applies the delivery
// fee only for home delivery.
func Build(lines []cart.Line, f *checkout.Flow) *Order {
	subtotal := decimal.Zero
	for i := range lines {
		subtotal = subtotal.Add(lines[i].Subtotal())
	}

	fee := decimal.Zero
	if f.Option == checkout.DeliveryHome {
		fee = checkout.DeliveryFee
	}

	var addr *checkout.DeliveryAddress
	if f.Address != nil {
		a := *f.Address
		addr = &a
	}

	snapshot := make([]cart.Line, len(lines))
	copy(snapshot, lines)

	return &Order{
		ID:             uuid.New().String(),
		Contact:        f.Contact,
		DeliveryOption: f.Option,
		Address:        addr,
		DeliveryDate:   f.Date,
		TimeSlot:       f.Slot,
		PaymentMethod:  f.Method,
		Lines:          snapshot,
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Total:          subtotal.Add(fee),
		CreatedAt:      time.Now(),
	}
}

// Restore rebuilds an already accepted order from its posted details,
// keeping its ID, so the confirmation email can be sent again after a
// delivery slot change. Totals are recomputed from the lines the same way
// Build does.
func Restore(id string, lines []cart.Line, f *checkout.Flow) *Order {
	o := Build(lines, f)
	if id != "" {
		o.ID = id
	}
	return o
}

// TotalMinorUnits returns the grand total in integer minor units (cents),
// as required by the payment processor.
func (o *Order) TotalMinorUnits() int64 {
	return o.Total.Shift(2).Round(0).IntPart()
}

// PaymentMetadata returns the order metadata attached to a payment intent,
// mirroring what the storefront shows on the processor dashboard.
func (o *Order) PaymentMetadata() map[string]string {
	md := map[string]string{
		"orderId":        o.ID,
		"deliveryOption": string(o.DeliveryOption),
		"customerName":   o.Contact.FirstName + " " + o.Contact.LastName,
		"customerEmail":  o.Contact.Email,
		"customerPhone":  o.Contact.Phone,
	}
	if o.DeliveryOption == checkout.DeliveryHome && o.Address != nil {
		md["deliveryAddress"] = o.Address.Address + ", " + o.Address.PostalCode + " " + o.Address.City
		md["deliveryDate"] = o.DeliveryDate.Format("2006-01-02")
		md["deliverySlot"] = o.TimeSlot
	}
	return md
}
