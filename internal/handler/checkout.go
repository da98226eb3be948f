package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/dkpi/kefir-shop/internal/cart"
	"github.com/dkpi/kefir-shop/internal/checkout"
	"github.com/dkpi/kefir-shop/internal/order"
	"github.com/dkpi/kefir-shop/internal/payment"
)

type deliveryRequest struct {
	Contact checkout.ContactInfo      `json:"contact"`
	Option  string                    `json:"deliveryOption"`
	Address *checkout.DeliveryAddress `json:"address,omitempty"`
	Date    string                    `json:"deliveryDate,omitempty"`
	Slot    string                    `json:"timeSlot,omitempty"`
}

type stateResponse struct {
	State string `json:"state"`
}

type paymentSessionRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type paymentSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type submitOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type orderResponse struct {
	OrderID       string `json:"orderId"`
	Total         string `json:"total"`
	PaymentMethod string `json:"paymentMethod"`
}

// setDelivery records contact info and the delivery selection, advancing the
// flow to payment selection. A flow still at cart review is begun implicitly,
// so the client does not need a separate begin call.
func (h *Handler) setDelivery(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req deliveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "delivery date must be YYYY-MM-DD")
			return
		}
	}

	flow := h.flows.Get(sessionID)
	if flow.State() == checkout.StateCartReview {
		if _, err := flow.Transition(checkout.Begin{CartEmpty: h.carts.IsEmpty(r.Context(), sessionID)}); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	state, err := flow.Transition(checkout.SetDelivery{
		Contact: req.Contact,
		Option:  checkout.DeliveryOption(req.Option),
		Address: req.Address,
		Date:    date,
		Slot:    req.Slot,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{State: state.String()})
}

// createPaymentSession selects card payment and asks the processor for a
// session covering the current order total. On processor failure the flow
// reverts to cash so the customer can still complete the order.
func (h *Handler) createPaymentSession(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req paymentSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	method := checkout.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = checkout.PaymentCard
	}
	if method != checkout.PaymentCard {
		writeError(w, http.StatusBadRequest, "bad_request", "payment sessions apply to card payments only")
		return
	}

	flow := h.flows.Get(sessionID)
	if _, err := flow.Transition(checkout.SelectPayment{Method: method}); err != nil {
		writeDomainError(w, r, err)
		return
	}

	lines, _ := h.carts.Snapshot(r.Context(), sessionID)
	o := order.Build(lines, flow)

	secret, err := h.dispatcher.CreatePaymentSession(r.Context(), o.TotalMinorUnits(), o.PaymentMetadata())
	if err != nil {
		if _, terr := flow.Transition(checkout.PaymentFailed{}); terr != nil {
			zctx.From(r.Context()).Warn("Payment fallback transition rejected", zap.Error(terr))
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentSessionResponse{
		ClientSecret: secret,
		Amount:       o.TotalMinorUnits(),
		Currency:     payment.Currency,
	})
}

type updateSlotRequest struct {
	OrderID       string                    `json:"orderId"`
	Contact       checkout.ContactInfo      `json:"contact"`
	Option        string                    `json:"deliveryOption"`
	Address       *checkout.DeliveryAddress `json:"address,omitempty"`
	Date          string                    `json:"deliveryDate,omitempty"`
	TimeSlot      string                    `json:"timeSlot"`
	PaymentMethod string                    `json:"paymentMethod,omitempty"`
	Lines         []cartItemRequest         `json:"lines"`
}

type updateSlotResponse struct {
	OrderID  string `json:"orderId"`
	TimeSlot string `json:"timeSlot"`
}

// updateOrderSlot changes the delivery slot of an already accepted order and
// resends the customer confirmation. Orders are not stored server side, so
// the client posts the full order details; prices are still resolved from
// the catalog, never trusted from the client.
func (h *Handler) updateOrderSlot(w http.ResponseWriter, r *http.Request) {
	var req updateSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	option := checkout.DeliveryOption(req.Option)
	if !option.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown delivery option")
		return
	}
	if !checkout.ValidSlot(req.TimeSlot) {
		writeDomainError(w, r, checkout.ErrMissingSlot)
		return
	}
	method := checkout.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = checkout.PaymentCash
	}
	if !method.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", "unknown payment method")
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "delivery date must be YYYY-MM-DD")
			return
		}
	}

	// Rebuild the lines through the cart rules so quantities and prices
	// come from the catalog.
	rebuilt := cart.New()
	for _, l := range req.Lines {
		p, v, err := h.catalog.GetVariant(r.Context(), l.ProductID, l.VariantID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		rebuilt.AddItem(p, v, l.Quantity)
	}

	flow := &checkout.Flow{
		Contact: req.Contact,
		Option:  option,
		Address: req.Address,
		Date:    date,
		Slot:    req.TimeSlot,
		Method:  method,
	}
	o := order.Restore(req.OrderID, rebuilt.Lines(), flow)

	if err := h.dispatcher.ResendConfirmation(r.Context(), o); err != nil {
		var notif *order.NotificationError
		if errors.As(err, &notif) {
			zctx.From(r.Context()).Error("Confirmation resend failed",
				zap.String("order", o.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "notification_failed", "confirmation could not be resent")
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateSlotResponse{OrderID: o.ID, TimeSlot: o.TimeSlot})
}

// submitOrder finalizes the checkout: the flow moves through submission, the
// order snapshot is built and dispatched, and on success the cart and flow
// are reset. On failure the cart stays intact and the flow returns to
// payment selection so the customer can retry.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req submitOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	flow := h.flows.Get(sessionID)
	if req.PaymentMethod != "" {
		if _, err := flow.Transition(checkout.SelectPayment{Method: checkout.PaymentMethod(req.PaymentMethod)}); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	if _, err := flow.Transition(checkout.Submit{}); err != nil {
		writeDomainError(w, r, err)
		return
	}

	lines, _ := h.carts.Snapshot(r.Context(), sessionID)
	o := order.Build(lines, flow)

	var err error
	switch o.PaymentMethod {
	case checkout.PaymentCard:
		err = h.dispatcher.ConfirmCardPayment(r.Context(), o)
	default:
		err = h.dispatcher.SubmitCashOrder(r.Context(), o)
	}
	if err != nil {
		if _, terr := flow.Transition(checkout.Back{}); terr != nil {
			zctx.From(r.Context()).Warn("Submission rollback rejected", zap.Error(terr))
		}
		var notif *order.NotificationError
		if errors.As(err, &notif) {
			zctx.From(r.Context()).Error("Order notification failed",
				zap.String("order", o.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "notification_failed", "order could not be confirmed, please retry")
			return
		}
		writeDomainError(w, r, err)
		return
	}

	if _, err := flow.Transition(checkout.Confirm{}); err != nil {
		zctx.From(r.Context()).Warn("Confirm transition rejected", zap.Error(err))
	}
	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		zctx.From(r.Context()).Warn("Cart cleanup after order failed",
			zap.String("order", o.ID), zap.Error(err))
	}
	h.flows.Reset(sessionID)

	writeJSON(w, http.StatusCreated, orderResponse{
		OrderID:       o.ID,
		Total:         o.Total.StringFixed(2),
		PaymentMethod: string(o.PaymentMethod),
	})
}
