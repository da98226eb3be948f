// Package handler exposes the storefront over HTTP: catalog reads, cart
// mutations, the checkout flow, payment session creation, and order
// submission. Handlers only translate between JSON and the domain; all
// rules live in the domain packages.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkpi/kefir-shop/internal/cart"
	"github.com/dkpi/kefir-shop/internal/catalog"
	"github.com/dkpi/kefir-shop/internal/checkout"
	"github.com/dkpi/kefir-shop/internal/order"
	"github.com/dkpi/kefir-shop/internal/payment"
)

// sessionCookie identifies the browsing session owning a cart and checkout
// flow.
const sessionCookie = "kefir_session"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	catalog      catalog.Repository
	carts        *cart.Service
	flows        *checkout.Registry
	dispatcher   *order.Dispatcher
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, cat catalog.Repository, carts *cart.Service, flows *checkout.Registry, dispatcher *order.Dispatcher) *Handler {
	return &Handler{
		catalog:      cat,
		carts:        carts,
		flows:        flows,
		dispatcher:   dispatcher,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API router, mounted by the app under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addCartItem)
	r.Patch("/cart/items", h.updateCartItem)
	r.Post("/cart/items/decrement", h.decrementCartItem)
	r.Delete("/cart/items", h.removeCartItem)
	r.Delete("/cart", h.clearCart)

	r.Post("/checkout/delivery", h.setDelivery)
	r.Post("/checkout/payment-session", h.createPaymentSession)
	r.Post("/orders", h.submitOrder)
	r.Post("/orders/slot", h.updateOrderSlot)

	return r
}

// session returns the request's session ID, issuing a new cookie when the
// request has none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// errorBody is the uniform JSON error shape.
type errorBody struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: status, Error: code, Message: message})
}

// decodeJSON decodes a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps domain errors to the API error shape. Validation
// errors are 400 with a stable category code; everything else is a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrContactIncomplete):
		writeError(w, http.StatusBadRequest, "contact_fields_incomplete", err.Error())
	case errors.Is(err, checkout.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "invalid_email", "email address is invalid")
	case errors.Is(err, checkout.ErrAddressIncomplete):
		writeError(w, http.StatusBadRequest, "address_incomplete", err.Error())
	case errors.Is(err, checkout.ErrMissingSlot):
		writeError(w, http.StatusBadRequest, "missing_slot", "select a delivery date and slot")
	case errors.Is(err, checkout.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "delivery date is out of range")
	case errors.Is(err, checkout.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_step", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, payment.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", "order total must be positive")
	case isProcessorError(err):
		zctx.From(r.Context()).Error("Payment processor failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "payment_failed", "payment session could not be created")
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func isProcessorError(err error) bool {
	var pe *payment.ProcessorError
	return errors.As(err, &pe)
}
