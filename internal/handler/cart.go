package handler

import (
	"net/http"

	"github.com/dkpi/kefir-shop/internal/cart"
)

type cartLineResponse struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	AtMax     bool   `json:"atMax"`
}

type cartResponse struct {
	Lines    []cartLineResponse `json:"lines"`
	Subtotal string             `json:"subtotal"`
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func toCartResponse(lines []cart.Line, subtotal string) cartResponse {
	out := cartResponse{
		Lines:    make([]cartLineResponse, len(lines)),
		Subtotal: subtotal,
	}
	for i, l := range lines {
		out.Lines[i] = cartLineResponse{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.Name,
			Size:      l.Size,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
			AtMax:     l.Quantity >= cart.MaxQuantity,
		}
	}
	return out
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, sessionID string) {
	lines, subtotal := h.carts.Snapshot(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, toCartResponse(lines, subtotal.StringFixed(2)))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.session(w, r))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.AddItem(r.Context(), sessionID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, sessionID)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), sessionID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, sessionID)
}

func (h *Handler) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	if err := h.carts.DecrementOrRemove(r.Context(), sessionID, req.ProductID, req.VariantID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, sessionID)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	if err := h.carts.RemoveEntirely(r.Context(), sessionID, req.ProductID, req.VariantID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, sessionID)
}

// clearCart empties the cart and resets the checkout flow, returning both to
// their initial state.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.flows.Reset(sessionID)
	h.writeCart(w, r, sessionID)
}
