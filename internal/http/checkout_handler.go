package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/checkout"
)

type Checkout interface {
	Submit(ctx context.Context, req api.OrderRequest) (*api.OrderSummary, error)
}

type CheckoutHandler struct {
	checkout Checkout
}

func NewCheckoutHandler(c Checkout) *CheckoutHandler {
	return &CheckoutHandler{checkout: c}
}

type CheckoutRequestDTO struct {
	ContactPhone    string `json:"contact_phone"`
	DeliveryAddress string `json:"delivery_address"`
	Comment         string `json:"comment"`
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	summary, err := h.checkout.Submit(r.Context(), api.OrderRequest{
		ContactPhone:    req.ContactPhone,
		DeliveryAddress: req.DeliveryAddress,
		Comment:         req.Comment,
	})
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "Cart is empty. Add items before checkout.")
	case errors.Is(err, checkout.ErrSubmitting):
		respondError(w, http.StatusConflict, "checkout_in_progress", "checkout already in progress")
	case err != nil:
		respondError(w, http.StatusBadGateway, "order_failed", "Failed to create order.")
	default:
		respondJSON(w, http.StatusCreated, summary)
	}
}
