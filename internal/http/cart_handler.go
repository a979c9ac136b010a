package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CartStore is what the view bridge reads and mutates.
type CartStore interface {
	Items() []domain.LineItem
	Total() int64
	Add(ref domain.ProductRef, quantity int)
	Increment(productID int64)
	Decrement(productID int64)
	Remove(productID int64)
	Clear()
}

type CartHandler struct {
	cart     CartStore
	currency string
	validate *validator.Validate
}

func NewCartHandler(cart CartStore, currency string) *CartHandler {
	return &CartHandler{
		cart:     cart,
		currency: currency,
		validate: validator.New(),
	}
}

type AddItemRequestDTO struct {
	ProductID  int64  `json:"product_id" validate:"gt=0"`
	Title      string `json:"title" validate:"required,max=200"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Qty        int    `json:"qty"`
}

type CartResponseDTO struct {
	Items             []domain.LineItem `json:"items"`
	TotalCents        int64             `json:"total_cents"`
	TotalDisplay      string            `json:"total_display"`
	CheckoutAvailable bool              `json:"checkout_available"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// qty below 1 is clamped by the store, not rejected
	h.cart.Add(domain.ProductRef{
		ProductID:      req.ProductID,
		Title:          req.Title,
		UnitPriceMinor: req.PriceCents,
	}, req.Qty)

	respondJSON(w, http.StatusCreated, h.view())
}

func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.cart.Increment(productID)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.cart.Decrement(productID)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.cart.Remove(productID)
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.view())
}

func (h *CartHandler) view() CartResponseDTO {
	items := h.cart.Items()
	total := domain.Total(items)
	return CartResponseDTO{
		Items:             items,
		TotalCents:        total,
		TotalDisplay:      domain.FormatMinor(total, h.currency),
		CheckoutAvailable: len(items) > 0,
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
