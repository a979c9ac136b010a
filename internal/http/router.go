package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the view-facing routes.
func NewRouter(cart *CartHandler, co *CheckoutHandler, token *api.SessionToken, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(timeout))
	r.Use(InitDataMiddleware(token))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":     "ok",
			"request_id": getRequestID(r.Context()),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Post("/items/{product_id}/increment", cart.IncrementItem)
			r.Post("/items/{product_id}/decrement", cart.DecrementItem)
			r.Delete("/items/{product_id}", cart.RemoveItem)
		})
		r.Post("/checkout", co.Submit)
	})

	return r
}
