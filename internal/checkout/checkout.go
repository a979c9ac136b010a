package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/api"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrSubmitting = errors.New("checkout already in progress")
)

type OrderAPI interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (*api.OrderSummary, error)
}

type Cart interface {
	Len() int
	Clear()
}

// Service submits orders for the current cart. The cart is cleared only
// after the backend accepted the order; on failure it is left untouched
// so the user can retry.
type Service struct {
	api    OrderAPI
	cart   Cart
	logger *log.Logger

	mu         sync.Mutex
	submitting bool
}

func NewService(orders OrderAPI, cart Cart, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{api: orders, cart: cart, logger: logger}
}

func (s *Service) Submit(ctx context.Context, req api.OrderRequest) (*api.OrderSummary, error) {
	if s.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitting
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	summary, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Printf("create order error: %v \n", err)
		return nil, fmt.Errorf("create order failed: %w", err)
	}

	s.cart.Clear()
	return summary, nil
}
