package api

import (
	"context"
	"net/http"
	"time"
)

type OrderRequest struct {
	ContactPhone    string `json:"contact_phone,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	Comment         string `json:"comment,omitempty"`
}

type OrderSummary struct {
	ID         int64     `json:"id"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateOrder turns the server-held cart into an order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderSummary, error) {
	var payload envelope[OrderSummary]
	if err := c.do(ctx, http.MethodPost, "/orders", req, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
