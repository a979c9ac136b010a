package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const sharedFetchTimeout = 10 * time.Second

// FetchCart returns the server-held cart. Concurrent callers share one
// request, which does not end when one caller's ctx is cancelled. Each
// caller still stops waiting when its own ctx ends.
func (c *Client) FetchCart(ctx context.Context) ([]domain.LineItem, error) {
	ch := c.sfg.DoChan("cart", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		var payload envelope[[]domain.LineItem]
		if err := c.do(fetchCtx, http.MethodGet, "/cart", nil, &payload); err != nil {
			return nil, err
		}
		return payload.Data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.Clone(res.Val.([]domain.LineItem)), nil
	}
}

// SyncCart replaces the server cart with items and returns what the server
// stored.
func (c *Client) SyncCart(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	var payload envelope[[]domain.LineItem]
	if err := c.do(ctx, http.MethodPost, "/cart/sync", items, &payload); err != nil {
		return nil, err
	}
	return domain.Clone(payload.Data), nil
}
