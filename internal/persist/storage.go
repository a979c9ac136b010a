package persist

import (
	"context"
	"errors"
)

// Storage holds opaque blobs under string keys. It is the durable side of
// the cart store; implementations must not interpret the payload.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
