package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persist"
)

// StorageKey is the only key the cart store writes. No other component
// may touch it.
const StorageKey = "telegram_shop_cart"

const storageTimeout = 2 * time.Second

// Listener is called with a copy of the items after every change.
type Listener func(items []domain.LineItem)

// Store is the single source of truth for the session cart. Mutations are
// serialized, never fail, and are written through to storage after they
// complete. Storage errors are logged and otherwise ignored.
type Store struct {
	mu      sync.Mutex
	items   []domain.LineItem
	storage persist.Storage
	logger  *log.Logger

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	// notifyMu keeps listener calls in mutation order.
	notifyMu sync.Mutex
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New restores the cart from storage. A missing or unreadable blob yields
// an empty cart.
func New(ctx context.Context, storage persist.Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		logger:    log.Default(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) []domain.LineItem {
	ctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	data, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, persist.ErrNotFound) {
		return []domain.LineItem{}
	}
	if err != nil {
		s.logger.Printf("cart restore error: %v \n", err)
		return []domain.LineItem{}
	}

	items, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Printf("cart restore discarded corrupt state: %v \n", err)
		return []domain.LineItem{}
	}
	return items
}

// Items returns a copy of the current item sequence.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Clone(s.items)
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Total(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Add puts quantity units of ref into the cart. Quantities below 1 count as
// 1. An existing line keeps its original title and price.
func (s *Store) Add(ref domain.ProductRef, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		if i := indexOf(items, ref.ProductID); i >= 0 {
			items[i].Quantity += quantity
			items[i].Recompute()
			return items, true
		}
		return append(items, domain.NewLineItem(ref, quantity)), true
	})
}

func (s *Store) Increment(productID int64) {
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		items[i].Quantity++
		items[i].Recompute()
		return items, true
	})
}

// Decrement lowers the quantity by one; a line at quantity 1 is removed.
func (s *Store) Decrement(productID int64) {
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		if items[i].Quantity-1 < 1 {
			return append(items[:i], items[i+1:]...), true
		}
		items[i].Quantity--
		items[i].Recompute()
		return items, true
	})
}

func (s *Store) Remove(productID int64) {
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
}

func (s *Store) Clear() {
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return []domain.LineItem{}, len(items) > 0
	})
}

// Merge reconciles the cart with a server snapshot. Local lines always win:
// an empty local cart adopts the snapshot, otherwise only products missing
// locally are appended.
func (s *Store) Merge(remote []domain.LineItem) {
	remote = domain.Normalize(remote)
	s.mutate(func(items []domain.LineItem) ([]domain.LineItem, bool) {
		if len(items) == 0 {
			return remote, len(remote) > 0
		}
		if len(remote) == 0 {
			return items, false
		}
		changed := false
		for _, item := range remote {
			if indexOf(items, item.ProductID) >= 0 {
				continue
			}
			items = append(items, item)
			changed = true
		}
		return items, changed
	})
}

// Subscribe registers fn for change notifications and returns a func that
// removes it. fn runs on the mutating goroutine and must not mutate the
// store itself.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// mutate runs fn on a private copy of the items. When fn reports a change
// the copy becomes the new state, is persisted, and listeners are told.
func (s *Store) mutate(fn func(items []domain.LineItem) ([]domain.LineItem, bool)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, changed := fn(domain.Clone(s.items))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	snapshot := domain.Clone(next)
	s.mu.Unlock()

	s.persist(snapshot)
	s.notify(snapshot)
}

func (s *Store) persist(items []domain.LineItem) {
	data, err := encodeSnapshot(items)
	if err != nil {
		s.logger.Printf("cart encode error: %v \n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.logger.Printf("cart persist error: %v \n", err)
	}
}

func (s *Store) notify(items []domain.LineItem) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(domain.Clone(items))
	}
}

func indexOf(items []domain.LineItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
