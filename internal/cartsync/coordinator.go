package cartsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
)

// CartAPI is the part of the backend client the coordinator needs.
type CartAPI interface {
	FetchCart(ctx context.Context) ([]domain.LineItem, error)
	SyncCart(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error)
}

// CartStore is the part of the cart store the coordinator needs.
type CartStore interface {
	Items() []domain.LineItem
	Merge(remote []domain.LineItem)
	Subscribe(fn store.Listener) func()
}

// Coordinator keeps the server cart eventually consistent with the local
// store. It primes the store from the server once, then pushes the full
// cart after every burst of changes has been quiet for the debounce period.
// All network errors are logged and dropped.
type Coordinator struct {
	api      CartAPI
	store    CartStore
	debounce time.Duration
	timeout  time.Duration
	logger   *log.Logger

	// applyMu orders the fetch result against Stop: once stopped is set no
	// fetch result reaches the store.
	applyMu sync.RWMutex
	stopped bool

	mu          sync.Mutex
	started     bool
	closed      bool
	ready       bool
	timer       *time.Timer
	generation  uint64
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

type Option func(*Coordinator)

func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func NewCoordinator(api CartAPI, cartStore CartStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:      api,
		store:    cartStore,
		debounce: DefaultDebounce,
		timeout:  DefaultRequestTimeout,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to the store and fetches the server cart in the
// background. Calling it more than once, or after Stop, does nothing.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.unsubscribe = c.store.Subscribe(c.onChange)

	c.wg.Add(1)
	go c.prime()
}

// Ready reports whether the initial fetch has settled.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Stop cancels the initial fetch, the pending push timer and any push in
// flight, then waits for background work to return. It is safe to call
// more than once.
func (c *Coordinator) Stop() {
	c.applyMu.Lock()
	c.stopped = true
	c.applyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	unsubscribe, cancel := c.unsubscribe, c.cancel
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *Coordinator) prime() {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	remote, err := c.api.FetchCart(ctx)
	if err != nil {
		c.logger.Printf("initial cart fetch error: %v \n", err)
	}

	c.applyMu.RLock()
	if c.stopped {
		c.applyMu.RUnlock()
		return
	}
	if err == nil {
		c.store.Merge(remote)
	}
	c.applyMu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.ready = true
	// The state at the moment of readiness is pushed once as well.
	c.scheduleLocked()
}

func (c *Coordinator) onChange(_ []domain.LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready || c.closed {
		return
	}
	c.scheduleLocked()
}

// scheduleLocked (re)starts the debounce timer. Timers from earlier
// generations that already fired see a stale generation and do nothing.
func (c *Coordinator) scheduleLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	gen := c.generation
	c.timer = time.AfterFunc(c.debounce, func() { c.flush(gen) })
}

func (c *Coordinator) flush(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.wg.Add(1)
	ctx := c.ctx
	c.mu.Unlock()
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.SyncCart(ctx, c.store.Items()); err != nil {
		c.logger.Printf("cart sync error: %v \n", err)
	}
}
