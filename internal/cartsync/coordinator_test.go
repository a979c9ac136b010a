package cartsync

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

type mockAPI struct {
	m        sync.Mutex
	remote   []domain.LineItem
	fetchErr error
	syncErr  error
	release  chan struct{} // when set, FetchCart blocks until closed
	pushes   [][]domain.LineItem
}

func (m *mockAPI) FetchCart(ctx context.Context) ([]domain.LineItem, error) {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return domain.Clone(m.remote), nil
}

func (m *mockAPI) SyncCart(_ context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.pushes = append(m.pushes, items)
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return items, nil
}

func (m *mockAPI) getPushes() [][]domain.LineItem {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([][]domain.LineItem, len(m.pushes))
	copy(out, m.pushes)
	return out
}

type memStorage struct {
	m    sync.Mutex
	data map[string][]byte
}

func (s *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.m.Lock()
	defer s.m.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return data, nil
}

func (s *memStorage) Set(_ context.Context, key string, data []byte) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = data
	return nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, key)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func setup(t *testing.T, api *mockAPI) (*store.Store, *Coordinator) {
	t.Helper()
	s := store.New(context.Background(), &memStorage{data: map[string][]byte{}}, store.WithLogger(quietLogger()))
	c := NewCoordinator(api, s, WithDebounce(testDebounce), WithRequestTimeout(time.Second), WithLogger(quietLogger()))
	t.Cleanup(c.Stop)
	return s, c
}

func ref(id, price int64) domain.ProductRef {
	return domain.ProductRef{ProductID: id, Title: "p", UnitPriceMinor: price}
}

func waitReady(t *testing.T, c *Coordinator) {
	t.Helper()
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond, "coordinator never became ready")
}

func TestStart_MergesRemoteCart(t *testing.T) {
	api := &mockAPI{remote: []domain.LineItem{domain.NewLineItem(ref(7, 100), 3)}}
	s, c := setup(t, api)

	c.Start(context.Background())
	waitReady(t, c)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStart_FetchErrorKeepsLocalAndBecomesReady(t *testing.T) {
	api := &mockAPI{fetchErr: errors.New("connection refused")}
	s, c := setup(t, api)
	s.Add(ref(1, 100), 2)

	c.Start(context.Background())
	waitReady(t, c)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStart_ReadinessPushesOnce(t *testing.T) {
	api := &mockAPI{remote: []domain.LineItem{domain.NewLineItem(ref(2, 10), 1)}}
	_, c := setup(t, api)

	c.Start(context.Background())
	waitReady(t, c)

	require.Eventually(t, func() bool { return len(api.getPushes()) == 1 }, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return len(api.getPushes()) > 1 }, 4*testDebounce, 10*time.Millisecond)
	assert.Equal(t, int64(2), api.getPushes()[0][0].ProductID)
}

func TestStart_LocalMutationsBeforeFetchWinMerge(t *testing.T) {
	api := &mockAPI{
		remote: []domain.LineItem{
			domain.NewLineItem(ref(1, 100), 5),
			domain.NewLineItem(ref(2, 100), 1),
		},
		release: make(chan struct{}),
	}
	s, c := setup(t, api)

	c.Start(context.Background())
	s.Add(ref(1, 100), 2)
	close(api.release)
	waitReady(t, c)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(2), items[1].ProductID)
}

func TestMutationsBeforeReady_DoNotPush(t *testing.T) {
	api := &mockAPI{release: make(chan struct{})}
	s, c := setup(t, api)

	c.Start(context.Background())
	s.Add(ref(1, 100), 1)
	s.Add(ref(2, 100), 1)

	require.Never(t, func() bool { return len(api.getPushes()) > 0 }, 4*testDebounce, 10*time.Millisecond)
	close(api.release)
}

func TestDebounce_CoalescesBurstIntoOnePush(t *testing.T) {
	api := &mockAPI{}
	s, c := setup(t, api)
	c.Start(context.Background())
	waitReady(t, c)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 1 }, time.Second, 5*time.Millisecond)

	s.Add(ref(1, 100), 1)
	s.Add(ref(2, 50), 1)
	s.Increment(1)
	s.Increment(2)
	s.Decrement(1)

	require.Eventually(t, func() bool { return len(api.getPushes()) == 2 }, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return len(api.getPushes()) > 2 }, 4*testDebounce, 10*time.Millisecond)

	last := api.getPushes()[1]
	assert.Equal(t, s.Items(), last)
	require.Len(t, last, 2)
	assert.Equal(t, 1, last[0].Quantity)
	assert.Equal(t, 2, last[1].Quantity)
}

func TestDebounce_RestartsOnEachChange(t *testing.T) {
	api := &mockAPI{}
	s, c := setup(t, api)
	c.Start(context.Background())
	waitReady(t, c)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 1 }, time.Second, 5*time.Millisecond)

	// Each change lands inside the previous quiet window.
	for i := 0; i < 5; i++ {
		s.Add(ref(1, 100), 1)
		time.Sleep(testDebounce / 2)
	}
	assert.Len(t, api.getPushes(), 1)

	require.Eventually(t, func() bool { return len(api.getPushes()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, api.getPushes()[1][0].Quantity)
}

func TestSyncError_IsSwallowed(t *testing.T) {
	api := &mockAPI{syncErr: errors.New("502 bad gateway")}
	s, c := setup(t, api)
	c.Start(context.Background())
	waitReady(t, c)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 1 }, time.Second, 5*time.Millisecond)

	s.Add(ref(1, 100), 1)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 2 }, time.Second, 5*time.Millisecond)

	// Next change still triggers a fresh attempt.
	s.Add(ref(1, 100), 1)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, s.Items()[0].Quantity)
	assert.Equal(t, 2, api.getPushes()[2][0].Quantity)
}

func TestStop_BeforeFetchResolvesIgnoresResult(t *testing.T) {
	api := &mockAPI{
		remote:  []domain.LineItem{domain.NewLineItem(ref(9, 100), 1)},
		release: make(chan struct{}),
	}
	s, c := setup(t, api)

	c.Start(context.Background())
	c.Stop()
	close(api.release)

	assert.Empty(t, s.Items())
	assert.False(t, c.Ready())
	assert.Empty(t, api.getPushes())
}

func TestStop_CancelsPendingPush(t *testing.T) {
	api := &mockAPI{}
	s, c := setup(t, api)
	c.Start(context.Background())
	waitReady(t, c)
	require.Eventually(t, func() bool { return len(api.getPushes()) == 1 }, time.Second, 5*time.Millisecond)

	s.Add(ref(1, 100), 1)
	c.Stop()

	require.Never(t, func() bool { return len(api.getPushes()) > 1 }, 4*testDebounce, 10*time.Millisecond)
}

func TestStop_IsIdempotentAndStartAfterStopIsNoop(t *testing.T) {
	api := &mockAPI{}
	_, c := setup(t, api)

	c.Stop()
	c.Stop()
	c.Start(context.Background())

	assert.False(t, c.Ready())
}

func TestStart_ParentContextCancelled(t *testing.T) {
	api := &mockAPI{release: make(chan struct{})}
	s, c := setup(t, api)
	s.Add(ref(3, 10), 1)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	// The fetch fails with context.Canceled; local state stays and the
	// coordinator still settles.
	waitReady(t, c)
	assert.Len(t, s.Items(), 1)
	close(api.release)
}
