package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSQLite(t *testing.T, path string) *SQLiteStorage {
	t.Helper()
	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.RunMigrations())
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSQLiteGet_NotFound(t *testing.T) {
	storage := setupTestSQLite(t, ":memory:")

	_, err := storage.Get(context.Background(), "telegram_shop_cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSet_UpsertsAndOverwrites(t *testing.T) {
	storage := setupTestSQLite(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "telegram_shop_cart", []byte(`{"version":1,"items":[]}`)))
	require.NoError(t, storage.Set(ctx, "telegram_shop_cart", []byte(`{"version":1,"items":[{"product_id":1}]}`)))

	data, err := storage.Get(ctx, "telegram_shop_cart")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"items":[{"product_id":1}]}`, string(data))
}

func TestSQLiteDelete(t *testing.T) {
	storage := setupTestSQLite(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "k", []byte("v")))
	require.NoError(t, storage.Delete(ctx, "k"))
	require.NoError(t, storage.Delete(ctx, "missing"))

	_, err := storage.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations())
	require.NoError(t, first.Set(ctx, "k", []byte("kept")))
	require.NoError(t, first.Close())

	// Migrations already applied report no change.
	second := setupTestSQLite(t, path)
	data, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
}
