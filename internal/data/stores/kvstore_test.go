package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivenmedia/riven-tui/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestKVStore_SetGet(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Set(ctx, "greeting", payload{Name: "riven", Count: 3}))

	var got payload
	require.NoError(t, store.Get(ctx, "greeting", &got))
	assert.Equal(t, payload{Name: "riven", Count: 3}, got)
}

func TestKVStore_GetMissing(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	var dest string
	err := store.Get(ctx, "nope", &dest)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err), "missing key should wrap sql.ErrNoRows")
}

func TestKVStore_Overwrite(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "first"))
	require.NoError(t, store.Set(ctx, "k", "second"))

	var got string
	require.NoError(t, store.Get(ctx, "k", &got))
	assert.Equal(t, "second", got)
}

func TestKVStore_TTLExpiry(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SetTTL(ctx, "short", "value", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	var dest string
	err := store.Get(ctx, "short", &dest)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err), "expired key should behave like a missing key")

	has, err := store.Has(ctx, "short")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestKVStore_TTLNotYetExpired(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SetTTL(ctx, "long", "value", time.Hour))

	var dest string
	require.NoError(t, store.Get(ctx, "long", &dest))
	assert.Equal(t, "value", dest)

	entry, err := store.GetRaw(ctx, "long")
	require.NoError(t, err)
	require.NotNil(t, entry.ExpiresAt)
	assert.True(t, entry.ExpiresAt.After(time.Now()))
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 1))
	require.NoError(t, store.Delete(ctx, "k"))

	has, err := store.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestKVStore_ListKeys(t *testing.T) {
	store := NewKVStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "b", 1))
	require.NoError(t, store.Set(ctx, "a", 2))
	require.NoError(t, store.SetTTL(ctx, "gone", 3, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestKVStore_SweepExpired(t *testing.T) {
	database := openTestDB(t)
	store := NewKVStore(database)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "keep", 1))
	require.NoError(t, store.SetTTL(ctx, "drop", 2, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, store.SweepExpired(ctx))

	// The expired row is physically gone, not just hidden.
	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM kv_store").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(context.Canceled))
}
