package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "cache.db"), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var tables int
	err := store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='stage_cache'").Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 1, tables)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := driven.CacheKey{DocumentHash: "abc", StageID: "audit"}

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.StageCache(0).Put(ctx, key, driven.CacheEntry{Output: "kept", Fingerprint: "f"}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	entry, err := reopened.StageCache(0).Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "kept", entry.Output)
}

func TestStore_MigrateSkipsApplied(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"001_stage_cache.up.sql": {Data: []byte("this is not sql")},
		"002_extra.up.sql":       {Data: []byte("CREATE TABLE extra (id INTEGER)")},
		"README.md":              {Data: []byte("ignored")},
	}

	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestStore_MigrateRollsBackFailure(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE partial (id INTEGER); NOT SQL")},
	}

	err := store.migrate(fsys)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")
	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("")},
		"002_second.up.sql":   {Data: []byte("")},
		"001_first.up.sql":    {Data: []byte("")},
		"002_second.down.sql": {Data: []byte("")},
		"notes_first.up.sql":  {Data: []byte("")},
	}

	pending, err := pendingMigrations(fsys, 1)

	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, migration{version: 2, name: "002_second.up.sql"}, pending[0])
	assert.Equal(t, migration{version: 10, name: "010_later.up.sql"}, pending[1])
}

func TestStageCache_PutGet(t *testing.T) {
	cache := setupTestStore(t).StageCache(0)
	ctx := context.Background()
	key := driven.CacheKey{DocumentHash: "abc", StageID: "audit"}
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Put(ctx, key, driven.CacheEntry{Output: "selling points", Fingerprint: "fp1", CreatedAt: created}))

	entry, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "selling points", entry.Output)
	assert.Equal(t, "fp1", entry.Fingerprint)
	assert.True(t, created.Equal(entry.CreatedAt))

	_, err = cache.Get(ctx, driven.CacheKey{DocumentHash: "abc", StageID: "synthesis"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStageCache_PutReplaces(t *testing.T) {
	cache := setupTestStore(t).StageCache(0)
	ctx := context.Background()
	key := driven.CacheKey{DocumentHash: "abc", StageID: "audit"}

	require.NoError(t, cache.Put(ctx, key, driven.CacheEntry{Output: "old", Fingerprint: "fp1"}))
	require.NoError(t, cache.Put(ctx, key, driven.CacheEntry{Output: "new", Fingerprint: "fp2"}))

	entry, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "new", entry.Output)
	assert.Equal(t, "fp2", entry.Fingerprint)
}

func TestStageCache_TTL(t *testing.T) {
	cache := setupTestStore(t).StageCache(time.Hour)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	fresh := driven.CacheKey{DocumentHash: "abc", StageID: "audit"}
	stale := driven.CacheKey{DocumentHash: "abc", StageID: "synthesis"}

	require.NoError(t, cache.Put(ctx, fresh, driven.CacheEntry{Output: "a", CreatedAt: now.Add(-30 * time.Minute)}))
	require.NoError(t, cache.Put(ctx, stale, driven.CacheEntry{Output: "b", CreatedAt: now.Add(-2 * time.Hour)}))

	_, err := cache.Get(ctx, fresh)
	assert.NoError(t, err)
	_, err = cache.Get(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestStageCache_InvalidateAndClear(t *testing.T) {
	cache := setupTestStore(t).StageCache(0)
	ctx := context.Background()
	for _, k := range []driven.CacheKey{
		{DocumentHash: "doc1", StageID: "audit"},
		{DocumentHash: "doc1", StageID: "synthesis"},
		{DocumentHash: "doc2", StageID: "audit"},
	} {
		require.NoError(t, cache.Put(ctx, k, driven.CacheEntry{Output: "x"}))
	}

	require.NoError(t, cache.Invalidate(ctx, "doc1"))
	_, err := cache.Get(ctx, driven.CacheKey{DocumentHash: "doc1", StageID: "audit"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = cache.Get(ctx, driven.CacheKey{DocumentHash: "doc2", StageID: "audit"})
	assert.NoError(t, err)

	require.NoError(t, cache.Clear(ctx))
	_, err = cache.Get(ctx, driven.CacheKey{DocumentHash: "doc2", StageID: "audit"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStageCache_PruneWithoutTTL(t *testing.T) {
	cache := setupTestStore(t).StageCache(0)

	n, err := cache.Prune(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}
