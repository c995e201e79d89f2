package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure StageCache implements the interface.
var _ driven.StageCache = (*StageCache)(nil)

// StageCache is a driven.StageCache persisted in the stage_cache table.
type StageCache struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
}

// StageCache returns a cache backed by this store. A zero ttl keeps
// entries forever. Closing the cache closes the store.
func (s *Store) StageCache(ttl time.Duration) *StageCache {
	return &StageCache{store: s, ttl: ttl, now: time.Now}
}

// Get returns the entry for key.
func (c *StageCache) Get(ctx context.Context, key driven.CacheKey) (*driven.CacheEntry, error) {
	var (
		entry   driven.CacheEntry
		created int64
	)
	err := c.store.db.QueryRowContext(ctx, `
		SELECT output, fingerprint, created_at FROM stage_cache
		WHERE document_hash = ? AND stage_id = ?
	`, key.DocumentHash, string(key.StageID)).Scan(&entry.Output, &entry.Fingerprint, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying stage cache: %w", err)
	}

	entry.CreatedAt = time.Unix(0, created)
	if c.expired(entry.CreatedAt) {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Put stores or replaces the entry for key.
func (c *StageCache) Put(ctx context.Context, key driven.CacheKey, entry driven.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO stage_cache (document_hash, stage_id, output, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_hash, stage_id) DO UPDATE SET
			output = excluded.output,
			fingerprint = excluded.fingerprint,
			created_at = excluded.created_at
	`, key.DocumentHash, string(key.StageID), entry.Output, entry.Fingerprint, entry.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving stage cache entry: %w", err)
	}
	return nil
}

// Invalidate removes every entry of a document.
func (c *StageCache) Invalidate(ctx context.Context, documentHash string) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM stage_cache WHERE document_hash = ?", documentHash); err != nil {
		return fmt.Errorf("invalidating stage cache: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (c *StageCache) Clear(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM stage_cache"); err != nil {
		return fmt.Errorf("clearing stage cache: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (c *StageCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM stage_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning stage cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying store.
func (c *StageCache) Close() error {
	return c.store.Close()
}

func (c *StageCache) expired(created time.Time) bool {
	return c.ttl > 0 && c.now().Sub(created) > c.ttl
}
