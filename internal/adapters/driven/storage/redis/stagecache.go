// Package redis provides a stage cache shared between processes through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure StageCache implements the interface.
var _ driven.StageCache = (*StageCache)(nil)

// DefaultPrefix namespaces every key the cache writes.
const DefaultPrefix = "bidflow"

// StageCache is a driven.StageCache stored in Redis. Each entry is a JSON
// value with a native expiry; a per-document set tracks entry keys so a
// document can be invalidated without scanning.
type StageCache struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

type storedEntry struct {
	Output      string    `json:"output"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*StageCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: missing redis address", domain.ErrInvalidInput)
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStageCache(rdb, DefaultPrefix, ttl), nil
}

// NewStageCache wraps an existing client. A zero ttl keeps entries forever.
func NewStageCache(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *StageCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &StageCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Get returns the entry for key.
func (c *StageCache) Get(ctx context.Context, key driven.CacheKey) (*driven.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var stored storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		// Treat an unreadable value as absent; the next Put replaces it.
		return nil, domain.ErrNotFound
	}
	return &driven.CacheEntry{
		Output:      stored.Output,
		Fingerprint: stored.Fingerprint,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

// Put stores or replaces the entry for key.
func (c *StageCache) Put(ctx context.Context, key driven.CacheKey, entry driven.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(storedEntry{
		Output:      entry.Output,
		Fingerprint: entry.Fingerprint,
		CreatedAt:   entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	entryKey := c.entryKey(key)
	docKey := c.documentKey(key.DocumentHash)
	_, err = c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, entryKey, raw, c.ttl)
		p.SAdd(ctx, docKey, entryKey)
		if c.ttl > 0 {
			p.Expire(ctx, docKey, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Invalidate removes every entry of a document.
func (c *StageCache) Invalidate(ctx context.Context, documentHash string) error {
	docKey := c.documentKey(documentHash)
	keys, err := c.rdb.SMembers(ctx, docKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}
	keys = append(keys, docKey)
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every key under the cache prefix.
func (c *StageCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Close closes the client.
func (c *StageCache) Close() error {
	return c.rdb.Close()
}

func (c *StageCache) entryKey(key driven.CacheKey) string {
	return fmt.Sprintf("%s:stage:%s:%s", c.prefix, key.DocumentHash, key.StageID)
}

func (c *StageCache) documentKey(documentHash string) string {
	return fmt.Sprintf("%s:doc:%s", c.prefix, documentHash)
}
