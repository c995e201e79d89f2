package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// CacheKey identifies a memoised stage output.
type CacheKey struct {
	// DocumentHash is the content hash of the source document.
	DocumentHash string

	// StageID is the stage that produced the output.
	StageID domain.StageID
}

// CacheEntry is a memoised stage output.
type CacheEntry struct {
	// Output is the stage's generated text.
	Output string

	// Fingerprint is the hash of the model and prompt that produced Output.
	// An entry only counts as a hit when it matches the current prompt.
	Fingerprint string

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time
}

// StageCache memoises stage outputs across runs. It is owned by the caller
// and passed to a single run; the orchestrator keeps no state of its own.
type StageCache interface {
	// Get returns the entry for key. A missing or expired entry returns
	// domain.ErrNotFound.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)

	// Put stores or replaces the entry for key.
	Put(ctx context.Context, key CacheKey, entry CacheEntry) error

	// Invalidate removes every entry of a document.
	Invalidate(ctx context.Context, documentHash string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
