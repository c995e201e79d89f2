package normalisers

import (
	"sort"
	"sync"

	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to page extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.PageExtractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.PageExtractor),
	}
}

// Register adds an extractor for every MIME type it supports.
// Later registrations win for shared types.
func (r *Registry) Register(extractor driven.PageExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mimeType := range extractor.SupportedMIMETypes() {
		r.extractors[mimeType] = extractor
	}
}

// Lookup returns the extractor for a MIME type.
func (r *Registry) Lookup(mimeType string) (driven.PageExtractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	extractor, ok := r.extractors[mimeType]
	return extractor, ok
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.extractors))
	for mimeType := range r.extractors {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}
