package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// Ingestor converts raw paginated documents into flat text.
type Ingestor struct {
	registry driven.ExtractorRegistry
}

// NewIngestor creates an ingestor dispatching on the given registry.
func NewIngestor(registry driven.ExtractorRegistry) *Ingestor {
	return &Ingestor{registry: registry}
}

// Ingest walks the pages of raw in order and concatenates the text of every
// page that yields any. Pages with no text, or whose extraction fails, are
// skipped. A document that parses but has no text produces an empty
// Document rather than an error; only an unparseable document fails, with
// an *domain.IngestionError.
func (i *Ingestor) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, &domain.IngestionError{Reason: "no document", Err: domain.ErrInvalidInput}
	}

	extractor, ok := i.registry.Lookup(raw.MIMEType)
	if !ok {
		return nil, &domain.IngestionError{
			URI:    raw.URI,
			Reason: fmt.Sprintf("no extractor for %q", raw.MIMEType),
			Err:    domain.ErrUnsupportedType,
		}
	}

	paged, err := extractor.Open(ctx, raw)
	if err != nil {
		return nil, &domain.IngestionError{URI: raw.URI, Reason: "cannot parse document", Err: err}
	}

	logger.Section("Ingestion")
	var (
		text     strings.Builder
		pages    = paged.NumPages()
		nonEmpty int
	)
	for p := 0; p < pages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := paged.PageText(p)
		if err != nil {
			logger.Warnw("page extraction failed, skipping", "uri", raw.URI, "page", p+1, "error", err)
			continue
		}
		if content == "" {
			logger.Debug("Page %d: no text", p+1)
			continue
		}
		text.WriteString(content)
		nonEmpty++
	}

	logger.Debug("Ingested %s: %d/%d pages with text, %d bytes", raw.URI, nonEmpty, pages, text.Len())
	return domain.NewDocument(raw, text.String(), pages, nonEmpty), nil
}
