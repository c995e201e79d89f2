package driven

import (
	"context"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// PageExtractor opens raw documents of specific MIME types as a sequence
// of pages. Each extractor handles one document format (e.g., PDF, DOCX).
type PageExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Open parses the raw document. It fails only when the document
	// structure cannot be read at all.
	Open(ctx context.Context, raw *domain.RawDocument) (PagedDocument, error)
}

// PagedDocument is a parsed document whose pages can be read in order.
type PagedDocument interface {
	// NumPages returns the page count. Zero is valid.
	NumPages() int

	// PageText returns the text of page i (0-based). An error means the
	// page could not be extracted; callers treat it as a page without text.
	PageText(i int) (string, error)
}
