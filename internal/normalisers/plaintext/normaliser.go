// Package plaintext extracts pages from plain text documents. Form feeds
// separate pages; text without any is a single page.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// pageSeparator is the form feed character used by text exports of
// paginated documents.
const pageSeparator = "\f"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
	}
}

// Open splits the document into pages. Invalid UTF-8 is rejected.
func (n *Normaliser) Open(_ context.Context, raw *domain.RawDocument) (driven.PagedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrInvalidInput
	}
	if len(raw.Content) == 0 {
		return Pages(nil), nil
	}
	return Pages(strings.Split(string(raw.Content), pageSeparator)), nil
}

// Pages is an in-memory paged document.
type Pages []string

// NumPages returns the page count.
func (p Pages) NumPages() int {
	return len(p)
}

// PageText returns the text of page i.
func (p Pages) PageText(i int) (string, error) {
	if i < 0 || i >= len(p) {
		return "", domain.ErrNotFound
	}
	return p[i], nil
}
