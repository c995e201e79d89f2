// Package pdf extracts page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	ledongpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.PageExtractor = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Open parses the PDF cross-reference structure. Page content is decoded
// lazily by PageText.
func (n *Normaliser) Open(_ context.Context, raw *domain.RawDocument) (doc driven.PagedDocument, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := ledongpdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	// Reading the page tree can panic too, so it happens here under the guard.
	return &document{reader: reader, pages: reader.NumPage()}, nil
}

// document is an opened PDF.
type document struct {
	reader *ledongpdf.Reader
	pages  int
}

// NumPages returns the page count read at Open.
func (d *document) NumPages() int {
	return d.pages
}

// PageText returns the plain text of page i (0-based). Pages without a
// content stream yield empty text.
func (d *document) PageText(i int) (text string, err error) {
	if i < 0 || i >= d.pages {
		return "", domain.ErrNotFound
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", i+1, r)
		}
	}()

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", i+1, err)
	}
	return text, nil
}
