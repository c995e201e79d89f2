package normalisers

import (
	"fmt"
	"os"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// NewRawDocument wraps uploaded bytes, inferring the MIME type from name
// and content.
func NewRawDocument(name string, content []byte) *domain.RawDocument {
	return &domain.RawDocument{
		URI:      name,
		MIMEType: DetectMIMEType(name, content),
		Content:  content,
	}
}

// ReadFile loads a document from disk.
func ReadFile(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return NewRawDocument(path, content), nil
}
