package normalisers

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/bidflow/internal/normalisers/docx"
	"github.com/custodia-labs/bidflow/internal/normalisers/html"
	"github.com/custodia-labs/bidflow/internal/normalisers/pdf"
	"github.com/custodia-labs/bidflow/internal/normalisers/plaintext"
)

// Well-known MIME types.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeText = "text/plain"
	MIMETypeHTML = "text/html"
)

// extensionTypes maps file extensions to MIME types.
var extensionTypes = map[string]string{
	".pdf":      MIMETypePDF,
	".docx":     MIMETypeDOCX,
	".txt":      MIMETypeText,
	".text":     MIMETypeText,
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     MIMETypeHTML,
	".htm":      MIMETypeHTML,
}

// RegisterDefaults registers the built-in extractors.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
}

// DefaultRegistry returns a registry holding the built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// DetectMIMEType infers a document's MIME type from its file name, falling
// back to content sniffing. Parameters such as charset are dropped.
func DetectMIMEType(name string, content []byte) string {
	if mimeType, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mimeType
	}
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return MIMETypePDF
	}
	sniffed := http.DetectContentType(content)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return strings.TrimSpace(sniffed)
}
