package domain

// RawDocument represents the opaque bytes handed to the core by a
// presentation adapter, before ingestion.
type RawDocument struct {
	// URI is the original location (file path, upload name, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
