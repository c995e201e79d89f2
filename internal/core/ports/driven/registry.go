package driven

// ExtractorRegistry selects the page extractor for a document by MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor. Later registrations win for shared types.
	Register(extractor PageExtractor)

	// Lookup returns the extractor for a MIME type.
	Lookup(mimeType string) (PageExtractor, bool)

	// SupportedMIMETypes returns all MIME types that can be ingested.
	SupportedMIMETypes() []string
}
