package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// DefaultTruncationLimit is the excerpt size, in characters, used by stages
// that do not declare their own limit.
const DefaultTruncationLimit = 6000

// Document is the ingested form of a RawDocument.
// Its text is computed once by the ingestor and cannot be changed afterwards.
type Document struct {
	// URI is the original location of the document.
	URI string

	// MIMEType is the content type the document was ingested as.
	MIMEType string

	// Hash is the hex sha256 of the raw bytes and identifies the document.
	Hash string

	// Pages is the number of pages walked during ingestion.
	Pages int

	// NonEmptyPages is the number of pages that contributed text.
	NonEmptyPages int

	text string
}

// NewDocument builds a Document from its raw form and extracted text.
func NewDocument(raw *RawDocument, text string, pages, nonEmpty int) *Document {
	return &Document{
		URI:           raw.URI,
		MIMEType:      raw.MIMEType,
		Hash:          ContentHash(raw.Content),
		Pages:         pages,
		NonEmptyPages: nonEmpty,
		text:          text,
	}
}

// Text returns the flat text of the document.
func (d *Document) Text() string {
	return d.text
}

// IsEmpty reports whether ingestion produced no text.
// This is distinct from an ingestion failure.
func (d *Document) IsEmpty() bool {
	return d.text == ""
}

// Excerpt returns at most limit characters from the start of the text.
// A limit <= 0 selects DefaultTruncationLimit.
func (d *Document) Excerpt(limit int) string {
	return Truncate(d.text, limit)
}

// Truncate cuts s to at most limit characters (runes), counting from the start.
// No attempt is made to respect sentence boundaries.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultTruncationLimit
	}
	if len(s) <= limit {
		return s
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// ContentHash returns the hex sha256 of b.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
