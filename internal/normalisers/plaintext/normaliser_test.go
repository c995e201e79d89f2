package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestOpen_NilDocument(t *testing.T) {
	_, err := New().Open(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_InvalidUTF8(t *testing.T) {
	raw := &domain.RawDocument{URI: "bad.txt", Content: []byte{0xff, 0xfe, 0x00}}

	_, err := New().Open(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_SinglePage(t *testing.T) {
	raw := &domain.RawDocument{URI: "rfp.txt", Content: []byte("Must support 99.9% uptime.")}

	doc, err := New().Open(context.Background(), raw)

	require.NoError(t, err)
	require.Equal(t, 1, doc.NumPages())
	text, err := doc.PageText(0)
	require.NoError(t, err)
	assert.Equal(t, "Must support 99.9% uptime.", text)
}

func TestOpen_FormFeedPages(t *testing.T) {
	raw := &domain.RawDocument{URI: "rfp.txt", Content: []byte("page one\f\fpage three")}

	doc, err := New().Open(context.Background(), raw)

	require.NoError(t, err)
	require.Equal(t, 3, doc.NumPages())
	second, _ := doc.PageText(1)
	third, _ := doc.PageText(2)
	assert.Empty(t, second)
	assert.Equal(t, "page three", third)
}

func TestOpen_Empty(t *testing.T) {
	doc, err := New().Open(context.Background(), &domain.RawDocument{URI: "empty.txt"})

	require.NoError(t, err)
	assert.Equal(t, 0, doc.NumPages())
}

func TestPages_OutOfRange(t *testing.T) {
	_, err := Pages{"a"}.PageText(1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageExtractor = (*Normaliser)(nil)
	var _ driven.PagedDocument = Pages(nil)
}
