package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/normalisers/plaintext"
)

// stubLLM records every chat request and answers from a script.
type stubLLM struct {
	mu       sync.Mutex
	model    string
	requests [][]driven.ChatMessage
	temps    []*float64
	// respond produces the answer for the n-th call (0-based).
	respond func(n int, messages []driven.ChatMessage) (string, error)
}

func newStubLLM(responses ...string) *stubLLM {
	return &stubLLM{
		model: "stub-model",
		respond: func(n int, _ []driven.ChatMessage) (string, error) {
			if n < len(responses) {
				return responses[n], nil
			}
			return fmt.Sprintf("output %d", n), nil
		},
	}
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{Temperature: opts.Temperature})
}

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.mu.Lock()
	n := len(s.requests)
	s.requests = append(s.requests, messages)
	s.temps = append(s.temps, opts.Temperature)
	s.mu.Unlock()
	return s.respond(n, messages)
}

func (s *stubLLM) ModelName() string          { return s.model }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// userPrompt returns the user message of the n-th call.
func (s *stubLLM) userPrompt(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.requests[n] {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

// stubPaged is a PagedDocument whose pages may fail.
type stubPaged struct {
	pages []string
	fail  map[int]error
}

func (p *stubPaged) NumPages() int { return len(p.pages) }

func (p *stubPaged) PageText(i int) (string, error) {
	if err := p.fail[i]; err != nil {
		return "", err
	}
	return p.pages[i], nil
}

// stubExtractor opens every document as the configured pages.
type stubExtractor struct {
	paged   driven.PagedDocument
	openErr error
}

func (e *stubExtractor) SupportedMIMETypes() []string { return []string{"application/pdf"} }

func (e *stubExtractor) Open(context.Context, *domain.RawDocument) (driven.PagedDocument, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.paged, nil
}

// stubRegistry serves a single extractor for application/pdf and falls
// back to the plain text extractor for text/plain.
type stubRegistry struct {
	extractor driven.PageExtractor
}

func (r *stubRegistry) Register(driven.PageExtractor) {}

func (r *stubRegistry) Lookup(mimeType string) (driven.PageExtractor, bool) {
	switch mimeType {
	case "application/pdf":
		return r.extractor, r.extractor != nil
	case "text/plain":
		return plaintext.New(), true
	}
	return nil, false
}

func (r *stubRegistry) SupportedMIMETypes() []string { return []string{"application/pdf", "text/plain"} }

// stubProfiles returns a fixed profile and counts loads.
type stubProfiles struct {
	mu    sync.Mutex
	text  string
	loads int
}

func (p *stubProfiles) Load(path string) domain.BusinessProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	if p.text == "" {
		return domain.DefaultProfile(path)
	}
	return domain.BusinessProfile{Text: p.text, Path: path, Source: domain.ProfileSourceFile}
}

// stubPrompts serves template overrides from a map.
type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, bool) {
	tmpl, ok := p[name]
	return tmpl, ok
}

func (p stubPrompts) Reload() {}

func textDoc(text string) *domain.RawDocument {
	return &domain.RawDocument{URI: "rfp.txt", MIMEType: "text/plain", Content: []byte(text)}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
