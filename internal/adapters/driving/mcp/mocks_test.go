package mcp

import (
	"context"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

// mockProposalService is a mock implementation of driving.ProposalService.
type mockProposalService struct {
	artifact *domain.ProposalArtifact
	profile  domain.BusinessProfile
	err      error

	lastRaw  *domain.RawDocument
	lastOpts driving.RunOptions
	called   string
}

func (m *mockProposalService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	m.lastRaw = raw
	return domain.NewDocument(raw, string(raw.Content), 1, 1), m.err
}

func (m *mockProposalService) ExtractRequirements(
	_ context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	m.called, m.lastRaw, m.lastOpts = "extract", raw, opts
	return m.artifact, m.err
}

func (m *mockProposalService) GenerateProposal(
	_ context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	m.called, m.lastRaw, m.lastOpts = "proposal", raw, opts
	return m.artifact, m.err
}

func (m *mockProposalService) RunPipeline(
	_ context.Context, _ string, _ []domain.Stage, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	m.called, m.lastRaw, m.lastOpts = "run", raw, opts
	return m.artifact, m.err
}

func (m *mockProposalService) Profile() domain.BusinessProfile {
	return m.profile
}

func (m *mockProposalService) InvalidateCache(context.Context, string) error {
	return m.err
}

// staticReader serves every path with the same text document.
func staticReader(text string) func(string) (*domain.RawDocument, error) {
	return func(path string) (*domain.RawDocument, error) {
		return &domain.RawDocument{URI: path, MIMEType: "text/plain", Content: []byte(text)}, nil
	}
}
