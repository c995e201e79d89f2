package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

type mockProposalService struct {
	artifact *domain.ProposalArtifact
	profile  domain.BusinessProfile
	err      error

	called      string
	pipeline    string
	stages      []domain.Stage
	lastRaw     *domain.RawDocument
	lastOpts    driving.RunOptions
	invalidated *string
}

func (m *mockProposalService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return domain.NewDocument(raw, string(raw.Content), 1, 1), m.err
}

func (m *mockProposalService) ExtractRequirements(
	_ context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	return m.record("extract", raw, opts)
}

func (m *mockProposalService) GenerateProposal(
	_ context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	return m.record("proposal", raw, opts)
}

func (m *mockProposalService) RunPipeline(
	_ context.Context, name string, stages []domain.Stage, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	m.pipeline, m.stages = name, stages
	return m.record("run", raw, opts)
}

func (m *mockProposalService) record(
	called string, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	m.called, m.lastRaw, m.lastOpts = called, raw, opts
	if opts.OnStage != nil {
		ev := driving.StageEvent{Stage: "requirements", Total: 1, Done: true, Err: m.err}
		opts.OnStage(ev)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.artifact, nil
}

func (m *mockProposalService) Profile() domain.BusinessProfile {
	return m.profile
}

func (m *mockProposalService) InvalidateCache(_ context.Context, documentHash string) error {
	m.invalidated = &documentHash
	return m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error

	setKey, setValue string
	provider         domain.AIProvider
	model, apiKey    string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "bogus" {
		return domain.ErrInvalidInput
	}
	m.setKey, m.setValue = key, value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.model", "llm.provider"}
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.validateErr
}

// setupTestServices installs mocks as the package services and resets
// command flags for the duration of the test.
func setupTestServices(t *testing.T) (*mockProposalService, *mockSettingsService) {
	t.Helper()

	proposal := &mockProposalService{
		artifact: &domain.ProposalArtifact{Pipeline: "extraction", Content: "1. Uptime 99.9%"},
		profile:  domain.DefaultProfile(domain.DefaultProfilePath),
	}
	settings := &mockSettingsService{settings: domain.DefaultAppSettings()}

	oldProposal, oldSettings, oldWatcher := proposalService, settingsService, promptWatcher
	proposalService, settingsService, promptWatcher = proposal, settings, nil

	outputPath, noCache, pipelinePath, cacheDocument, serveAddr = "", false, "", "", ""

	t.Cleanup(func() {
		proposalService, settingsService, promptWatcher = oldProposal, oldSettings, oldWatcher
		outputPath, noCache, pipelinePath, cacheDocument, serveAddr = "", false, "", "", ""
	})
	return proposal, settings
}

// executeCommand runs the root command with args and returns what it wrote
// to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
