package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

// Ensure ProposalService implements the interface.
var _ driving.ProposalService = (*ProposalService)(nil)

// ProposalService ingests client documents and runs the built-in pipelines
// against them. It owns the optional stage cache; the orchestrators it
// builds stay stateless.
type ProposalService struct {
	ingestor    *Ingestor
	profiles    driven.ProfileStore
	profilePath string
	llm         driven.LLMService

	promptStore    driven.PromptStore
	cache          driven.StageCache
	temperature    *float64
	tracerProvider trace.TracerProvider
}

// NewProposalService creates a new proposal service.
func NewProposalService(
	ingestor *Ingestor,
	profiles driven.ProfileStore,
	profilePath string,
	llm driven.LLMService,
) *ProposalService {
	return &ProposalService{
		ingestor:    ingestor,
		profiles:    profiles,
		profilePath: profilePath,
		llm:         llm,
	}
}

// SetPromptStore sets the store of user template overrides.
func (s *ProposalService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetStageCache sets the cache used to memoise stage outputs across runs.
func (s *ProposalService) SetStageCache(cache driven.StageCache) {
	s.cache = cache
}

// SetTemperature overrides the client's sampling temperature for every run.
func (s *ProposalService) SetTemperature(t float64) {
	s.temperature = &t
}

// SetTracerProvider sets the tracer provider handed to orchestrators.
func (s *ProposalService) SetTracerProvider(tp trace.TracerProvider) {
	s.tracerProvider = tp
}

// Ingest converts a raw document into text without running any stage.
func (s *ProposalService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return s.ingestor.Ingest(ctx, raw)
}

// Profile returns the business profile the pipelines would use.
func (s *ProposalService) Profile() domain.BusinessProfile {
	return s.profiles.Load(s.profilePath)
}

// ExtractRequirements runs the extraction pipeline.
func (s *ProposalService) ExtractRequirements(
	ctx context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	orch, err := ExtractionPipeline(s.promptStore, s.orchestratorOptions()...)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, orch, raw, opts)
}

// GenerateProposal runs the audit and synthesis pipeline.
func (s *ProposalService) GenerateProposal(
	ctx context.Context, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	orch, err := ProposalPipeline(s.promptStore, s.orchestratorOptions()...)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, orch, raw, opts)
}

// RunPipeline runs a caller-supplied stage sequence.
func (s *ProposalService) RunPipeline(
	ctx context.Context, name string, stages []domain.Stage, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	orch, err := NewOrchestrator(name, stages, s.orchestratorOptions()...)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, orch, raw, opts)
}

// InvalidateCache drops memoised outputs for a document, or everything
// when documentHash is empty.
func (s *ProposalService) InvalidateCache(ctx context.Context, documentHash string) error {
	if s.cache == nil {
		return nil
	}
	if documentHash == "" {
		return s.cache.Clear(ctx)
	}
	return s.cache.Invalidate(ctx, documentHash)
}

// run ingests raw, loads the profile and executes orch.
func (s *ProposalService) run(
	ctx context.Context, orch *Orchestrator, raw *domain.RawDocument, opts driving.RunOptions,
) (*domain.ProposalArtifact, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	doc, err := s.ingestor.Ingest(ctx, raw)
	if err != nil {
		return nil, err
	}
	if doc.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", raw.URI, domain.ErrEmptyDocument)
	}

	profile := s.profiles.Load(s.profilePath)

	var runOpts []RunOption
	if s.cache != nil && !opts.NoCache {
		runOpts = append(runOpts, WithCache(s.cache))
	}
	if opts.OnStage != nil {
		runOpts = append(runOpts, WithObserver(opts.OnStage))
	}
	if s.temperature != nil {
		runOpts = append(runOpts, WithTemperature(*s.temperature))
	}

	return orch.Execute(ctx, s.llm, doc, profile, runOpts...)
}

func (s *ProposalService) orchestratorOptions() []OrchestratorOption {
	if s.tracerProvider == nil {
		return nil
	}
	return []OrchestratorOption{WithTracerProvider(s.tracerProvider)}
}
