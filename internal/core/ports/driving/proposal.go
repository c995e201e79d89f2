package driving

import (
	"context"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// ProposalService is the entry point presentation adapters use to run the
// pipelines against a client document.
type ProposalService interface {
	// Ingest converts a raw document into text without running any stage.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// ExtractRequirements runs the extraction pipeline and returns the
	// highlighted requirements.
	ExtractRequirements(ctx context.Context, raw *domain.RawDocument, opts RunOptions) (*domain.ProposalArtifact, error)

	// GenerateProposal runs the audit and synthesis pipeline and returns
	// the finished proposal.
	GenerateProposal(ctx context.Context, raw *domain.RawDocument, opts RunOptions) (*domain.ProposalArtifact, error)

	// RunPipeline runs a caller-supplied stage sequence.
	RunPipeline(
		ctx context.Context, name string, stages []domain.Stage, raw *domain.RawDocument, opts RunOptions,
	) (*domain.ProposalArtifact, error)

	// Profile returns the business profile the pipelines would use.
	Profile() domain.BusinessProfile

	// InvalidateCache drops memoised outputs for a document hash, or all
	// outputs when documentHash is empty.
	InvalidateCache(ctx context.Context, documentHash string) error
}

// StageEvent reports the progress of a single stage.
type StageEvent struct {
	// Stage is the stage concerned.
	Stage domain.StageID

	// Index is the 0-based position of the stage in the pipeline.
	Index int

	// Total is the number of stages in the pipeline.
	Total int

	// Done is false when the stage starts and true when it finishes.
	Done bool

	// Cached is true when the output came from the stage cache.
	Cached bool

	// Err is set when the stage failed.
	Err error
}

// RunOptions tunes a single pipeline run.
type RunOptions struct {
	// NoCache bypasses the stage cache for this run.
	NoCache bool

	// OnStage, when set, receives progress events.
	OnStage func(StageEvent)
}
