package domain

import "time"

// ProposalArtifact is the product of a successful pipeline run: the output
// of its final stage.
type ProposalArtifact struct {
	// RunID identifies the run that produced the artifact.
	RunID string

	// Pipeline is the name of the pipeline that ran.
	Pipeline string

	// StageID is the final stage.
	StageID StageID

	// Content is the markdown text produced by the final stage.
	Content string

	// Model is the language model that produced the content.
	Model string

	// CachedStages lists stages whose output was served from a cache.
	CachedStages []StageID

	// CreatedAt is when the run completed.
	CreatedAt time.Time
}
