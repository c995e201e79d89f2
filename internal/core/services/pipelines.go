package services

import (
	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// Built-in pipeline and stage names.
const (
	ExtractionPipelineName = "extraction"
	ProposalPipelineName   = "proposal"

	StageRequirements domain.StageID = "requirements"
	StageAudit        domain.StageID = "audit"
	StageSynthesis    domain.StageID = "synthesis"
)

// Excerpt sizes of the built-in stages.
const (
	extractionLimit = 5000
	auditLimit      = 6000
)

// ExtractionStages returns the single-stage requirements extraction pipeline.
func ExtractionStages() []domain.Stage {
	return []domain.Stage{
		{
			ID:              StageRequirements,
			Role:            "Requirement Analyst",
			Goal:            "Extract 5 mandatory requirements from the text.",
			Backstory:       "Specialist in identifying project scope and deliverables.",
			PromptTemplate:  "Summarize the 5 most important technical requirements from this text: {{.Document}}",
			ExpectedOutput:  "A bulleted list of 5 requirements.",
			TruncationLimit: extractionLimit,
		},
	}
}

// ProposalStages returns the audit and synthesis pipeline. Synthesis reads
// the audit's output, not the source document.
func ProposalStages() []domain.Stage {
	return []domain.Stage{
		{
			ID:        StageAudit,
			Role:      "Compliance Auditor",
			Goal:      "Ensure our response addresses every technical requirement found.",
			Backstory: "Expert in matching corporate capabilities to project needs.",
			PromptTemplate: "Compare these tender requirements: {{.Document}} against our company profile: {{.Profile}}. " +
				"Find the 3 strongest 'selling points' we have for this client.",
			ExpectedOutput:  "An internal analysis of why we are the right choice.",
			TruncationLimit: auditLimit,
		},
		{
			ID:        StageSynthesis,
			Role:      "Senior Proposal Writer",
			Goal:      "Write a persuasive, high-value proposal based on our profile and the tender.",
			Backstory: "Master of technical sales and executive communication.",
			PromptTemplate: "Using the audit results, write a formal 4-section proposal: " +
				"Executive Summary, Proposed Solution, Past Experience, and Call to Action.\n\n" +
				"Audit results:\n{{.Inputs.audit}}\n\n" +
				"Our company profile:\n{{.Profile}}",
			ExpectedOutput: "A professional, markdown-formatted business proposal document.",
			Requires:       []domain.StageID{StageAudit},
		},
	}
}

// ExtractionPipeline builds the extraction orchestrator, applying template
// overrides from prompts when non-nil.
func ExtractionPipeline(prompts driven.PromptStore, opts ...OrchestratorOption) (*Orchestrator, error) {
	return NewOrchestrator(ExtractionPipelineName, applyOverrides(ExtractionStages(), prompts), opts...)
}

// ProposalPipeline builds the proposal orchestrator, applying template
// overrides from prompts when non-nil.
func ProposalPipeline(prompts driven.PromptStore, opts ...OrchestratorOption) (*Orchestrator, error) {
	return NewOrchestrator(ProposalPipelineName, applyOverrides(ProposalStages(), prompts), opts...)
}

// applyOverrides replaces built-in templates with user overrides. Overridden
// templates are validated like any other when the orchestrator is built.
func applyOverrides(stages []domain.Stage, prompts driven.PromptStore) []domain.Stage {
	if prompts == nil {
		return stages
	}
	for i := range stages {
		if tmpl, ok := prompts.Load(string(stages[i].ID)); ok {
			logger.Debug("Using prompt override for stage %s", stages[i].ID)
			stages[i].PromptTemplate = tmpl
		}
	}
	return stages
}
