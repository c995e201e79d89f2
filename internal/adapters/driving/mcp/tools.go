package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
)

// DocumentInput is the input schema shared by the pipeline tools.
type DocumentInput struct {
	Path    string `json:"path" jsonschema:"path to the tender document (PDF, DOCX, HTML or text)"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"ignore memoised stage outputs"`
}

// ArtifactOutput is the output schema of the pipeline tools.
type ArtifactOutput struct {
	Content      string   `json:"content"`
	Pipeline     string   `json:"pipeline"`
	Model        string   `json:"model"`
	RunID        string   `json:"run_id"`
	CachedStages []string `json:"cached_stages,omitempty"`
}

type pipelineFunc func(context.Context, *domain.RawDocument, driving.RunOptions) (*domain.ProposalArtifact, error)

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_requirements",
		Description: "Summarise the 5 most important technical requirements of a tender document",
	}, s.handleExtractRequirements)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "generate_proposal",
		Description: "Audit a tender against the business profile and write a four-section proposal " +
			"(Executive Summary, Proposed Solution, Past Experience, Call to Action)",
	}, s.handleGenerateProposal)
}

func (s *Server) handleExtractRequirements(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ArtifactOutput, error) {
	return s.runPipeline(ctx, input, s.ports.Proposal.ExtractRequirements)
}

func (s *Server) handleGenerateProposal(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ArtifactOutput, error) {
	return s.runPipeline(ctx, input, s.ports.Proposal.GenerateProposal)
}

func (s *Server) runPipeline(
	ctx context.Context, input DocumentInput, run pipelineFunc,
) (*mcp.CallToolResult, ArtifactOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, ArtifactOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	raw, err := s.ports.readDocument(path)
	if err != nil {
		return nil, ArtifactOutput{}, err
	}

	artifact, err := run(ctx, raw, driving.RunOptions{NoCache: input.NoCache})
	if err != nil {
		return nil, ArtifactOutput{}, err
	}

	cached := make([]string, len(artifact.CachedStages))
	for i, id := range artifact.CachedStages {
		cached[i] = id.String()
	}
	return nil, ArtifactOutput{
		Content:      artifact.Content,
		Pipeline:     artifact.Pipeline,
		Model:        artifact.Model,
		RunID:        artifact.RunID,
		CachedStages: cached,
	}, nil
}
