package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/services"
)

const (
	// uriScheme is the custom URI scheme for BidFlow resources.
	uriScheme = "bidflow://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "profile",
		Name:        "profile",
		Description: "The business profile proposals are written against",
		MIMEType:    "text/plain",
	}, s.handleProfileResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "pipelines/{name}",
		Name:        "pipeline",
		Description: "Stages of a built-in pipeline (extraction or proposal)",
		MIMEType:    "application/json",
	}, s.handlePipelineResource)
}

// handleProfileResource returns the business profile text.
func (s *Server) handleProfileResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	profile := s.ports.Proposal.Profile()
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     profile.Text,
		}},
	}, nil
}

// handlePipelineResource describes the stages of a built-in pipeline.
func (s *Server) handlePipelineResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var stages []domain.Stage
	switch extractPipelineName(req.Params.URI) {
	case services.ExtractionPipelineName:
		stages = services.ExtractionStages()
	case services.ProposalPipelineName:
		stages = services.ProposalStages()
	default:
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type stageInfo struct {
		ID             string   `json:"id"`
		Role           string   `json:"role"`
		Goal           string   `json:"goal"`
		ExpectedOutput string   `json:"expected_output"`
		Requires       []string `json:"requires,omitempty"`
		ExcerptLimit   int      `json:"excerpt_limit"`
	}

	infos := make([]stageInfo, len(stages))
	for i := range stages {
		requires := make([]string, len(stages[i].Requires))
		for j, r := range stages[i].Requires {
			requires[j] = r.String()
		}
		infos[i] = stageInfo{
			ID:             stages[i].ID.String(),
			Role:           stages[i].Role,
			Goal:           stages[i].Goal,
			ExpectedOutput: stages[i].ExpectedOutput,
			Requires:       requires,
			ExcerptLimit:   stages[i].Limit(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stages: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPipelineName extracts the name from a URI like bidflow://pipelines/{name}.
func extractPipelineName(uri string) string {
	const prefix = uriScheme + "pipelines/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
