package mcp

import (
	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/normalisers"
)

// Ports aggregates the driving ports and loaders the MCP server needs.
type Ports struct {
	// Proposal runs the pipelines.
	Proposal driving.ProposalService

	// ReadDocument loads a document by path. Defaults to normalisers.ReadFile.
	ReadDocument func(path string) (*domain.RawDocument, error)
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Proposal == nil {
		return ErrMissingProposalService
	}
	return nil
}

func (p *Ports) readDocument(path string) (*domain.RawDocument, error) {
	if p.ReadDocument != nil {
		return p.ReadDocument(path)
	}
	return normalisers.ReadFile(path)
}
