// Package mcp provides an MCP (Model Context Protocol) server adapter for BidFlow.
// It lets AI assistants extract requirements from tenders and draft proposals.
package mcp

import "errors"

// ErrMissingProposalService is returned when the proposal service is not provided.
var ErrMissingProposalService = errors.New("mcp: proposal service is required")
