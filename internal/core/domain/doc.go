// Package domain defines the core business entities for BidFlow.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes of a client document
//   - Document: The ingested, flat text of a RawDocument
//   - Stage: A unit of pipeline work and its prompt template
//   - PipelineContext: The append-only record of stage outputs
//   - ProposalArtifact: The final output of a pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
