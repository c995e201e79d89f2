package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/normalisers"
)

// MaxUploadBytes caps the size of an uploaded document.
const MaxUploadBytes = 32 << 20

// documentField is the multipart field carrying the document.
const documentField = "document"

// ArtifactResponse is the JSON form of a pipeline result.
type ArtifactResponse struct {
	Content      string    `json:"content"`
	Pipeline     string    `json:"pipeline"`
	Stage        string    `json:"stage"`
	Model        string    `json:"model"`
	RunID        string    `json:"run_id"`
	CachedStages []string  `json:"cached_stages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileResponse is the JSON form of the business profile.
type ProfileResponse struct {
	Text   string `json:"text"`
	Path   string `json:"path"`
	Source string `json:"source"`
}

// ProposalHandler serves the pipeline endpoints.
type ProposalHandler struct {
	proposals driving.ProposalService
}

// NewProposalHandler creates a handler backed by svc.
func NewProposalHandler(svc driving.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: svc}
}

type pipelineFunc func(context.Context, *domain.RawDocument, driving.RunOptions) (*domain.ProposalArtifact, error)

// Extract handles POST /v1/extract.
func (h *ProposalHandler) Extract(c *gin.Context) {
	h.run(c, h.proposals.ExtractRequirements)
}

// Propose handles POST /v1/proposal.
func (h *ProposalHandler) Propose(c *gin.Context) {
	h.run(c, h.proposals.GenerateProposal)
}

// Profile handles GET /v1/profile.
func (h *ProposalHandler) Profile(c *gin.Context) {
	p := h.proposals.Profile()
	RespondOK(c, ProfileResponse{Text: p.Text, Path: p.Path, Source: string(p.Source)})
}

func (h *ProposalHandler) run(c *gin.Context, pipeline pipelineFunc) {
	raw, err := readUpload(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}

	opts := driving.RunOptions{NoCache: c.PostForm("no_cache") == "true"}
	artifact, err := pipeline(c.Request.Context(), raw, opts)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}
	RespondOK(c, toResponse(artifact))
}

// readUpload reads the multipart document field.
func readUpload(c *gin.Context) (*domain.RawDocument, error) {
	// Leave room for the multipart framing around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	fh, err := c.FormFile(documentField)
	if err != nil {
		return nil, fmt.Errorf("missing %q file field: %w", documentField, err)
	}
	if fh.Size > MaxUploadBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxUploadBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return normalisers.NewRawDocument(fh.Filename, content), nil
}

func toResponse(a *domain.ProposalArtifact) ArtifactResponse {
	cached := make([]string, len(a.CachedStages))
	for i, id := range a.CachedStages {
		cached[i] = id.String()
	}
	return ArtifactResponse{
		Content:      a.Content,
		Pipeline:     a.Pipeline,
		Stage:        a.StageID.String(),
		Model:        a.Model,
		RunID:        a.RunID,
		CachedStages: cached,
		CreatedAt:    a.CreatedAt,
	}
}
