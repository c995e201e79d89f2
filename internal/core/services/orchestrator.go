package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/logger"
)

const tracerName = "github.com/custodia-labs/bidflow/internal/core/services"

// Orchestrator runs an ordered sequence of stages against one document,
// threading each stage's output to the stages that declare it as input.
// It holds no state between runs and is safe to reuse.
type Orchestrator struct {
	name   string
	stages []domain.Stage
	tracer trace.Tracer
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTracerProvider sets the tracer provider used for run and stage spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) OrchestratorOption {
	return func(o *Orchestrator) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewOrchestrator validates the stage sequence and returns an orchestrator
// for it. Every stage must be valid on its own, ids must be unique, and every
// declared input must be produced by a stage earlier in the sequence.
// Violations return a *domain.DependencyError; nothing is sent to a model.
func NewOrchestrator(name string, stages []domain.Stage, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, &domain.DependencyError{Pipeline: name, Reason: "pipeline has no stages"}
	}

	seen := make(map[domain.StageID]bool, len(stages))
	copied := make([]domain.Stage, len(stages))
	for i := range stages {
		stage := stages[i]
		if err := stage.Validate(); err != nil {
			return nil, &domain.DependencyError{Pipeline: name, Stage: stage.ID, Reason: err.Error()}
		}
		if seen[stage.ID] {
			return nil, &domain.DependencyError{Pipeline: name, Stage: stage.ID, Reason: "duplicate stage id"}
		}
		for _, dep := range stage.Requires {
			if !seen[dep] {
				return nil, &domain.DependencyError{Pipeline: name, Stage: stage.ID, Missing: dep}
			}
		}
		seen[stage.ID] = true

		stage.Requires = append([]domain.StageID(nil), stage.Requires...)
		copied[i] = stage
	}

	o := &Orchestrator{
		name:   name,
		stages: copied,
		tracer: otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Name returns the pipeline name.
func (o *Orchestrator) Name() string {
	return o.name
}

// Stages returns a copy of the stage sequence.
func (o *Orchestrator) Stages() []domain.Stage {
	out := make([]domain.Stage, len(o.stages))
	copy(out, o.stages)
	return out
}

// runConfig holds per-run options.
type runConfig struct {
	cache       driven.StageCache
	observer    func(driving.StageEvent)
	temperature *float64
}

// RunOption configures a single Execute call.
type RunOption func(*runConfig)

// WithCache memoises stage outputs in c for this run.
func WithCache(c driven.StageCache) RunOption {
	return func(rc *runConfig) {
		rc.cache = c
	}
}

// WithObserver reports stage progress to fn.
func WithObserver(fn func(driving.StageEvent)) RunOption {
	return func(rc *runConfig) {
		rc.observer = fn
	}
}

// WithTemperature overrides the client's default sampling temperature.
func WithTemperature(t float64) RunOption {
	return func(rc *runConfig) {
		rc.temperature = &t
	}
}

// Execute runs every stage in order. Each stage's prompt is built from the
// outputs committed so far, sent to client, and its output committed under
// the stage id. The first failure aborts the run with a *domain.StageError
// wrapping the original error; no artifact is returned in that case.
func (o *Orchestrator) Execute(
	ctx context.Context,
	client driven.LLMService,
	doc *domain.Document,
	profile domain.BusinessProfile,
	opts ...RunOption,
) (*domain.ProposalArtifact, error) {
	if client == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if doc == nil {
		return nil, fmt.Errorf("execute %s: %w: nil document", o.name, domain.ErrInvalidInput)
	}

	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	runID := uuid.New().String()
	ctx, span := o.tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.String("pipeline.name", o.name),
		attribute.String("pipeline.run_id", runID),
		attribute.String("document.hash", doc.Hash),
		attribute.Int("pipeline.stages", len(o.stages)),
	))
	defer span.End()

	logger.Section("Pipeline " + o.name)
	logger.Infow("pipeline started", "pipeline", o.name, "run_id", runID, "stages", len(o.stages))

	pctx := domain.NewPipelineContext()
	var cached []domain.StageID
	for i := range o.stages {
		stage := &o.stages[i]
		o.notify(cfg, driving.StageEvent{Stage: stage.ID, Index: i, Total: len(o.stages)})

		out, hit, err := o.runStage(ctx, client, stage, pctx, doc, profile, cfg)
		if err != nil {
			o.notify(cfg, driving.StageEvent{Stage: stage.ID, Index: i, Total: len(o.stages), Done: true, Err: err})
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Errorw("pipeline aborted", "pipeline", o.name, "run_id", runID, "stage", stage.ID, "error", err)
			return nil, &domain.StageError{Pipeline: o.name, Stage: stage.ID, Err: err}
		}
		if err := pctx.Put(stage.ID, out); err != nil {
			return nil, &domain.StageError{Pipeline: o.name, Stage: stage.ID, Err: err}
		}
		if hit {
			cached = append(cached, stage.ID)
		}
		o.notify(cfg, driving.StageEvent{Stage: stage.ID, Index: i, Total: len(o.stages), Done: true, Cached: hit})
	}

	final := o.stages[len(o.stages)-1].ID
	content, _ := pctx.Get(final)
	logger.Infow("pipeline complete", "pipeline", o.name, "run_id", runID, "cached_stages", len(cached))

	return &domain.ProposalArtifact{
		RunID:        runID,
		Pipeline:     o.name,
		StageID:      final,
		Content:      content,
		Model:        client.ModelName(),
		CachedStages: cached,
		CreatedAt:    time.Now(),
	}, nil
}

// runStage builds the prompt for one stage and resolves its output from the
// cache or the model.
func (o *Orchestrator) runStage(
	ctx context.Context,
	client driven.LLMService,
	stage *domain.Stage,
	pctx *domain.PipelineContext,
	doc *domain.Document,
	profile domain.BusinessProfile,
	cfg *runConfig,
) (string, bool, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.stage", trace.WithAttributes(
		attribute.String("stage.id", stage.ID.String()),
		attribute.String("stage.role", stage.Role),
	))
	defer span.End()

	prompt, err := stage.BuildPrompt(pctx.View(stage.Requires), doc.Text(), profile.Text)
	if err != nil {
		return "", false, err
	}
	logger.Debug("Stage %s prompt: %d chars (excerpt limit %d)", stage.ID, len(prompt.User), stage.Limit())

	fingerprint := promptFingerprint(client.ModelName(), prompt, cfg.temperature)
	key := driven.CacheKey{DocumentHash: doc.Hash, StageID: stage.ID}
	if cfg.cache != nil {
		entry, err := cfg.cache.Get(ctx, key)
		switch {
		case err == nil && entry.Fingerprint == fingerprint:
			span.SetAttributes(attribute.Bool("stage.cached", true))
			logger.Debug("Stage %s: cache hit", stage.ID)
			return entry.Output, true, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			logger.Warnw("stage cache read failed", "stage", stage.ID, "error", err)
		}
	}

	start := time.Now()
	out, err := RunStage(ctx, client, prompt, cfg.temperature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}
	logger.Infow("stage complete", "stage", stage.ID, "duration", time.Since(start).Round(time.Millisecond))

	if cfg.cache != nil {
		entry := driven.CacheEntry{Output: out, Fingerprint: fingerprint, CreatedAt: time.Now()}
		if err := cfg.cache.Put(ctx, key, entry); err != nil {
			logger.Warnw("stage cache write failed", "stage", stage.ID, "error", err)
		}
	}
	return out, false, nil
}

func (o *Orchestrator) notify(cfg *runConfig, ev driving.StageEvent) {
	if cfg.observer != nil {
		cfg.observer(ev)
	}
}

// RunStage sends an assembled stage prompt to client and returns the raw
// generated text. The persona goes out as the system message.
func RunStage(ctx context.Context, client driven.LLMService, prompt domain.Prompt, temperature *float64) (string, error) {
	messages := make([]driven.ChatMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, driven.ChatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: prompt.User})

	return client.Chat(ctx, messages, driven.ChatOptions{Temperature: temperature})
}

// promptFingerprint identifies the exact request a cached output answered.
func promptFingerprint(model string, prompt domain.Prompt, temperature *float64) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	if temperature != nil {
		h.Write([]byte(strconv.FormatFloat(*temperature, 'f', -1, 64)))
	}
	h.Write([]byte{0})
	h.Write([]byte(prompt.System))
	h.Write([]byte{0})
	h.Write([]byte(prompt.User))
	return hex.EncodeToString(h.Sum(nil))
}
