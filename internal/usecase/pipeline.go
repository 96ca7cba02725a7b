package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buybuddy/backend/internal/domain"
)

// Stage identifies a step of the analysis pipeline.
type Stage string

const (
	StageValidating Stage = "validating"
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageComposing  Stage = "composing"
	StageDone       Stage = "done"
)

// PipelineError annotates a stage failure with the stage that produced it.
// The wrapped error is always one of the domain sentinel errors.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// PipelineMetrics records pipeline outcomes. Implemented by the Prometheus
// collector; a no-op implementation is used when metrics are disabled.
type PipelineMetrics interface {
	RecordStageFailure(stage string)
	RecordPipelineSuccess()
	RecordExtractionLatency(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordStageFailure(string)               {}
func (noopMetrics) RecordPipelineSuccess()                  {}
func (noopMetrics) RecordExtractionLatency(_ time.Duration) {}

// Pipeline sequences validation, extraction, analysis, and composition.
// Stages run strictly in order; the first failure is surfaced to the caller
// annotated with its stage. No stage is retried and nothing is persisted.
type Pipeline struct {
	extractor domain.ContentExtractor
	analyzer  domain.InferenceClient
	composer  *Composer
	metrics   PipelineMetrics
	logger    *slog.Logger
}

// NewPipeline creates a pipeline with its external collaborators injected.
// metrics and logger may be nil.
func NewPipeline(
	extractor domain.ContentExtractor,
	analyzer domain.InferenceClient,
	composer *Composer,
	metrics PipelineMetrics,
	logger *slog.Logger,
) *Pipeline {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		analyzer:  analyzer,
		composer:  composer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Analyze runs one pipeline invocation for a submitted URL and returns the
// composed Product. If the calling context is cancelled mid-pipeline, the
// in-flight stage is cancelled with it and any completed results are
// discarded.
func (p *Pipeline) Analyze(ctx context.Context, rawURL string) (*domain.Product, error) {
	validURL, err := ValidateURL(rawURL)
	if err != nil {
		p.metrics.RecordStageFailure(string(StageValidating))
		return nil, &PipelineError{Stage: StageValidating, Err: err}
	}

	start := time.Now()
	extraction, err := p.extractor.Extract(ctx, validURL)
	if err != nil {
		p.metrics.RecordStageFailure(string(StageExtracting))
		p.logger.Warn("extraction failed", "url", validURL, "error", err)
		return nil, &PipelineError{Stage: StageExtracting, Err: err}
	}
	p.metrics.RecordExtractionLatency(time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, &PipelineError{Stage: StageExtracting, Err: fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err)}
	}

	analysis, err := p.analyzer.Analyze(ctx, extraction)
	if err != nil {
		p.metrics.RecordStageFailure(string(StageAnalyzing))
		p.logger.Warn("analysis failed", "url", validURL, "error", err)
		return nil, &PipelineError{Stage: StageAnalyzing, Err: err}
	}

	product := p.composer.Compose(extraction, analysis, validURL)
	p.metrics.RecordPipelineSuccess()
	p.logger.Info("pipeline done", "url", validURL, "product_id", product.ID)

	return product, nil
}
