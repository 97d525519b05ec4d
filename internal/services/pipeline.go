package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/hengadev/vaultx/internal/monitoring"
	"github.com/hengadev/vaultx/internal/wizard"
)

// Stage is one step of the processing pipeline.
type Stage struct {
	Label    string
	Duration time.Duration
}

// DefaultStages are the processing stages with their reference durations.
func DefaultStages() []Stage {
	return []Stage{
		{Label: "Encrypting documents", Duration: 1200 * time.Millisecond},
		{Label: "Extracting profile data via AI", Duration: 2000 * time.Millisecond},
		{Label: "Generating cryptographic commitments", Duration: 1500 * time.Millisecond},
		{Label: "Preparing verification artifacts", Duration: 800 * time.Millisecond},
	}
}

// ProgressFunc is called after each completed stage with its zero-based index.
type ProgressFunc func(index int, stage Stage)

// ProcessingPipeline runs the one-shot processing stages and then extracts the profile.
type ProcessingPipeline struct {
	extractor Extractor
	stages    []Stage
	timeScale float64
	logger    *slog.Logger
}

type PipelineOption func(*ProcessingPipeline)

func WithStages(stages []Stage) PipelineOption {
	return func(p *ProcessingPipeline) { p.stages = slices.Clone(stages) }
}

// WithTimeScale multiplies every stage duration; 0 runs the stages without waiting.
func WithTimeScale(f float64) PipelineOption {
	return func(p *ProcessingPipeline) { p.timeScale = f }
}

func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *ProcessingPipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewProcessingPipeline(extractor Extractor, opts ...PipelineOption) *ProcessingPipeline {
	p := &ProcessingPipeline{
		extractor: extractor,
		stages:    DefaultStages(),
		timeScale: 1,
		logger:    monitoring.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stages returns the configured stages.
func (p *ProcessingPipeline) Stages() []Stage {
	return slices.Clone(p.stages)
}

// Run walks every stage and returns the extraction result. It stops as soon as ctx is done.
func (p *ProcessingPipeline) Run(ctx context.Context, req ExtractionRequest, progress ProgressFunc) (wizard.ExtractionResult, error) {
	start := time.Now()
	for i, stage := range p.stages {
		if err := sleep(ctx, scale(stage.Duration, p.timeScale)); err != nil {
			p.logger.Info("processing interrupted", "stage", stage.Label, "error", err)
			return wizard.ExtractionResult{}, err
		}
		p.logger.Debug("processing stage done", "stage", stage.Label, "index", i)
		if progress != nil {
			progress(i, stage)
		}
	}

	result, err := p.extractor.Extract(ctx, req)
	if err != nil {
		return wizard.ExtractionResult{}, err
	}
	p.logger.Info("processing finished", "files", len(req.Files), "duration", time.Since(start))
	return result, nil
}
