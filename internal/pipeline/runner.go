// Package pipeline runs Loader, Normalizer, quality checks and Aggregator as one pass.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"mhsurvey/internal/aggregator"
	"mhsurvey/internal/config"
	"mhsurvey/internal/loader"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"
	"mhsurvey/internal/normalizer"
	"mhsurvey/internal/validator"

	"github.com/google/uuid"
)

// Version is stamped into signed reports.
const Version = "1.0.0"

// Result is everything one run produced.
type Result struct {
	Report     models.Report
	Records    []models.StudentRecord
	Validation *validator.Result
	Duration   time.Duration
}

// Runner executes the pipeline against a configured source. It holds no state between runs.
type Runner struct {
	cfg       *config.Config
	loader    *loader.Loader
	processor *normalizer.Processor
	quality   *validator.QualityValidator
	log       *logger.Logger
	now       func() time.Time
}

// NewRunner wires the pipeline stages from cfg.
func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	fetcher := loader.NewFetcher(&cfg.Retry, log)

	return &Runner{
		cfg:       cfg,
		loader:    loader.NewLoader(fetcher, log),
		processor: normalizer.NewProcessor(log),
		quality:   validator.NewQualityValidator(cfg.Validation),
		log:       log,
		now:       time.Now,
	}
}

// Run loads, normalizes, checks and aggregates the source. Loader errors are returned
// wrapped so callers can test for loader.ErrSourceUnreadable and loader.ErrMissingColumn.
// In strict mode a failed quality check is returned as validator.ErrQualityThreshold.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()
	runID := uuid.NewString()
	log := r.log.With("run", runID)

	table, err := r.loader.Load(ctx, r.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}

	records, err := r.processor.Process(table.Records)
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}

	check := r.quality.Check(records)
	for _, w := range check.Warnings {
		log.Warn("data quality", "warning", w)
	}

	if err := check.Err(); err != nil {
		return nil, err
	}

	report := Assemble(records)
	report.RunID = runID
	report.Source = r.cfg.Source.GetSource()
	report.GeneratedAt = start.UTC()
	report.Quality = check.Quality()

	duration := r.now().Sub(start)

	log.Info("pipeline complete",
		"records", len(records),
		"answered", report.Overview.Total,
		"groups", len(report.GenderGroups),
		"parallel", len(report.Parallel.Records),
		"duration", duration,
	)

	return &Result{
		Report:     report,
		Records:    records,
		Validation: check,
		Duration:   duration,
	}, nil
}

// Assemble computes every aggregate over records. Run metadata is left empty.
func Assemble(records []models.StudentRecord) models.Report {
	return models.Report{
		Overview:     aggregator.Overview(records),
		GenderGroups: aggregator.GroupByGender(records),
		Parallel:     aggregator.ParallelCoordinates(records),
		Summary:      aggregator.Summarize(records),
	}
}
