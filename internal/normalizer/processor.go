// Package normalizer turns raw survey rows into typed student records.
package normalizer

import (
	"fmt"
	"log/slog"

	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"
)

// Processor validates and normalizes whole tables.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	log         *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{
		validator:   NewValidator(models.RequiredColumns),
		transformer: NewTransformer(),
		log:         log,
	}
}

// Process normalizes every record in input order. It fails only when a row does not carry a
// required column at all; unparsable values become absent fields and are logged at debug.
func (p *Processor) Process(records []models.RawRecord) ([]models.StudentRecord, error) {
	out := make([]models.StudentRecord, 0, len(records))

	debug := p.log.Enabled(slog.LevelDebug)

	for i, raw := range records {
		if err := p.validator.Validate(raw); err != nil {
			return nil, fmt.Errorf("validation failed at row %d: %w", i+1, err)
		}

		rec := p.transformer.Transform(raw)

		if debug {
			p.logAbsent(i+1, raw, rec)
		}

		out = append(out, rec)
	}

	return out, nil
}

func (p *Processor) logAbsent(row int, raw models.RawRecord, rec models.StudentRecord) {
	if !rec.CGPA.Present() {
		p.log.Debug("field absent", "row", row, "field", models.FieldCGPA, "raw", raw.Get(models.ColumnCGPA))
	}

	if !rec.Age.Present() {
		p.log.Debug("field absent", "row", row, "field", models.FieldAge, "raw", raw.Get(models.ColumnAge))
	}

	if !rec.YearOfStudy.Present() {
		p.log.Debug("field absent", "row", row, "field", models.FieldYearOfStudy, "raw", raw.Get(models.ColumnYearOfStudy))
	}

	if !rec.Gender.Known() {
		p.log.Debug("unknown gender", "row", row, "field", models.FieldGender, "raw", raw.Get(models.ColumnGender))
	}
}
