// Package validator checks normalized survey data and signed reports.
package validator

import (
	"errors"
	"fmt"
	"io"

	"mhsurvey/internal/aggregator"
	"mhsurvey/internal/config"
	"mhsurvey/internal/models"
	"mhsurvey/pkg/metadata"
)

// ErrQualityThreshold is returned in strict mode when a field exceeds the absent threshold.
var ErrQualityThreshold = errors.New("data quality threshold exceeded")

// Result contains per-field quality counts for one table.
type Result struct {
	Fields   []models.FieldQuality
	Warnings []string
	Stats    Stats
	IsValid  bool
}

// Stats contains row-level counts.
type Stats struct {
	TotalRows      int
	CompleteRows   int
	RowsWithAbsent int
}

// QualityValidator counts absent and unanswered fields.
type QualityValidator struct {
	cfg config.ValidationConfig
}

// NewQualityValidator creates a new validator.
func NewQualityValidator(cfg config.ValidationConfig) *QualityValidator {
	return &QualityValidator{cfg: cfg}
}

// Check inspects records. Warnings are added for every field absent in more than
// AbsentWarnPercent of rows; in strict mode such a field also marks the result invalid.
func (v *QualityValidator) Check(records []models.StudentRecord) *Result {
	result := &Result{
		IsValid:  true,
		Warnings: []string{},
		Stats:    Stats{TotalRows: len(records)},
	}

	absent := map[string]int{}

	for _, r := range records {
		missing := absentFields(r)
		for _, f := range missing {
			absent[f]++
		}

		if len(missing) > 0 {
			result.Stats.RowsWithAbsent++
		}

		if aggregator.Complete(r) {
			result.Stats.CompleteRows++
		}
	}

	for _, field := range fieldOrder {
		fq := models.FieldQuality{
			Field:   field,
			Absent:  absent[field],
			Percent: aggregator.Percent(absent[field], len(records)),
		}
		result.Fields = append(result.Fields, fq)

		if len(records) > 0 && fq.Percent > v.cfg.AbsentWarnPercent {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s absent in %d of %d rows (%d%%)", field, fq.Absent, len(records), fq.Percent))

			if v.cfg.Strict {
				result.IsValid = false
			}
		}
	}

	return result
}

var fieldOrder = []string{
	models.FieldGender,
	models.FieldDepression,
	models.FieldAnxiety,
	models.FieldPanicAttack,
	models.FieldSoughtHelp,
	models.FieldCGPA,
	models.FieldAge,
	models.FieldYearOfStudy,
}

func absentFields(r models.StudentRecord) []string {
	var out []string

	if !r.Gender.Known() {
		out = append(out, models.FieldGender)
	}

	if !r.Depression.Answered() {
		out = append(out, models.FieldDepression)
	}

	if !r.Anxiety.Answered() {
		out = append(out, models.FieldAnxiety)
	}

	if !r.PanicAttack.Answered() {
		out = append(out, models.FieldPanicAttack)
	}

	if !r.SoughtHelp.Answered() {
		out = append(out, models.FieldSoughtHelp)
	}

	if !r.CGPA.Present() {
		out = append(out, models.FieldCGPA)
	}

	if !r.Age.Present() {
		out = append(out, models.FieldAge)
	}

	if !r.YearOfStudy.Present() {
		out = append(out, models.FieldYearOfStudy)
	}

	return out
}

// Err returns ErrQualityThreshold for an invalid result, nil otherwise.
func (r *Result) Err() error {
	if r.IsValid {
		return nil
	}

	return fmt.Errorf("%w: %d warning(s)", ErrQualityThreshold, len(r.Warnings))
}

// Quality converts the result into its report form.
func (r *Result) Quality() models.Quality {
	return models.Quality{
		Fields:   append([]models.FieldQuality(nil), r.Fields...),
		Warnings: append([]string{}, r.Warnings...),
		Rows:     r.Stats.TotalRows,
	}
}

// String returns string representation of validation result.
func (r *Result) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Total: %d | Complete: %d | With absent: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.CompleteRows,
		r.Stats.RowsWithAbsent,
		len(r.Warnings),
	)
}

// PrintWarnings writes validation warnings to w.
func (r *Result) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Data Quality Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}

// ValidateIntegrity checks a signed report against its metadata block.
func ValidateIntegrity(content string) error {
	if _, err := metadata.Verify(content); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	return nil
}
