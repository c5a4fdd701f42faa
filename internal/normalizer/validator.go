package normalizer

import (
	"errors"
	"fmt"

	"mhsurvey/internal/models"
)

// ErrMissingField is returned for a row that lacks a required column entirely.
var ErrMissingField = errors.New("row missing required column")

// Validator checks that raw rows carry the columns the transformer reads.
type Validator struct {
	required []string
}

// NewValidator creates a validator for the given columns.
func NewValidator(required []string) *Validator {
	return &Validator{required: required}
}

// Validate checks the shape of one row. Values are not inspected; an empty cell is valid.
func (v *Validator) Validate(raw models.RawRecord) error {
	for _, col := range v.required {
		if !raw.Has(col) {
			return fmt.Errorf("%w: %q", ErrMissingField, col)
		}
	}

	return nil
}
