package normalizer

import (
	"regexp"
	"strconv"

	"mhsurvey/internal/models"
)

// lowestCGPABand is the one range without decimals on both ends. It maps to a fixed 1.0
// rather than its midpoint.
const lowestCGPABand = "0 - 1.99"

var (
	cgpaRangePattern = regexp.MustCompile(`(\d+\.\d+) - (\d+\.\d+)`)
	leadingIntPat    = regexp.MustCompile(`^\s*([+-]?\d+)`)
	yearPattern      = regexp.MustCompile(`(?i:year) (\d+)`)
)

// Transformer maps raw rows to typed student records.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform converts one raw row. It never fails: unparsable fields come back absent.
func (t *Transformer) Transform(raw models.RawRecord) models.StudentRecord {
	return Normalize(raw)
}

// Normalize converts one raw row into a StudentRecord. Each field is parsed on its own.
func Normalize(raw models.RawRecord) models.StudentRecord {
	return models.StudentRecord{
		Gender:      ParseGender(raw.Get(models.ColumnGender)),
		Depression:  ParseAnswer(raw.Get(models.ColumnDepression)),
		Anxiety:     ParseAnswer(raw.Get(models.ColumnAnxiety)),
		PanicAttack: ParseAnswer(raw.Get(models.ColumnPanicAttack)),
		SoughtHelp:  ParseAnswer(raw.Get(models.ColumnSoughtHelp)),
		CGPA:        ParseCGPA(raw.Get(models.ColumnCGPA)),
		Age:         ParseAge(raw.Get(models.ColumnAge)),
		YearOfStudy: ParseYearOfStudy(raw.Get(models.ColumnYearOfStudy)),
	}
}

// ParseYes is true only for the exact string "Yes".
func ParseYes(s string) bool {
	return s == "Yes"
}

// ParseAnswer keeps the label and derives the boolean with ParseYes.
func ParseAnswer(s string) models.Answer {
	return models.Answer{Label: s, Yes: ParseYes(s)}
}

// ParseGender maps exact "Male"/"Female"; everything else is unknown.
func ParseGender(s string) models.Gender {
	switch g := models.Gender(s); g {
	case models.GenderMale, models.GenderFemale:
		return g
	default:
		return models.GenderUnknown
	}
}

// ParseCGPA returns the midpoint of a "<low> - <high>" decimal range, 1.0 for the
// lowest band, and absent for anything else.
func ParseCGPA(s string) models.Optional[float64] {
	if m := cgpaRangePattern.FindStringSubmatch(s); m != nil {
		low, errLow := strconv.ParseFloat(m[1], 64)
		high, errHigh := strconv.ParseFloat(m[2], 64)

		if errLow == nil && errHigh == nil {
			return models.Some((low + high) / 2)
		}
	}

	if s == lowestCGPABand {
		return models.Some(1.0)
	}

	return models.None[float64]()
}

// ParseAge parses a leading integer, ignoring anything after it.
func ParseAge(s string) models.Optional[int] {
	m := leadingIntPat.FindStringSubmatch(s)
	if m == nil {
		return models.None[int]()
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return models.None[int]()
	}

	return models.Some(n)
}

// ParseYearOfStudy extracts N from "Year N", matching the word case-insensitively.
func ParseYearOfStudy(s string) models.Optional[int] {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return models.None[int]()
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return models.None[int]()
	}

	return models.Some(n)
}
