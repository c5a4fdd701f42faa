// Package models defines the survey records that flow through the pipeline.
package models

// Source column labels. The survey exports question text verbatim as headers.
const (
	ColumnGender      = "Choose your gender"
	ColumnCGPA        = "What is your CGPA?"
	ColumnAge         = "Age"
	ColumnYearOfStudy = "Your current year of Study"
	ColumnDepression  = "Do you have Depression?"
	ColumnAnxiety     = "Do you have Anxiety?"
	ColumnPanicAttack = "Do you have Panic attack?"
	ColumnSoughtHelp  = "Did you seek any specialist for a treatment?"
)

// RequiredColumns lists every column the loader insists on.
var RequiredColumns = []string{
	ColumnGender,
	ColumnCGPA,
	ColumnAge,
	ColumnYearOfStudy,
	ColumnDepression,
	ColumnAnxiety,
	ColumnPanicAttack,
	ColumnSoughtHelp,
}

// Field names used in diagnostics and quality reports, in StudentRecord order.
const (
	FieldGender      = "gender"
	FieldDepression  = "depression"
	FieldAnxiety     = "anxiety"
	FieldPanicAttack = "panicAttack"
	FieldSoughtHelp  = "soughtHelp"
	FieldCGPA        = "cgpa"
	FieldAge         = "age"
	FieldYearOfStudy = "yearOfStudy"
)

// RawRecord is one source row keyed by column label. It is immutable once built.
type RawRecord struct {
	fields map[string]string
}

// NewRawRecord copies fields into a new RawRecord.
func NewRawRecord(fields map[string]string) RawRecord {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}

	return RawRecord{fields: cp}
}

// Get returns the raw value for column, or "" when the row has no such cell.
func (r RawRecord) Get(column string) string {
	return r.fields[column]
}

// Has reports whether the row carries column at all.
func (r RawRecord) Has(column string) bool {
	_, ok := r.fields[column]
	return ok
}

// Len returns the number of cells in the row.
func (r RawRecord) Len() int {
	return len(r.fields)
}

// Gender is the respondent's self-reported gender.
type Gender string

// Known genders.
const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// Known reports whether g is Male or Female.
func (g Gender) Known() bool {
	return g == GenderMale || g == GenderFemale
}

// Answer is a yes/no survey response. Label keeps the categorical value as answered;
// Yes is true only for an exact "Yes".
type Answer struct {
	Label string `json:"label"`
	Yes   bool   `json:"yes"`
}

// Answered reports whether the respondent gave any answer.
func (a Answer) Answered() bool {
	return a.Label != ""
}

// StudentRecord is a normalized survey response.
type StudentRecord struct {
	Gender      Gender            `json:"gender"`
	Depression  Answer            `json:"depression"`
	Anxiety     Answer            `json:"anxiety"`
	PanicAttack Answer            `json:"panicAttack"`
	SoughtHelp  Answer            `json:"soughtHelp"`
	CGPA        Optional[float64] `json:"cgpa"`
	Age         Optional[int]     `json:"age"`
	YearOfStudy Optional[int]     `json:"yearOfStudy"`
}
