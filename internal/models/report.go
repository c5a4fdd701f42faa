package models

import "time"

// Slice is one labelled share of the overview donut.
type Slice struct {
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Percent int    `json:"percent"`
}

// Overview holds depression counts over records that answered the question.
type Overview struct {
	Slices []Slice `json:"slices"`
	Total  int     `json:"total"`
}

// GenderGroup holds anxiety and panic attack counts for one gender.
type GenderGroup struct {
	Gender     Gender `json:"gender"`
	Total      int    `json:"total"`
	AnxietyYes int    `json:"anxietyYes"`
	AnxietyNo  int    `json:"anxietyNo"`
	PanicYes   int    `json:"panicYes"`
	PanicNo    int    `json:"panicNo"`
}

// AxisKind distinguishes numeric from categorical parallel axes.
type AxisKind string

// Axis kinds.
const (
	AxisNumeric     AxisKind = "numeric"
	AxisCategorical AxisKind = "categorical"
)

// Axis describes one vertical axis of the parallel coordinates view.
type Axis struct {
	Name       string   `json:"name"`
	Kind       AxisKind `json:"kind"`
	Categories []string `json:"categories,omitempty"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
}

// ParallelSet is the filtered record set for the parallel coordinates view.
type ParallelSet struct {
	Axes    []Axis          `json:"axes"`
	Records []StudentRecord `json:"records"`
}

// Summary holds descriptive statistics over the normalized table.
type Summary struct {
	Records  int               `json:"records"`
	MeanAge  Optional[float64] `json:"meanAge"`
	MeanCGPA Optional[float64] `json:"meanCgpa"`
}

// FieldQuality counts how often one field could not be used.
type FieldQuality struct {
	Field   string `json:"field"`
	Absent  int    `json:"absent"`
	Percent int    `json:"percent"`
}

// Quality summarises per-field parse outcomes for the operator.
type Quality struct {
	Fields   []FieldQuality `json:"fields"`
	Warnings []string       `json:"warnings"`
	Rows     int            `json:"rows"`
}

// Report is the full output of one pipeline run.
type Report struct {
	GeneratedAt  time.Time     `json:"generatedAt"`
	RunID        string        `json:"runId"`
	Source       string        `json:"source"`
	Overview     Overview      `json:"overview"`
	GenderGroups []GenderGroup `json:"genderGroups"`
	Parallel     ParallelSet   `json:"parallel"`
	Summary      Summary       `json:"summary"`
	Quality      Quality       `json:"quality"`
}
