// Package aggregator computes the chart data products from normalized records.
// Every function is pure: inputs are never mutated and nothing is cached.
package aggregator

import (
	"math"

	"mhsurvey/internal/models"

	"github.com/montanaflynn/stats"
)

// Overview slice labels.
const (
	LabelDepression   = "Depression"
	LabelNoDepression = "No Depression"
)

// Parallel axis names in display order.
const (
	AxisAge         = "Age"
	AxisCGPA        = "CGPA"
	AxisYearOfStudy = "Year of Study"
	AxisDepression  = "Depression"
	AxisAnxiety     = "Anxiety"
	AxisPanicAttack = "Panic Attack"
)

// Fixed numeric axis domains.
const (
	cgpaAxisMin = 0
	cgpaAxisMax = 4
	yearAxisMin = 1
	yearAxisMax = 4
)

var answerCategories = []string{"No", "Yes"}

// Overview counts depression answers over records that answered the question.
func Overview(records []models.StudentRecord) models.Overview {
	total, yes := 0, 0

	for _, r := range records {
		if !r.Depression.Answered() {
			continue
		}

		total++

		if r.Depression.Yes {
			yes++
		}
	}

	no := total - yes

	return models.Overview{
		Total: total,
		Slices: []models.Slice{
			{Label: LabelDepression, Value: yes, Percent: Percent(yes, total)},
			{Label: LabelNoDepression, Value: no, Percent: Percent(no, total)},
		},
	}
}

// Percent returns value/total as a whole percentage rounded half away from zero.
// A zero total yields 0.
func Percent(value, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(float64(value) / float64(total) * 100))
}

// GroupByGender counts anxiety and panic attack answers per known gender. Groups appear in
// the order their gender first occurs in records; a gender with no records has no group.
func GroupByGender(records []models.StudentRecord) []models.GenderGroup {
	groups := []models.GenderGroup{}
	index := map[models.Gender]int{}

	for _, r := range records {
		if !r.Gender.Known() {
			continue
		}

		i, ok := index[r.Gender]
		if !ok {
			i = len(groups)
			index[r.Gender] = i
			groups = append(groups, models.GenderGroup{Gender: r.Gender})
		}

		g := &groups[i]
		g.Total++

		if r.Anxiety.Yes {
			g.AnxietyYes++
		} else {
			g.AnxietyNo++
		}

		if r.PanicAttack.Yes {
			g.PanicYes++
		} else {
			g.PanicNo++
		}
	}

	return groups
}

// MaxGroupTotal returns the largest group total, or 0 for no groups.
func MaxGroupTotal(groups []models.GenderGroup) int {
	peak := 0

	for _, g := range groups {
		if g.Total > peak {
			peak = g.Total
		}
	}

	return peak
}

// Complete reports whether r has every field the parallel view plots.
func Complete(r models.StudentRecord) bool {
	return r.Age.Present() &&
		r.CGPA.Present() &&
		r.YearOfStudy.Present() &&
		r.Depression.Answered() &&
		r.Anxiety.Answered() &&
		r.PanicAttack.Answered()
}

// ParallelCoordinates keeps complete records in input order and derives the axis domains.
func ParallelCoordinates(records []models.StudentRecord) models.ParallelSet {
	kept := []models.StudentRecord{}
	ages := []float64{}

	for _, r := range records {
		if !Complete(r) {
			continue
		}

		kept = append(kept, r)

		age, _ := r.Age.Get()
		ages = append(ages, float64(age))
	}

	return models.ParallelSet{
		Axes:    parallelAxes(ages),
		Records: kept,
	}
}

func parallelAxes(ages []float64) []models.Axis {
	ageAxis := models.Axis{Name: AxisAge, Kind: models.AxisNumeric}

	// stats errors only on empty input, which leaves the age axis at [0, 0].
	if lo, err := stats.Min(ages); err == nil {
		ageAxis.Min = lo - 1
	}

	if hi, err := stats.Max(ages); err == nil {
		ageAxis.Max = hi + 1
	}

	return []models.Axis{
		ageAxis,
		{Name: AxisCGPA, Kind: models.AxisNumeric, Min: cgpaAxisMin, Max: cgpaAxisMax},
		{Name: AxisYearOfStudy, Kind: models.AxisNumeric, Min: yearAxisMin, Max: yearAxisMax},
		categoricalAxis(AxisDepression),
		categoricalAxis(AxisAnxiety),
		categoricalAxis(AxisPanicAttack),
	}
}

func categoricalAxis(name string) models.Axis {
	return models.Axis{
		Name:       name,
		Kind:       models.AxisCategorical,
		Categories: append([]string(nil), answerCategories...),
	}
}

// Summarize reports the record count and the means of age and CGPA over present values.
func Summarize(records []models.StudentRecord) models.Summary {
	var ages, cgpas []float64

	for _, r := range records {
		if age, ok := r.Age.Get(); ok {
			ages = append(ages, float64(age))
		}

		if cgpa, ok := r.CGPA.Get(); ok {
			cgpas = append(cgpas, cgpa)
		}
	}

	return models.Summary{
		Records:  len(records),
		MeanAge:  mean(ages),
		MeanCGPA: mean(cgpas),
	}
}

func mean(data []float64) models.Optional[float64] {
	m, err := stats.Mean(data)
	if err != nil {
		return models.None[float64]()
	}

	return models.Some(m)
}
