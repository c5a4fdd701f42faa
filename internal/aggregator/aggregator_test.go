package aggregator

import (
	"testing"

	"mhsurvey/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(label string) models.Answer {
	return models.Answer{Label: label, Yes: label == "Yes"}
}

type rec struct {
	gender             models.Gender
	dep, anx, panic    string
	age, year          int
	cgpa               float64
	noAge, noCGPA, noY bool
}

func build(r rec) models.StudentRecord {
	out := models.StudentRecord{
		Gender:      r.gender,
		Depression:  answer(r.dep),
		Anxiety:     answer(r.anx),
		PanicAttack: answer(r.panic),
		SoughtHelp:  answer("No"),
		Age:         models.Some(r.age),
		CGPA:        models.Some(r.cgpa),
		YearOfStudy: models.Some(r.year),
	}

	if r.noAge {
		out.Age = models.None[int]()
	}

	if r.noCGPA {
		out.CGPA = models.None[float64]()
	}

	if r.noY {
		out.YearOfStudy = models.None[int]()
	}

	return out
}

// sample mirrors four survey rows: F/18/yes-dep, M/21/anx, M/19/all yes, and a row with
// unknown gender, no answers and no CGPA.
func sample() []models.StudentRecord {
	return []models.StudentRecord{
		build(rec{gender: models.GenderFemale, dep: "Yes", anx: "No", panic: "Yes", age: 18, year: 1, cgpa: 3.245}),
		build(rec{gender: models.GenderMale, dep: "No", anx: "Yes", panic: "No", age: 21, year: 2, cgpa: 3.245}),
		build(rec{gender: models.GenderMale, dep: "Yes", anx: "Yes", panic: "Yes", age: 19, year: 1, cgpa: 3.245}),
		build(rec{gender: models.GenderUnknown, age: 22, year: 3, noCGPA: true}),
	}
}

func TestOverview(t *testing.T) {
	ov := Overview(sample())

	assert.Equal(t, 3, ov.Total)
	require.Len(t, ov.Slices, 2)
	assert.Equal(t, models.Slice{Label: LabelDepression, Value: 2, Percent: 67}, ov.Slices[0])
	assert.Equal(t, models.Slice{Label: LabelNoDepression, Value: 1, Percent: 33}, ov.Slices[1])
	assert.Equal(t, ov.Total, ov.Slices[0].Value+ov.Slices[1].Value)
}

func TestOverview_Empty(t *testing.T) {
	ov := Overview(nil)

	assert.Equal(t, 0, ov.Total)
	require.Len(t, ov.Slices, 2)

	for _, s := range ov.Slices {
		assert.Zero(t, s.Value)
		assert.Zero(t, s.Percent)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		value, total, want int
	}{
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{1, 200, 1},
		{0, 5, 0},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.value, tt.total), "Percent(%d, %d)", tt.value, tt.total)
	}
}

func TestGroupByGender(t *testing.T) {
	groups := GroupByGender(sample())

	require.Len(t, groups, 2)
	assert.Equal(t, models.GenderGroup{
		Gender: models.GenderFemale, Total: 1,
		AnxietyYes: 0, AnxietyNo: 1, PanicYes: 1, PanicNo: 0,
	}, groups[0])
	assert.Equal(t, models.GenderGroup{
		Gender: models.GenderMale, Total: 2,
		AnxietyYes: 2, AnxietyNo: 0, PanicYes: 1, PanicNo: 1,
	}, groups[1])

	for _, g := range groups {
		assert.Equal(t, g.Total, g.AnxietyYes+g.AnxietyNo)
		assert.Equal(t, g.Total, g.PanicYes+g.PanicNo)
	}

	assert.Equal(t, 2, MaxGroupTotal(groups))
}

func TestGroupByGender_FirstAppearanceOrder(t *testing.T) {
	records := []models.StudentRecord{
		build(rec{gender: models.GenderMale, dep: "No", anx: "No", panic: "No"}),
		build(rec{gender: models.GenderFemale, dep: "No", anx: "No", panic: "No"}),
	}

	groups := GroupByGender(records)
	require.Len(t, groups, 2)
	assert.Equal(t, models.GenderMale, groups[0].Gender)
	assert.Equal(t, models.GenderFemale, groups[1].Gender)
}

func TestGroupByGender_SingleGenderAndEmpty(t *testing.T) {
	records := []models.StudentRecord{
		build(rec{gender: models.GenderFemale, anx: "Yes"}),
		build(rec{gender: models.GenderUnknown, anx: "Yes"}),
	}

	groups := GroupByGender(records)
	require.Len(t, groups, 1)
	assert.Equal(t, models.GenderFemale, groups[0].Gender)

	assert.Empty(t, GroupByGender(nil))
	assert.Zero(t, MaxGroupTotal(nil))
}

func TestParallelCoordinates(t *testing.T) {
	records := sample()
	set := ParallelCoordinates(records)

	require.Len(t, set.Records, 3)
	assert.Equal(t, records[0], set.Records[0])
	assert.Equal(t, records[1], set.Records[1])
	assert.Equal(t, records[2], set.Records[2])

	for _, r := range set.Records {
		assert.True(t, Complete(r))
	}

	require.Len(t, set.Axes, 6)
	assert.Equal(t, models.Axis{Name: AxisAge, Kind: models.AxisNumeric, Min: 17, Max: 22}, set.Axes[0])
	assert.Equal(t, 0.0, set.Axes[1].Min)
	assert.Equal(t, 4.0, set.Axes[1].Max)
	assert.Equal(t, AxisYearOfStudy, set.Axes[2].Name)
	assert.Equal(t, 1.0, set.Axes[2].Min)

	for _, axis := range set.Axes[3:] {
		assert.Equal(t, models.AxisCategorical, axis.Kind)
		assert.Equal(t, []string{"No", "Yes"}, axis.Categories)
	}
}

func TestParallelCoordinates_DropsIncomplete(t *testing.T) {
	complete := rec{gender: models.GenderMale, dep: "No", anx: "No", panic: "No", age: 20, year: 2, cgpa: 3.0}

	tests := []struct {
		name   string
		mutate func(*rec)
	}{
		{"no age", func(r *rec) { r.noAge = true }},
		{"no cgpa", func(r *rec) { r.noCGPA = true }},
		{"no year", func(r *rec) { r.noY = true }},
		{"no depression", func(r *rec) { r.dep = "" }},
		{"no anxiety", func(r *rec) { r.anx = "" }},
		{"no panic", func(r *rec) { r.panic = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := complete
			tt.mutate(&r)

			set := ParallelCoordinates([]models.StudentRecord{build(r)})
			assert.Empty(t, set.Records)
		})
	}

	kept := ParallelCoordinates([]models.StudentRecord{build(complete)})
	assert.Len(t, kept.Records, 1)
}

func TestParallelCoordinates_UnknownGenderKept(t *testing.T) {
	r := build(rec{gender: models.GenderUnknown, dep: "Maybe", anx: "No", panic: "No", age: 20, year: 5, cgpa: 1.0})

	set := ParallelCoordinates([]models.StudentRecord{r})
	assert.Len(t, set.Records, 1)
}

func TestParallelCoordinates_Empty(t *testing.T) {
	set := ParallelCoordinates(nil)

	assert.Empty(t, set.Records)
	require.Len(t, set.Axes, 6)
	assert.Zero(t, set.Axes[0].Min)
	assert.Zero(t, set.Axes[0].Max)
}

func TestAggregatorsDoNotMutateInput(t *testing.T) {
	records := sample()
	snapshot := append([]models.StudentRecord(nil), records...)

	Overview(records)
	GroupByGender(records)
	ParallelCoordinates(records)
	Summarize(records)

	assert.Equal(t, snapshot, records)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, 4, s.Records)

	meanAge, ok := s.MeanAge.Get()
	require.True(t, ok)
	assert.InDelta(t, 20.0, meanAge, 1e-9)

	meanCGPA, ok := s.MeanCGPA.Get()
	require.True(t, ok)
	assert.InDelta(t, 3.245, meanCGPA, 1e-9)

	empty := Summarize(nil)
	assert.Zero(t, empty.Records)
	assert.False(t, empty.MeanAge.Present())
	assert.False(t, empty.MeanCGPA.Present())
}
