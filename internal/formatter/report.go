package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mhsurvey/internal/models"
)

// Report renders a pipeline report as markdown. The result is unsigned.
func Report(r models.Report, title string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Source: %s\n", r.Source)
	fmt.Fprintf(&b, "- Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Records: %d\n", r.Summary.Records)
	fmt.Fprintf(&b, "- Mean age: %s\n", formatMean(r.Summary.MeanAge))
	fmt.Fprintf(&b, "- Mean CGPA: %s\n", formatMean(r.Summary.MeanCGPA))

	section(&b, "Depression overview", overviewTable(r.Overview))
	section(&b, "Anxiety and panic attacks by gender", genderTable(r.GenderGroups))
	section(&b, "Parallel coordinates", parallelTable(r.Parallel))
	section(&b, "Data quality", qualityTable(r.Quality))

	if len(r.Quality.Warnings) > 0 {
		b.WriteString("\n")

		for _, w := range r.Quality.Warnings {
			fmt.Fprintf(&b, "> ⚠️ %s\n", w)
		}
	}

	return b.String()
}

func section(b *strings.Builder, heading string, table []string) {
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	b.WriteString(strings.Join(table, "\n"))
	b.WriteString("\n")
}

func formatMean(v models.Optional[float64]) string {
	m, ok := v.Get()
	if !ok {
		return "n/a"
	}

	return strconv.FormatFloat(m, 'f', 2, 64)
}

func overviewTable(o models.Overview) []string {
	rows := make([][]string, 0, len(o.Slices)+1)
	for _, s := range o.Slices {
		rows = append(rows, []string{s.Label, strconv.Itoa(s.Value), fmt.Sprintf("%d%%", s.Percent)})
	}

	rows = append(rows, []string{"Total", strconv.Itoa(o.Total), ""})

	return Table([]string{"Answer", "Count", "Share"}, rows)
}

func genderTable(groups []models.GenderGroup) []string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			string(g.Gender),
			strconv.Itoa(g.Total),
			strconv.Itoa(g.AnxietyYes),
			strconv.Itoa(g.AnxietyNo),
			strconv.Itoa(g.PanicYes),
			strconv.Itoa(g.PanicNo),
		})
	}

	return Table([]string{"Gender", "Total", "Anxiety", "No Anxiety", "Panic Attack", "No Panic Attack"}, rows)
}

func parallelTable(p models.ParallelSet) []string {
	rows := make([][]string, 0, len(p.Axes))
	for _, a := range p.Axes {
		domain := strings.Join(a.Categories, ", ")
		if a.Kind == models.AxisNumeric {
			domain = fmt.Sprintf("[%g, %g]", a.Min, a.Max)
		}

		rows = append(rows, []string{a.Name, string(a.Kind), domain})
	}

	rows = append(rows, []string{"Records", strconv.Itoa(len(p.Records)), ""})

	return Table([]string{"Axis", "Kind", "Domain"}, rows)
}

func qualityTable(q models.Quality) []string {
	rows := make([][]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		rows = append(rows, []string{f.Field, strconv.Itoa(f.Absent), fmt.Sprintf("%d%%", f.Percent)})
	}

	return Table([]string{"Field", "Absent", "Share"}, rows)
}
