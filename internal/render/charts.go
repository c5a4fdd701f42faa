package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"mhsurvey/internal/aggregator"
	"mhsurvey/internal/models"

	"github.com/aclements/go-moremath/scale"
	svg "github.com/ajstarks/svgo"
)

// Series colours.
const (
	colorPrimary    = "#d8365d"
	colorSecondary  = "#4a6fe3"
	colorTertiary   = "#ff8c38"
	colorQuaternary = "#45bdb0"
)

const (
	donutHoleRatio  = 0.6
	barPaddingInner = 0.4
	barPaddingOuter = 0.2
	barMaxTicks     = 6

	titleStyle = "text-anchor:middle;font-size:20px;font-weight:bold;fill:#333"
	labelStyle = "text-anchor:middle;font-size:14px;fill:#333"
	axisStyle  = "stroke:#666;stroke-width:1"
	tickStyle  = "text-anchor:end;font-size:12px;fill:#666"
	legendText = "font-size:14px;fill:#333"
)

// Dashboard writes the three charts for report into one SVG document.
func Dashboard(w io.Writer, report models.Report, layout Layout) {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)

	if layout.Title != "" {
		canvas.Title(layout.Title)
		canvas.Text(layout.Width/2, max(24, layout.Donut.Y/2), layout.Title, titleStyle)
	}

	Donut(canvas, report.Overview, layout.Donut)
	Bars(canvas, report.GenderGroups, layout.Bars)
	Parallel(canvas, report.Parallel, layout.Parallel)

	canvas.End()
}

// Donut draws the depression overview: one annular sector per non-empty slice, percentage
// labels at the sector centroids, the total in the hole and a legend below.
func Donut(canvas *svg.SVG, overview models.Overview, p Panel) {
	ox, oy := p.Origin()
	cx := float64(ox) + float64(p.InnerWidth())/2
	cy := float64(oy) + float64(p.InnerHeight())/2
	outer := math.Min(float64(p.InnerWidth()), float64(p.InnerHeight())) / 2
	inner := outer * donutHoleRatio

	canvas.Text(px(cx), oy-25, "Depression Overview", titleStyle)

	colors := []string{colorPrimary, colorSecondary}

	canvas.Gid("donut")

	angle := 0.0

	for i, s := range overview.Slices {
		if s.Value == 0 || overview.Total == 0 {
			continue
		}

		sweep := 2 * math.Pi * float64(s.Value) / float64(overview.Total)
		fill := fmt.Sprintf("fill:%s;stroke:white;stroke-width:2", colors[i%len(colors)])

		canvas.Path(annulus(cx, cy, inner, outer, angle, angle+sweep), fill)

		mid := angle + sweep/2
		r := (inner + outer) / 2
		lx, ly := polar(cx, cy, r, mid)
		canvas.Text(px(lx), px(ly), strconv.Itoa(s.Percent)+"%", "text-anchor:middle;font-size:16px;font-weight:bold;fill:white")

		angle += sweep
	}

	canvas.Gend()

	canvas.Text(px(cx), px(cy), fmt.Sprintf("Total: %d students", overview.Total), "text-anchor:middle;font-size:14px;fill:#666")

	for i, s := range overview.Slices {
		y := px(cy+outer) + 60 + i*35
		canvas.Rect(px(cx)-100, y, 18, 18, "fill:"+colors[i%len(colors)])
		canvas.Text(px(cx)-75, y+13, fmt.Sprintf("%s (%d students)", s.Label, s.Value), legendText)
	}
}

// polar converts an angle measured clockwise from 12 o'clock into canvas coordinates.
func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Sin(angle), cy - r*math.Cos(angle)
}

// annulus builds the path of a ring sector between angles a0 and a1. A full turn is drawn
// as two half rings so the arc endpoints never coincide.
func annulus(cx, cy, inner, outer, a0, a1 float64) string {
	if a1-a0 >= 2*math.Pi-1e-9 {
		return annulus(cx, cy, inner, outer, a0, a0+math.Pi) + " " + annulus(cx, cy, inner, outer, a0+math.Pi, a0+2*math.Pi)
	}

	large := "0"
	if a1-a0 > math.Pi {
		large = "1"
	}

	ox0, oy0 := polar(cx, cy, outer, a0)
	ox1, oy1 := polar(cx, cy, outer, a1)
	ix1, iy1 := polar(cx, cy, inner, a1)
	ix0, iy0 := polar(cx, cy, inner, a0)

	parts := []string{
		"M", f64s(ox0), f64s(oy0),
		"A", f64s(outer), f64s(outer), "0", large, "1", f64s(ox1), f64s(oy1),
		"L", f64s(ix1), f64s(iy1),
		"A", f64s(inner), f64s(inner), "0", large, "0", f64s(ix0), f64s(iy0),
		"Z",
	}

	return strings.Join(parts, " ")
}

type barSeries struct {
	label string
	color string
	value func(models.GenderGroup) int
}

var series = []barSeries{
	{"Anxiety", colorPrimary, func(g models.GenderGroup) int { return g.AnxietyYes }},
	{"No Anxiety", colorSecondary, func(g models.GenderGroup) int { return g.AnxietyNo }},
	{"Panic Attack", colorTertiary, func(g models.GenderGroup) int { return g.PanicYes }},
	{"No Panic Attack", colorQuaternary, func(g models.GenderGroup) int { return g.PanicNo }},
}

// Bars draws four bars per gender group on a shared count axis.
func Bars(canvas *svg.SVG, groups []models.GenderGroup, p Panel) {
	ox, oy := p.Origin()
	iw, ih := float64(p.InnerWidth()), float64(p.InnerHeight())

	canvas.Text(ox+p.InnerWidth()/2, oy-15, "Mental Health Issues by Gender", titleStyle)

	counts, tickValues := countScale(float64(aggregator.MaxGroupTotal(groups)), barMaxTicks)
	y := vertical(counts, ih)

	starts, bandwidth := band(len(groups), 0, iw, barPaddingInner, barPaddingOuter)

	canvas.Translate(ox, oy)

	for _, v := range tickValues {
		ty := px(y(v))
		canvas.Line(0, ty, px(iw), ty, "stroke:#ddd;stroke-width:1")
		canvas.Text(-8, ty+4, strconv.FormatFloat(v, 'f', -1, 64), tickStyle)
	}

	canvas.Line(0, 0, 0, px(ih), axisStyle)
	canvas.Line(0, px(ih), px(iw), px(ih), axisStyle)

	barWidth := bandwidth / float64(len(series))

	canvas.Gid("bars")

	for i, g := range groups {
		for j, s := range series {
			v := float64(s.value(g))
			bx := starts[i] + barWidth*float64(j)
			canvas.Rect(px(bx), px(y(v)), max(1, px(barWidth)-2), px(ih-y(v)), "fill:"+s.color)
		}

		canvas.Text(px(starts[i]+bandwidth/2), px(ih)+20, string(g.Gender), labelStyle)
	}

	canvas.Gend()

	canvas.Text(px(iw/2), px(ih)+45, "Gender", labelStyle)
	canvas.Gtransform(fmt.Sprintf("translate(%d, %d) rotate(-90)", -50, px(ih/2)))
	canvas.Text(0, 0, "Number of Students", labelStyle)
	canvas.Gend()

	for j, s := range series {
		lx := j * max(1, p.InnerWidth()/len(series))
		canvas.Rect(lx, px(ih)+70, 18, 18, "fill:"+s.color)
		canvas.Text(lx+25, px(ih)+83, s.label, legendText)
	}

	canvas.Gend()
}

// Parallel draws one vertical axis per dimension and one polyline per record, coloured by
// the depression answer.
func Parallel(canvas *svg.SVG, set models.ParallelSet, p Panel) {
	ox, oy := p.Origin()
	iw, ih := float64(p.InnerWidth()), float64(p.InnerHeight())

	canvas.Text(ox+p.InnerWidth()/2, p.Y+20, "Parallel Coordinates: Relationships Between Variables", titleStyle)

	xs := point(len(set.Axes), 0, iw)
	scales := make([]func(models.StudentRecord) float64, len(set.Axes))

	for i, axis := range set.Axes {
		scales[i] = axisScale(axis, ih)
	}

	canvas.Translate(ox, oy)
	canvas.Gid("parallel")

	for _, r := range set.Records {
		lx := make([]int, len(set.Axes))
		ly := make([]int, len(set.Axes))

		for i := range set.Axes {
			lx[i] = px(xs[i])
			ly[i] = px(scales[i](r))
		}

		color := colorSecondary
		if r.Depression.Yes {
			color = colorPrimary
		}

		canvas.Polyline(lx, ly, "fill:none;stroke-width:1.5;stroke-opacity:0.6;stroke:"+color)
	}

	canvas.Gend()

	for i, axis := range set.Axes {
		x := px(xs[i])
		canvas.Line(x, 0, x, px(ih), axisStyle)
		canvas.Text(x, -15, axis.Name, "text-anchor:middle;font-size:14px;font-weight:bold;fill:#333")

		for _, label := range axisLabels(axis) {
			canvas.Text(x-6, px(label.y(ih))+4, label.text, tickStyle)
		}
	}

	canvas.Rect(px(iw)-150, px(ih)+15, 18, 18, "fill:"+colorPrimary)
	canvas.Text(px(iw)-125, px(ih)+28, "Depression", legendText)
	canvas.Rect(px(iw)-150, px(ih)+40, 18, 18, "fill:"+colorSecondary)
	canvas.Text(px(iw)-125, px(ih)+53, "No Depression", legendText)

	canvas.Gend()
}

// axisScale returns the vertical position of a record on axis, with the domain minimum at
// the bottom of the plot.
func axisScale(axis models.Axis, height float64) func(models.StudentRecord) float64 {
	if axis.Kind == models.AxisCategorical {
		pos := point(len(axis.Categories), height, 0)
		index := map[string]int{}

		for i, c := range axis.Categories {
			index[c] = i
		}

		return func(r models.StudentRecord) float64 {
			a := answerFor(axis.Name, r)
			if i, ok := index[a.Label]; ok {
				return pos[i]
			}

			return height
		}
	}

	y := vertical(scale.Linear{Min: axis.Min, Max: axis.Max}, height)

	return func(r models.StudentRecord) float64 {
		return y(numericFor(axis.Name, r))
	}
}

func answerFor(name string, r models.StudentRecord) models.Answer {
	switch name {
	case aggregator.AxisAnxiety:
		return r.Anxiety
	case aggregator.AxisPanicAttack:
		return r.PanicAttack
	default:
		return r.Depression
	}
}

func numericFor(name string, r models.StudentRecord) float64 {
	switch name {
	case aggregator.AxisAge:
		return float64(r.Age.OrElse(0))
	case aggregator.AxisYearOfStudy:
		return float64(r.YearOfStudy.OrElse(0))
	default:
		return r.CGPA.OrElse(0)
	}
}

type axisLabel struct {
	text string
	y    func(height float64) float64
}

// axisLabels returns the end labels of a numeric axis or every category of a categorical one.
func axisLabels(axis models.Axis) []axisLabel {
	if axis.Kind == models.AxisCategorical {
		out := make([]axisLabel, len(axis.Categories))

		for i, c := range axis.Categories {
			idx, n := i, len(axis.Categories)
			out[i] = axisLabel{text: c, y: func(h float64) float64 { return point(n, h, 0)[idx] }}
		}

		return out
	}

	return []axisLabel{
		{text: strconv.FormatFloat(axis.Min, 'f', -1, 64), y: func(h float64) float64 { return h }},
		{text: strconv.FormatFloat(axis.Max, 'f', -1, 64), y: func(float64) float64 { return 0 }},
	}
}
