package render

import (
	"math"
	"strconv"

	"github.com/aclements/go-moremath/scale"
)

// vertical maps s onto a pixel column of the given height with s.Min at the bottom. A
// degenerate domain maps everything to the middle.
func vertical(s scale.Linear, height float64) func(float64) float64 {
	if s.Min == s.Max {
		return func(float64) float64 { return height / 2 }
	}

	return func(v float64) float64 { return height * (1 - s.Map(v)) }
}

// countScale returns a domain from 0 rounded out to whole-number ticks covering maxValue,
// with at most maxTicks major ticks. A non-positive maxValue yields [0, 1].
func countScale(maxValue float64, maxTicks int) (scale.Linear, []float64) {
	s := scale.Linear{Min: 0, Max: math.Max(maxValue, 1)}
	o := scale.TickOptions{Max: maxTicks, MinLevel: 0, MaxLevel: 1000}

	s.Nice(o)
	major, _ := s.Ticks(o)

	return s, major
}

// band splits [r0, r1] into n bands with the given inner and outer padding, centred.
// It returns the start of each band and the band width.
func band(n int, r0, r1, paddingInner, paddingOuter float64) ([]float64, float64) {
	if n == 0 {
		return nil, 0
	}

	step := (r1 - r0) / math.Max(1, float64(n)-paddingInner+2*paddingOuter)
	start := r0 + (r1-r0-step*(float64(n)-paddingInner))/2

	starts := make([]float64, n)
	for i := range starts {
		starts[i] = start + step*float64(i)
	}

	return starts, step * (1 - paddingInner)
}

// point spreads n points evenly over [r0, r1], centring a single point.
func point(n int, r0, r1 float64) []float64 {
	if n == 0 {
		return nil
	}

	if n == 1 {
		return []float64{(r0 + r1) / 2}
	}

	step := (r1 - r0) / float64(n-1)

	out := make([]float64, n)
	for i := range out {
		out[i] = r0 + step*float64(i)
	}

	return out
}

func px(v float64) int {
	return int(math.Round(v))
}

func f64s(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
