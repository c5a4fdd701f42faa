// Package render draws the survey dashboard as a single SVG document.
package render

import "mhsurvey/internal/config"

// Margin is the space between a panel's edge and its plot area.
type Margin struct {
	Top, Right, Bottom, Left int
}

// Panel places one chart on the canvas.
type Panel struct {
	X, Y          int
	Width, Height int
	Margin        Margin
}

// InnerWidth is the plot width inside the margins, never negative.
func (p Panel) InnerWidth() int {
	return max(0, p.Width-p.Margin.Left-p.Margin.Right)
}

// InnerHeight is the plot height inside the margins, never negative.
func (p Panel) InnerHeight() int {
	return max(0, p.Height-p.Margin.Top-p.Margin.Bottom)
}

// Origin is the top-left corner of the plot area.
func (p Panel) Origin() (int, int) {
	return p.X + p.Margin.Left, p.Y + p.Margin.Top
}

// Layout positions the three charts on a fixed canvas.
type Layout struct {
	Width, Height int
	Title         string
	Donut         Panel
	Bars          Panel
	Parallel      Panel
}

// DefaultLayout splits a width x height canvas into the overview donut (top left), the
// gender bars (top right) and the parallel coordinates (bottom).
func DefaultLayout(width, height int) Layout {
	w, h := float64(width), float64(height)

	return Layout{
		Width:  width,
		Height: height,
		Donut: Panel{
			X: int(w * 0.05), Y: int(h * 0.1),
			Width: int(w * 0.25), Height: int(h * 0.4),
			Margin: Margin{Top: 40, Right: 30, Bottom: 60, Left: 60},
		},
		Bars: Panel{
			X: int(w * 0.35), Y: int(h * 0.1),
			Width: int(w * 0.55), Height: int(h * 0.4),
			Margin: Margin{Top: 40, Right: 40, Bottom: 130, Left: 80},
		},
		Parallel: Panel{
			X: int(w * 0.05), Y: int(h * 0.6),
			Width: int(w * 0.9), Height: int(h * 0.35),
			Margin: Margin{Top: 70, Right: 60, Bottom: 40, Left: 80},
		},
	}
}

// FromConfig builds the default layout for the configured canvas.
func FromConfig(cfg config.RenderConfig) Layout {
	l := DefaultLayout(cfg.Width, cfg.Height)
	l.Title = cfg.Title

	return l
}
