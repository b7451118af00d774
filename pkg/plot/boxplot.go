// Package plot draws before/after views of an imputed column.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrNoValues = errors.New("plot: nothing to draw")

// Comparison holds one target column before and after imputation.
type Comparison struct {
	Title   string
	Target  string
	Before  []float64 // input values; NaN is skipped
	After   []float64
	Imputed []bool // rows of After written by the model, marked on the plot
}

func finite(x []float64) plotter.Values {
	out := make(plotter.Values, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// New builds a two-box plot of c with imputed estimates overlaid.
func New(c Comparison) (*plot.Plot, error) {
	before, after := finite(c.Before), finite(c.After)
	if len(before) == 0 || len(after) == 0 {
		return nil, ErrNoValues
	}
	p := plot.New()
	p.Title.Text = c.Title
	p.Y.Label.Text = c.Target

	w := vg.Points(40)
	for i, vals := range []plotter.Values{before, after} {
		b, err := plotter.NewBoxPlot(w, float64(i), vals)
		if err != nil {
			return nil, fmt.Errorf("plot: box %d: %w", i, err)
		}
		p.Add(b)
	}
	p.NominalX("before", "after")

	var pts plotter.XYs
	for i, imp := range c.Imputed {
		if imp && i < len(c.After) && !math.IsNaN(c.After[i]) {
			pts = append(pts, plotter.XY{X: 1, Y: c.After[i]})
		}
	}
	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.Color = color.RGBA{R: 255, A: 255}
		s.Shape = draw.CrossGlyph{}
		s.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add("imputed", s)
	}
	return p, nil
}

// Save renders c to filename; the extension picks the image format.
func Save(c Comparison, filename string) error {
	p, err := New(c)
	if err != nil {
		return err
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}
