//go:build withplot

/*
NAME
  trackerplot.go

DESCRIPTION
  Package trackerplot is an optional diagnostic dump (spec §4.1, Design
  Note "Domain stack"): renders a tracked sampling-location matrix as a
  scatter overlay, for test/debug use when developing or tuning a new
  frame format. Never imported by the decode path proper; the unboxer
  never needs this package at runtime.
*/

// Package trackerplot renders tracked sampling-location matrices for
// visual debugging, gated behind the "withplot" build tag so the
// gonum.org/v1/plot dependency (and its font/PDF/SVG transitive
// dependencies) only applies to diagnostic builds.
package trackerplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/piql/gpfunbox/frame"
)

// Dump renders grid's sampling locations as a scatter plot, one point per
// cell, inverted on the Y axis to match image-space orientation (row 0 at
// the top), and writes a PNG to path.
func Dump(grid *frame.PointMatrix, imgHeight int, path string) error {
	if grid == nil {
		return fmt.Errorf("trackerplot: nil grid")
	}

	p := plot.New()
	p.Title.Text = "tracked sampling locations"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	pts := make(plotter.XYs, 0, grid.Cols()*grid.Rows())
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			loc := grid.At(c, r)
			pts = append(pts, plotter.XY{X: loc.X, Y: float64(imgHeight) - loc.Y})
		}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("trackerplot: building scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(scatter)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("trackerplot: saving %q: %w", path, err)
	}
	return nil
}

// DumpCorners overlays the four tracked corner marks on top of grid's
// points, as a second labelled series, for a single combined diagnostic
// image.
func DumpCorners(grid *frame.PointMatrix, corners frame.CornerMarks, imgHeight int, path string) error {
	if grid == nil {
		return fmt.Errorf("trackerplot: nil grid")
	}

	p := plot.New()
	p.Title.Text = "tracked sampling locations + corner marks"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	gridPts := make(plotter.XYs, 0, grid.Cols()*grid.Rows())
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			loc := grid.At(c, r)
			gridPts = append(gridPts, plotter.XY{X: loc.X, Y: float64(imgHeight) - loc.Y})
		}
	}
	gridScatter, err := plotter.NewScatter(gridPts)
	if err != nil {
		return fmt.Errorf("trackerplot: building grid scatter: %w", err)
	}
	gridScatter.GlyphStyle.Radius = vg.Points(1.5)

	cornerPts := plotter.XYs{
		{X: float64(corners.TopLeft.X), Y: float64(imgHeight - corners.TopLeft.Y)},
		{X: float64(corners.TopRight.X), Y: float64(imgHeight - corners.TopRight.Y)},
		{X: float64(corners.BottomLeft.X), Y: float64(imgHeight - corners.BottomLeft.Y)},
		{X: float64(corners.BottomRight.X), Y: float64(imgHeight - corners.BottomRight.Y)},
	}
	cornerScatter, err := plotter.NewScatter(cornerPts)
	if err != nil {
		return fmt.Errorf("trackerplot: building corner scatter: %w", err)
	}
	cornerScatter.GlyphStyle.Radius = vg.Points(4)

	p.Add(gridScatter, cornerScatter)
	p.Legend.Add("grid", gridScatter)
	p.Legend.Add("corners", cornerScatter)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("trackerplot: saving %q: %w", path, err)
	}
	return nil
}
