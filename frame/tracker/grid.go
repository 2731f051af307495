/*
NAME
  grid.go

DESCRIPTION
  Horizontal shift tracking, content/metadata grid construction, and
  vertical displacement correction (spec §4.1 steps 8-11).
*/

package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/piql/gpfunbox/frame"
	"github.com/piql/gpfunbox/mathx"
)

// trackHorizontalShift measures the per-row horizontal displacement of the
// left frame boundary from the straight line through its first and last
// tracked points, and smooths the result with mathx.Smoother. Only
// leftBar is measured; rightBar is not read.
func trackHorizontalShift(leftBar, rightBar *refBar, rows int) []float64 {
	shift := make([]float64, rows)
	if len(leftBar.Points) < 2 {
		return shift
	}
	ideal := idealLine(leftBar.Points)
	n := len(leftBar.Points)
	for i := 0; i < rows && n > 0; i++ {
		idx := i * (n - 1) / max(rows-1, 1)
		p := leftBar.Points[idx]
		shift[i] = p.X - ideal(float64(idx)/float64(max(n-1, 1)))
	}
	if sm, err := mathx.NewSmoother(0.1, 8); err == nil {
		if smoothed, err := sm.SmoothInPlace(shift); err == nil {
			shift = smoothed
		}
	}
	return shift
}

// idealLine returns a function mapping t in [0,1] to the X coordinate of
// the straight line through the bar's first and last tracked points.
func idealLine(pts []frame.PointF) func(t float64) float64 {
	first, last := pts[0], pts[len(pts)-1]
	return func(t float64) float64 {
		return first.X + (last.X-first.X)*t
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// buildGrid constructs a cols x rows sampling-location matrix for a
// container (content or metadata) from the tracked top/bottom/left/right
// reference bars, intersecting horizontal and vertical lines between
// opposite-edge tracked points, per spec §4.1 step 9 / step 10.
func buildGrid(bars map[Edge]*refBar, cols, rows int) (*frame.PointMatrix, error) {
	top, bottom, left, right := bars[EdgeTop], bars[EdgeBottom], bars[EdgeLeft], bars[EdgeRight]
	if len(top.Points) == 0 || len(bottom.Points) == 0 || len(left.Points) == 0 || len(right.Points) == 0 {
		return nil, trackingErr(StageGrid, "one or more reference bars produced no tracked points")
	}

	// Opposite-edge sample counts must agree (spec §4.1 step 9 failure
	// condition).
	if len(top.Points) != len(bottom.Points) {
		return nil, trackingErr(StageGrid, "top/bottom reference-bar sample counts disagree: %d vs %d", len(top.Points), len(bottom.Points))
	}
	if len(left.Points) != len(right.Points) {
		return nil, trackingErr(StageGrid, "left/right reference-bar sample counts disagree: %d vs %d", len(left.Points), len(right.Points))
	}

	grid := frame.NewPointMatrix(cols, rows)
	for r := 0; r < rows; r++ {
		rowT := float64(r) / float64(max(rows-1, 1))
		leftPt := interpAlongBar(left.Points, rowT)
		rightPt := interpAlongBar(right.Points, rowT)
		for c := 0; c < cols; c++ {
			colT := float64(c) / float64(max(cols-1, 1))
			topPt := interpAlongBar(top.Points, colT)
			bottomPt := interpAlongBar(bottom.Points, colT)

			p, err := mathx.LineIntersection(
				mathx.Pt{X: topPt.X, Y: topPt.Y}, mathx.Pt{X: bottomPt.X, Y: bottomPt.Y},
				mathx.Pt{X: leftPt.X, Y: leftPt.Y}, mathx.Pt{X: rightPt.X, Y: rightPt.Y},
			)
			if err != nil {
				return nil, wrapTrackingErr(StageGrid, fmt.Errorf("cell (%d,%d): %w", c, r, err))
			}
			grid.Set(c, r, frame.PointF{X: p.X, Y: p.Y})
		}
	}
	return grid, nil
}

// interpAlongBar linearly interpolates a point along a tracked bar's point
// sequence at fractional position t in [0, 1].
func interpAlongBar(pts []frame.PointF, t float64) frame.PointF {
	if len(pts) == 1 {
		return pts[0]
	}
	pos := t * float64(len(pts)-1)
	i0 := int(pos)
	if i0 >= len(pts)-1 {
		return pts[len(pts)-1]
	}
	frac := pos - float64(i0)
	a, b := pts[i0], pts[i0+1]
	return frame.PointF{X: mathx.Lerp(a.X, b.X, frac), Y: mathx.Lerp(a.Y, b.Y, frac)}
}

// applyHorizontalShift corrects grid by the per-row horizontal shift
// array, weighted linearly across each row's columns (spec §4.1 step 9
// (iii)): column 0 (left edge) gets the full correction, the last column
// (right edge) none.
func applyHorizontalShift(grid *frame.PointMatrix, shift []float64) {
	cols, rows := grid.Cols(), grid.Rows()
	for r := 0; r < rows && r < len(shift); r++ {
		for c := 0; c < cols; c++ {
			weight := 1 - float64(c)/float64(max(cols-1, 1))
			p := grid.At(c, r)
			p.X += shift[r] * weight
			grid.Set(c, r, p)
		}
	}
}

// verticalDisplacementCorrection re-measures the top and bottom
// reference-bar edges at three sample columns of grid, giving a top and a
// bottom row of three displacements each (held in two 1x3 gonum/mat
// Dense rows; no middle row is measured), and adds them (bilinearly
// interpolated) into grid's Y coordinates (spec §4.1 step 11).
func verticalDisplacementCorrection(grid *frame.PointMatrix, top, bottom *refBar) {
	cols, rows := grid.Cols(), grid.Rows()
	if cols < 2 || rows < 2 {
		return
	}
	sampleCols := [3]int{0, (cols - 1) / 2, cols - 1}

	dispTop := mat.NewDense(1, 3, nil)
	dispBottom := mat.NewDense(1, 3, nil)
	for i, c := range sampleCols {
		t := float64(c) / float64(cols-1)
		expected := interpAlongBar(top.Points, t)
		actual := grid.At(c, 0)
		dispTop.Set(0, i, actual.Y-expected.Y)

		expectedB := interpAlongBar(bottom.Points, t)
		actualB := grid.At(c, rows-1)
		dispBottom.Set(0, i, actualB.Y-expectedB.Y)
	}

	// Bilinearly interpolate the top/bottom displacement rows across all
	// rows and columns, and add the result into the grid's Y coordinate.
	for r := 0; r < rows; r++ {
		rowT := float64(r) / float64(rows-1)
		for c := 0; c < cols; c++ {
			colFrac := float64(c) / float64(cols-1) * 2 // maps to the 3 sample columns
			i0 := int(colFrac)
			if i0 > 1 {
				i0 = 1
			}
			frac := colFrac - float64(i0)
			topD := mathx.Lerp(dispTop.At(0, i0), dispTop.At(0, i0+1), frac)
			botD := mathx.Lerp(dispBottom.At(0, i0), dispBottom.At(0, i0+1), frac)
			d := mathx.Lerp(topD, botD, rowT)

			p := grid.At(c, r)
			p.Y += d
			grid.Set(c, r, p)
		}
	}
}
