package frame

import (
	"fmt"
	"math"
)

// CoordinateMapper is a bilinear mapping from printed-frame coordinates to
// captured-image coordinates, parameterised by the four corner marks and
// the printed-space distances between them (spec §3 "Coordinate mapper").
//
// Given a print-space point expressed as a fraction (u, v) of the printed
// frame width/height, the mapped image-space point is:
//
//	origin + u*vTop + v*vLeft + u*v*(vBottom - vTop - vLeft)
//
// which is the standard bilinear warp of a unit square onto the
// quadrilateral defined by the four corner marks.
type CoordinateMapper struct {
	origin                PointF
	vTop, vLeft, vBottom  PointF
	printWidth, printHeight float64
}

// NewCoordinateMapper builds the mapper from the tracked corner marks and
// the frame format's printed dimensions (spec §4.1 step 4).
func NewCoordinateMapper(c CornerMarks, format Format) (*CoordinateMapper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	printW := float64(format.Width)
	printH := float64(format.Height)
	if printW <= 0 || printH <= 0 {
		return nil, fmt.Errorf("frame: non-positive printed frame size %gx%g", printW, printH)
	}
	m := &CoordinateMapper{
		origin:      PointF{X: float64(c.TopLeft.X), Y: float64(c.TopLeft.Y)},
		vTop:        PointF{X: float64(c.TopRight.X - c.TopLeft.X), Y: float64(c.TopRight.Y - c.TopLeft.Y)},
		vLeft:       PointF{X: float64(c.BottomLeft.X - c.TopLeft.X), Y: float64(c.BottomLeft.Y - c.TopLeft.Y)},
		vBottom:     PointF{X: float64(c.BottomRight.X - c.TopLeft.X), Y: float64(c.BottomRight.Y - c.TopLeft.Y)},
		printWidth:  printW,
		printHeight: printH,
	}
	if !m.finite() {
		return nil, fmt.Errorf("frame: coordinate mapper has non-finite components")
	}
	return m, nil
}

func (m *CoordinateMapper) finite() bool {
	vals := []float64{
		m.origin.X, m.origin.Y,
		m.vTop.X, m.vTop.Y,
		m.vLeft.X, m.vLeft.Y,
		m.vBottom.X, m.vBottom.Y,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Map converts a print-space coordinate (x, y in printed pixels) to a
// captured-image coordinate. It returns an error if the result is
// non-finite, per Design Note "Integer overflow / non-finiteness": such a
// result must propagate as a tracking error rather than silently producing
// a NaN coordinate.
func (m *CoordinateMapper) Map(x, y float64) (PointF, error) {
	u := x / m.printWidth
	v := y / m.printHeight
	px := m.origin.X + u*m.vTop.X + v*m.vLeft.X + u*v*(m.vBottom.X-m.vTop.X-m.vLeft.X)
	py := m.origin.Y + u*m.vTop.Y + v*m.vLeft.Y + u*v*(m.vBottom.Y-m.vTop.Y-m.vLeft.Y)
	if math.IsNaN(px) || math.IsInf(px, 0) || math.IsNaN(py) || math.IsInf(py, 0) {
		return PointF{}, fmt.Errorf("frame: mapper produced non-finite coordinate for print-space (%g, %g)", x, y)
	}
	return PointF{X: px, Y: py}, nil
}

// MapPoint is a convenience wrapper around Map for integer print-space
// coordinates.
func (m *CoordinateMapper) MapPoint(p Point) (PointF, error) {
	return m.Map(float64(p.X), float64(p.Y))
}
