/*
NAME
  geom.go

DESCRIPTION
  Fixed-point-style geometry helpers used by the frame tracker: line
  intersection (content grid construction, spec §4.1 step 9) and a
  finite-reciprocal guard for the determinant computations that step
  involves (Design Note "Integer overflow / non-finiteness").
*/

package mathx

import (
	"fmt"
	"math"
)

// Pt is a minimal float64 2D point, used here instead of importing the
// frame package to keep mathx a leaf (frame depends on mathx, not the
// other way around).
type Pt struct{ X, Y float64 }

// LineIntersection returns the intersection of line (a1, a2) with line (b1,
// b2), using the standard determinant formula. It returns an error if the
// lines are parallel (determinant is zero) or the result is non-finite,
// rather than silently returning NaN (Design Note).
func LineIntersection(a1, a2, b1, b2 Pt) (Pt, error) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y

	denom := d1x*d2y - d1y*d2x
	if denom == 0 || !FiniteReciprocal(denom) {
		return Pt{}, fmt.Errorf("mathx: lines are parallel or nearly so (denom=%g)", denom)
	}

	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / denom
	p := Pt{X: a1.X + t*d1x, Y: a1.Y + t*d1y}
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		return Pt{}, fmt.Errorf("mathx: line intersection produced non-finite point")
	}
	return p, nil
}

// FiniteReciprocal reports whether 1/v is representable as a finite
// float64, i.e. v is itself finite and not so small that 1/v overflows.
func FiniteReciprocal(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	r := 1 / v
	return !math.IsNaN(r) && !math.IsInf(r, 0)
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// BilinearInterp interpolates the four corner values (q00 at (0,0), q10 at
// (1,0), q01 at (0,1), q11 at (1,1)) at fractional position (u, v).
func BilinearInterp(q00, q10, q01, q11, u, v float64) float64 {
	top := Lerp(q00, q10, u)
	bottom := Lerp(q01, q11, u)
	return Lerp(top, bottom, v)
}
