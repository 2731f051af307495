/*
NAME
  sampler.go

DESCRIPTION
  The sampler family (spec §4.2): Area, Bilinear, Bicubic (Catmull-Rom) and
  Biquadratic kernels, all stateless with respect to the source image, all
  producing a rectified W x H symbol image from a sampling-location matrix
  of the same dimensions. Out-of-range coordinates are clamped at the edge;
  there is no extrapolation or wrap-around, matching frame.Image8.AtClamped.
*/

// Package sampler implements the bicubic/bilinear/biquadratic/area
// resampling kernels that turn a captured image plus a sampling-location
// matrix into a rectified symbol image.
package sampler

import (
	"fmt"
	"math"

	"github.com/piql/gpfunbox/frame"
)

// Sampler reconstructs a per-symbol intensity at sub-pixel coordinates.
type Sampler interface {
	// Sample returns a W x H Image8 (W, H taken from locations) sampled
	// from img at each of locations' sub-pixel coordinates.
	Sample(img *frame.Image8, locations *frame.PointMatrix) (*frame.Image8, error)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Bilinear is the standard two-tap interpolation of the four neighbours.
type Bilinear struct{}

func (Bilinear) Sample(img *frame.Image8, locations *frame.PointMatrix) (*frame.Image8, error) {
	return sampleEach(img, locations, bilinearAt)
}

// At samples a single sub-pixel coordinate, for callers (e.g. the
// reference-bar tracker) that need one-off samples rather than a full
// sampling-location matrix.
func (Bilinear) At(img *frame.Image8, x, y float64) float64 { return bilinearAt(img, x, y) }

func bilinearAt(img *frame.Image8, x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	ix0, iy0 := int(x0), int(y0)

	p00 := float64(img.AtClamped(ix0, iy0))
	p10 := float64(img.AtClamped(ix0+1, iy0))
	p01 := float64(img.AtClamped(ix0, iy0+1))
	p11 := float64(img.AtClamped(ix0+1, iy0+1))

	top := p00 + (p10-p00)*fx
	bottom := p01 + (p11-p01)*fx
	return top + (bottom-top)*fy
}

// Area is a box-filter of the given radius, used for metadata and
// calibration symbols whose footprint spans more than one pixel.
type Area struct {
	Radius int
}

func (a Area) Sample(img *frame.Image8, locations *frame.PointMatrix) (*frame.Image8, error) {
	if a.Radius < 0 {
		return nil, fmt.Errorf("sampler: area radius must be >= 0, got %d", a.Radius)
	}
	return sampleEach(img, locations, func(img *frame.Image8, x, y float64) float64 {
		cx, cy := int(math.Round(x)), int(math.Round(y))
		var sum float64
		var n int
		for dy := -a.Radius; dy <= a.Radius; dy++ {
			for dx := -a.Radius; dx <= a.Radius; dx++ {
				sum += float64(img.AtClamped(cx+dx, cy+dy))
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	})
}

// Bicubic is a Catmull-Rom four-tap interpolation in both axes, clamping
// out-of-range neighbours to the image border.
type Bicubic struct{}

func (Bicubic) Sample(img *frame.Image8, locations *frame.PointMatrix) (*frame.Image8, error) {
	return sampleEach(img, locations, bicubicAt)
}

// catmullRom evaluates the cubic Hermite (Catmull-Rom) interpolant through
// p0..p3 at fractional position t in [0, 1], p1 and p2 being the bracketing
// samples.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1
	return ((a0*t+a1)*t+a2)*t + a3
}

func bicubicAt(img *frame.Image8, x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	ix, iy := int(x0), int(y0)

	var rows [4]float64
	for j := -1; j <= 2; j++ {
		var p [4]float64
		for i := -1; i <= 2; i++ {
			p[i+1] = float64(img.AtClamped(ix+i, iy+j))
		}
		rows[j+1] = catmullRom(p[0], p[1], p[2], p[3], fx)
	}
	return catmullRom(rows[0], rows[1], rows[2], rows[3], fy)
}

// Biquadratic fits a parabola through three samples on each axis; it is
// the default sampler used for reference bars.
type Biquadratic struct{}

func (Biquadratic) Sample(img *frame.Image8, locations *frame.PointMatrix) (*frame.Image8, error) {
	return sampleEach(img, locations, biquadraticAt)
}

// At samples a single sub-pixel coordinate.
func (Biquadratic) At(img *frame.Image8, x, y float64) float64 { return biquadraticAt(img, x, y) }

// quadraticInterp evaluates the parabola through three equally-spaced
// samples (Lagrange basis) at fractional offset t from the middle sample,
// t in [-0.5, 0.5].
func quadraticInterp(pm1, p0, p1, t float64) float64 {
	// Lagrange interpolation through (-1, pm1), (0, p0), (1, p1) at x = t.
	a := 0.5 * (pm1 - 2*p0 + p1)
	b := 0.5 * (p1 - pm1)
	c := p0
	return a*t*t + b*t + c
}

func biquadraticAt(img *frame.Image8, x, y float64) float64 {
	x0 := math.Round(x)
	y0 := math.Round(y)
	tx := x - x0
	ty := y - y0
	ix, iy := int(x0), int(y0)

	var rows [3]float64
	for j := -1; j <= 1; j++ {
		pm1 := float64(img.AtClamped(ix-1, iy+j))
		p0 := float64(img.AtClamped(ix, iy+j))
		p1 := float64(img.AtClamped(ix+1, iy+j))
		rows[j+1] = quadraticInterp(pm1, p0, p1, tx)
	}
	return quadraticInterp(rows[0], rows[1], rows[2], ty)
}

// sampleEach applies at to every location in locations and clamps the
// result into a new Image8.
func sampleEach(img *frame.Image8, locations *frame.PointMatrix, at func(*frame.Image8, float64, float64) float64) (*frame.Image8, error) {
	w, h := locations.Cols(), locations.Rows()
	out := make([]uint8, w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			p := locations.At(c, r)
			out[r*w+c] = clamp255(at(img, p.X, p.Y))
		}
	}
	return frame.NewImage8(w, h, out)
}
