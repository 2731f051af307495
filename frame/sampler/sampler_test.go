package sampler

import (
	"testing"

	"github.com/piql/gpfunbox/frame"
)

func gradientImage(t *testing.T, w, h int) *frame.Image8 {
	t.Helper()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = uint8(x * 10)
		}
	}
	img, err := frame.NewImage8(w, h, pix)
	if err != nil {
		t.Fatalf("NewImage8() error = %v", err)
	}
	return img
}

func singlePointMatrix(x, y float64) *frame.PointMatrix {
	m := frame.NewPointMatrix(1, 1)
	m.Set(0, 0, frame.PointF{X: x, Y: y})
	return m
}

func TestBilinearSampleAtIntegerCoordinateMatchesSourcePixel(t *testing.T) {
	img := gradientImage(t, 10, 10)
	out, err := (Bilinear{}).Sample(img, singlePointMatrix(3, 4))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got, want := out.At(0, 0), img.At(3, 4); got != want {
		t.Errorf("Sample() at integer coordinate = %d, want %d", got, want)
	}
}

func TestBilinearAtInterpolatesBetweenNeighbours(t *testing.T) {
	img := gradientImage(t, 10, 10)
	// Column 3 has value 30, column 4 has value 40; halfway should be 35.
	got := (Bilinear{}).At(img, 3.5, 0)
	if got != 35 {
		t.Errorf("At(3.5, 0) = %v, want 35", got)
	}
}

func TestBilinearClampsOutOfBoundsCoordinates(t *testing.T) {
	img := gradientImage(t, 10, 10)
	out, err := (Bilinear{}).Sample(img, singlePointMatrix(-5, -5))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got, want := out.At(0, 0), img.At(0, 0); got != want {
		t.Errorf("Sample() out-of-bounds coordinate = %d, want clamped to %d", got, want)
	}
}

func TestAreaRejectsNegativeRadius(t *testing.T) {
	img := gradientImage(t, 10, 10)
	if _, err := (Area{Radius: -1}).Sample(img, singlePointMatrix(0, 0)); err == nil {
		t.Fatal("Sample() with negative radius: want error")
	}
}

func TestAreaZeroRadiusMatchesSinglePixel(t *testing.T) {
	img := gradientImage(t, 10, 10)
	out, err := (Area{Radius: 0}).Sample(img, singlePointMatrix(5, 5))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got, want := out.At(0, 0), img.At(5, 5); got != want {
		t.Errorf("Area{Radius:0} = %d, want %d", got, want)
	}
}

func TestAreaAveragesOverWindow(t *testing.T) {
	// Uniform image: any averaging window should reproduce the constant
	// value exactly.
	img := frame.NewBlankImage8(10, 10, 100)
	out, err := (Area{Radius: 2}).Sample(img, singlePointMatrix(5, 5))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got := out.At(0, 0); got != 100 {
		t.Errorf("Area{Radius:2} over uniform image = %d, want 100", got)
	}
}

func TestBicubicSampleAtIntegerCoordinateMatchesSourcePixel(t *testing.T) {
	img := gradientImage(t, 10, 10)
	out, err := (Bicubic{}).Sample(img, singlePointMatrix(5, 5))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got, want := out.At(0, 0), img.At(5, 5); got != want {
		t.Errorf("Bicubic Sample() at integer coordinate = %d, want %d", got, want)
	}
}

func TestBicubicOnUniformImageReproducesConstant(t *testing.T) {
	img := frame.NewBlankImage8(10, 10, 42)
	out, err := (Bicubic{}).Sample(img, singlePointMatrix(5.3, 5.7))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got := out.At(0, 0); got != 42 {
		t.Errorf("Bicubic over uniform image = %d, want 42", got)
	}
}

func TestBiquadraticSampleAtIntegerCoordinateMatchesSourcePixel(t *testing.T) {
	img := gradientImage(t, 10, 10)
	out, err := (Biquadratic{}).Sample(img, singlePointMatrix(5, 5))
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if got, want := out.At(0, 0), img.At(5, 5); got != want {
		t.Errorf("Biquadratic Sample() at integer coordinate = %d, want %d", got, want)
	}
}

func TestBiquadraticAtOnUniformImageReproducesConstant(t *testing.T) {
	img := frame.NewBlankImage8(10, 10, 200)
	if got := (Biquadratic{}).At(img, 5.2, 4.8); got != 200 {
		t.Errorf("Biquadratic At() over uniform image = %v, want 200", got)
	}
}

func TestSampleProducesOutputMatchingLocationsDimensions(t *testing.T) {
	img := gradientImage(t, 10, 10)
	locs := frame.NewPointMatrix(3, 2)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			locs.Set(c, r, frame.PointF{X: float64(c), Y: float64(r)})
		}
	}
	out, err := (Bilinear{}).Sample(img, locs)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if out.Width() != 3 || out.Height() != 2 {
		t.Fatalf("Sample() dims = %dx%d, want 3x2", out.Width(), out.Height())
	}
}
