package frame

import "testing"

func TestNewImage8Validation(t *testing.T) {
	if _, err := NewImage8(0, 10, nil); err == nil {
		t.Error("NewImage8(0, 10, nil): want error")
	}
	if _, err := NewImage8(2, 2, []uint8{1, 2, 3}); err == nil {
		t.Error("NewImage8(2, 2, 3 bytes): want error for length mismatch")
	}
	img, err := NewImage8(2, 2, []uint8{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewImage8() error = %v", err)
	}
	if img.Width() != 2 || img.Height() != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", img.Width(), img.Height())
	}
	if got := img.At(1, 1); got != 4 {
		t.Errorf("At(1,1) = %d, want 4", got)
	}
}

func TestImage8AtOutOfBounds(t *testing.T) {
	img := NewBlankImage8(3, 3, 9)
	if got := img.At(-1, 0); got != 0 {
		t.Errorf("At(-1,0) = %d, want 0", got)
	}
	if got := img.At(3, 0); got != 0 {
		t.Errorf("At(3,0) = %d, want 0", got)
	}
	if got := img.At(0, 0); got != 9 {
		t.Errorf("At(0,0) = %d, want 9", got)
	}
}

func TestImage8AtClamped(t *testing.T) {
	pix := []uint8{1, 2, 3, 4}
	img, _ := NewImage8(2, 2, pix)
	if got := img.AtClamped(-5, -5); got != 1 {
		t.Errorf("AtClamped(-5,-5) = %d, want 1", got)
	}
	if got := img.AtClamped(5, 5); got != 4 {
		t.Errorf("AtClamped(5,5) = %d, want 4", got)
	}
}

func TestImage8Set(t *testing.T) {
	img := NewBlankImage8(2, 2, 0)
	img.Set(1, 0, 42)
	if got := img.At(1, 0); got != 42 {
		t.Errorf("after Set(1,0,42), At(1,0) = %d, want 42", got)
	}
	// Out-of-bounds Set is a silent no-op.
	img.Set(-1, 0, 1)
	img.Set(5, 5, 1)
}

func TestPointMatrix(t *testing.T) {
	m := NewPointMatrix(3, 2)
	if m.Cols() != 3 || m.Rows() != 2 {
		t.Fatalf("dims = %dx%d, want 3x2", m.Cols(), m.Rows())
	}
	p := PointF{X: 1.5, Y: 2.5}
	m.Set(2, 1, p)
	if got := m.At(2, 1); got != p {
		t.Errorf("At(2,1) = %+v, want %+v", got, p)
	}
	if got := m.At(0, 0); got != (PointF{}) {
		t.Errorf("At(0,0) = %+v, want zero value", got)
	}
}

func TestFormatBitsPerSymbol(t *testing.T) {
	cases := []struct {
		levels int
		want   int
	}{
		{2, 1},
		{4, 2},
		{8, 3},
		{32, 5},
		{1, 0},
	}
	for _, c := range cases {
		f := Format{MaxLevelsPerSymbol: c.levels}
		if got := f.BitsPerSymbol(); got != c.want {
			t.Errorf("BitsPerSymbol() with levels=%d = %d, want %d", c.levels, got, c.want)
		}
	}
}

func TestCornerMarksValidate(t *testing.T) {
	good := CornerMarks{
		TopLeft:     Point{0, 0},
		TopRight:    Point{10, 0},
		BottomLeft:  Point{0, 10},
		BottomRight: Point{10, 10},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() on well-formed marks: unexpected error %v", err)
	}

	bad := good
	bad.TopRight.X = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with degenerate top edge: want error")
	}
}

func TestCornerMarksInBounds(t *testing.T) {
	marks := CornerMarks{
		TopLeft:     Point{0, 0},
		TopRight:    Point{9, 0},
		BottomLeft:  Point{0, 9},
		BottomRight: Point{9, 9},
	}
	if !marks.InBounds(10, 10) {
		t.Error("InBounds(10,10): want true")
	}
	if marks.InBounds(9, 9) {
		t.Error("InBounds(9,9): want false (bottom-right out of range)")
	}
}

func TestLineLength(t *testing.T) {
	l := Line{A: PointF{0, 0}, B: PointF{3, 4}}
	if got := l.Length(); got != 25 {
		t.Errorf("Length() = %v, want 25 (squared length)", got)
	}
}
