package mathx

import (
	"math"
	"testing"
)

func TestNewSmootherValidatesParams(t *testing.T) {
	if _, err := NewSmoother(0, 8); err == nil {
		t.Error("NewSmoother(0, 8): want error for fd=0")
	}
	if _, err := NewSmoother(0.5, 8); err == nil {
		t.Error("NewSmoother(0.5, 8): want error for fd=0.5")
	}
	if _, err := NewSmoother(0.1, 0); err == nil {
		t.Error("NewSmoother(0.1, 0): want error for taps=0")
	}
	if _, err := NewSmoother(0.1, 8); err != nil {
		t.Errorf("NewSmoother(0.1, 8) unexpected error: %v", err)
	}
}

func TestSmoothInPlacePreservesLength(t *testing.T) {
	s, err := NewSmoother(0.1, 16)
	if err != nil {
		t.Fatalf("NewSmoother() error = %v", err)
	}
	x := make([]float64, 64)
	for i := range x {
		x[i] = 1.0
	}
	out, err := s.SmoothInPlace(x)
	if err != nil {
		t.Fatalf("SmoothInPlace() error = %v", err)
	}
	if len(out) != len(x) {
		t.Fatalf("SmoothInPlace() length = %d, want %d", len(out), len(x))
	}
	// A constant input through a normalised low-pass filter should stay
	// close to constant away from the boundary.
	for i := 8; i < len(out)-8; i++ {
		if math.Abs(out[i]-1.0) > 0.2 {
			t.Errorf("out[%d] = %v, want close to 1.0", i, out[i])
		}
	}
}
