/*
NAME
  dsp.go

DESCRIPTION
  A windowed FIR low-pass smoothing filter for 1D geometry sequences; the
  frame tracker applies it to the per-row horizontal-shift array (spec
  §4.1 step 8). The lowpass coefficients are a windowed sinc with a
  flat-top window, applied to a generic float64 sequence.
*/

package mathx

import (
	"errors"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Smoother is a low-pass FIR filter for geometry measurement sequences.
type Smoother struct {
	coeffs []float64
}

// NewSmoother builds a low-pass filter with normalised cutoff fd in (0,
// 0.5) (as a fraction of the sequence's sample rate) and the given number
// of taps.
func NewSmoother(fd float64, taps int) (*Smoother, error) {
	if fd <= 0 || fd >= 0.5 {
		return nil, errors.New("mathx: cutoff must be in (0, 0.5)")
	}
	if taps <= 0 {
		return nil, errors.New("mathx: taps must be > 0")
	}
	size := taps + 1
	coeffs := make([]float64, size)
	b := 2 * math.Pi * fd
	win := window.FlatTop(size)
	for n := 0; n < taps/2; n++ {
		c := float64(n) - float64(taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = 2 * fd * y * win[n]
		coeffs[size-1-n] = coeffs[n]
	}
	coeffs[taps/2] = 2 * fd * win[taps/2]
	return &Smoother{coeffs: coeffs}, nil
}

// Apply convolves x with the filter's coefficients using an FFT-based fast
// convolution, returning a sequence of length len(x)+len(coeffs)-1.
func (s *Smoother) Apply(x []float64) ([]float64, error) {
	return fastConvolve(x, s.coeffs)
}

// fastConvolve convolves x and h via zero-padded FFT multiplication.
func fastConvolve(x, h []float64) ([]float64, error) {
	n := len(x) + len(h) - 1
	size := 1
	for size < n {
		size *= 2
	}
	xp := make([]float64, size)
	hp := make([]float64, size)
	copy(xp, x)
	copy(hp, h)

	xFFT, hFFT := fft.FFTReal(xp), fft.FFTReal(hp)
	yFFT := make([]complex128, size)
	for i := range yFFT {
		yFFT[i] = xFFT[i] * hFFT[i]
	}
	iy := fft.IFFT(yFFT)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = real(iy[i])
	}
	return out, nil
}

// SmoothInPlace applies the filter and trims the result back to len(x),
// taking the centred portion of the (longer) convolution output so the
// smoothed sequence stays aligned with the input samples.
func (s *Smoother) SmoothInPlace(x []float64) ([]float64, error) {
	full, err := s.Apply(x)
	if err != nil {
		return nil, err
	}
	offset := len(s.coeffs) / 2
	out := make([]float64, len(x))
	for i := range out {
		idx := i + offset
		if idx < len(full) {
			out[i] = full[idx]
		}
	}
	return out, nil
}
