/*
NAME
  demod.go

DESCRIPTION
  Package demod turns a sampled grayscale symbol image into the codec
  pipeline's input byte stream (spec §4.3): the local k-means quantizer
  path for PAM-M (M in {2, 4}) alphabets, or the 32-symbol 2D-PAM LLR
  path for 5-bit-per-symbol-pair formats.
*/

package demod

import (
	"fmt"

	"github.com/piql/gpfunbox/frame"
)

// Params configures one demodulation pass.
type Params struct {
	BlockWidth, BlockHeight int
	Levels                  int // alphabet size for the quantizer path (2 or 4)
	Use2DPAM                bool
}

// DemodulateLevels runs the local k-means quantizer path, returning one
// byte per pixel holding its quantized interval index (0..Levels-1).
func DemodulateLevels(img *frame.Image8, p Params) (*frame.Image8, error) {
	q := Quantizer{BlockWidth: p.BlockWidth, BlockHeight: p.BlockHeight, Levels: p.Levels}
	res, err := q.Quantize(img)
	if err != nil {
		return nil, err
	}
	return res.Symbols, nil
}

// DemodulateLLR runs the 32-symbol 2D-PAM path: the quantizer first
// establishes per-block cluster means/variances for a 6-level axis
// alphabet, then adjacent column pairs of sampled symbols are demapped
// into five LLR bytes each.
func DemodulateLLR(img *frame.Image8, blockWidth, blockHeight int) ([]byte, error) {
	q := Quantizer{BlockWidth: blockWidth, BlockHeight: blockHeight, Levels: 6}
	res, err := q.Quantize(img)
	if err != nil {
		return nil, err
	}
	if img.Width()%2 != 0 {
		return nil, fmt.Errorf("demod: 2D-PAM requires an even symbol-image width, got %d", img.Width())
	}

	demapper := PAM2DDemapper{}
	out := make([]byte, 0, (img.Width()/2)*img.Height()*5)
	for y := 0; y < img.Height(); y++ {
		blockRow := y / blockHeight
		for x := 0; x+1 < img.Width(); x += 2 {
			blockCol0 := x / blockWidth
			blockCol1 := (x + 1) / blockWidth
			s0 := float64(img.At(x, y))
			s1 := float64(img.At(x+1, y))
			colStats := res.BlockStats[blockRow][blockCol0]
			rowStats := res.BlockStats[blockRow][blockCol1]
			bits, err := demapper.Demap(s0, s1, colStats, rowStats)
			if err != nil {
				return nil, err
			}
			for _, b := range bits {
				out = append(out, byte(b))
			}
		}
	}
	return out, nil
}
