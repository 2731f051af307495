/*
NAME
  modulator.go

DESCRIPTION
  The modulator stage (spec §4.4 "Modulator"): repacks one hard symbol
  value per byte (as produced by the demodulator, each holding
  BitsPerSymbol significant low bits) into a dense bitstream. Grounded on
  the teacher's h264dec bit reader/writer (codec/h264/h264dec/bits),
  generalised from a fixed 1-bit-at-a-time Exp-Golomb reader to an
  arbitrary bits-per-symbol packer.
*/

package codec

import (
	"fmt"
	"strconv"

	"github.com/piql/gpfunbox/boxconfig"
)

// ModulatorStage packs BitsPerSymbol-wide symbol values into a dense byte
// stream (decode direction: unpacking already happened upstream in the
// demodulator, so this stage's Decode call is the repack step that turns
// raw tracked symbols into codec-pipeline bytes).
type ModulatorStage struct {
	StageName     string
	BitsPerSymbol int
	SymbolCount   int // number of input symbol bytes
}

func (s *ModulatorStage) Name() string          { return s.StageName }
func (s *ModulatorStage) EncodedSymbolSize() int { return 1 }
func (s *ModulatorStage) EncodedBlockSize() int  { return s.SymbolCount }
func (s *ModulatorStage) EncodedDataSize() int   { return s.SymbolCount }
func (s *ModulatorStage) DecodedSymbolSize() int { return 1 }
func (s *ModulatorStage) DecodedBlockSize() int {
	return (s.SymbolCount*s.BitsPerSymbol + 7) / 8
}
func (s *ModulatorStage) DecodedDataSize() int   { return s.DecodedBlockSize() }
func (s *ModulatorStage) IsErrorCorrecting() bool { return false }

func (s *ModulatorStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if s.BitsPerSymbol <= 0 || s.BitsPerSymbol > 8 {
		return nil, fmt.Errorf("codec: %q has invalid bitsPerSymbol %d", s.StageName, s.BitsPerSymbol)
	}
	w := newBitWriter(s.DecodedBlockSize())
	mask := uint32(1)<<uint(s.BitsPerSymbol) - 1
	for _, sym := range data {
		w.writeBits(uint32(sym)&mask, s.BitsPerSymbol)
	}
	return w.bytes(), nil
}

// newModulatorStage reads the real NumBitsPerPixel key, a string holding
// either "auto" (take BitsPerSymbol from the frame format) or a literal
// bit count. SymbolCount is the pipeline's running byte count, not a
// config key: no real Modulator section carries one.
func newModulatorStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	bitsStr, err := cfg.Str("NumBitsPerPixel")
	if err != nil {
		return nil, err
	}
	bits := ctx.Format.BitsPerSymbol()
	if bitsStr != "auto" {
		v, err := strconv.Atoi(bitsStr)
		if err != nil {
			return nil, fmt.Errorf("codec: %q has invalid NumBitsPerPixel %q: %w", cfg.Name, bitsStr, err)
		}
		bits = v
	}
	return &ModulatorStage{StageName: cfg.Name, BitsPerSymbol: bits, SymbolCount: ctx.Size}, nil
}

func init() {
	RegisterStageFactory("Modulator", newModulatorStage)
}

// bitWriter packs bits MSB-first into a preallocated byte buffer.
type bitWriter struct {
	buf    []byte
	bitPos int
}

func newBitWriter(capacity int) *bitWriter {
	return &bitWriter{buf: make([]byte, capacity)}
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := (v >> uint(i)) & 1
		byteIdx := w.bitPos / 8
		if byteIdx >= len(w.buf) {
			return
		}
		if bit != 0 {
			w.buf[byteIdx] |= 1 << uint(7-w.bitPos%8)
		}
		w.bitPos++
	}
}

func (w *bitWriter) bytes() []byte { return w.buf }
