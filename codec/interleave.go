/*
NAME
  interleave.go

DESCRIPTION
  The block/frame, byte/bit interleaver (spec §4.4 "Interleaver"). The
  encode-direction formula is output[i] = input[(i mod d)*n + i/d] for a
  block of size d*n; decoding applies the formula's closed-form inverse,
  recovered[j] = encoded[(j mod n)*d + j/n], which is the standard
  block-transpose deinterleave and satisfies the bijectivity property of
  spec §8.
*/

package codec

import (
	"fmt"

	"github.com/piql/gpfunbox/boxconfig"
)

// SymbolType is the interleaver's unit of interleaving.
type SymbolType int

const (
	SymbolByte SymbolType = iota
	SymbolBit
)

// InterleaveKind distinguishes block interleaving (within one frame) from
// frame interleaving (spans multiple encoder frames; spec notes this is
// "only meaningful in multi-frame contexts").
type InterleaveKind int

const (
	InterleaveBlock InterleaveKind = iota
	InterleaveFrame
)

// InterleaveStage implements Stage for both byte- and bit-granularity
// block interleaving.
type InterleaveStage struct {
	StageName  string
	Distance   int
	Kind       InterleaveKind
	Symbol     SymbolType
	DataSize   int // in bytes, regardless of Symbol
}

func (s *InterleaveStage) Name() string            { return s.StageName }
func (s *InterleaveStage) EncodedSymbolSize() int   { return 1 }
func (s *InterleaveStage) EncodedBlockSize() int    { return s.DataSize }
func (s *InterleaveStage) EncodedDataSize() int     { return s.DataSize }
func (s *InterleaveStage) DecodedSymbolSize() int   { return 1 }
func (s *InterleaveStage) DecodedBlockSize() int    { return s.DataSize }
func (s *InterleaveStage) DecodedDataSize() int     { return s.DataSize }
func (s *InterleaveStage) IsErrorCorrecting() bool  { return false }

func (s *InterleaveStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if s.Kind == InterleaveFrame {
		// Frame interleaving spans multiple encoder frames; this decoder
		// operates one frame at a time (spec §1 Non-goals: "no real-time
		// streaming"), so there is no cross-frame buffer to deinterleave
		// against. Treated as identity, matching a DataStripeSize/degree
		// of 1.
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	d := s.Distance
	if d <= 0 {
		return nil, fmt.Errorf("codec: interleave distance must be > 0, got %d", d)
	}

	switch s.Symbol {
	case SymbolByte:
		return deinterleaveUnits(data, d, 1)
	case SymbolBit:
		return deinterleaveBits(data, d)
	default:
		return nil, fmt.Errorf("codec: unrecognised interleave symbol type %v", s.Symbol)
	}
}

// deinterleaveUnits applies the block-transpose inverse at unitSize-byte
// granularity (unitSize==1 for byte interleaving).
func deinterleaveUnits(data []byte, d, unitSize int) ([]byte, error) {
	total := len(data) / unitSize
	if total%d != 0 {
		return nil, fmt.Errorf("codec: interleave block of %d units is not divisible by distance %d", total, d)
	}
	n := total / d
	out := make([]byte, len(data))
	for j := 0; j < total; j++ {
		i := (j%n)*d + j/n
		copy(out[j*unitSize:(j+1)*unitSize], data[i*unitSize:(i+1)*unitSize])
	}
	return out, nil
}

// deinterleaveBits applies the same inverse at bit granularity.
func deinterleaveBits(data []byte, d int) ([]byte, error) {
	total := len(data) * 8
	if total%d != 0 {
		return nil, fmt.Errorf("codec: bit-interleave block of %d bits is not divisible by distance %d", total, d)
	}
	n := total / d
	out := make([]byte, len(data))
	for j := 0; j < total; j++ {
		i := (j%n)*d + j/n
		if getBit(data, i) {
			setBit(out, j)
		}
	}
	return out, nil
}

func getBit(data []byte, i int) bool {
	return data[i/8]&(1<<uint(7-i%8)) != 0
}

func setBit(data []byte, i int) {
	data[i/8] |= 1 << uint(7-i%8)
}

// newInterleaveStage builds an InterleaveStage from its configuration
// section. Required keys: distance (int), interleavingtype ("frame"
// selects frame interleaving, any other value block), symboltype ("bit"
// selects bit symbols, any other value byte); a missing key is an error.
// DataSize is the pipeline's running byte count: interleaving
// doesn't change size, and no real section carries a size key anyway.
func newInterleaveStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	distance, err := cfg.Int("distance")
	if err != nil {
		return nil, err
	}
	kindStr, err := cfg.Str("interleavingtype")
	if err != nil {
		return nil, err
	}
	kind := InterleaveBlock
	if kindStr == "frame" {
		kind = InterleaveFrame
	}
	symbolStr, err := cfg.Str("symboltype")
	if err != nil {
		return nil, err
	}
	symbol := SymbolByte
	if symbolStr == "bit" {
		symbol = SymbolBit
	}
	return &InterleaveStage{
		StageName: cfg.Name,
		Distance:  distance,
		Kind:      kind,
		Symbol:    symbol,
		DataSize:  ctx.Size,
	}, nil
}

func init() {
	RegisterStageFactory("Interleaving", newInterleaveStage)
}
