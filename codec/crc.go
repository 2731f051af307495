/*
NAME
  crc.go

DESCRIPTION
  The CRC32/CRC64 verification stage (spec §4.4, §7): a trailing checksum
  is stripped from the recovered payload and compared against a freshly
  computed checksum of the remaining bytes. A mismatch is reported as
  CRC_MISMATCH_ERROR rather than a generic decode failure, since by the
  time this stage runs every error-correcting stage below it has already
  done what it could (spec §7: "CRC failure is surfaced after the full
  chain completes").
*/

package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/mathx"
)

// CRCStage verifies a trailing CRC32 or CRC64 checksum.
type CRCStage struct {
	StageName string
	Width     int // 32 or 64
	Table32   *mathx.CRC32Table
	Table64   *mathx.CRC64Table
	Seed      uint64
	DataSize  int // encoded size, including the trailing checksum
}

func (s *CRCStage) Name() string          { return s.StageName }
func (s *CRCStage) EncodedSymbolSize() int { return 1 }
func (s *CRCStage) EncodedBlockSize() int  { return s.DataSize }
func (s *CRCStage) EncodedDataSize() int   { return s.DataSize }
func (s *CRCStage) DecodedSymbolSize() int { return 1 }
func (s *CRCStage) DecodedBlockSize() int  { return s.DataSize - s.Width/8 }
func (s *CRCStage) DecodedDataSize() int   { return s.DataSize - s.Width/8 }
func (s *CRCStage) IsErrorCorrecting() bool { return false }

func (s *CRCStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	n := s.Width / 8
	if len(data) < n {
		return nil, NewResultError(CrcMismatchError, fmt.Errorf("codec: %q payload shorter than checksum width", s.StageName))
	}
	payload := data[:len(data)-n]
	trailer := data[len(data)-n:]

	switch s.Width {
	case 32:
		want := beUint32(trailer)
		got := s.Table32.Checksum(uint32(s.Seed), payload)
		if got != want {
			return nil, NewResultError(CrcMismatchError, fmt.Errorf("codec: %q CRC32 mismatch: got %#x want %#x", s.StageName, got, want))
		}
	case 64:
		want := beUint64(trailer)
		got := s.Table64.Checksum(s.Seed, payload)
		if got != want {
			return nil, NewResultError(CrcMismatchError, fmt.Errorf("codec: %q CRC64 mismatch: got %#x want %#x", s.StageName, got, want))
		}
	default:
		return nil, fmt.Errorf("codec: unsupported CRC width %d", s.Width)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// newCRCStage derives Width from which codec kind ("CRC32" vs "CRC64")
// registered this factory, since no real CRC section carries a width key.
// polynom and seed are hex-literal strings (e.g. "0x42F0E1EBA9EA3693"),
// not ints: CRC64's polynomial doesn't fit an int on a 32-bit build, and
// the real config quotes them as strings regardless of width.
func newCRCStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	width := 32
	if cfg.Codec == "CRC64" {
		width = 64
	}

	polyStr, err := cfg.Str("polynom")
	if err != nil {
		return nil, err
	}
	poly, err := parseHexU64(polyStr)
	if err != nil {
		return nil, fmt.Errorf("codec: %q has invalid polynom %q: %w", cfg.Name, polyStr, err)
	}

	seedStr, err := cfg.Str("seed")
	if err != nil {
		return nil, err
	}
	seed, err := parseHexU64(seedStr)
	if err != nil {
		return nil, fmt.Errorf("codec: %q has invalid seed %q: %w", cfg.Name, seedStr, err)
	}

	s := &CRCStage{StageName: cfg.Name, Width: width, Seed: seed, DataSize: ctx.Size}
	switch width {
	case 32:
		s.Table32 = mathx.NewCRC32Table(uint32(poly))
	case 64:
		s.Table64 = mathx.NewCRC64Table(poly)
	default:
		return nil, fmt.Errorf("codec: unsupported CRC width %d for stage %q", width, cfg.Name)
	}
	return s, nil
}

func parseHexU64(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return strconv.ParseUint(s, 16, 64)
}

func init() {
	RegisterStageFactory("CRC32", newCRCStage)
	RegisterStageFactory("CRC64", newCRCStage)
}
