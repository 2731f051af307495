/*
NAME
  packetheader.go

DESCRIPTION
  The packet header stage (spec §4.4 "PacketHeader"): strips a leading
  fixed-size header from the stream, exposing the remaining payload to the
  stages above it in decode order.
*/

package codec

import (
	"fmt"

	"github.com/piql/gpfunbox/boxconfig"
)

// PacketHeaderStage strips (decode) / would prepend (encode) a
// fixed-size leading header.
type PacketHeaderStage struct {
	StageName  string
	HeaderSize int
	DataSize   int // encoded size, including the header
}

func (s *PacketHeaderStage) Name() string           { return s.StageName }
func (s *PacketHeaderStage) EncodedSymbolSize() int { return 1 }
func (s *PacketHeaderStage) EncodedBlockSize() int  { return s.DataSize }
func (s *PacketHeaderStage) EncodedDataSize() int   { return s.DataSize }
func (s *PacketHeaderStage) DecodedSymbolSize() int { return 1 }
func (s *PacketHeaderStage) DecodedBlockSize() int  { return s.DataSize - s.HeaderSize }
func (s *PacketHeaderStage) DecodedDataSize() int   { return s.DataSize - s.HeaderSize }
func (s *PacketHeaderStage) IsErrorCorrecting() bool { return false }

func (s *PacketHeaderStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if len(data) < s.HeaderSize {
		return nil, fmt.Errorf("codec: %q payload (%d bytes) shorter than header size %d", s.StageName, len(data), s.HeaderSize)
	}
	out := make([]byte, len(data)-s.HeaderSize)
	copy(out, data[s.HeaderSize:])
	return out, nil
}

// defaultPacketHeaderSize is the fixed header width in bytes. No real
// PacketHeader/PH section across the sample formats carries a size key
// (only `codec`), so this is a protocol constant rather than a
// configuration value; newPacketHeaderStage still honours an explicit
// headerSize key if a configuration source ever supplies one.
const defaultPacketHeaderSize = 4

func newPacketHeaderStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	headerSize, err := cfg.IntOr("headerSize", defaultPacketHeaderSize)
	if err != nil {
		return nil, err
	}
	return &PacketHeaderStage{StageName: cfg.Name, HeaderSize: headerSize, DataSize: ctx.Size}, nil
}

func init() {
	RegisterStageFactory("PacketHeader", newPacketHeaderStage)
}
