/*
NAME
  reedsolomon_stage.go

DESCRIPTION
  Wires codec/reedsolomon's GF(256) RS(n,k) decoder into the pipeline's
  Stage interface. Two stages of this kind commonly appear in a
  DataCodingScheme (e.g. ReedSolomon_inner and ReedSolomon_outer, spec
  §6), distinguished by StageConfig.Name while sharing Codec=="ReedSolomon".
*/

package codec

import (
	"fmt"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/codec/reedsolomon"
)

// ReedSolomonStage decodes one or more RS(n,k) blocks per call.
type ReedSolomonStage struct {
	StageName string
	codec     *reedsolomon.Codec
	Blocks    int
}

func (s *ReedSolomonStage) Name() string          { return s.StageName }
func (s *ReedSolomonStage) EncodedSymbolSize() int { return 1 }
func (s *ReedSolomonStage) EncodedBlockSize() int  { return s.codec.N }
func (s *ReedSolomonStage) EncodedDataSize() int   { return s.codec.N * s.Blocks }
func (s *ReedSolomonStage) DecodedSymbolSize() int { return 1 }
func (s *ReedSolomonStage) DecodedBlockSize() int  { return s.codec.K }
func (s *ReedSolomonStage) DecodedDataSize() int   { return s.codec.K * s.Blocks }
func (s *ReedSolomonStage) IsErrorCorrecting() bool { return true }

func (s *ReedSolomonStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	blockSize := s.codec.N
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf("codec: %q payload of %d bytes is not a multiple of RS block size %d", s.StageName, len(data), blockSize)
	}
	numBlocks := len(data) / blockSize
	out := make([]byte, 0, numBlocks*s.codec.K)

	for b := 0; b < numBlocks; b++ {
		block := data[b*blockSize : (b+1)*blockSize]
		var blockErasures []int
		for _, e := range erasures {
			if e >= b*blockSize && e < (b+1)*blockSize {
				blockErasures = append(blockErasures, e-b*blockSize)
			}
		}
		msg, corrected, err := s.codec.Decode(block, blockErasures)
		if err != nil {
			if stats != nil {
				stats.UnresolvedErrors++
			}
			return nil, NewResultError(DataDecodeError, fmt.Errorf("codec: %q block %d: %w", s.StageName, b, err))
		}
		if stats != nil && len(corrected) > 0 {
			stats.ResolvedErrors += len(corrected)
			stats.FECAccumulatedAmount += float64(len(corrected))
			stats.FECAccumulatedWeight += float64(s.codec.Nroots)
		}
		out = append(out, msg...)
	}
	return out, nil
}

// newReedSolomonStage reads the real byteParityNumber/messageSize keys. No
// real RS_inner/RS_outer section carries a block-count key: Blocks is
// derived from the pipeline's running byte count, which must divide
// evenly into n-byte blocks.
func newReedSolomonStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	parityBytes, err := cfg.Int("byteParityNumber")
	if err != nil {
		return nil, err
	}
	messageSize, err := cfg.Int("messageSize")
	if err != nil {
		return nil, err
	}
	n := messageSize + parityBytes
	if n <= 0 || ctx.Size%n != 0 {
		return nil, fmt.Errorf("codec: %q pipeline size %d is not a multiple of RS block size %d", cfg.Name, ctx.Size, n)
	}
	rs, err := reedsolomon.New(n, messageSize)
	if err != nil {
		return nil, err
	}
	return &ReedSolomonStage{StageName: cfg.Name, codec: rs, Blocks: ctx.Size / n}, nil
}

func init() {
	RegisterStageFactory("ReedSolomon", newReedSolomonStage)
}
