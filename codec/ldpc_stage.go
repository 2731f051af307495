/*
NAME
  ldpc_stage.go

DESCRIPTION
  Wires codec/ldpc's belief-propagation decoder into the pipeline's Stage
  interface. Unlike the other byte-oriented stages, LDPC's encoded
  "bytes" are one signed LLR per code bit (the 2D-PAM demapper's direct
  output, spec §4.3/§4.4): EncodedSymbolSize is therefore 1 LLR byte per
  bit, not one data byte per 8 bits.
*/

package codec

import (
	"fmt"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/codec/ldpc"
)

// LDPCStage decodes a block of signed-8-bit LLRs into a packed message.
type LDPCStage struct {
	StageName     string
	matrix        *ldpc.Matrix
	MessageBits   int
	Iterations    int
}

func (s *LDPCStage) Name() string          { return s.StageName }
func (s *LDPCStage) EncodedSymbolSize() int { return 1 }
func (s *LDPCStage) EncodedBlockSize() int  { return s.matrix.NCols() }
func (s *LDPCStage) EncodedDataSize() int   { return s.matrix.NCols() }
func (s *LDPCStage) DecodedSymbolSize() int { return 1 }
func (s *LDPCStage) DecodedBlockSize() int  { return (s.MessageBits + 7) / 8 }
func (s *LDPCStage) DecodedDataSize() int   { return s.DecodedBlockSize() }
func (s *LDPCStage) IsErrorCorrecting() bool { return true }

func (s *LDPCStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if len(data) != s.matrix.NCols() {
		return nil, fmt.Errorf("codec: %q expects %d LLR bytes, got %d", s.StageName, s.matrix.NCols(), len(data))
	}
	llr := make([]int8, len(data))
	for i, b := range data {
		llr[i] = int8(b)
	}

	result, err := ldpc.Decode(s.matrix, llr, s.Iterations)
	if err != nil {
		return nil, fmt.Errorf("codec: %q: %w", s.StageName, err)
	}

	if stats != nil {
		if result.Satisfied {
			stats.ResolvedErrors += result.Altered
		} else {
			stats.UnresolvedErrors += result.Altered
		}
		stats.FECAccumulatedAmount += float64(result.Altered)
		stats.FECAccumulatedWeight += float64(len(data))
	}

	out := make([]byte, s.DecodedBlockSize())
	for i := 0; i < s.MessageBits; i++ {
		if result.Bits[i] != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out, nil
}

func newLDPCStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	nCols, err := cfg.Int("codeBits")
	if err != nil {
		return nil, err
	}
	messageBits, err := cfg.Int("messageBits")
	if err != nil {
		return nil, err
	}
	checkDegree, err := cfg.IntOr("checkDegree", 6)
	if err != nil {
		return nil, err
	}
	seed, err := cfg.IntOr("seed", 1)
	if err != nil {
		return nil, err
	}
	iterations, err := cfg.IntOr("iterations", 25)
	if err != nil {
		return nil, err
	}
	nRows := nCols - messageBits
	matrix := ldpc.Construct(ldpc.Params{
		NCols:       nCols,
		NRows:       nRows,
		CheckDegree: checkDegree,
		Seed:        int64(seed),
	})
	return &LDPCStage{StageName: cfg.Name, matrix: matrix, MessageBits: messageBits, Iterations: iterations}, nil
}

func init() {
	RegisterStageFactory("LDPC", newLDPCStage)
}
