/*
NAME
  stripe.go

DESCRIPTION
  The frame-to-frame striping stage (spec §4.4 "Striping (FTF)"): data is
  spread across DataStripeSize consecutive encoder frames. This decoder
  recovers one frame at a time (spec §1 Non-goals: "no real-time
  streaming"), so there is no buffer of sibling frames to de-stripe
  against; a stripe size of 1 degenerates to identity, and any larger
  stripe size is rejected rather than silently producing wrong bytes.
*/

package codec

import (
	"fmt"
	"strconv"

	"github.com/piql/gpfunbox/boxconfig"
)

// StripeStage implements the FTF striping stage's decode side.
type StripeStage struct {
	StageName string
	StripeSize int
	DataSize  int
}

func (s *StripeStage) Name() string           { return s.StageName }
func (s *StripeStage) EncodedSymbolSize() int  { return 1 }
func (s *StripeStage) EncodedBlockSize() int   { return s.DataSize }
func (s *StripeStage) EncodedDataSize() int    { return s.DataSize }
func (s *StripeStage) DecodedSymbolSize() int  { return 1 }
func (s *StripeStage) DecodedBlockSize() int   { return s.DataSize }
func (s *StripeStage) DecodedDataSize() int    { return s.DataSize }
func (s *StripeStage) IsErrorCorrecting() bool { return false }

func (s *StripeStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if s.StripeSize > 1 {
		return nil, fmt.Errorf("codec: %q requires a %d-frame stripe buffer, unsupported by single-frame decode", s.StageName, s.StripeSize)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// newStripeStage reads the real DataStripeSize key, a string holding
// either "auto" (no cross-frame buffering available to a single-frame
// decoder, so a stripe size of 1) or a literal stripe count.
func newStripeStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	raw, err := cfg.Str("DataStripeSize")
	if err != nil {
		return nil, err
	}
	stripeSize := 1
	if raw != "auto" {
		stripeSize, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("codec: %q has invalid DataStripeSize %q: %w", cfg.Name, raw, err)
		}
	}
	return &StripeStage{StageName: cfg.Name, StripeSize: stripeSize, DataSize: ctx.Size}, nil
}

func init() {
	RegisterStageFactory("Striping", newStripeStage)
}
