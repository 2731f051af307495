/*
NAME
  cipher.go

DESCRIPTION
  The stream cipher stage (spec §4.4 "Cipher", §6 "Auto-keying"): XORs the
  payload with a keystream derived from a key. Most stage sections carry a
  literal key value directly (e.g. the metadata pipeline's MetaData_Cipher
  stage, key="1"); a key of "auto" instead defers to a key resolved at
  decode time from elsewhere in the frame (the content pipeline's Cipher
  stage, whose key only becomes known once the metadata frame's CipherKey
  item has been decoded) and is passed through Decode's `user` argument.

  No stream cipher exists in the example pack's dependency surface, and a
  production pack would reach for one — this is the documented
  standard-library fallback (SPEC_FULL.md "Domain stack"): the keystream
  is generated with a seeded math/rand source rather than a
  cryptographically secure cipher, since the wire format only needs a
  reversible scrambling step, not confidentiality against an adversary.
*/

package codec

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/piql/gpfunbox/boxconfig"
)

// CipherStage XORs data against a keystream derived either from its own
// configured literal key, or (when HasLiteralKey is false, i.e. the
// configured key is "auto") from a key resolved by the caller and passed
// through Decode's user argument.
type CipherStage struct {
	StageName     string
	DataSize      int
	LiteralKey    uint64
	HasLiteralKey bool
}

func (s *CipherStage) Name() string           { return s.StageName }
func (s *CipherStage) EncodedSymbolSize() int  { return 1 }
func (s *CipherStage) EncodedBlockSize() int   { return s.DataSize }
func (s *CipherStage) EncodedDataSize() int    { return s.DataSize }
func (s *CipherStage) DecodedSymbolSize() int  { return 1 }
func (s *CipherStage) DecodedBlockSize() int   { return s.DataSize }
func (s *CipherStage) DecodedDataSize() int    { return s.DataSize }
func (s *CipherStage) IsErrorCorrecting() bool { return false }

func (s *CipherStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	key := s.LiteralKey
	if !s.HasLiteralKey {
		k, ok := user.(uint64)
		if !ok {
			return nil, NewResultError(ConfigError, fmt.Errorf("codec: %q requires a resolved cipher key (decode metadata first)", s.StageName))
		}
		key = k
	}

	out := make([]byte, len(data))
	src := rand.New(rand.NewSource(int64(key)))
	keystream := make([]byte, len(data))
	if _, err := src.Read(keystream); err != nil {
		return nil, fmt.Errorf("codec: %q keystream generation failed: %w", s.StageName, err)
	}
	for i := range data {
		out[i] = data[i] ^ keystream[i]
	}
	return out, nil
}

// newCipherStage reads the stage's own key value, a string holding either
// "auto" (defer to a key resolved elsewhere, passed via Decode's user
// argument) or a literal key, parsed as decimal.
func newCipherStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	keyStr, err := cfg.Str("key")
	if err != nil {
		return nil, err
	}
	s := &CipherStage{StageName: cfg.Name, DataSize: ctx.Size}
	if keyStr != "auto" {
		key, err := strconv.ParseUint(keyStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("codec: %q has invalid key %q: %w", cfg.Name, keyStr, err)
		}
		s.LiteralKey = key
		s.HasLiteralKey = true
	}
	return s, nil
}

func init() {
	RegisterStageFactory("Cipher", newCipherStage)
}
