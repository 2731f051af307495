/*
NAME
  pipeline.go

DESCRIPTION
  The codec pipeline dispatcher (spec §4.4): builds each stage in decode
  order, deriving its encoded/decoded byte counts from a running size
  cursor rather than a per-stage config key (none of the real per-stage
  configuration sections carry one), then walks the built stages forward,
  threading data and stats through each (no erasure list is passed on).
*/

package codec

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/frame"
)

// Pipeline is a decode-order sequence of stages, constructed once per
// frame format and reused across frames of that format (spec §3
// "Ownership lifecycle").
type Pipeline struct {
	stages []Stage // decode order
	log    logging.Logger
}

// BuildContext is threaded through stage factories during NewPipeline's
// construction pass, in decode order. Size is the byte count the next
// stage must consume: it starts at the pipeline's raw input size (the
// demodulator's output) and is advanced to each built stage's
// DecodedDataSize before the next factory runs, since no real per-stage
// configuration section carries an explicit size key of its own.
type BuildContext struct {
	Format frame.Format
	Size   int
}

// StageFactory builds a Stage from its configuration section and the
// running build context. Registered per codec kind (e.g. "ReedSolomon",
// "CRC32") in stageFactories.
type StageFactory func(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error)

var stageFactories = map[string]StageFactory{}

// RegisterStageFactory adds (or overrides) the factory used to build
// stages of the given codec kind. Called from each stage file's init.
func RegisterStageFactory(codec string, f StageFactory) {
	stageFactories[codec] = f
}

// NewPipeline builds a Pipeline from spec's stage list and ordering
// convention (spec §6 "order"), starting the size chain at initialSize
// (the raw byte count the demodulator hands the pipeline: the resolved
// content or metadata grid's cell count).
func NewPipeline(stageConfigs []boxconfig.StageConfig, order string, initialSize int, format frame.Format, log logging.Logger) (*Pipeline, error) {
	decodeOrder := canonicalizeDecodeOrder(stageConfigs, order)

	ctx := &BuildContext{Format: format, Size: initialSize}
	stages := make([]Stage, 0, len(decodeOrder))
	for _, sc := range decodeOrder {
		factory, ok := stageFactories[sc.Codec]
		if !ok {
			return nil, NewResultError(ConfigError, fmt.Errorf("codec: unrecognised stage codec %q (stage %q)", sc.Codec, sc.Name))
		}
		stage, err := factory(sc, ctx)
		if err != nil {
			return nil, NewResultError(ConfigError, errors.Wrapf(err, "constructing stage %q", sc.Name))
		}
		stages = append(stages, stage)
		ctx.Size = stage.DecodedDataSize()
	}

	if err := validateBlockSizes(stages); err != nil {
		return nil, NewResultError(ConfigError, err)
	}

	return &Pipeline{stages: stages, log: log}, nil
}

// canonicalizeDecodeOrder returns stageConfigs in decode order. order ==
// "decode" means the list, as written in the registry, already is decode
// order (the 4kv10 sample configuration's convention); any other value
// (including the default "encode") means the list is in encode order and
// must be reversed.
func canonicalizeDecodeOrder(stageConfigs []boxconfig.StageConfig, order string) []boxconfig.StageConfig {
	out := make([]boxconfig.StageConfig, len(stageConfigs))
	if order == "decode" {
		copy(out, stageConfigs)
		return out
	}
	for i, sc := range stageConfigs {
		out[len(stageConfigs)-1-i] = sc
	}
	return out
}

// validateBlockSizes checks that every stage's encoded data size is a
// multiple of its own block size (spec §4.4 "Model"), and that each
// stage's encoded data size equals the decoded data size of the stage
// before it in decode order.
func validateBlockSizes(stages []Stage) error {
	for i, s := range stages {
		if i > 0 && s.EncodedDataSize() != stages[i-1].DecodedDataSize() {
			return fmt.Errorf("codec: stage %q encoded data size %d does not match stage %q decoded data size %d",
				s.Name(), s.EncodedDataSize(), stages[i-1].Name(), stages[i-1].DecodedDataSize())
		}
		if s.EncodedBlockSize() <= 0 {
			continue
		}
		blocks := s.EncodedDataSize() / s.EncodedBlockSize()
		if blocks*s.EncodedBlockSize() != s.EncodedDataSize() {
			return fmt.Errorf("codec: stage %q encoded data size %d is not a multiple of its block size %d",
				s.Name(), s.EncodedDataSize(), s.EncodedBlockSize())
		}
	}
	return nil
}

// Decode walks the stages in decode order, threading data and stats
// through each; every stage's Decode receives a nil erasures list. progress is polled between stages; if it returns
// true the pipeline aborts with ProcessCallbackAbort.
func (p *Pipeline) Decode(data []byte, stats *Stats, user interface{}, progress ProgressFunc) ([]byte, error) {
	cur := data
	for i, stage := range p.stages {
		if progress != nil && progress(i, stage.Name()) {
			return nil, NewResultError(ProcessCallbackAbort, fmt.Errorf("codec: aborted before stage %q", stage.Name()))
		}

		out, err := stage.Decode(cur, nil, stats, user)
		if err != nil {
			if p.log != nil {
				p.log.Error("codec stage failed", "stage", stage.Name(), "error", err.Error())
			}
			if re, ok := err.(*ResultError); ok {
				return nil, re
			}
			return nil, NewResultError(DataDecodeError, errors.Wrapf(err, "stage %q", stage.Name()))
		}
		cur = out
	}
	return cur, nil
}

// Stages returns the pipeline's stages in decode order (read-only use,
// e.g. for diagnostics).
func (p *Pipeline) Stages() []Stage { return p.stages }
