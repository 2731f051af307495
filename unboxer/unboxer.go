/*
NAME
  unboxer.go

DESCRIPTION
  Package unboxer assembles the frame tracker, sampler, demodulator and
  codec pipelines into the single-frame decode entry point described by
  spec §2's data-flow line: image -> tracker -> sampler -> demodulator ->
  codec pipeline (reverse of encode order) -> plaintext bytes + metadata.
*/

package unboxer

import (
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/codec"
	"github.com/piql/gpfunbox/demod"
	"github.com/piql/gpfunbox/frame"
	"github.com/piql/gpfunbox/frame/sampler"
	"github.com/piql/gpfunbox/frame/tracker"
	"github.com/piql/gpfunbox/metadata"
)

// Config is everything needed to build an Unboxer for one frame format.
// An Unboxer built from one Config is reused across every frame of that
// format (spec §3 "Ownership lifecycle").
type Config struct {
	Format  frame.Format
	Mode    tracker.Mode
	Sampler sampler.Sampler

	DataPipeline     boxconfig.PipelineSpec
	MetadataPipeline boxconfig.PipelineSpec

	// QuantBlockWidth/Height size the demodulator's k-means blocks
	// (spec §4.3 nominally 16x64 for PAM-4).
	QuantBlockWidth, QuantBlockHeight int

	// Use2DPAM selects the 32-symbol 2D-PAM LLR demapper path instead of
	// the plain k-means quantizer path for the content container.
	Use2DPAM bool

	Log logging.Logger
}

// Unboxer decodes single frames of one fixed format.
type Unboxer struct {
	cfg          Config
	tracker      *tracker.Tracker
	dataPipeline *codec.Pipeline
	metaPipeline *codec.Pipeline
}

// New builds an Unboxer from cfg, constructing both codec pipelines and
// validating their stage contracts up front (spec §4.4, CONFIG_ERROR on
// mismatch).
func New(cfg Config, opts ...tracker.Option) (*Unboxer, error) {
	if cfg.Sampler == nil {
		cfg.Sampler = sampler.Bilinear{}
	}
	t := tracker.New(cfg.Format, cfg.Mode, cfg.Log, opts...)

	resolved := cfg.Format.Resolved()

	dataPipeline, err := codec.NewPipeline(cfg.DataPipeline.DataScheme, cfg.DataPipeline.Order, resolved.ContentCols*resolved.ContentRows, resolved, cfg.Log)
	if err != nil {
		return nil, err
	}
	metaPipeline, err := codec.NewPipeline(cfg.MetadataPipeline.MetadataScheme, cfg.MetadataPipeline.Order, resolved.MetadataCols*resolved.MetadataRows, resolved, cfg.Log)
	if err != nil {
		return nil, err
	}

	return &Unboxer{cfg: cfg, tracker: t, dataPipeline: dataPipeline, metaPipeline: metaPipeline}, nil
}

// Stats summarises one frame's decode outcome (spec §7 "Statistics").
type Stats struct {
	Code            codec.ResultCode
	DataStats       codec.Stats
	MetadataStats   codec.Stats
	Degraded        bool
	DegradedReasons []string
}

// Decode runs the full pipeline on one captured frame, returning the
// recovered plaintext and metadata list. progress is polled between
// codec stages (spec §5 "Cancellation"); pass nil to disable.
func (u *Unboxer) Decode(img *frame.Image8, progress codec.ProgressFunc) ([]byte, metadata.List, *Stats, error) {
	stats := &Stats{}

	trackResult, err := u.tracker.Track(img)
	if err != nil {
		stats.Code = codec.BorderTrackingError
		return nil, nil, stats, codec.NewResultError(codec.BorderTrackingError, err)
	}
	stats.Degraded = trackResult.Degraded
	stats.DegradedReasons = trackResult.DegradedReasons

	metaList, err := u.decodeMetadata(img, trackResult, stats)
	if err != nil {
		stats.Code = codec.AsResultCode(err)
		return nil, nil, stats, err
	}

	var cipherUser interface{}
	if key, ok := metaList.CipherKeyValue(); ok {
		cipherUser = key
	}

	plaintext, err := u.decodeContent(img, trackResult, cipherUser, stats, progress)
	if err != nil {
		stats.Code = codec.AsResultCode(err)
		return nil, metaList, stats, err
	}

	stats.Code = codec.OK
	return plaintext, metaList, stats, nil
}

func (u *Unboxer) decodeMetadata(img *frame.Image8, tr *tracker.Result, stats *Stats) (metadata.List, error) {
	if tr.Metadata == nil || tr.Metadata.Cols() == 0 {
		return nil, nil
	}
	symbols, err := u.cfg.Sampler.Sample(img, tr.Metadata)
	if err != nil {
		return nil, fmt.Errorf("unboxer: metadata sampling: %w", err)
	}

	levels, err := demod.DemodulateLevels(symbols, demod.Params{
		BlockWidth:  maxInt(1, u.cfg.QuantBlockWidth),
		BlockHeight: maxInt(1, u.cfg.QuantBlockHeight),
		Levels:      2,
	})
	if err != nil {
		return nil, codec.NewResultError(codec.MetadataError, err)
	}

	decoded, err := u.metaPipeline.Decode(levels.Pix(), &stats.MetadataStats, nil, nil)
	if err != nil {
		return nil, err
	}

	list, err := metadata.Decode(decoded)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (u *Unboxer) decodeContent(img *frame.Image8, tr *tracker.Result, cipherUser interface{}, stats *Stats, progress codec.ProgressFunc) ([]byte, error) {
	symbols, err := u.cfg.Sampler.Sample(img, tr.Content)
	if err != nil {
		return nil, fmt.Errorf("unboxer: content sampling: %w", err)
	}

	var raw []byte
	if u.cfg.Use2DPAM {
		raw, err = demod.DemodulateLLR(symbols, maxInt(1, u.cfg.QuantBlockWidth), maxInt(1, u.cfg.QuantBlockHeight))
		if err != nil {
			return nil, codec.NewResultError(codec.DataDecodeError, err)
		}
	} else {
		levels, err := demod.DemodulateLevels(symbols, demod.Params{
			BlockWidth:  maxInt(1, u.cfg.QuantBlockWidth),
			BlockHeight: maxInt(1, u.cfg.QuantBlockHeight),
			Levels:      u.cfg.Format.MaxLevelsPerSymbol,
		})
		if err != nil {
			return nil, codec.NewResultError(codec.DataDecodeError, err)
		}
		raw = levels.Pix()
	}

	return u.dataPipeline.Decode(raw, &stats.DataStats, cipherUser, progress)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
