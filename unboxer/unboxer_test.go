package unboxer

import (
	"testing"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/codec"
	"github.com/piql/gpfunbox/frame"
	"github.com/piql/gpfunbox/frame/tracker"
)

func testConfig() Config {
	return Config{
		Format: frame.Format{
			Width: 100, Height: 100,
			CornerMarkSize:     10,
			ContentCols:        4,
			ContentRows:        4,
			MaxLevelsPerSymbol: 2,
		},
		Mode:            tracker.Simulated,
		QuantBlockWidth: 4, QuantBlockHeight: 4,
		// Empty coding schemes: the identity pipeline, so Decode's output
		// is exactly the demodulator's quantized byte stream.
		DataPipeline:     boxconfig.PipelineSpec{},
		MetadataPipeline: boxconfig.PipelineSpec{},
	}
}

func TestNewBuildsUnboxerWithIdentityPipelines(t *testing.T) {
	if _, err := New(testConfig()); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestDecodeUniformFrameProducesConstantSymbolStream(t *testing.T) {
	u, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img := frame.NewBlankImage8(100, 100, 128)

	plaintext, metaList, stats, err := u.Decode(img, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if stats.Code != codec.OK {
		t.Errorf("stats.Code = %v, want OK", stats.Code)
	}
	if metaList != nil {
		t.Errorf("metaList = %v, want nil (no metadata container configured)", metaList)
	}
	if len(plaintext) != 16 {
		t.Fatalf("len(plaintext) = %d, want 16 (4x4 content grid)", len(plaintext))
	}
	for i, b := range plaintext {
		if b != 1 {
			t.Errorf("plaintext[%d] = %d, want 1 (uniform image quantizes to the upper cluster)", i, b)
		}
	}
}

func TestDecodeAcceptsProgressFuncWithEmptyPipeline(t *testing.T) {
	cfg := testConfig()
	u, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img := frame.NewBlankImage8(100, 100, 128)

	// An empty-stage pipeline never polls progress, so this only exercises
	// the plumbing: Decode must still succeed when a non-aborting progress
	// func is supplied.
	_, _, _, err = u.Decode(img, func(stageIndex int, stageName string) bool {
		return false
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestDecodeReportsBorderTrackingErrorOnEmptyImage(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = 0 // real pipeline requires ReferenceMarks; disabled here
	u, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	img := frame.NewBlankImage8(100, 100, 128)

	_, _, stats, err := u.Decode(img, nil)
	if err == nil {
		t.Fatal("Decode() with tracking disabled: want error")
	}
	if stats.Code != codec.BorderTrackingError {
		t.Errorf("stats.Code = %v, want BorderTrackingError", stats.Code)
	}
}
