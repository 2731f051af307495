package tracker

import (
	"errors"
	"testing"
)

func TestTrackingErrorFormatsStageAndMessage(t *testing.T) {
	err := trackingErr(StageGrid, "missing %s", "bar")
	var te *TrackingError
	if !errors.As(err, &te) {
		t.Fatalf("trackingErr() does not unwrap to *TrackingError: %v", err)
	}
	if te.Stage != StageGrid {
		t.Errorf("Stage = %v, want %v", te.Stage, StageGrid)
	}
	if te.Error() != "tracker: grid: missing bar" {
		t.Errorf("Error() = %q, want %q", te.Error(), "tracker: grid: missing bar")
	}
}

func TestWrapTrackingErrPassesThroughNil(t *testing.T) {
	if err := wrapTrackingErr(StageCorners, nil); err != nil {
		t.Errorf("wrapTrackingErr(nil) = %v, want nil", err)
	}
}

func TestWrapTrackingErrUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := wrapTrackingErr(StageRefBars, inner)
	if !errors.Is(err, inner) {
		t.Errorf("wrapTrackingErr() does not unwrap to the inner error")
	}
}
