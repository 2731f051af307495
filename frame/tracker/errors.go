package tracker

import "fmt"

// Stage tags the tracker pipeline step that failed.
type Stage string

const (
	StageCorners    Stage = "corners"
	StageRefBars    Stage = "refbars"
	StageGrid       Stage = "grid"
	StageSyncPoints Stage = "syncpoints"
)

// TrackingError is a fatal frame-tracking failure, tagged with the stage
// that produced it (spec §4.1 "Failure policy"). The unboxer maps this to
// BORDER_TRACKING_ERROR.
type TrackingError struct {
	Stage Stage
	Err   error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracker: %s: %v", e.Stage, e.Err)
}

func (e *TrackingError) Unwrap() error { return e.Err }

func trackingErr(stage Stage, format string, args ...interface{}) error {
	return &TrackingError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

func wrapTrackingErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &TrackingError{Stage: stage, Err: err}
}
