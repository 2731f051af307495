package tracker

import (
	"testing"

	"github.com/piql/gpfunbox/frame"
)

func testFormat() frame.Format {
	return frame.Format{
		Width: 100, Height: 100,
		CornerMarkSize: 10,
		ContentCols:    10, ContentRows: 10,
		MetadataCols: 4, MetadataRows: 4,
	}
}

func TestTrackerSimulatedModeProducesIdealGrids(t *testing.T) {
	img := frame.NewBlankImage8(100, 100, 128)
	tr := New(testFormat(), Simulated, nil)

	res, err := tr.Track(img)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if res.Content == nil {
		t.Fatal("Track() Content = nil, want a populated grid in SIMULATED mode")
	}
	if res.Content.Cols() != 10 || res.Content.Rows() != 10 {
		t.Errorf("Content dims = %dx%d, want 10x10", res.Content.Cols(), res.Content.Rows())
	}
	if res.Metadata == nil || res.Metadata.Cols() != 4 || res.Metadata.Rows() != 4 {
		t.Errorf("Metadata grid = %+v, want a 4x4 grid", res.Metadata)
	}
	if res.Corners.TopLeft != (frame.Point{X: 0, Y: 0}) {
		t.Errorf("Corners.TopLeft = %+v, want origin in SIMULATED mode", res.Corners.TopLeft)
	}
}

func TestTrackerSimulatedModeGridCellsWithinBounds(t *testing.T) {
	img := frame.NewBlankImage8(100, 100, 128)
	tr := New(testFormat(), Simulated, nil)

	res, err := tr.Track(img)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	for r := 0; r < res.Content.Rows(); r++ {
		for c := 0; c < res.Content.Cols(); c++ {
			p := res.Content.At(c, r)
			if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
				t.Fatalf("Content cell (%d,%d) = %+v, out of [0,100] bounds", c, r, p)
			}
		}
	}
}

func TestTrackerRequiresReferenceMarksOutsideSimulatedMode(t *testing.T) {
	img := frame.NewBlankImage8(100, 100, 128)
	// No mode bits set: the real pipeline requires ReferenceMarks.
	tr := New(testFormat(), 0, nil, WithCornerFinder(DefaultCornerFinder{}))
	if _, err := tr.Track(img); err == nil {
		t.Fatal("Track() with ReferenceMarks disabled: want error")
	}
}

func TestTrackerDefaultsContentGridFromFormatWidth(t *testing.T) {
	format := frame.Format{Width: 320, Height: 320, CornerMarkSize: 10}
	img := frame.NewBlankImage8(320, 320, 128)
	tr := New(format, Simulated, nil)
	res, err := tr.Track(img)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	// ContentCols/Rows default to Width/32, Height/32 when unset.
	if res.Content.Cols() != 10 || res.Content.Rows() != 10 {
		t.Errorf("default content grid = %dx%d, want 10x10", res.Content.Cols(), res.Content.Rows())
	}
}
