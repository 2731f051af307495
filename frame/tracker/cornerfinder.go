/*
NAME
  cornerfinder.go

DESCRIPTION
  Corner-mark search (spec §4.1 step 2): scans each of the four image
  corners for the characteristic solid cornerMarkSize x cornerMarkSize
  square, using a thresholded search followed by a projection-based
  centroid refinement. A CornerFinder is a pluggable capability (Design
  Note "Dynamic dispatch"); the default is pure Go, a gocv-accelerated
  alternative is provided behind the "withcv" build tag in
  cornerfinder_cv.go.
*/

package tracker

import (
	"github.com/piql/gpfunbox/frame"
)

// CornerFinder locates the four corner marks in a captured image.
type CornerFinder interface {
	FindCorners(img *frame.Image8, format frame.Format, xRate, yRate float64) (frame.CornerMarks, error)
}

// corner identifies which of the four corners is being searched, so the
// default finder knows which edge of its search window the mark abuts.
type corner int

const (
	cornerTopLeft corner = iota
	cornerTopRight
	cornerBottomLeft
	cornerBottomRight
)

// DefaultCornerFinder is the thresholded-search + centroid-refinement
// corner finder described in spec §4.1 step 2.
type DefaultCornerFinder struct {
	// Threshold below which a pixel is considered part of a (dark) corner
	// mark. Zero means "derive from image brightness" (the midpoint of the
	// image's observed min/max).
	Threshold uint8
}

func (d DefaultCornerFinder) FindCorners(img *frame.Image8, format frame.Format, xRate, yRate float64) (frame.CornerMarks, error) {
	thresh := d.Threshold
	if thresh == 0 {
		thresh = autoThreshold(img)
	}

	markW := int(float64(format.CornerMarkSize) * xRate)
	markH := int(float64(format.CornerMarkSize) * yRate)
	if markW < 2 {
		markW = 2
	}
	if markH < 2 {
		markH = 2
	}
	// Search window: the mark plus generous slack for skew/shift error.
	winW := markW * 2
	winH := markH * 2

	tl, err := searchCorner(img, cornerTopLeft, winW, winH, thresh)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "top-left: %v", err)
	}
	tr, err := searchCorner(img, cornerTopRight, winW, winH, thresh)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "top-right: %v", err)
	}
	bl, err := searchCorner(img, cornerBottomLeft, winW, winH, thresh)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "bottom-left: %v", err)
	}
	br, err := searchCorner(img, cornerBottomRight, winW, winH, thresh)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "bottom-right: %v", err)
	}

	marks := frame.CornerMarks{TopLeft: tl, TopRight: tr, BottomLeft: bl, BottomRight: br}
	if !marks.InBounds(img.Width(), img.Height()) {
		return frame.CornerMarks{}, trackingErr(StageCorners, "corner mark outside image bounds")
	}
	if err := marks.Validate(); err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "%v", err)
	}
	return marks, nil
}

// autoThreshold returns the midpoint between the image's observed min and
// max pixel value, scanned over the whole image (every 4th pixel on each
// axis for images of more than 1<<20 pixels).
func autoThreshold(img *frame.Image8) uint8 {
	lo, hi := uint8(255), uint8(0)
	w, h := img.Width(), img.Height()
	step := 1
	if w*h > 1<<20 {
		step = 4
	}
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			v := img.At(x, y)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo + (hi-lo)/2
}

// searchCorner scans a winW x winH window anchored at the named corner of
// img, builds row/column dark-pixel projections, and returns the centroid
// of the largest contiguous dark run in each axis.
func searchCorner(img *frame.Image8, c corner, winW, winH int, thresh uint8) (frame.Point, error) {
	W, H := img.Width(), img.Height()
	var x0, y0 int
	switch c {
	case cornerTopLeft:
		x0, y0 = 0, 0
	case cornerTopRight:
		x0, y0 = W-winW, 0
	case cornerBottomLeft:
		x0, y0 = 0, H-winH
	case cornerBottomRight:
		x0, y0 = W-winW, H-winH
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	x1 := x0 + winW
	y1 := y0 + winH
	if x1 > W {
		x1 = W
	}
	if y1 > H {
		y1 = H
	}

	colProj := make([]int, x1-x0)
	rowProj := make([]int, y1-y0)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if img.At(x, y) < thresh {
				colProj[x-x0]++
				rowProj[y-y0]++
			}
		}
	}

	colStart, colEnd, ok := largestRun(colProj)
	if !ok {
		return frame.Point{}, errEmptyMark
	}
	rowStart, rowEnd, ok := largestRun(rowProj)
	if !ok {
		return frame.Point{}, errEmptyMark
	}

	cx := x0 + (colStart+colEnd)/2
	cy := y0 + (rowStart+rowEnd)/2
	return frame.Point{X: cx, Y: cy}, nil
}

var errEmptyMark = errEmptyMarkType{}

type errEmptyMarkType struct{}

func (errEmptyMarkType) Error() string { return "no dark mark found in corner search window" }

// largestRun returns the [start, end) bounds of the longest contiguous run
// of non-zero entries in proj.
func largestRun(proj []int) (start, end int, ok bool) {
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, v := range proj {
		if v > 0 {
			if curStart < 0 {
				curStart = i
			}
			curLen++
		} else {
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
			curStart, curLen = -1, 0
		}
	}
	if curLen > bestLen {
		bestStart, bestLen = curStart, curLen
	}
	if bestLen == 0 {
		return 0, 0, false
	}
	return bestStart, bestStart + bestLen, true
}
