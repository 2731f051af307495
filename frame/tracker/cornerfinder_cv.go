//go:build withcv
// +build withcv

/*
NAME
  cornerfinder_cv.go

DESCRIPTION
  An OpenCV-backed corner finder, used in place of DefaultCornerFinder when
  the module is built with the "withcv" tag. Thresholds the image and finds
  the bounding box of foreground contours within each corner's search
  window via gocv.
*/

package tracker

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/piql/gpfunbox/frame"
)

// CVCornerFinder locates corner marks using OpenCV thresholding and
// contour search, an accelerated alternative to DefaultCornerFinder
// (spec §4.1 step 2, "a pluggable callback may replace this step").
type CVCornerFinder struct {
	// Threshold is the binary threshold value; 0 means auto (Otsu).
	Threshold float32
}

func (c CVCornerFinder) FindCorners(img *frame.Image8, format frame.Format, xRate, yRate float64) (frame.CornerMarks, error) {
	mat, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8U, img.Pix())
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "gocv: %v", err)
	}
	defer mat.Close()

	bin := gocv.NewMat()
	defer bin.Close()
	thresholdType := gocv.ThresholdBinaryInv
	if c.Threshold <= 0 {
		thresholdType |= gocv.ThresholdOtsu
	}
	gocv.Threshold(mat, &bin, c.Threshold, 255, thresholdType)

	markW := int(float64(format.CornerMarkSize) * xRate)
	markH := int(float64(format.CornerMarkSize) * yRate)
	if markW < 2 {
		markW = 2
	}
	if markH < 2 {
		markH = 2
	}
	winW, winH := markW*2, markH*2

	find := func(cn corner) (frame.Point, error) {
		x0, y0 := cvWindowOrigin(cn, img.Width(), img.Height(), winW, winH)
		roi := bin.Region(image.Rect(x0, y0, x0+winW, y0+winH))
		defer roi.Close()

		contours := gocv.FindContours(roi, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		defer contours.Close()
		if contours.Size() == 0 {
			return frame.Point{}, errEmptyMark
		}
		best := contours.At(0)
		bestArea := gocv.ContourArea(best)
		for i := 1; i < contours.Size(); i++ {
			cur := contours.At(i)
			if a := gocv.ContourArea(cur); a > bestArea {
				best, bestArea = cur, a
			}
		}
		rect := gocv.BoundingRect(best)
		return frame.Point{
			X: x0 + rect.Min.X + rect.Dx()/2,
			Y: y0 + rect.Min.Y + rect.Dy()/2,
		}, nil
	}

	tl, err := find(cornerTopLeft)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "top-left: %v", err)
	}
	tr, err := find(cornerTopRight)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "top-right: %v", err)
	}
	bl, err := find(cornerBottomLeft)
	if err != nil {
		return frame.CornerMarks{}, trackingErr(StageCorners, "bottom-left: %v", err)
	}
	br, err := find(cornerBottomRight)
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

func cvWindowOrigin(c corner, w, h, winW, winH int) (int, int) {
	x0, y0 := 0, 0
	switch c {
	case cornerTopLeft:
		x0, y0 = 0, 0
	case cornerTopRight:
		x0, y0 = w-winW, 0
	case cornerBottomLeft:
		x0, y0 = 0, h-winH
	case cornerBottomRight:
		x0, y0 = w-winW, h-winH
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	return x0, y0
}
