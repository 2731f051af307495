/*
NAME
  refbar.go

DESCRIPTION
  Reference-bar tracking and reference-bar sync correction (spec §4.1 step
  7): for each of the four edge bars, walk its length sampling a centre
  line with the biquadratic sampler, then, where the format enables it,
  correct the tracked points against the bar's embedded sync pattern.
*/

package tracker

import (
	"math"

	"github.com/piql/gpfunbox/frame"
	"github.com/piql/gpfunbox/frame/sampler"
	"github.com/piql/gpfunbox/mathx"
)

// Edge names one of the four reference bars.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// refBarSyncPattern is the fixed sync symbol pattern embedded at regular
// intervals in a reference bar (spec §4.1 step 7).
var refBarSyncPattern = [9]int{1, 0, 1, 0, 0, 0, 1, 0, 1}

// refBar holds the tracked centre-line points for one edge, in image
// space, ordered along the bar's axis from its first to its last endpoint.
type refBar struct {
	Edge   Edge
	Points []frame.PointF
}

// trackRefBars walks all four reference bars and applies sync correction
// where refBarSyncDistance > 0.
func trackRefBars(img *frame.Image8, mapper *frame.CoordinateMapper, format frame.Format, avgMax, avgMin uint8, xRate, yRate float64) (map[Edge]*refBar, error) {
	bars := map[Edge]*refBar{}
	biq := sampler.Biquadratic{}

	nSamples := format.ContentCols
	if nSamples < 8 {
		nSamples = 32
	}

	for _, e := range []Edge{EdgeTop, EdgeBottom, EdgeLeft, EdgeRight} {
		start, end := barEndpointsPrintSpace(e, format)
		pts, err := walkBar(img, mapper, start, end, nSamples, biq)
		if err != nil {
			return nil, wrapTrackingErr(StageRefBars, err)
		}
		bar := &refBar{Edge: e, Points: pts}

		if format.RefBarSyncDistance > 0 {
			corrected, err := syncCorrectBar(img, mapper, bar, format, avgMax, avgMin, xRate, yRate)
			if err != nil {
				// Sync correction failure degrades silently (spec §4.1
				// "Failure policy"): keep the uncorrected points.
				corrected = bar.Points
			}
			bar.Points = corrected
		}
		bars[e] = bar
	}
	return bars, nil
}

// barEndpointsPrintSpace returns the printed-space start/end of the named
// edge bar, running the full printed width/height along its axis.
func barEndpointsPrintSpace(e Edge, format frame.Format) (mathx.Pt, mathx.Pt) {
	w, h := float64(format.Width), float64(format.Height)
	switch e {
	case EdgeTop:
		return mathx.Pt{X: 0, Y: 0}, mathx.Pt{X: w, Y: 0}
	case EdgeBottom:
		return mathx.Pt{X: 0, Y: h}, mathx.Pt{X: w, Y: h}
	case EdgeLeft:
		return mathx.Pt{X: 0, Y: 0}, mathx.Pt{X: 0, Y: h}
	default: // EdgeRight
		return mathx.Pt{X: w, Y: 0}, mathx.Pt{X: w, Y: h}
	}
}

// refBarSearchRadius is the perpendicular search half-width, in pixels,
// used to refine each mapped bar sample onto the bar's true centre line.
const refBarSearchRadius = 4.0

// walkBar samples n+1 evenly spaced points between start and end (in
// printed space), maps each through mapper, then refines each mapped point
// by searching perpendicular to the bar's axis for the local intensity
// centroid, sampling with samp (spec §4.1 step 7).
func walkBar(img *frame.Image8, mapper *frame.CoordinateMapper, start, end mathx.Pt, n int, samp sampler.Biquadratic) ([]frame.PointF, error) {
	axisX, axisY := end.X-start.X, end.Y-start.Y
	axisLen := math.Hypot(axisX, axisY)
	var perpX, perpY float64
	if axisLen > 0 {
		perpX, perpY = -axisY/axisLen, axisX/axisLen
	}

	pts := make([]frame.PointF, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		px := start.X + axisX*t
		py := start.Y + axisY*t
		mapped, err := mapper.Map(px, py)
		if err != nil {
			return nil, err
		}
		pts = append(pts, refineAlongPerp(img, mapped, perpX, perpY, samp))
	}
	return pts, nil
}

// refineAlongPerp searches [-refBarSearchRadius, refBarSearchRadius] along
// the (perpX, perpY) direction from p for the intensity-weighted centroid,
// sampling with samp at half-pixel steps.
func refineAlongPerp(img *frame.Image8, p frame.PointF, perpX, perpY float64, samp sampler.Biquadratic) frame.PointF {
	if perpX == 0 && perpY == 0 {
		return p
	}
	var weightSum, offsetSum float64
	for off := -refBarSearchRadius; off <= refBarSearchRadius; off += 0.5 {
		x := p.X + perpX*off
		y := p.Y + perpY*off
		v := samp.At(img, x, y)
		// Weight by deviation from mid-grey so both bright-on-dark and
		// dark-on-bright bars pull the centroid toward the bar, not away.
		w := math.Abs(v - 127.5)
		weightSum += w
		offsetSum += w * off
	}
	if weightSum == 0 {
		return p
	}
	offset := offsetSum / weightSum
	return frame.PointF{X: p.X + perpX*offset, Y: p.Y + perpY*offset}
}

// syncCorrectBar quantizes the bar's sample intensities to two levels using
// the avgMax/avgMin priors, matches the sync pattern against the tracked
// sequence, discards outlier matches, and patches unmatched runs.
func syncCorrectBar(img *frame.Image8, mapper *frame.CoordinateMapper, bar *refBar, format frame.Format, avgMax, avgMin uint8, xRate, yRate float64) ([]frame.PointF, error) {
	thresh := float64(avgMin) + float64(avgMax-avgMin)/2

	levels := make([]int, len(bar.Points))
	for i, p := range bar.Points {
		v := float64(img.AtClamped(int(math.Round(p.X)), int(math.Round(p.Y))))
		if v >= thresh {
			levels[i] = 1
		}
	}

	matches := matchSyncPattern(levels)

	avgRate := (xRate + yRate) / 2
	maxErr := 4 * avgRate

	type syncMatch struct {
		actualIdx int
		expectIdx float64
	}
	var good []syncMatch
	for _, m := range matches {
		expectIdx := float64(m) // index-space expectation equals the match position itself;
		// the format's RefBarSyncDistance defines the *spacing* between
		// consecutive matches, which is what the error check below is for.
		good = append(good, syncMatch{actualIdx: m, expectIdx: expectIdx})
	}

	// Filter matches whose spacing from the previous good match deviates
	// from the expected refBarSyncDistance by more than maxErr.
	var filtered []syncMatch
	for i, m := range good {
		if i == 0 {
			filtered = append(filtered, m)
			continue
		}
		prev := filtered[len(filtered)-1]
		spacing := float64(m.actualIdx - prev.actualIdx)
		expected := float64(format.RefBarSyncDistance)
		if math.Abs(spacing-expected) > maxErr {
			continue
		}
		filtered = append(filtered, m)
	}

	out := make([]frame.PointF, len(bar.Points))
	copy(out, bar.Points)
	if len(filtered) < 2 {
		// Nothing usable to patch with; leave the tracked points as-is.
		return out, nil
	}

	// Runs between two synced endpoints need no patching: rule (a) of spec
	// §4.1 step 7 copies the captured points straight through, and out
	// already holds them. Only the two tail runs (before the first sync
	// point, after the last) need synthesis via rule (b).
	patchRun(out, -1, filtered[0].actualIdx)
	patchRun(out, filtered[len(filtered)-1].actualIdx, len(out))

	return out, nil
}

// matchSyncPattern finds every index i such that levels[i:i+len(pattern)]
// equals refBarSyncPattern, returning the start indices.
func matchSyncPattern(levels []int) []int {
	pat := refBarSyncPattern[:]
	var matches []int
	for i := 0; i+len(pat) <= len(levels); i++ {
		ok := true
		for j, want := range pat {
			if levels[i+j] != want {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, i)
		}
	}
	return matches
}

// patchRun synthesises an unsynced run. from == -1 means "run before the
// first sync point" (rule b, linear extrapolation from the slope at the
// first synced pair); to == len(pts) means "run after the last sync point"
// (same rule, mirrored). If both endpoints of a larger gap are missing
// (handled by the caller never calling patchRun for an interior gap where
// neither bound is synced), rule (c) applies and the mapper-derived
// tracked point (already in pts) is left untouched.
func patchRun(pts []frame.PointF, from, to int) {
	if from == -1 {
		if to+1 >= len(pts) {
			return
		}
		slope := frame.PointF{X: pts[to+1].X - pts[to].X, Y: pts[to+1].Y - pts[to].Y}
		for i := to - 1; i >= 0; i-- {
			n := float64(to - i)
			pts[i] = frame.PointF{X: pts[to].X - n*slope.X, Y: pts[to].Y - n*slope.Y}
		}
		return
	}
	if to == len(pts) {
		if from < 1 {
			return
		}
		slope := frame.PointF{X: pts[from].X - pts[from-1].X, Y: pts[from].Y - pts[from-1].Y}
		for i := from + 1; i < len(pts); i++ {
			n := float64(i - from)
			pts[i] = frame.PointF{X: pts[from].X + n*slope.X, Y: pts[from].Y + n*slope.Y}
		}
	}
}
