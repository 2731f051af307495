/*
NAME
  syncpoints.go

DESCRIPTION
  Sync-point refinement (spec §4.1 step 12): search each known sync-point
  index within a radius for the centre of mass of bright/dark pixels,
  compute an offset vector from the expected location, reject outliers
  against the local 5x5 neighbourhood mean, then warp the inter-sync
  rectangles of the content matrix by bilinearly interpolating the offset
  corrections. Border/corner cells extrapolate linearly from the nearest
  sync row/column.
*/

package tracker

import (
	"math"

	"github.com/piql/gpfunbox/frame"
)

// syncGrid indexes the sync-point sub-grid of the content matrix: a KxL
// grid of (col, row) positions in the content matrix, each with an
// expected location (before search) and a found offset (after search).
type syncGrid struct {
	cols, rows int // KxL dimensions of the sync-point sub-grid
	// cellCol/cellRow map sync-grid indices back to content-matrix cell
	// coordinates.
	cellCol, cellRow []int
	offset           []frame.PointF // found - expected, per sync point
}

// syncPointIndices returns the content-matrix (col, row) coordinates of
// every sync point, per (hDistance, vDistance, offset); offset < 0
// means "derive automatically" by centring the grid.
func syncPointIndices(contentCols, contentRows, hDistance, vDistance, offset int) (cols, rows []int) {
	if hDistance <= 0 || vDistance <= 0 {
		return nil, nil
	}
	hOff, vOff := offset, offset
	if offset < 0 {
		hOff = (contentCols % hDistance) / 2
		vOff = (contentRows % vDistance) / 2
	}
	for c := hOff; c < contentCols; c += hDistance {
		cols = append(cols, c)
	}
	for r := vOff; r < contentRows; r += vDistance {
		rows = append(rows, r)
	}
	return cols, rows
}

// NumSyncPoints implements the counting invariant of spec §8: for a
// non-empty grid, count == ceil((cols-offset)/dH) * ceil((rows-offset)/dV).
func NumSyncPoints(contentCols, contentRows, hDistance, vDistance, offset int) int {
	cols, rows := syncPointIndices(contentCols, contentRows, hDistance, vDistance, offset)
	return len(cols) * len(rows)
}

// refineSyncPoints performs spec §4.1 step 12 in place on grid.
func refineSyncPoints(img *frame.Image8, grid *frame.PointMatrix, format frame.Format, avgMax, avgMin uint8) {
	colsIdx, rowsIdx := syncPointIndices(format.ContentCols, format.ContentRows, format.SyncPointHDistance, format.SyncPointVDistance, format.SyncPointOffset)
	if len(colsIdx) == 0 || len(rowsIdx) == 0 {
		return
	}

	K, L := len(colsIdx), len(rowsIdx)
	sg := &syncGrid{cols: K, rows: L, cellCol: colsIdx, cellRow: rowsIdx, offset: make([]frame.PointF, K*L)}

	thresh := float64(avgMin) + float64(avgMax-avgMin)/2
	bright := avgMax > avgMin // whether the target feature is the brighter class

	for li := 0; li < L; li++ {
		for ki := 0; ki < K; ki++ {
			cc, rr := colsIdx[ki], rowsIdx[li]
			expected := grid.At(cc, rr)
			found := centroidSearch(img, expected, format.SyncPointRadius, thresh, bright)
			sg.offset[li*K+ki] = frame.PointF{X: found.X - expected.X, Y: found.Y - expected.Y}
		}
	}

	rejectOutliers(sg)
	warpGrid(grid, sg, format.ContentCols, format.ContentRows)
}

// centroidSearch finds the centre of mass of pixels on the "feature" side
// of thresh within radius of centre.
func centroidSearch(img *frame.Image8, centre frame.PointF, radius int, thresh float64, bright bool) frame.PointF {
	if radius <= 0 {
		return centre
	}
	cx, cy := int(math.Round(centre.X)), int(math.Round(centre.Y))
	var sumX, sumY, weight float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			v := float64(img.AtClamped(cx+dx, cy+dy))
			isFeature := (bright && v >= thresh) || (!bright && v < thresh)
			if !isFeature {
				continue
			}
			sumX += float64(cx + dx)
			sumY += float64(cy + dy)
			weight++
		}
	}
	if weight == 0 {
		return centre
	}
	return frame.PointF{X: sumX / weight, Y: sumY / weight}
}

// rejectOutliers replaces any offset whose squared deviation from its 5x5
// neighbourhood mean exceeds a configured variation bound with the mean of
// its four direct (N/S/E/W) neighbours, per spec §4.1 step 12. The
// variation bound itself (sync_point_max_allowed_variation) is a tunable
// passed via the package-level DefaultMaxVariation; callers needing a
// different bound should call rejectOutliersWithBound directly.
func rejectOutliers(sg *syncGrid) {
	rejectOutliersWithBound(sg, DefaultMaxVariation)
}

// DefaultMaxVariation is the default sync-point offset variation bound.
const DefaultMaxVariation = 9.0 // (3px)^2

func rejectOutliersWithBound(sg *syncGrid, maxVariation float64) {
	K, L := sg.cols, sg.rows
	at := func(k, l int) frame.PointF { return sg.offset[l*K+k] }

	orig := make([]frame.PointF, len(sg.offset))
	copy(orig, sg.offset)

	for l := 0; l < L; l++ {
		for k := 0; k < K; k++ {
			mean := neighbourhoodMean(orig, K, L, k, l, 2)
			o := at(k, l)
			dx, dy := o.X-mean.X, o.Y-mean.Y
			if dx*dx+dy*dy <= maxVariation {
				continue
			}
			sg.offset[l*K+k] = directNeighbourMean(orig, K, L, k, l)
		}
	}
}

// neighbourhoodMean averages offsets in a (2*r+1)x(2*r+1) window centred
// at (k, l), clamped to the sync grid bounds.
func neighbourhoodMean(offsets []frame.PointF, K, L, k, l, r int) frame.PointF {
	var sx, sy float64
	var n int
	for dl := -r; dl <= r; dl++ {
		for dk := -r; dk <= r; dk++ {
			kk, ll := k+dk, l+dl
			if kk < 0 || kk >= K || ll < 0 || ll >= L {
				continue
			}
			o := offsets[ll*K+kk]
			sx += o.X
			sy += o.Y
			n++
		}
	}
	if n == 0 {
		return frame.PointF{}
	}
	return frame.PointF{X: sx / float64(n), Y: sy / float64(n)}
}

// directNeighbourMean averages only the (up to four) direct N/S/E/W
// neighbours of (k, l).
func directNeighbourMean(offsets []frame.PointF, K, L, k, l int) frame.PointF {
	type d struct{ dk, dl int }
	dirs := []d{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	var sx, sy float64
	var n int
	for _, dd := range dirs {
		kk, ll := k+dd.dk, l+dd.dl
		if kk < 0 || kk >= K || ll < 0 || ll >= L {
			continue
		}
		o := offsets[ll*K+kk]
		sx += o.X
		sy += o.Y
		n++
	}
	if n == 0 {
		return frame.PointF{}
	}
	return frame.PointF{X: sx / float64(n), Y: sy / float64(n)}
}

// warpGrid bilinearly interpolates the sync-point offsets across the
// inter-sync-point rectangles of grid, and linearly extrapolates for cells
// outside the outermost sync row/column (spec §4.1 step 12, border/corner
// handling).
func warpGrid(grid *frame.PointMatrix, sg *syncGrid, contentCols, contentRows int) {
	K, L := sg.cols, sg.rows
	if K == 0 || L == 0 {
		return
	}

	colOf := func(k int) int { return sg.cellCol[k] }
	rowOf := func(l int) int { return sg.cellRow[l] }
	offAt := func(k, l int) frame.PointF { return sg.offset[l*K+k] }

	for r := 0; r < contentRows; r++ {
		l0, l1, lt := locate(r, L, rowOf)
		for c := 0; c < contentCols; c++ {
			k0, k1, kt := locate(c, K, colOf)

			o00 := offAt(k0, l0)
			o10 := offAt(k1, l0)
			o01 := offAt(k0, l1)
			o11 := offAt(k1, l1)

			top := frame.PointF{X: o00.X + (o10.X-o00.X)*kt, Y: o00.Y + (o10.Y-o00.Y)*kt}
			bot := frame.PointF{X: o01.X + (o11.X-o01.X)*kt, Y: o01.Y + (o11.Y-o01.Y)*kt}
			d := frame.PointF{X: top.X + (bot.X-top.X)*lt, Y: top.Y + (bot.Y-top.Y)*lt}

			p := grid.At(c, r)
			p.X += d.X
			p.Y += d.Y
			grid.Set(c, r, p)
		}
	}
}

// locate finds the bracketing sync-grid indices [i0, i1] for content-matrix
// index idx along one axis, and the fractional position t between them.
// Indices outside the outermost sync position extrapolate from the nearest
// pair (t outside [0, 1]), implementing the four border/corner cases.
func locate(idx, n int, posOf func(int) int) (i0, i1 int, t float64) {
	if n == 1 {
		return 0, 0, 0
	}
	if idx <= posOf(0) {
		p0, p1 := posOf(0), posOf(1)
		return 0, 1, float64(idx-p0) / float64(p1-p0)
	}
	if idx >= posOf(n-1) {
		p0, p1 := posOf(n-2), posOf(n-1)
		return n - 2, n - 1, float64(idx-p0) / float64(p1-p0)
	}
	for i := 0; i < n-1; i++ {
		p0, p1 := posOf(i), posOf(i+1)
		if idx >= p0 && idx <= p1 {
			return i, i + 1, float64(idx-p0) / float64(p1-p0)
		}
	}
	return 0, 1, 0
}
