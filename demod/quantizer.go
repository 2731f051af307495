/*
NAME
  quantizer.go

DESCRIPTION
  The local k-means quantizer (spec §4.3): partitions the sampled symbol
  image into blocks, fits a k-means model per block (seeded with k-means++,
  six Lloyd iterations), and quantizes every pixel to a cluster index.
*/

// Package demod converts the sampled grayscale symbol image into either a
// quantized-byte stream (PAM-M local k-means) or an LLR stream (32-symbol
// 2D-PAM).
package demod

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/piql/gpfunbox/frame"
)

// ClusterStats holds a block's per-cluster means and variances, sorted by
// mean ascending.
type ClusterStats struct {
	Means []float64
	Vars  []float64
}

// Thresholds returns the len(Means)-1 decision boundaries, the midpoints
// between neighbouring means.
func (c ClusterStats) Thresholds() []float64 {
	th := make([]float64, len(c.Means)-1)
	for i := range th {
		th[i] = (c.Means[i] + c.Means[i+1]) / 2
	}
	return th
}

// Quantizer is the local k-means quantizer. BlockWidth/BlockHeight are
// nominally 16x64 for PAM-4 (spec §4.3).
type Quantizer struct {
	BlockWidth, BlockHeight int
	Levels                  int // alphabet size K
	Iterations              int // Lloyd iterations; 0 means the spec default of 6
}

// Result is the quantizer output: one byte per pixel holding the interval
// (cluster) index, plus the per-block cluster statistics tensor.
type Result struct {
	Symbols    *frame.Image8
	BlockStats [][]ClusterStats // [blockRow][blockCol]
	BlocksWide, BlocksHigh int
}

// Quantize partitions img into BlockWidth x BlockHeight blocks and
// quantizes each independently.
func (q Quantizer) Quantize(img *frame.Image8) (*Result, error) {
	if q.BlockWidth <= 0 || q.BlockHeight <= 0 {
		return nil, fmt.Errorf("demod: invalid block size %dx%d", q.BlockWidth, q.BlockHeight)
	}
	if q.Levels < 2 {
		return nil, fmt.Errorf("demod: invalid alphabet size %d", q.Levels)
	}
	iters := q.Iterations
	if iters <= 0 {
		iters = 6
	}

	w, h := img.Width(), img.Height()
	blocksWide := (w + q.BlockWidth - 1) / q.BlockWidth
	blocksHigh := (h + q.BlockHeight - 1) / q.BlockHeight

	out := make([]uint8, w*h)
	stats := make([][]ClusterStats, blocksHigh)

	for br := 0; br < blocksHigh; br++ {
		stats[br] = make([]ClusterStats, blocksWide)
		for bc := 0; bc < blocksWide; bc++ {
			x0, y0 := bc*q.BlockWidth, br*q.BlockHeight
			x1, y1 := min(x0+q.BlockWidth, w), min(y0+q.BlockHeight, h)

			hist := histogram256(img, x0, y0, x1, y1)
			means := kmeansPlusPlusSeed(hist, q.Levels)
			assign := make([]int, 256)
			for it := 0; it < iters; it++ {
				lloydIteration(hist, means, assign)
			}
			sort.Float64s(means)
			// Recompute assignment against the final sorted means so
			// cluster index order matches the sorted means.
			lloydAssign(hist, means, assign)
			cs := clusterStats(hist, means, assign, q.Levels)
			stats[br][bc] = cs

			th := cs.Thresholds()
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					v := img.At(x, y)
					out[y*w+x] = byte(quantizeByThresholds(v, th))
				}
			}
		}
	}

	symbols, err := frame.NewImage8(w, h, out)
	if err != nil {
		return nil, err
	}
	return &Result{Symbols: symbols, BlockStats: stats, BlocksWide: blocksWide, BlocksHigh: blocksHigh}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func histogram256(img *frame.Image8, x0, y0, x1, y1 int) [256]int {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[img.At(x, y)]++
		}
	}
	return hist
}

// quantizeByThresholds returns which interval v falls into, given
// ascending thresholds.
func quantizeByThresholds(v uint8, thresholds []float64) int {
	fv := float64(v)
	idx := 0
	for _, t := range thresholds {
		if fv < t {
			break
		}
		idx++
	}
	return idx
}

// kmeansPlusPlusSeed chooses k initial means from the 256-bin histogram
// using k-means++ weighted sampling (deterministic: picks the
// maximum-probability candidate at each step rather than sampling
// randomly, so quantization is reproducible across decodes of the same
// frame, matching the single-threaded-per-frame design of spec §5).
func kmeansPlusPlusSeed(hist [256]int, k int) []float64 {
	var total float64
	for _, c := range hist {
		total += float64(c)
	}
	if total == 0 {
		means := make([]float64, k)
		for i := range means {
			means[i] = float64(i) * 255 / float64(k-1)
		}
		return means
	}

	means := make([]float64, 0, k)
	// First mean: the global weighted mean (stat.Mean over bin centres).
	centres := make([]float64, 256)
	weights := make([]float64, 256)
	for i := 0; i < 256; i++ {
		centres[i] = float64(i)
		weights[i] = float64(hist[i])
	}
	means = append(means, stat.Mean(centres, weights))

	for len(means) < k {
		best, bestD := 0, -1.0
		for v := 0; v < 256; v++ {
			if hist[v] == 0 {
				continue
			}
			d := nearestSqDist(float64(v), means)
			weighted := d * float64(hist[v])
			if weighted > bestD {
				bestD, best = weighted, v
			}
		}
		means = append(means, float64(best))
	}
	floats.Sort(means)
	return means
}

func nearestSqDist(v float64, means []float64) float64 {
	best := -1.0
	for _, m := range means {
		d := (v - m) * (v - m)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// lloydIteration reassigns every histogram bin to its nearest mean, then
// recomputes the means as the weighted centroid of their assigned bins.
func lloydIteration(hist [256]int, means []float64, assign []int) {
	lloydAssign(hist, means, assign)
	sums := make([]float64, len(means))
	weights := make([]float64, len(means))
	for v := 0; v < 256; v++ {
		if hist[v] == 0 {
			continue
		}
		k := assign[v]
		sums[k] += float64(v) * float64(hist[v])
		weights[k] += float64(hist[v])
	}
	for k := range means {
		if weights[k] > 0 {
			means[k] = sums[k] / weights[k]
		}
	}
}

func lloydAssign(hist [256]int, means []float64, assign []int) {
	for v := 0; v < 256; v++ {
		best, bestD := 0, -1.0
		for k, m := range means {
			d := (float64(v) - m) * (float64(v) - m)
			if bestD < 0 || d < bestD {
				bestD, best = d, k
			}
		}
		assign[v] = best
	}
}

func clusterStats(hist [256]int, means []float64, assign []int, k int) ClusterStats {
	sumsForVar := make([][]float64, k)
	weightsForVar := make([][]float64, k)
	for v := 0; v < 256; v++ {
		if hist[v] == 0 {
			continue
		}
		c := assign[v]
		for i := 0; i < hist[v]; i++ {
			sumsForVar[c] = append(sumsForVar[c], float64(v))
			weightsForVar[c] = append(weightsForVar[c], 1)
		}
	}
	vars := make([]float64, k)
	for c := 0; c < k; c++ {
		if len(sumsForVar[c]) < 2 {
			vars[c] = 1
			continue
		}
		vars[c] = stat.Variance(sumsForVar[c], weightsForVar[c])
		if vars[c] <= 0 {
			vars[c] = 1
		}
	}
	return ClusterStats{Means: append([]float64(nil), means...), Vars: vars}
}
