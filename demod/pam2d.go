/*
NAME
  pam2d.go

DESCRIPTION
  The 32-symbol 2D-PAM demapper (spec §4.3 / §6): five input bits encode
  one 2D point drawn from a fixed 32-point constellation on a 6x6 grid.
  For each pair of consecutive sampled symbols, computes the Gaussian
  likelihood at every grid cell from the local k-means cluster means and
  variances, then derives each of the five bit LLRs from the fixed
  bit-partition bitmaps.
*/

package demod

import (
	"fmt"
	"math"
)

// Constellation32 is the fixed 32-entry (s0, s1) grid-index table (spec
// §6 "32-PAM constellation"), indexed by the 5-bit symbol value. s0 is
// the column coordinate, s1 the row coordinate, each in [0, 5].
var Constellation32 = [32][2]int{
	{0, 0}, {1, 0}, {2, 1}, {2, 0}, {0, 1}, {0, 2}, {2, 2}, {1, 2},
	{5, 0}, {4, 0}, {3, 1}, {3, 0}, {5, 1}, {5, 2}, {3, 2}, {4, 2},
	{0, 5}, {1, 5}, {2, 4}, {2, 5}, {0, 4}, {0, 3}, {2, 3}, {1, 3},
	{5, 5}, {4, 5}, {3, 4}, {3, 5}, {5, 4}, {5, 3}, {3, 3}, {4, 3},
}

// BitPartition is a 6x6 map from grid cell ([row][col]) to "bit=1"
// membership for one of the five bit positions.
type BitPartition [6][6]bool

// bitPartitions holds the five 6x6 "bit=1" bitmaps, indexed bit0 (LSB,
// weight 1) through bit4 (MSB, weight 16), row = s1, col = s0. These are
// independent ground-truth tables, not derived from Constellation32 (both
// are cross-checked against each other, but kept as separate literals to
// match the reference bitmap's own structure).
var bitPartitions = [5]BitPartition{
	// bit0, weight 1.
	{
		{false, true, true, true, true, false},
		{false, false, false, false, false, false},
		{true, true, false, false, true, true},
		{true, true, false, false, true, true},
		{false, false, false, false, false, false},
		{false, true, true, true, true, false},
	},
	// bit1, weight 2.
	{
		{false, false, true, true, false, false},
		{false, false, true, true, false, false},
		{false, true, true, true, true, false},
		{false, true, true, true, true, false},
		{false, false, true, true, false, false},
		{false, false, true, true, false, false},
	},
	// bit2, weight 4.
	{
		{false, false, false, false, false, false},
		{true, false, false, false, false, true},
		{true, true, true, true, true, true},
		{true, true, true, true, true, true},
		{true, false, false, false, false, true},
		{false, false, false, false, false, false},
	},
	// bit3, weight 8.
	{
		{false, false, false, true, true, true},
		{false, false, false, true, true, true},
		{false, false, false, true, true, true},
		{false, false, false, true, true, true},
		{false, false, false, true, true, true},
		{false, false, false, true, true, true},
	},
	// bit4, weight 16.
	{
		{false, false, false, false, false, false},
		{false, false, false, false, false, false},
		{false, false, false, false, false, false},
		{true, true, true, true, true, true},
		{true, true, true, true, true, true},
		{true, true, true, true, true, true},
	},
}

// PAM2DDemapper demaps pairs of sampled symbols into five LLR bytes per
// pair.
type PAM2DDemapper struct{}

// Demap computes the five bit LLRs for one (s0, s1) symbol pair, given the
// local cluster means/variances for the column axis (s0) and row axis
// (s1). LLRs are clipped to the signed-8-bit range and returned as one
// byte (as int8 bit pattern) per bit position, in order bit0..bit4.
func (PAM2DDemapper) Demap(s0, s1 float64, colStats, rowStats ClusterStats) ([5]int8, error) {
	if len(colStats.Means) != 6 || len(rowStats.Means) != 6 {
		return [5]int8{}, fmt.Errorf("demod: 2D-PAM demapper requires 6 means per axis, got %d/%d", len(colStats.Means), len(rowStats.Means))
	}

	var r [6][6]float64
	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			muCol, varCol := colStats.Means[col], colStats.Vars[col]
			muRow, varRow := rowStats.Means[row], rowStats.Vars[row]
			lCol := gaussianLikelihood(s0, muCol, varCol)
			lRow := gaussianLikelihood(s1, muRow, varRow)
			r[row][col] = lCol * lRow
		}
	}

	var out [5]int8
	for b := 0; b < 5; b++ {
		var p0, p1 float64
		part := bitPartitions[b]
		for row := 0; row < 6; row++ {
			for col := 0; col < 6; col++ {
				if part[row][col] {
					p1 += r[row][col]
				} else {
					p0 += r[row][col]
				}
			}
		}
		out[b] = llrByte(p0, p1)
	}
	return out, nil
}

func gaussianLikelihood(x, mu, variance float64) float64 {
	if variance <= 0 {
		variance = 1
	}
	d := x - mu
	return math.Exp(-(d * d) / variance)
}

// llrByte computes log(p1/p0)*10, using log1p for parity with the
// reference implementation's log1p(p1/p0 - 1) form (Open Question,
// spec §9), clipped to [-128, 127].
func llrByte(p0, p1 float64) int8 {
	if p0 <= 0 {
		p0 = 1e-12
	}
	ratio := p1 / p0
	llr := math.Log1p(ratio-1) * 10
	if math.IsNaN(llr) {
		llr = 0
	}
	if llr > 127 {
		llr = 127
	}
	if llr < -128 {
		llr = -128
	}
	return int8(llr)
}
