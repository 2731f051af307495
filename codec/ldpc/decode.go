/*
NAME
  decode.go

DESCRIPTION
  Sum-product belief propagation over the sparse parity-check matrix
  (spec §4.4 "LDPC (probability propagation)"). Input is one signed-8-bit
  LLR per code bit (output of the 2D-PAM demapper); each is converted to
  a likelihood ratio exp(L/10) as specified, then iterated via the
  standard tanh-rule check-to-variable update until every parity check is
  satisfied or the iteration cap is reached. The matrix's `pr`/`lr` entry
  fields (spec §3 "LDPC sparse matrix") hold the per-edge check->variable
  and variable->check messages, consistent with mod2sparse's field names.
*/

package ldpc

import "math"

// Result is the outcome of one belief-propagation decode.
type Result struct {
	Bits       []byte // one hard-decision bit (0/1) per column
	Iterations int
	Satisfied  bool
	Altered    int // bits that flipped relative to the channel hard decision
}

// Decode runs sum-product belief propagation for up to maxIterations
// rounds. llr holds one signed-8-bit log-likelihood-ratio per column.
func Decode(m *Matrix, llr []int8, maxIterations int) (Result, error) {
	n := m.NCols()
	if len(llr) != n {
		return Result{}, errLenMismatch(len(llr), n)
	}

	channelLLR := make([]float64, n)
	hardChannel := make([]byte, n)
	for i, v := range llr {
		ratio := math.Exp(float64(v) / 10.0)
		channelLLR[i] = math.Log(ratio)
		if channelLLR[i] > 0 {
			hardChannel[i] = 1
		}
	}

	// Initialise variable-to-check messages with the channel LLR.
	for col := 0; col < n; col++ {
		m.ColEntries(col, func(row int, h int32) {
			m.setLr(h, channelLLR[col])
		})
	}

	posterior := make([]float64, n)
	bits := make([]byte, n)
	iter := 0
	satisfied := false

	for ; iter < maxIterations; iter++ {
		// Check-to-variable update (tanh rule).
		for row := 0; row < m.NRows(); row++ {
			var handles []int32
			var lrs []float64
			m.RowEntries(row, func(col int, h int32) {
				handles = append(handles, h)
				lrs = append(lrs, m.lr(h))
			})
			for i, h := range handles {
				prod := 1.0
				for j, l := range lrs {
					if j == i {
						continue
					}
					prod *= math.Tanh(l / 2)
				}
				prod = clampUnit(prod)
				msg := 2 * math.Atanh(prod)
				m.setPr(h, msg)
			}
		}

		// Compute posterior LLR per variable (channel + all incoming
		// check messages), then variable-to-check update (posterior
		// minus that edge's own contribution).
		copy(posterior, channelLLR)
		colSum := make(map[int]float64, n)
		for col := 0; col < n; col++ {
			sum := channelLLR[col]
			m.ColEntries(col, func(row int, h int32) {
				sum += m.pr(h)
			})
			colSum[col] = sum
			posterior[col] = sum
		}
		for col := 0; col < n; col++ {
			m.ColEntries(col, func(row int, h int32) {
				m.setLr(h, colSum[col]-m.pr(h))
			})
		}

		altered := 0
		for col := 0; col < n; col++ {
			if posterior[col] > 0 {
				bits[col] = 1
			} else {
				bits[col] = 0
			}
			if bits[col] != hardChannel[col] {
				altered++
			}
		}

		if allChecksSatisfied(m, bits) {
			satisfied = true
			iter++
			break
		}
	}

	altered := 0
	for col := range bits {
		if bits[col] != hardChannel[col] {
			altered++
		}
	}

	return Result{Bits: bits, Iterations: iter, Satisfied: satisfied, Altered: altered}, nil
}

func allChecksSatisfied(m *Matrix, bits []byte) bool {
	for row := 0; row < m.NRows(); row++ {
		parity := byte(0)
		m.RowEntries(row, func(col int, h int32) {
			parity ^= bits[col]
		})
		if parity != 0 {
			return false
		}
	}
	return true
}

func clampUnit(v float64) float64 {
	const eps = 1e-9
	if v > 1-eps {
		return 1 - eps
	}
	if v < -(1 - eps) {
		return -(1 - eps)
	}
	return v
}

type lenMismatchError struct{ got, want int }

func (e *lenMismatchError) Error() string {
	return "ldpc: llr length mismatch"
}

func errLenMismatch(got, want int) error {
	return &lenMismatchError{got, want}
}
