/*
NAME
  decode.go

DESCRIPTION
  RS(n,k) decoder over GF(256): syndrome computation, erasure-and-error
  Berlekamp-Massey key equation solver, Chien search for error locations
  and Forney's algorithm for error magnitudes. Grounded on the same
  reference algorithm process_rs_block in other_examples' FX.25 decoder
  delegates to (decode_rs_char, not itself present in the retrieved pack,
  but its calling convention - a codeblock, a caller-supplied erasure
  position list, and a returned corrected-byte count or failure - is
  preserved here).
*/

package reedsolomon

import "fmt"

// Codec is a fixed (n, k) Reed-Solomon code over GF(256).
type Codec struct {
	N, K   int
	Nroots int
	gen    []byte
}

// New builds a Codec for an n-byte block carrying a k-byte message
// (n-k parity bytes).
func New(n, k int) (*Codec, error) {
	if err := validateParams(n, k); err != nil {
		return nil, err
	}
	nroots := n - k
	return &Codec{N: n, K: k, Nroots: nroots, gen: generatorPoly(nroots)}, nil
}

// Decode corrects and removes the parity bytes from a received n-byte
// block, returning the corrected k-byte message plus the list of
// corrected byte positions (for Stats reporting). erasures lists known
// unreliable byte positions (0-indexed into block), may be nil.
func (c *Codec) Decode(block []byte, erasures []int) (message []byte, corrected []int, err error) {
	if len(block) != c.N {
		return nil, nil, fmt.Errorf("reedsolomon: block length %d does not match code length %d", len(block), c.N)
	}

	syn := c.syndromes(block)
	allZero := true
	for _, s := range syn {
		if s != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		out := make([]byte, c.K)
		copy(out, block[:c.K])
		return out, nil, nil
	}

	erasureLocatorRoots := make([]byte, 0, len(erasures))
	for _, pos := range erasures {
		if pos < 0 || pos >= c.N {
			return nil, nil, fmt.Errorf("reedsolomon: erasure position %d out of range", pos)
		}
		erasureLocatorRoots = append(erasureLocatorRoots, field.exp(c.N-1-pos))
	}

	sigma, err := c.berlekampMassey(syn, erasureLocatorRoots, len(erasures))
	if err != nil {
		return nil, nil, err
	}

	errPos, err := chienSearch(sigma, c.N)
	if err != nil {
		return nil, nil, err
	}
	// sigma was seeded with the erasure locator, so its roots already
	// include every erasure position alongside any newly found errors.
	if len(errPos) > c.Nroots {
		return nil, nil, fmt.Errorf("reedsolomon: too many errors/erasures to correct")
	}

	allPos := errPos
	magnitudes, err := c.forney(syn, sigma, allPos)
	if err != nil {
		return nil, nil, err
	}

	out := make([]byte, c.N)
	copy(out, block)
	for i, pos := range allPos {
		out[pos] ^= magnitudes[i]
	}

	// Verify: recompute syndromes on the corrected block; if any are
	// still nonzero the correction failed (more errors than the code
	// can handle, silently miscorrected).
	verifySyn := c.syndromes(out)
	for _, s := range verifySyn {
		if s != 0 {
			return nil, nil, fmt.Errorf("reedsolomon: decode failed, too many errors")
		}
	}

	corrected = allPos
	return out[:c.K], corrected, nil
}

// syndromes evaluates the received polynomial at each root of the
// generator polynomial, S_i = R(alpha^(fcr+i)), fcr=1.
func (c *Codec) syndromes(block []byte) []byte {
	syn := make([]byte, c.Nroots)
	for i := 0; i < c.Nroots; i++ {
		root := field.exp(i + 1)
		var s byte
		for _, b := range block {
			s = field.mul(s, root) ^ b
		}
		syn[i] = s
	}
	return syn
}

// berlekampMassey solves the key equation for the error-and-erasure
// locator polynomial sigma, seeded with the known erasure locator roots
// (errors-and-erasures decoding).
func (c *Codec) berlekampMassey(syn []byte, erasureRoots []byte, numErasures int) ([]byte, error) {
	sigma := elp(erasureRoots)
	l := len(sigma) - 1

	b := make([]byte, len(sigma))
	copy(b, sigma)
	m := 1
	bCoeff := byte(1)

	for n := numErasures; n < len(syn); n++ {
		delta := syn[n]
		for i := 1; i <= l; i++ {
			if i < len(sigma) {
				delta ^= field.mul(sigma[i], syn[n-i])
			}
		}
		if delta == 0 {
			m++
			continue
		}
		t := make([]byte, len(sigma))
		copy(t, sigma)
		coef := field.div(delta, bCoeff)
		for i := 0; i < len(b); i++ {
			idx := i + m
			for idx >= len(sigma) {
				sigma = append(sigma, 0)
			}
			sigma[idx] ^= field.mul(coef, b[i])
		}
		if 2*l <= n+numErasures {
			newL := n + numErasures + 1 - l
			copy(b, t)
			bCoeff = delta
			l = newL
			m = 1
		} else {
			m++
		}
	}
	return sigma, nil
}

// elp builds the initial error locator polynomial from known erasure
// roots, sigma(x) = prod (1 - root_i * x).
func elp(roots []byte) []byte {
	sigma := []byte{1}
	for _, r := range roots {
		next := make([]byte, len(sigma)+1)
		copy(next, sigma)
		for i, c := range sigma {
			next[i+1] ^= field.mul(c, r)
		}
		sigma = next
	}
	return sigma
}

// chienSearch finds the roots of sigma by brute-force evaluation at
// every field element, returning the corresponding error byte positions.
func chienSearch(sigma []byte, n int) ([]int, error) {
	var positions []int
	for i := 0; i < n; i++ {
		x := field.exp(fieldSize - i) // alpha^{-i}; a root here marks block position N-1-i
		var v byte
		xPow := byte(1)
		for _, coef := range sigma {
			v ^= field.mul(coef, xPow)
			xPow = field.mul(xPow, x)
		}
		if v == 0 {
			positions = append(positions, n-1-i)
		}
	}
	return positions, nil
}

// forney computes error magnitudes at the given positions via the
// standard syndrome/error-locator formula, avoiding the erasure
// polynomial split (equivalent for a combined errors+erasures locator).
func (c *Codec) forney(syn, sigma []byte, positions []int) ([]byte, error) {
	omega := errorEvaluator(syn, sigma, c.Nroots)
	sigmaDeriv := formalDerivative(sigma)

	mags := make([]byte, len(positions))
	for i, pos := range positions {
		xInv := field.exp(-(c.N - 1 - pos))
		num := polyEval(omega, xInv)
		den := polyEval(sigmaDeriv, xInv)
		if den == 0 {
			return nil, fmt.Errorf("reedsolomon: forney: zero derivative at position %d", pos)
		}
		mags[i] = field.div(num, den)
	}
	return mags, nil
}

// errorEvaluator computes omega(x) = [S(x) * sigma(x)] mod x^nroots.
func errorEvaluator(syn, sigma []byte, nroots int) []byte {
	prod := make([]byte, len(syn)+len(sigma))
	for i, s := range syn {
		for j, c := range sigma {
			prod[i+j] ^= field.mul(s, c)
		}
	}
	if len(prod) > nroots {
		prod = prod[:nroots]
	}
	return prod
}

func formalDerivative(p []byte) []byte {
	if len(p) <= 1 {
		return []byte{0}
	}
	d := make([]byte, len(p)-1)
	for i := 1; i < len(p); i++ {
		if i%2 == 1 {
			d[i-1] = p[i]
		}
	}
	return d
}

func polyEval(p []byte, x byte) byte {
	var v byte
	xPow := byte(1)
	for _, c := range p {
		v ^= field.mul(c, xPow)
		xPow = field.mul(xPow, x)
	}
	return v
}
