/*
NAME
  galois.go

DESCRIPTION
  GF(256) log/antilog table construction and generator polynomial
  derivation, grounded directly on the classic Phil Karn init_rs_char
  routine (other_examples FX.25 "fx25_init.go": rs.alpha_to / rs.index_of
  construction loop and generator-polynomial root multiplication), ported
  from its fixed RS(255,k) parameterisation to an arbitrary (n, k) GF(256)
  code as required by the GPF codec pipeline's per-stage ReedSolomon
  configuration (byteParityNumber, messageSize).
*/

package reedsolomon

import "fmt"

const (
	fieldSize = 255 // GF(256) \ {0}
	gfPoly    = 0x11d
)

// gf holds the precomputed log/antilog tables for GF(256) with the
// standard CCITT/QR primitive polynomial 0x11d, matching fx25Tab's single
// symsize==8 field (every configured RS code in this package shares one
// field; only the generator polynomial varies with nroots).
type gf struct {
	expTab [2 * fieldSize]byte // alpha_to, doubled to avoid modular wraps during multiply
	logTab [fieldSize + 1]byte // index_of
}

var field = buildGF()

func buildGF() *gf {
	g := &gf{}
	sr := 1
	for i := 0; i < fieldSize; i++ {
		g.expTab[i] = byte(sr)
		g.logTab[sr] = byte(i)
		sr <<= 1
		if sr&0x100 != 0 {
			sr ^= gfPoly
		}
		sr &= fieldSize
	}
	for i := fieldSize; i < 2*fieldSize; i++ {
		g.expTab[i] = g.expTab[i-fieldSize]
	}
	return g
}

func (g *gf) exp(i int) byte {
	for i < 0 {
		i += fieldSize
	}
	return g.expTab[i%fieldSize]
}

func (g *gf) log(a byte) int {
	if a == 0 {
		panic("reedsolomon: log of zero")
	}
	return int(g.logTab[a])
}

func (g *gf) mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return g.expTab[g.log(a)+g.log(b)]
}

func (g *gf) div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	if b == 0 {
		panic("reedsolomon: division by zero")
	}
	return g.expTab[(g.log(a)-g.log(b)+fieldSize)%fieldSize]
}

func (g *gf) inv(a byte) byte {
	if a == 0 {
		panic("reedsolomon: inverse of zero")
	}
	return g.expTab[fieldSize-g.log(a)]
}

// generatorPoly builds the RS code generator polynomial of degree nroots,
// g(x) = prod_{i=0}^{nroots-1} (x - alpha^(fcr+i)), in the same iterative
// coefficient-convolution style as init_rs_char's genpoly construction
// (root index form fcr=1, primitive element 1, matching fx25Tab entries).
func generatorPoly(nroots int) []byte {
	gen := make([]byte, nroots+1)
	gen[0] = 1
	for i := 0; i < nroots; i++ {
		root := field.exp(i + 1)
		for j := i + 1; j > 0; j-- {
			gen[j] = gen[j-1] ^ field.mul(gen[j], root)
		}
		gen[0] = field.mul(gen[0], root)
	}
	return gen
}

func validateParams(n, k int) error {
	if n <= 0 || n > fieldSize {
		return fmt.Errorf("reedsolomon: block size %d out of GF(256) range (1..%d)", n, fieldSize)
	}
	if k <= 0 || k >= n {
		return fmt.Errorf("reedsolomon: message size %d must be in (0, %d)", k, n)
	}
	return nil
}
