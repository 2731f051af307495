/*
NAME
  construct.go

DESCRIPTION
  Deterministic construction of a regular LDPC parity-check matrix from a
  construction seed (spec §6: "pchk construction seed"). Each check row
  connects to a fixed number of distinct variable columns chosen by a
  seeded PRNG, the simplest instance of the degree-distribution-driven
  construction original_source/thirdparty/ldpc/distrib.c generalises; a
  full distribution-string parser is out of scope here since the codec
  pipeline's configuration only ever supplies one fixed check degree.
*/

package ldpc

import "math/rand"

// Params describes one LDPC code instance.
type Params struct {
	NCols       int // total code bits (message + parity)
	NRows       int // parity checks (NCols - messageBits)
	CheckDegree int // non-zero columns per row
	Seed        int64
}

// Construct builds the parity-check matrix for the given parameters.
func Construct(p Params) *Matrix {
	m := NewMatrix(p.NRows, p.NCols)
	rnd := rand.New(rand.NewSource(p.Seed))

	degree := p.CheckDegree
	if degree <= 0 || degree > p.NCols {
		degree = p.NCols
	}

	for row := 0; row < p.NRows; row++ {
		chosen := make(map[int]bool, degree)
		for len(chosen) < degree {
			col := rnd.Intn(p.NCols)
			if chosen[col] {
				continue
			}
			chosen[col] = true
			m.Insert(row, col)
		}
	}
	return m
}
