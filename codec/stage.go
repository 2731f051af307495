/*
NAME
  stage.go

DESCRIPTION
  The codec pipeline's Stage capability (spec §4.4): each stage declares
  its encoded/decoded block geometry and performs one reversible decode
  step. Stage is deliberately a small interface rather than a
  function-pointer struct (Design Note "Dynamic dispatch").
*/

// Package codec implements the codec pipeline: an ordered chain of
// reversible stages (sync-point removal, interleaving, Reed-Solomon,
// LDPC, cipher, CRC, packet header) that the demodulator's output is
// walked back through, in reverse of encode order, to recover plaintext.
package codec

// Stats accumulates error-correction statistics across a pipeline decode
// (spec §7 "Statistics").
type Stats struct {
	FECAccumulatedAmount float64
	FECAccumulatedWeight float64
	ResolvedErrors       int
	UnresolvedErrors     int
}

// Stage is one reversible step of the codec pipeline.
type Stage interface {
	// Name identifies the stage for telemetry and error reporting.
	Name() string

	EncodedSymbolSize() int
	EncodedBlockSize() int
	EncodedDataSize() int

	DecodedSymbolSize() int
	DecodedBlockSize() int
	DecodedDataSize() int

	// IsErrorCorrecting reports whether this stage can recover from
	// channel errors. Pipeline.Decode does not consult it.
	IsErrorCorrecting() bool

	// Decode consumes an encoded-stage block of data (and, for
	// error-correcting stages, an optional erasures position list) and
	// returns the decoded-stage block. user is an opaque value threaded
	// through from the caller (e.g. the resolved cipher key once metadata
	// decoding has completed).
	Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error)
}

// ProgressFunc is the caller-provided progress/abort hook invoked between
// stages (spec §5 "Cancellation"). Returning true aborts the pipeline at
// the next stage boundary.
type ProgressFunc func(stageIndex int, stageName string) (abort bool)
