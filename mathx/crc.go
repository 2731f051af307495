/*
NAME
  crc.go

DESCRIPTION
  CRC-32 and CRC-64 table-driven checksum helpers for the codec pipeline's
  CRC stage, wrapping the standard library's hash/crc32 and hash/crc64
  tables for a caller-supplied polynomial and seed.
*/

package mathx

import (
	"hash/crc32"
	"hash/crc64"
)

// CRC32Table is a precomputed CRC-32 table for a given polynomial. It is
// immutable after construction and may be read concurrently by multiple
// decoder instances (spec §5 "Shared resources").
type CRC32Table struct {
	poly uint32
	tab  *crc32.Table
}

// NewCRC32Table builds a CRC-32 table for the given polynomial, in the
// bit-reversed (reflected) form hash/crc32 takes, e.g. crc32.IEEE
// (0xedb88320).
func NewCRC32Table(poly uint32) *CRC32Table {
	return &CRC32Table{poly: poly, tab: crc32.MakeTable(poly)}
}

// Checksum computes the CRC-32 of data starting from seed.
func (t *CRC32Table) Checksum(seed uint32, data []byte) uint32 {
	return crc32.Update(seed, t.tab, data)
}

// CRC64Table is the 64-bit analogue of CRC32Table.
type CRC64Table struct {
	poly uint64
	tab  *crc64.Table
}

// NewCRC64Table builds a CRC-64 table for the given polynomial.
func NewCRC64Table(poly uint64) *CRC64Table {
	return &CRC64Table{poly: poly, tab: crc64.MakeTable(poly)}
}

// Checksum computes the CRC-64 of data starting from seed.
func (t *CRC64Table) Checksum(seed uint64, data []byte) uint64 {
	return crc64.Update(seed, t.tab, data)
}
