/*
NAME
  syncpoint.go

DESCRIPTION
  The SyncPointInserter stage (spec §4.4 "SyncPointInserter (reverse)"): a
  per-format bit array flags the raster positions reserved for sync-point
  markers, computed once from (H/V distance, radius, offset) using the
  same grid formula frame/tracker/syncpoints.go uses to locate sync
  points for geometric correction. At every reserved position the decoder
  skips the input byte; non-reserved positions are copied through.
*/

package codec

import (
	"fmt"

	"github.com/piql/gpfunbox/boxconfig"
)

// SyncPointStage strips the bytes at reserved sync-point raster
// positions from the content-grid byte stream.
type SyncPointStage struct {
	StageName string
	reserved  []bool // len == cols*rows; true at a sync-point raster position
	decoded   int     // count of false entries, cached at construction
}

func (s *SyncPointStage) Name() string           { return s.StageName }
func (s *SyncPointStage) EncodedSymbolSize() int  { return 1 }
func (s *SyncPointStage) EncodedBlockSize() int   { return len(s.reserved) }
func (s *SyncPointStage) EncodedDataSize() int    { return len(s.reserved) }
func (s *SyncPointStage) DecodedSymbolSize() int  { return 1 }
func (s *SyncPointStage) DecodedBlockSize() int   { return s.decoded }
func (s *SyncPointStage) DecodedDataSize() int    { return s.decoded }
func (s *SyncPointStage) IsErrorCorrecting() bool { return false }

func (s *SyncPointStage) Decode(data []byte, erasures []int, stats *Stats, user interface{}) ([]byte, error) {
	if len(s.reserved) == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if len(data) != len(s.reserved) {
		return nil, fmt.Errorf("codec: %q expects %d raster bytes, got %d", s.StageName, len(s.reserved), len(data))
	}
	out := make([]byte, 0, s.decoded)
	for i, b := range data {
		if s.reserved[i] {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// syncPointIndices returns the content-grid (col, row) coordinates of
// every sync point, per (hDistance, vDistance, offset); offset < 0 means
// "derive automatically" by centring the grid. Mirrors
// frame/tracker/syncpoints.go's function of the same name; duplicated
// here since codec does not import frame/tracker (and vice versa).
func syncPointIndices(cols, rows, hDistance, vDistance, offset int) (colIdx, rowIdx []int) {
	if hDistance <= 0 || vDistance <= 0 {
		return nil, nil
	}
	hOff, vOff := offset, offset
	if offset < 0 {
		hOff = (cols % hDistance) / 2
		vOff = (rows % vDistance) / 2
	}
	for c := hOff; c < cols; c += hDistance {
		colIdx = append(colIdx, c)
	}
	for r := vOff; r < rows; r += vDistance {
		rowIdx = append(rowIdx, r)
	}
	return colIdx, rowIdx
}

// markSyncReserved flags every raster position within radius of a sync
// point centre (a filled disc, matching the marker shape the tracker's
// centroid search looks for).
func markSyncReserved(cols, rows int, colIdx, rowIdx []int, radius int) []bool {
	reserved := make([]bool, cols*rows)
	if radius < 0 {
		radius = 0
	}
	for _, r := range rowIdx {
		for _, c := range colIdx {
			for dy := -radius; dy <= radius; dy++ {
				yy := r + dy
				if yy < 0 || yy >= rows {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := c + dx
					if xx < 0 || xx >= cols || dx*dx+dy*dy > radius*radius {
						continue
					}
					reserved[yy*cols+xx] = true
				}
			}
		}
	}
	return reserved
}

func newSyncPointStage(cfg boxconfig.StageConfig, ctx *BuildContext) (Stage, error) {
	f := ctx.Format
	cols, rows := f.ContentCols, f.ContentRows
	if cols*rows != ctx.Size {
		return nil, fmt.Errorf("codec: %q expects a %dx%d (=%d byte) raster, pipeline cursor is at %d bytes", cfg.Name, cols, rows, cols*rows, ctx.Size)
	}

	colIdx, rowIdx := syncPointIndices(cols, rows, f.SyncPointHDistance, f.SyncPointVDistance, f.SyncPointOffset)
	reserved := markSyncReserved(cols, rows, colIdx, rowIdx, f.SyncPointRadius)

	decoded := 0
	for _, r := range reserved {
		if !r {
			decoded++
		}
	}

	return &SyncPointStage{StageName: cfg.Name, reserved: reserved, decoded: decoded}, nil
}

func init() {
	RegisterStageFactory("SyncPointInserter", newSyncPointStage)
}
