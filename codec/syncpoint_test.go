package codec

import (
	"testing"

	"github.com/piql/gpfunbox/frame"
)

func TestSyncPointIndicesFixedOffset(t *testing.T) {
	cols, rows := syncPointIndices(6, 6, 3, 3, 0)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 3 {
		t.Fatalf("col indices = %v, want [0 3]", cols)
	}
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 3 {
		t.Fatalf("row indices = %v, want [0 3]", rows)
	}
}

func TestSyncPointIndicesDisabledWhenDistanceZero(t *testing.T) {
	cols, rows := syncPointIndices(6, 6, 0, 0, 0)
	if cols != nil || rows != nil {
		t.Fatalf("syncPointIndices with distance 0 = (%v,%v), want (nil,nil)", cols, rows)
	}
}

func TestMarkSyncReservedZeroRadiusMarksSingleCell(t *testing.T) {
	reserved := markSyncReserved(6, 6, []int{0, 3}, []int{0, 3}, 0)
	count := 0
	for _, r := range reserved {
		if r {
			count++
		}
	}
	if count != 4 {
		t.Fatalf("reserved count = %d, want 4 (2x2 sync points, radius 0)", count)
	}
	if !reserved[0*6+0] || !reserved[0*6+3] || !reserved[3*6+0] || !reserved[3*6+3] {
		t.Fatal("expected sync points reserved at (0,0),(3,0),(0,3),(3,3)")
	}
}

func TestSyncPointStageStripsReservedPositions(t *testing.T) {
	// 6x6 raster, sync points at (row,col) in {0,3}x{0,3}, radius 0.
	reserved := markSyncReserved(6, 6, []int{0, 3}, []int{0, 3}, 0)
	decoded := 0
	for _, r := range reserved {
		if !r {
			decoded++
		}
	}
	s := &SyncPointStage{StageName: "SyncPointInserter", reserved: reserved, decoded: decoded}

	data := make([]byte, 36)
	for i := range data {
		data[i] = byte(i)
	}
	got, err := s.Decode(data, nil, &Stats{}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != decoded {
		t.Fatalf("len(got) = %d, want %d", len(got), decoded)
	}
	for _, b := range got {
		if reserved[b] {
			t.Fatalf("Decode() kept a reserved-position byte (%d) in output", b)
		}
	}
}

func TestSyncPointStageIdentityWhenDisabled(t *testing.T) {
	s := &SyncPointStage{StageName: "SyncPointInserter"}
	data := []byte{1, 2, 3, 4}
	got, err := s.Decode(data, nil, &Stats{}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestSyncPointStageRejectsMisalignedInput(t *testing.T) {
	reserved := markSyncReserved(6, 6, []int{0, 3}, []int{0, 3}, 0)
	s := &SyncPointStage{StageName: "SyncPointInserter", reserved: reserved, decoded: 32}
	if _, err := s.Decode(make([]byte, 7), nil, &Stats{}, nil); err == nil {
		t.Fatal("Decode() with misaligned length: want error")
	}
}

func TestSyncPointStageDecodedBlockSize(t *testing.T) {
	reserved := markSyncReserved(6, 6, []int{0, 3}, []int{0, 3}, 0)
	s := &SyncPointStage{StageName: "SyncPointInserter", reserved: reserved, decoded: 32}
	if got := s.DecodedBlockSize(); got != 32 {
		t.Fatalf("DecodedBlockSize() = %d, want 32", got)
	}
}

func TestNewSyncPointStageFromConfig(t *testing.T) {
	cfg := testStageConfig(t, "SyncPointInserter", nil)
	format := frame.Format{
		ContentCols:        6,
		ContentRows:        6,
		SyncPointHDistance: 3,
		SyncPointVDistance: 3,
		SyncPointRadius:    0,
		SyncPointOffset:    0,
	}
	stage, err := newSyncPointStage(cfg, &BuildContext{Format: format, Size: 36})
	if err != nil {
		t.Fatalf("newSyncPointStage() error = %v", err)
	}
	s := stage.(*SyncPointStage)
	if s.EncodedDataSize() != 36 || s.DecodedDataSize() != 32 {
		t.Fatalf("stage sizes = (%d,%d), want (36,32)", s.EncodedDataSize(), s.DecodedDataSize())
	}
}

func TestNewSyncPointStageRejectsMismatchedGeometry(t *testing.T) {
	cfg := testStageConfig(t, "SyncPointInserter", nil)
	format := frame.Format{ContentCols: 6, ContentRows: 6}
	if _, err := newSyncPointStage(cfg, &BuildContext{Format: format, Size: 30}); err == nil {
		t.Fatal("newSyncPointStage() with mismatched pipeline size: want error")
	}
}
