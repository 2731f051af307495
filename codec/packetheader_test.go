package codec

import "testing"

func TestPacketHeaderStageStripsLeadingBytes(t *testing.T) {
	s := &PacketHeaderStage{StageName: "PacketHeader", HeaderSize: 3, DataSize: 10}
	data := []byte{0xff, 0xff, 0xff, 1, 2, 3, 4, 5, 6, 7}
	got, err := s.Decode(data, nil, &Stats{}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPacketHeaderStageRejectsShortInput(t *testing.T) {
	s := &PacketHeaderStage{StageName: "PacketHeader", HeaderSize: 10, DataSize: 10}
	if _, err := s.Decode([]byte{1, 2, 3}, nil, &Stats{}, nil); err == nil {
		t.Fatal("Decode() on input shorter than header: want error")
	}
}

func TestPacketHeaderStageDecodedBlockSize(t *testing.T) {
	s := &PacketHeaderStage{StageName: "PacketHeader", HeaderSize: 4, DataSize: 20}
	if got := s.DecodedBlockSize(); got != 16 {
		t.Fatalf("DecodedBlockSize() = %d, want 16", got)
	}
}

func TestNewPacketHeaderStageDefaultsHeaderSize(t *testing.T) {
	cfg := testStageConfig(t, "PH", nil)
	stage, err := newPacketHeaderStage(cfg, &BuildContext{Size: 20})
	if err != nil {
		t.Fatalf("newPacketHeaderStage() error = %v", err)
	}
	s := stage.(*PacketHeaderStage)
	if s.HeaderSize != defaultPacketHeaderSize || s.DataSize != 20 {
		t.Fatalf("newPacketHeaderStage() = %+v, want HeaderSize=%d DataSize=20", s, defaultPacketHeaderSize)
	}
}

func TestNewPacketHeaderStageHonoursExplicitHeaderSize(t *testing.T) {
	cfg := testStageConfig(t, "PH", map[string]int{"headerSize": 8})
	stage, err := newPacketHeaderStage(cfg, &BuildContext{Size: 20})
	if err != nil {
		t.Fatalf("newPacketHeaderStage() error = %v", err)
	}
	if s := stage.(*PacketHeaderStage); s.HeaderSize != 8 {
		t.Fatalf("newPacketHeaderStage() HeaderSize = %d, want 8", s.HeaderSize)
	}
}
