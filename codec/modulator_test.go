package codec

import (
	"testing"

	"github.com/piql/gpfunbox/frame"
)

func TestModulatorStagePacksBits(t *testing.T) {
	// 4 symbols of 2 bits each -> 1 byte.
	s := &ModulatorStage{StageName: "Modulator", BitsPerSymbol: 2, SymbolCount: 4}
	symbols := []byte{0b10, 0b11, 0b00, 0b01}
	got, err := s.Decode(symbols, nil, &Stats{}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := byte(0b10_11_00_01)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Decode() = %08b, want %08b", got, want)
	}
}

func TestModulatorStageDecodedBlockSize(t *testing.T) {
	s := &ModulatorStage{StageName: "Modulator", BitsPerSymbol: 3, SymbolCount: 5}
	// 5 symbols * 3 bits = 15 bits -> 2 bytes.
	if got := s.DecodedBlockSize(); got != 2 {
		t.Fatalf("DecodedBlockSize() = %d, want 2", got)
	}
}

func TestModulatorStageMasksExcessBits(t *testing.T) {
	s := &ModulatorStage{StageName: "Modulator", BitsPerSymbol: 1, SymbolCount: 8}
	symbols := []byte{0xff, 0x00, 0xff, 0x00, 0xff, 0x00, 0xff, 0x00}
	got, err := s.Decode(symbols, nil, &Stats{}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := byte(0b10101010)
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Decode() = %08b, want %08b", got, want)
	}
}

func TestModulatorStageRejectsInvalidBitsPerSymbol(t *testing.T) {
	s := &ModulatorStage{StageName: "Modulator", BitsPerSymbol: 0, SymbolCount: 1}
	if _, err := s.Decode([]byte{1}, nil, &Stats{}, nil); err == nil {
		t.Fatal("Decode() with bitsPerSymbol=0: want error")
	}
}

func TestNewModulatorStageAutoTakesBitsFromFormat(t *testing.T) {
	cfg := testStageConfigMixed(t, "Modulator", nil, map[string]string{"NumBitsPerPixel": "auto"})
	format := frame.Format{MaxLevelsPerSymbol: 4} // BitsPerSymbol() = 2
	stage, err := newModulatorStage(cfg, &BuildContext{Format: format, Size: 10})
	if err != nil {
		t.Fatalf("newModulatorStage() error = %v", err)
	}
	s := stage.(*ModulatorStage)
	if s.BitsPerSymbol != format.BitsPerSymbol() || s.SymbolCount != 10 {
		t.Fatalf("newModulatorStage() = %+v, want BitsPerSymbol=%d SymbolCount=10", s, format.BitsPerSymbol())
	}
}

func TestNewModulatorStageLiteralBitsPerPixel(t *testing.T) {
	cfg := testStageConfigMixed(t, "Modulator", nil, map[string]string{"NumBitsPerPixel": "3"})
	stage, err := newModulatorStage(cfg, &BuildContext{Size: 10})
	if err != nil {
		t.Fatalf("newModulatorStage() error = %v", err)
	}
	s := stage.(*ModulatorStage)
	if s.BitsPerSymbol != 3 {
		t.Fatalf("newModulatorStage() BitsPerSymbol = %d, want 3", s.BitsPerSymbol)
	}
}
