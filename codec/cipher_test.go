package codec

import (
	"bytes"
	"testing"
)

func TestCipherStageRoundTrip(t *testing.T) {
	plaintext := []byte("the gpf payload, scrambled and unscrambled")
	s := &CipherStage{StageName: "Cipher", DataSize: len(plaintext)}

	encrypted, err := s.Decode(plaintext, nil, &Stats{}, uint64(0xCAFEBABE))
	if err != nil {
		t.Fatalf("Decode() (encrypt direction) error = %v", err)
	}
	if bytes.Equal(encrypted, plaintext) {
		t.Fatal("Decode() produced unchanged output, keystream XOR had no effect")
	}

	// XOR with the same keystream is its own inverse.
	recovered, err := s.Decode(encrypted, nil, &Stats{}, uint64(0xCAFEBABE))
	if err != nil {
		t.Fatalf("Decode() (decrypt direction) error = %v", err)
	}
	if !bytes.Equal(recovered, plaintext) {
		t.Fatalf("Decode() round trip = %q, want %q", recovered, plaintext)
	}
}

func TestCipherStageRequiresResolvedKey(t *testing.T) {
	s := &CipherStage{StageName: "Cipher", DataSize: 4}
	_, err := s.Decode([]byte{1, 2, 3, 4}, nil, &Stats{}, nil)
	if err == nil {
		t.Fatal("Decode() with no resolved key: want error")
	}
	if AsResultCode(err) != ConfigError {
		t.Fatalf("AsResultCode(err) = %v, want ConfigError", AsResultCode(err))
	}
}

func TestCipherStageDifferentKeysDiffer(t *testing.T) {
	plaintext := []byte("0123456789abcdef")
	s := &CipherStage{StageName: "Cipher", DataSize: len(plaintext)}
	a, _ := s.Decode(plaintext, nil, &Stats{}, uint64(1))
	b, _ := s.Decode(plaintext, nil, &Stats{}, uint64(2))
	if bytes.Equal(a, b) {
		t.Fatal("different keys produced identical keystreams")
	}
}

func TestNewCipherStageAutoKeyDefersToUser(t *testing.T) {
	cfg := testStageConfigMixed(t, "Cipher", nil, map[string]string{"key": "auto"})
	stage, err := newCipherStage(cfg, &BuildContext{Size: 4})
	if err != nil {
		t.Fatalf("newCipherStage() error = %v", err)
	}
	s := stage.(*CipherStage)
	if s.HasLiteralKey {
		t.Fatal("newCipherStage() with key=\"auto\": want HasLiteralKey = false")
	}
	if _, err := s.Decode([]byte{1, 2, 3, 4}, nil, &Stats{}, nil); err == nil {
		t.Fatal("Decode() with auto key and no resolved user key: want error")
	}
}

func TestNewCipherStageLiteralKey(t *testing.T) {
	// MetaData_Cipher's real configuration carries a literal key ("1"),
	// not "auto".
	cfg := testStageConfigMixed(t, "MetaData_Cipher", nil, map[string]string{"key": "1"})
	stage, err := newCipherStage(cfg, &BuildContext{Size: 4})
	if err != nil {
		t.Fatalf("newCipherStage() error = %v", err)
	}
	s := stage.(*CipherStage)
	if !s.HasLiteralKey || s.LiteralKey != 1 {
		t.Fatalf("newCipherStage() literal key = %v/%v, want true/1", s.HasLiteralKey, s.LiteralKey)
	}
	if _, err := s.Decode([]byte{1, 2, 3, 4}, nil, &Stats{}, nil); err != nil {
		t.Fatalf("Decode() with literal key and nil user: want success, got %v", err)
	}
}
