package metadata

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/piql/gpfunbox/codec"
)

func appendItem(data []byte, tag ItemType, payload []byte) []byte {
	return append(append(data, byte(tag)), payload...)
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func TestDecodeMixedItemList(t *testing.T) {
	var data []byte
	data = appendItem(data, JobId, be64(0x0102030405060708))
	data = appendItem(data, FrameNumber, be32(42))
	data = appendItem(data, SymbolsPerPixel, []byte{4})
	data = appendItem(data, ContentTypeItem, []byte{byte(Data)})

	list, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("len(list) = %d, want 4", len(list))
	}

	job, ok := list.Get(JobId)
	if !ok || job.Uint64 != 0x0102030405060708 {
		t.Fatalf("JobId = %+v, ok=%v", job, ok)
	}
	frame, ok := list.Get(FrameNumber)
	if !ok || frame.Uint32 != 42 {
		t.Fatalf("FrameNumber = %+v, ok=%v", frame, ok)
	}
	ct, ok := list.Get(ContentTypeItem)
	if !ok || ct.ContentTypeValue() != Data {
		t.Fatalf("ContentTypeItem = %+v, ok=%v", ct, ok)
	}
}

func TestDecodeExactItemSequence(t *testing.T) {
	var data []byte
	data = appendItem(data, FrameNumber, be32(7))
	data = appendItem(data, SymbolsPerPixel, []byte{2})

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := List{
		{Type: FrameNumber, Uint32: 7},
		{Type: SymbolsPerPixel, Byte: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmpty(t *testing.T) {
	list, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("len(list) = %d, want 0", len(list))
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	data := []byte{0xFE, 1, 2, 3}
	_, err := Decode(data)
	if err == nil {
		t.Fatal("Decode() with unrecognised tag: want error")
	}
	if codec.AsResultCode(err) != codec.MetadataError {
		t.Fatalf("AsResultCode(err) = %v, want MetadataError", codec.AsResultCode(err))
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	data := []byte{byte(FrameNumber), 1, 2} // FrameNumber wants 4 bytes, only 2 given
	_, err := Decode(data)
	if err == nil {
		t.Fatal("Decode() with truncated payload: want error")
	}
}

func TestListCipherKeyValue(t *testing.T) {
	var data []byte
	data = appendItem(data, CipherKey, be32(0xDEADBEEF))
	list, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	key, ok := list.CipherKeyValue()
	if !ok || key != 0xDEADBEEF {
		t.Fatalf("CipherKeyValue() = (%#x, %v), want (0xdeadbeef, true)", key, ok)
	}
}

func TestListCipherKeyValueAbsent(t *testing.T) {
	list := List{{Type: FrameNumber, Uint32: 1}}
	if _, ok := list.CipherKeyValue(); ok {
		t.Fatal("CipherKeyValue() on list without a CipherKey item: want ok=false")
	}
}

func TestListGetReturnsFirstMatch(t *testing.T) {
	list := List{
		{Type: FrameNumber, Uint32: 1},
		{Type: FrameNumber, Uint32: 2},
	}
	item, ok := list.Get(FrameNumber)
	if !ok || item.Uint32 != 1 {
		t.Fatalf("Get() = %+v, want the first matching item", item)
	}
}
