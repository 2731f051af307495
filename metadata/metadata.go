/*
NAME
  metadata.go

DESCRIPTION
  Package metadata decodes the fixed metadata-strip schema recovered by
  the metadata coding scheme's codec pipeline (spec §4.5): each item is a
  one-byte type tag followed by a type-specific fixed-size payload (1, 4,
  or 8 bytes), appended to an ordered list in file order. Unknown tags
  fail with METADATA_ERROR. Items are kept in a slice rather than a map,
  since metadata here has a meaningful file order that a plain map would
  discard.
*/

package metadata

import (
	"encoding/binary"
	"fmt"

	"github.com/piql/gpfunbox/codec"
)

// ItemType identifies one metadata item's tag (spec §4.5).
type ItemType byte

const (
	JobId ItemType = iota
	FrameNumber
	FileId
	FileSize
	DataCrc
	DataSize
	SymbolsPerPixel
	ContentTypeItem
	CipherKey
	ContentSymbolSize
)

// payloadSize returns the fixed payload length, in bytes, for each item
// type, or -1 for an unrecognised tag.
func payloadSize(t ItemType) int {
	switch t {
	case JobId, FileId, DataCrc:
		return 8
	case FrameNumber, FileSize, DataSize, CipherKey:
		return 4
	case SymbolsPerPixel, ContentTypeItem, ContentSymbolSize:
		return 1
	default:
		return -1
	}
}

// ContentType is the payload of a ContentTypeItem.
type ContentType byte

const (
	Unknown ContentType = iota
	Toc
	Data
	Visual
	ControlFrame
)

// Item is one decoded metadata entry.
type Item struct {
	Type ItemType

	// Exactly one of the following is meaningful, selected by Type.
	Uint64 uint64
	Uint32 uint32
	Byte   byte
}

// ContentTypeValue interprets Item.Byte as a ContentType (valid only when
// Type == ContentTypeItem).
func (i Item) ContentTypeValue() ContentType { return ContentType(i.Byte) }

// List is an ordered sequence of metadata items, in file order.
type List []Item

// Get returns the first item of type t, if present.
func (l List) Get(t ItemType) (Item, bool) {
	for _, it := range l {
		if it.Type == t {
			return it, true
		}
	}
	return Item{}, false
}

// CipherKeyValue returns the resolved cipher key, if the metadata list
// carries one (spec §6 "Cipher auto-keying").
func (l List) CipherKeyValue() (uint64, bool) {
	it, ok := l.Get(CipherKey)
	if !ok {
		return 0, false
	}
	return uint64(it.Uint32), true
}

// Decode parses the metadata strip's recovered byte stream into an
// ordered item list. Any unrecognised tag, or a payload truncated by a
// short buffer, fails with codec.MetadataError.
func Decode(data []byte) (List, error) {
	var list List
	pos := 0
	for pos < len(data) {
		tag := ItemType(data[pos])
		pos++
		size := payloadSize(tag)
		if size < 0 {
			return nil, codec.NewResultError(codec.MetadataError, fmt.Errorf("metadata: unrecognised item tag %d at offset %d", tag, pos-1))
		}
		if pos+size > len(data) {
			return nil, codec.NewResultError(codec.MetadataError, fmt.Errorf("metadata: item tag %d payload truncated at offset %d", tag, pos))
		}

		item := Item{Type: tag}
		switch size {
		case 8:
			item.Uint64 = binary.BigEndian.Uint64(data[pos : pos+8])
		case 4:
			item.Uint32 = binary.BigEndian.Uint32(data[pos : pos+4])
		case 1:
			item.Byte = data[pos]
		}
		list = append(list, item)
		pos += size
	}
	return list, nil
}
