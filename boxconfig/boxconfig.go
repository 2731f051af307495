/*
NAME
  boxconfig.go

DESCRIPTION
  boxconfig provides the read-only (group, key) -> value configuration
  registry consumed by the unboxer, and the typed descriptors (FrameFormat,
  PipelineSpec, StageConfig) that the rest of this module is built from.
  The registry format itself is an external collaborator (spec.md §1); this
  package only defines the contract and the typed structs derived from it.
*/

// Package boxconfig implements the flat (group, key) -> value
// configuration registry described in spec.md §6, and the typed
// descriptors produced from it.
package boxconfig

import (
	"fmt"

	"github.com/piql/gpfunbox/frame"
)

// Key identifies a configuration entry by group and name.
type Key struct {
	Group, Name string
}

// Value is a registry value: exactly one of Str, Int, or Point is the
// entry's kind, mirroring the "string|int|point" union of spec §6.
type Value struct {
	Str   string
	Int   int
	Point frame.Point
	Kind  ValueKind
}

// ValueKind tags which field of Value is populated.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindPoint
)

// StrValue, IntValue and PointValue construct typed registry values.
func StrValue(s string) Value          { return Value{Str: s, Kind: KindString} }
func IntValue(i int) Value             { return Value{Int: i, Kind: KindInt} }
func PointValue(p frame.Point) Value   { return Value{Point: p, Kind: KindPoint} }

// Registry is a read-only map of (group, key) -> value.
type Registry struct {
	entries map[Key]Value
}

// NewRegistry returns a Registry populated from entries. The map is copied;
// mutating the argument afterwards has no effect on the Registry.
func NewRegistry(entries map[Key]Value) *Registry {
	r := &Registry{entries: make(map[Key]Value, len(entries))}
	for k, v := range entries {
		r.entries[k] = v
	}
	return r
}

// ConfigError is returned for a missing key, a type mismatch, or any other
// malformed-configuration condition (spec §7 CONFIG_ERROR).
type ConfigError struct {
	Group, Key string
	Reason     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("boxconfig: [%s].%s: %s", e.Group, e.Key, e.Reason)
}

func (r *Registry) get(group, key string) (Value, error) {
	v, ok := r.entries[Key{Group: group, Name: key}]
	if !ok {
		return Value{}, &ConfigError{Group: group, Key: key, Reason: "missing required key"}
	}
	return v, nil
}

// Str returns the string value at (group, key).
func (r *Registry) Str(group, key string) (string, error) {
	v, err := r.get(group, key)
	if err != nil {
		return "", err
	}
	if v.Kind != KindString {
		return "", &ConfigError{Group: group, Key: key, Reason: "not a string value"}
	}
	return v.Str, nil
}

// Int returns the integer value at (group, key).
func (r *Registry) Int(group, key string) (int, error) {
	v, err := r.get(group, key)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindInt {
		return 0, &ConfigError{Group: group, Key: key, Reason: "not an int value"}
	}
	return v.Int, nil
}

// IntOr returns the integer value at (group, key), or def if the key is
// absent. A present key of the wrong kind is still an error.
func (r *Registry) IntOr(group, key string, def int) (int, error) {
	if _, ok := r.entries[Key{Group: group, Name: key}]; !ok {
		return def, nil
	}
	return r.Int(group, key)
}

// Point returns the point value at (group, key).
func (r *Registry) Point(group, key string) (frame.Point, error) {
	v, err := r.get(group, key)
	if err != nil {
		return frame.Point{}, err
	}
	if v.Kind != KindPoint {
		return frame.Point{}, &ConfigError{Group: group, Key: key, Reason: "not a point value"}
	}
	return v.Point, nil
}

// LoadFrameFormat parses the FormatInfo, FrameFormat and FrameRaster groups
// into a frame.Format, per spec §6.
func LoadFrameFormat(r *Registry) (frame.Format, error) {
	var f frame.Format
	var err error

	f.Name, err = r.Str("FormatInfo", "name")
	if err != nil {
		return f, err
	}

	typeStr, err := r.Str("FrameFormat", "type")
	if err != nil {
		return f, err
	}
	switch typeStr {
	case "GPFv1.0":
		f.Type = frame.GPFv1_0
	case "GPFv1.1":
		f.Type = frame.GPFv1_1
	default:
		return f, &ConfigError{Group: "FrameFormat", Key: "type", Reason: fmt.Sprintf("unrecognised type %q", typeStr)}
	}

	ints := []struct {
		group, key string
		dst        *int
	}{
		{"FrameFormat", "width", &f.Width},
		{"FrameFormat", "height", &f.Height},
		{"FrameFormat", "border", &f.Border},
		{"FrameFormat", "borderGap", &f.BorderGap},
		{"FrameFormat", "cornerMarkSize", &f.CornerMarkSize},
		{"FrameFormat", "cornerMarkGap", &f.CornerMarkGap},
		{"FrameFormat", "tilesPerColumn", &f.TilesPerColumn},
		{"FrameFormat", "refBarSyncDistance", &f.RefBarSyncDistance},
		{"FrameFormat", "refBarSyncOffset", &f.RefBarSyncOffset},
		{"FrameFormat", "maxLevelsPerSymbol", &f.MaxLevelsPerSymbol},
	}
	for _, e := range ints {
		*e.dst, err = r.Int(e.group, e.key)
		if err != nil {
			return f, err
		}
	}

	// Sync-point parameters live under the SyncPointInserter stage's own
	// section (the same section its codec stage reads its other keys
	// from). The registry carries one distance, applied to both axes;
	// zero values (no sync points configured) are permitted. No sample
	// configuration carries an explicit offset key, so it stays at -1
	// ("auto": centre the grid).
	dist, err := r.IntOr("SyncPointInserter", "SyncPointDistancePixel", 0)
	if err != nil {
		return f, err
	}
	f.SyncPointHDistance = dist
	f.SyncPointVDistance = dist
	f.SyncPointRadius, err = r.IntOr("SyncPointInserter", "SyncPointRadiusPixel", 0)
	if err != nil {
		return f, err
	}
	f.SyncPointOffset, err = r.IntOr("SyncPointInserter", "offset", -1)
	if err != nil {
		return f, err
	}

	f.ContentCols, err = r.IntOr("FrameFormat", "contentCols", 0)
	if err != nil {
		return f, err
	}
	f.ContentRows, err = r.IntOr("FrameFormat", "contentRows", 0)
	if err != nil {
		return f, err
	}
	f.MetadataCols, err = r.IntOr("FrameFormat", "metadataCols", 0)
	if err != nil {
		return f, err
	}
	f.MetadataRows, err = r.IntOr("FrameFormat", "metadataRows", f.TilesPerColumn)
	if err != nil {
		return f, err
	}

	if f.MaxLevelsPerSymbol < 2 {
		return f, &ConfigError{Group: "FrameFormat", Key: "maxLevelsPerSymbol", Reason: "must be >= 2"}
	}
	return f, nil
}
