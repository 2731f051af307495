package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitKeySplitsOnFirstDot(t *testing.T) {
	key, err := splitKey("FrameFormat.width")
	if err != nil {
		t.Fatalf("splitKey() error = %v", err)
	}
	if key.Group != "FrameFormat" || key.Name != "width" {
		t.Errorf("splitKey() = %+v, want {FrameFormat width}", key)
	}
}

func TestSplitKeySplitsOnlyFirstDotWhenNameContainsDots(t *testing.T) {
	key, err := splitKey("CodecDispatcher.order.primary")
	if err != nil {
		t.Fatalf("splitKey() error = %v", err)
	}
	if key.Group != "CodecDispatcher" || key.Name != "order.primary" {
		t.Errorf("splitKey() = %+v, want {CodecDispatcher order.primary}", key)
	}
}

func TestSplitKeyRejectsMissingDot(t *testing.T) {
	if _, err := splitKey("noDotHere"); err == nil {
		t.Fatal("splitKey() with no dot: want error")
	}
}

func TestLoadRegistryParsesMixedValueKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	doc := `{
		"FrameFormat.width": 1024,
		"FormatInfo.name": "GPFv1.1-test",
		"FrameFormat.origin": {"X": 3, "Y": 4}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := loadRegistry(path)
	if err != nil {
		t.Fatalf("loadRegistry() error = %v", err)
	}

	width, err := reg.Int("FrameFormat", "width")
	if err != nil || width != 1024 {
		t.Errorf("Int(FrameFormat,width) = (%d,%v), want (1024,nil)", width, err)
	}
	name, err := reg.Str("FormatInfo", "name")
	if err != nil || name != "GPFv1.1-test" {
		t.Errorf("Str(FormatInfo,name) = (%q,%v), want (\"GPFv1.1-test\",nil)", name, err)
	}
	pt, err := reg.Point("FrameFormat", "origin")
	if err != nil || pt.X != 3 || pt.Y != 4 {
		t.Errorf("Point(FrameFormat,origin) = (%+v,%v), want ({3 4},nil)", pt, err)
	}
}

func TestLoadRegistryRejectsMalformedKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"noDotHere": 1}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := loadRegistry(path); err == nil {
		t.Fatal("loadRegistry() with a malformed key: want error")
	}
}

func TestLoadRegistryPropagatesReadError(t *testing.T) {
	if _, err := loadRegistry(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("loadRegistry() with a missing file: want error")
	}
}
