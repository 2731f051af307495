package codec

import (
	"testing"

	"github.com/piql/gpfunbox/boxconfig"
)

// testStageConfig builds a boxconfig.StageConfig backed by a registry
// containing only the given integer keys under name's own section, for
// exercising a stage factory without a full configuration registry.
func testStageConfig(t *testing.T, name string, ints map[string]int) boxconfig.StageConfig {
	t.Helper()
	return testStageConfigMixed(t, name, ints, nil)
}

// testStageConfigMixed is testStageConfig extended with string-valued
// keys, for stages (CRC, Modulator, Cipher, Striping, Interleaving) whose
// real configuration sections quote values like "auto" or a hex literal
// rather than storing a bare int.
func testStageConfigMixed(t *testing.T, name string, ints map[string]int, strs map[string]string) boxconfig.StageConfig {
	t.Helper()
	entries := make(map[boxconfig.Key]boxconfig.Value, len(ints)+len(strs))
	for k, v := range ints {
		entries[boxconfig.Key{Group: name, Name: k}] = boxconfig.IntValue(v)
	}
	for k, v := range strs {
		entries[boxconfig.Key{Group: name, Name: k}] = boxconfig.StrValue(v)
	}
	r := boxconfig.NewRegistry(entries)
	return boxconfig.StageConfig{Name: name, Codec: name, Registry: r}
}
