package boxconfig

import "strings"

// StageConfig is the per-stage section of the configuration registry, e.g.
// the `ReedSolomon_outer.{codec, byteParityNumber, messageSize}` group of
// spec §6.
type StageConfig struct {
	// Name is the stage name as listed in the coding scheme (and the
	// section name the per-stage keys live under).
	Name string

	// Codec is the `codec` key: the stage kind (e.g. "ReedSolomon",
	// "CRC32", "Interleaving"). Distinct from Name when a coding scheme
	// lists two stages of the same kind (e.g. ReedSolomon_inner and
	// ReedSolomon_outer both have Codec == "ReedSolomon").
	Codec string

	Registry *Registry
}

// Int returns an integer key from the stage's own section.
func (s StageConfig) Int(key string) (int, error) { return s.Registry.Int(s.Name, key) }

// IntOr returns an integer key from the stage's own section, or def if
// absent.
func (s StageConfig) IntOr(key string, def int) (int, error) { return s.Registry.IntOr(s.Name, key, def) }

// Str returns a string key from the stage's own section.
func (s StageConfig) Str(key string) (string, error) { return s.Registry.Str(s.Name, key) }

// PipelineSpec is the parsed CodecDispatcher configuration: the stage
// list's own ordering convention, plus the ordered StageConfig lists (as
// written in the registry) for the data and metadata coding schemes.
type PipelineSpec struct {
	// Order is the `order` key's value: "encode" (the default, per the
	// key's own registry comment) means DataScheme/MetadataScheme list
	// their stages in encode order, so the codec pipeline must reverse
	// them to decode; "decode" means the list is already in decode order.
	Order           string
	SymbolAlignment int
	DataScheme      []StageConfig
	MetadataScheme  []StageConfig
}

// LoadPipelineSpec parses the CodecDispatcher group of the registry,
// splitting the comma-separated DataCodingScheme and MetadataCodingScheme
// into ordered StageConfig lists, each carrying its own
// `<stageName>.{...}` section (spec §6).
func LoadPipelineSpec(r *Registry) (PipelineSpec, error) {
	var spec PipelineSpec

	orderStr, err := r.Str("CodecDispatcher", "order")
	if err != nil {
		orderStr = "encode"
	}
	spec.Order = orderStr

	spec.SymbolAlignment, err = r.IntOr("CodecDispatcher", "symbolAlignment", 1)
	if err != nil {
		return spec, err
	}

	dataStr, err := r.Str("CodecDispatcher", "DataCodingScheme")
	if err != nil {
		return spec, err
	}
	spec.DataScheme, err = stageConfigs(r, dataStr)
	if err != nil {
		return spec, err
	}

	metaStr, err := r.Str("CodecDispatcher", "MetadataCodingScheme")
	if err != nil {
		return spec, err
	}
	spec.MetadataScheme, err = stageConfigs(r, metaStr)
	if err != nil {
		return spec, err
	}

	return spec, nil
}

func stageConfigs(r *Registry, scheme string) ([]StageConfig, error) {
	names := splitScheme(scheme)
	out := make([]StageConfig, 0, len(names))
	for _, name := range names {
		codec, err := r.Str(name, "codec")
		if err != nil {
			// Fall back to treating the stage name itself as the codec
			// kind when no per-stage `codec` override is present, e.g. a
			// bare "CRC32" section.
			codec = name
			err = nil
		}
		out = append(out, StageConfig{Name: name, Codec: codec, Registry: r})
	}
	return out, nil
}

func splitScheme(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
