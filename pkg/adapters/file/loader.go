package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies a graph document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension. Unknown extensions default to YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load reads a graph document from disk. A directory is read as one document
// per state, see LoadDir. It does not validate the graph.
func Load(path string) (domain.GraphConfig, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return LoadDir(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GraphConfig{}, fmt.Errorf("failed to read graph: %w", err)
	}
	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return domain.GraphConfig{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// LoadMachine reads a graph document and builds a validated Machine from it.
func LoadMachine(path string) (*fsm.Machine, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return fsm.New(cfg)
}

// Parse decodes a graph document in the given format.
func Parse(data []byte, format Format) (domain.GraphConfig, error) {
	var cfg domain.GraphConfig

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse json graph: %w", err)
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse toml graph: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("failed to parse toml graph: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse yaml graph: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported graph format %q", format)
	}

	normalize(&cfg)
	return cfg, nil
}

// Decode builds a GraphConfig from an already parsed document, such as a JSON
// request body or a front-matter block.
func Decode(doc map[string]any) (domain.GraphConfig, error) {
	var cfg domain.GraphConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return cfg, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return cfg, fmt.Errorf("failed to decode graph: %w", err)
	}
	normalize(&cfg)
	return cfg, nil
}

// normalize turns sinks written as `end:` (null) into empty target lists.
func normalize(cfg *domain.GraphConfig) {
	if cfg.States == nil {
		cfg.States = map[string][]string{}
	}
	for state, targets := range cfg.States {
		if targets == nil {
			cfg.States[state] = []string{}
		}
	}
}
