package process

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/fsmagent/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Config describes a tool backed by an external command.
type Config struct {
	Name        string             `yaml:"name" json:"name" toml:"name"`
	Command     string             `yaml:"command" json:"command" toml:"command"`
	Args        []string           `yaml:"args" json:"args" toml:"args"`
	Environment map[string]string  `yaml:"env" json:"env" toml:"env"`
	Description string             `yaml:"description" json:"description" toml:"description"`
	Parameters  []domain.ParamSpec `yaml:"parameters" json:"parameters" toml:"parameters"`
	Timeout     string             `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// ConfigFile represents the structure of a tools document.
type ConfigFile struct {
	Tools []Config `yaml:"tools" json:"tools" toml:"tools"`
}

// LoadTools reads a tools document (YAML, JSON or TOML by extension).
// A missing file yields no tools. Entries without a name are skipped.
func LoadTools(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tools config %s: %w", path, err)
	}

	tools := make([]Config, 0, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		if tool.Name == "" {
			continue
		}
		if tool.Command == "" {
			return nil, fmt.Errorf("%w: tool %q has no command", domain.ErrConfiguration, tool.Name)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}
