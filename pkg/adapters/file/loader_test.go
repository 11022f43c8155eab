package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fsmagent/pkg/adapters/file"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var want = domain.GraphConfig{
	States: map[string][]string{
		"start":     {"analyzing"},
		"analyzing": {"approved", "rejected"},
		"approved":  {"end"},
		"rejected":  {"end"},
		"end":       {},
	},
	Initial:  "start",
	Terminal: []string{"end"},
}

const yamlDoc = `
initial_state: start
terminal_states: [end]
states:
  start: [analyzing]
  analyzing: [approved, rejected]
  approved: [end]
  rejected: [end]
  end:
`

const jsonDoc = `{
  "initial_state": "start",
  "terminal_states": ["end"],
  "states": {
    "start": ["analyzing"],
    "analyzing": ["approved", "rejected"],
    "approved": ["end"],
    "rejected": ["end"],
    "end": []
  }
}`

const tomlDoc = `
initial_state = "start"
terminal_states = ["end"]

[states]
start = ["analyzing"]
analyzing = ["approved", "rejected"]
approved = ["end"]
rejected = ["end"]
end = []
`

func TestLoad_AllFormats(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"graph.yaml": yamlDoc,
		"graph.json": jsonDoc,
		"graph.toml": tomlDoc,
	}

	for name, content := range docs {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := file.Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)

			m, err := file.LoadMachine(path)
			require.NoError(t, err)
			assert.Equal(t, "start", m.Current())
		})
	}
}

func TestParse_UnknownFieldsRejected(t *testing.T) {
	_, err := file.Parse([]byte("initial: start\nstates: {start: []}\n"), file.FormatYAML)
	assert.Error(t, err)

	_, err = file.Parse([]byte(`{"initial": "start"}`), file.FormatJSON)
	assert.Error(t, err)

	_, err = file.Parse([]byte("initial = \"start\"\n"), file.FormatTOML)
	assert.Error(t, err)
}

func TestLoadMachine_InvalidGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.yaml")
	require.NoError(t, os.WriteFile(path, []byte("initial_state: a\nstates:\n  a: [b]\n"), 0o644))

	_, err := file.LoadMachine(path)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := file.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode(t *testing.T) {
	cfg, err := file.Decode(map[string]any{
		"initial_state":   "start",
		"terminal_states": []any{"end"},
		"states": map[string]any{
			"start":     []any{"analyzing"},
			"analyzing": []any{"approved", "rejected"},
			"approved":  []any{"end"},
			"rejected":  []any{"end"},
			"end":       nil,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, want, cfg)

	_, err = file.Decode(map[string]any{"initial": "start"})
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, file.FormatJSON, file.FormatOf("a/b.JSON"))
	assert.Equal(t, file.FormatTOML, file.FormatOf("flow.toml"))
	assert.Equal(t, file.FormatYAML, file.FormatOf("flow.yml"))
	assert.Equal(t, file.FormatYAML, file.FormatOf("flow"))
}
