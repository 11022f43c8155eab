package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/fsmagent/pkg/adapters/process"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestTool_Invoke(t *testing.T) {
	skipOnWindows(t)
	ctx := context.Background()

	t.Run("Passes Arguments via Env Vars", func(t *testing.T) {
		tool, err := process.NewTool(process.Config{
			Name:    "echo_env",
			Command: "sh",
			Args:    []string{"-c", "echo $FSMAGENT_ARG_MSG-$GREETING"},
			Environment: map[string]string{
				"GREETING": "hi",
			},
		})
		require.NoError(t, err)

		out, err := tool.Invoke(ctx, registry.Args{"msg": "SecretMessage"})
		require.NoError(t, err)
		assert.Equal(t, "SecretMessage-hi", out)
	})

	t.Run("Decodes JSON Output", func(t *testing.T) {
		tool, err := process.NewTool(process.Config{
			Name:    "score",
			Command: "sh",
			Args:    []string{"-c", `echo '{"score": 95}'`},
		})
		require.NoError(t, err)

		out, err := tool.Invoke(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"score": float64(95)}, out)
	})

	t.Run("Non Zero Exit Is An Error", func(t *testing.T) {
		tool, err := process.NewTool(process.Config{
			Name:    "fail",
			Command: "sh",
			Args:    []string{"-c", "echo broken >&2; exit 3"},
		})
		require.NoError(t, err)

		_, err = tool.Invoke(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Stderr: broken")
	})

	t.Run("Checks Required Parameters", func(t *testing.T) {
		tool, err := process.NewTool(process.Config{
			Name:       "needs_topic",
			Command:    "true",
			Parameters: []domain.ParamSpec{{Name: "topic", Type: domain.ParamString, Required: true}},
		})
		require.NoError(t, err)

		_, err = tool.Invoke(ctx, registry.Args{})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Timeout", func(t *testing.T) {
		tool, err := process.NewTool(process.Config{
			Name:    "slow",
			Command: "sleep",
			Args:    []string{"5"},
			Timeout: "50ms",
		})
		require.NoError(t, err)

		_, err = tool.Invoke(ctx, nil)
		assert.Error(t, err)
	})
}

func TestNewTool_InvalidTimeout(t *testing.T) {
	_, err := process.NewTool(process.Config{Name: "x", Command: "true", Timeout: "soon"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
tools:
  - name: research_web
    description: Researches a topic on the web.
    command: ./research.sh
    parameters:
      - name: topic
        type: string
        required: true
  - command: ignored-without-name
`), 0o644))

	tools, err := process.LoadTools(yamlPath)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "research_web", tools[0].Name)
	require.Len(t, tools[0].Parameters, 1)
	assert.True(t, tools[0].Parameters[0].Required)

	tomlPath := filepath.Join(dir, "tools.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[[tools]]
name = "lint"
command = "golangci-lint"
args = ["run"]
`), 0o644))

	tools, err = process.LoadTools(tomlPath)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, []string{"run"}, tools[0].Args)

	tools, err = process.LoadTools(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tools)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"tools": [{"name": "x"}]}`), 0o644))
	_, err = process.LoadTools(badPath)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRegister(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, process.Register(reg, []process.Config{
		{Name: "a", Command: "true", Description: "A tool."},
		{Name: "b", Command: "true", Parameters: []domain.ParamSpec{{Name: "n", Type: domain.ParamInteger}}},
	}))

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	specs := reg.Specs()
	assert.Equal(t, "A tool.", specs[0].Description)
	assert.Len(t, specs[1].Parameters, 1)
}
