package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fsmagent/pkg/adapters/file"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateDocs = map[string]string{
	"start.md": `---
initial: true
next: [analyzing]
---
Waiting for input.`,
	"analyzing.md": `---
next: [approved, rejected]
---
Score the text.`,
	"approved.md": `---
next: [end]
---`,
	"rejected.md": `---
next: [end.md]
---`,
	"end.json": `{"terminal": true}`,
}

func writeStates(t *testing.T, dir string, docs map[string]string) {
	t.Helper()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestLoadRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	require.NoError(t, err)
	writeStates(t, dir, stateDocs)

	cfg, err := file.LoadRepository(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, want.Initial, cfg.Initial)
	assert.Equal(t, want.Terminal, cfg.Terminal)
	assert.Equal(t, want.States, cfg.States)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeStates(t, dir, stateDocs)

	m, err := file.LoadMachine(dir)
	require.NoError(t, err)
	assert.Equal(t, "start", m.Current())
	assert.Equal(t, []string{"approved", "rejected"}, m.Config().States["analyzing"])
	assert.Equal(t, []string{"end"}, m.Terminal())
}

func TestLoadDir_DefaultInitial(t *testing.T) {
	dir := t.TempDir()
	writeStates(t, dir, map[string]string{
		"start.md": "---\nnext: [end]\n---",
		"end.md":   "---\nterminal: true\n---",
	})

	cfg, err := file.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, file.DefaultInitial, cfg.Initial)
}

func TestLoadDir_Conflicts(t *testing.T) {
	t.Run("Two Initial States", func(t *testing.T) {
		dir := t.TempDir()
		writeStates(t, dir, map[string]string{
			"a.md": "---\ninitial: true\nnext: [b]\n---",
			"b.md": "---\ninitial: true\n---",
		})
		_, err := file.LoadDir(dir)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "a, b")
	})

	t.Run("Same State Twice", func(t *testing.T) {
		dir := t.TempDir()
		writeStates(t, dir, map[string]string{
			"end.md":   "---\nterminal: true\n---",
			"end.json": `{"terminal": true}`,
		})
		_, err := file.LoadDir(dir)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
