package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvTelegramToken, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listen_addr: "127.0.0.1:9000"
log_level: debug
telegram:
  token: from-file
  debug: true
`)
	t.Setenv(EnvTelegramToken, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.True(t, cfg.Telegram.Debug)
	assert.Equal(t, Default().ExportPath, cfg.ExportPath)
}

func TestLoadUsesEnvPath(t *testing.T) {
	path := writeFile(t, "custom.yaml", "log_level: warn\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "listen_addr: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadSeed(t *testing.T) {
	path := writeFile(t, "seed.yaml", `
- id: first
  title: Catalogue new arrivals
  due_date: "2025-12"
  priority: HIGH
- title: Shelve returns
  priority: low
  assigned_to: ""
`)

	tasks, err := LoadSeed(path, func() string { return "generated" })
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "first", tasks[0].ID)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "2025-12", tasks[0].DueDate)
	assert.Equal(t, "generated", tasks[1].ID)
	assert.Nil(t, tasks[1].AssignedTo)
}

func TestLoadSeedRejectsBadPriority(t *testing.T) {
	path := writeFile(t, "seed.yaml", "- id: a\n  title: x\n  priority: urgent\n")

	_, err := LoadSeed(path, func() string { return "x" })
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestLoadSeedRejectsDuplicateIDs(t *testing.T) {
	path := writeFile(t, "seed.yaml", "- id: a\n  title: x\n  priority: low\n- id: a\n  title: y\n  priority: low\n")

	_, err := LoadSeed(path, func() string { return "x" })
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}
