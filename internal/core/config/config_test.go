package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "does-not-exist.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Backend.URL)
	assert.Equal(t, 5, cfg.Batch.BurstSize)
	assert.Equal(t, 2*time.Second, cfg.Batch.Interval())
	assert.Equal(t, dataDir, cfg.DataDir)

	// Default keybindings are merged in.
	kb, ok := cfg.Keybindings["x"]
	require.True(t, ok)
	assert.Equal(t, ActionRemove, kb.Action)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	content := `
backend:
  url: https://riven.example.com
  api_key: secret
batch:
  burst_size: 10
  interval_seconds: 0.5
keybindings:
  "x":
    action: reset
    help: reset instead
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "https://riven.example.com", cfg.Backend.URL)
	assert.Equal(t, "secret", cfg.Backend.APIKey)
	assert.Equal(t, 10, cfg.Batch.BurstSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.Interval())

	// Unset fields fall back to defaults.
	assert.Equal(t, 10, cfg.Backend.RequestTimeoutSeconds)
	assert.Equal(t, "tokyo-night", cfg.UI.Theme)

	// User binding overrides the default for the same key; other defaults stay.
	assert.Equal(t, ActionReset, cfg.Keybindings["x"].Action)
	assert.Equal(t, ActionRetry, cfg.Keybindings["r"].Action)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  burst_size: -1\n"), 0o644))

	_, err := Load(path, dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "burst_size")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.DataDir = "/tmp/riven-tui-test"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name:    "bad backend scheme",
			mutate:  func(c *Config) { c.Backend.URL = "ftp://riven" },
			wantErr: "http or https",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Batch.IntervalSeconds = 0 },
			wantErr: "interval_seconds",
		},
		{
			name:    "unknown theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon-zebra" },
			wantErr: "not a known theme",
		},
		{
			name:    "page size too large",
			mutate:  func(c *Config) { c.UI.PageSize = 5000 },
			wantErr: "page_size",
		},
		{
			name: "keybinding with unknown action",
			mutate: func(c *Config) {
				c.Keybindings = map[string]Keybinding{"z": {Action: "explode"}}
			},
			wantErr: "invalid action",
		},
		{
			name: "keybinding without action",
			mutate: func(c *Config) {
				c.Keybindings = map[string]Keybinding{"z": {Help: "nothing"}}
			},
			wantErr: "must have an action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "nested", "config.yaml")

	cfg, err := Load("", dataDir)
	require.NoError(t, err)
	cfg.Backend.APIKey = "abc123"
	cfg.UI.Theme = "gruvbox"

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := Load(path, dataDir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", reloaded.Backend.APIKey)
	assert.Equal(t, "gruvbox", reloaded.UI.Theme)
	assert.Equal(t, cfg.Batch.BurstSize, reloaded.Batch.BurstSize)
}

func TestSaveOmitsDefaultKeybindings(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")

	cfg, err := Load("", dataDir)
	require.NoError(t, err)
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "remove the selected items")
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)

	cfg.Backend.APIKey = "k"
	cfg.TMDB.BearerToken = "t"
	assert.Empty(t, cfg.Warnings())
}

func TestValidateDeep(t *testing.T) {
	dataDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	require.NoError(t, cfg.ValidateDeep(""))

	// A config path pointing at a directory is rejected.
	err := cfg.ValidateDeep(dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")

	// Data dir pointing at a regular file is rejected.
	filePath := filepath.Join(dataDir, "file")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))
	cfg.DataDir = filePath
	err = cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDataPaths(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "riven-tui.db"), cfg.DatabaseFile())
	assert.Equal(t, filepath.Join("/data", "riven-tui.log"), cfg.DefaultLogFile())
	assert.Equal(t, filepath.Join("/data", "themes"), cfg.ThemesDir())
}
