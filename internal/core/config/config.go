// Package config handles configuration loading and validation for riven-tui.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

// Built-in action names for keybindings.
const (
	ActionRemove  = "remove"
	ActionReset   = "reset"
	ActionRetry   = "retry"
	ActionPause   = "pause"
	ActionUnpause = "unpause"
)

// defaultKeybindings provides built-in keybindings that users can override.
// Keys trigger batch actions on the library selection; the Confirm text
// becomes the confirmation modal title.
var defaultKeybindings = map[string]Keybinding{
	"x": {
		Action:  ActionRemove,
		Help:    "remove",
		Confirm: "Are you sure you want to remove the selected items?",
	},
	"r": {
		Action:  ActionRetry,
		Help:    "retry",
		Confirm: "Are you sure you want to retry the selected items?",
	},
	"R": {
		Action:  ActionReset,
		Help:    "reset",
		Confirm: "Are you sure you want to reset the selected items?",
	},
	"p": {
		Action: ActionPause,
		Help:   "pause",
	},
	"P": {
		Action: ActionUnpause,
		Help:   "unpause",
	},
}

// Config holds the application configuration.
type Config struct {
	Backend     BackendConfig         `yaml:"backend"`
	TMDB        TMDBConfig            `yaml:"tmdb"`
	Batch       BatchConfig           `yaml:"batch"`
	UI          UIConfig              `yaml:"ui"`
	Logs        LogsConfig            `yaml:"logs"`
	Keybindings map[string]Keybinding `yaml:"keybindings"`
	DataDir     string                `yaml:"-"` // set by caller, not from config file
}

// BackendConfig points riven-tui at a Riven backend.
type BackendConfig struct {
	URL                   string `yaml:"url"`
	APIKey                string `yaml:"api_key"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	IndexTimeoutSeconds   int    `yaml:"index_timeout_seconds"`
}

// RequestTimeout returns the per-request timeout.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

// IndexTimeout returns the timeout for full-library index downloads, which
// can run far longer than a normal page fetch.
func (b BackendConfig) IndexTimeout() time.Duration {
	return time.Duration(b.IndexTimeoutSeconds) * time.Second
}

// TMDBConfig holds the TMDB API credentials.
type TMDBConfig struct {
	BearerToken string `yaml:"bearer_token"`
}

// BatchConfig tunes the bulk operation executor.
type BatchConfig struct {
	BurstSize       int     `yaml:"burst_size"`
	IntervalSeconds float64 `yaml:"interval_seconds"`
}

// Interval returns the minimum spacing between burst starts.
func (b BatchConfig) Interval() time.Duration {
	return time.Duration(b.IntervalSeconds * float64(time.Second))
}

// UIConfig holds TUI presentation settings.
type UIConfig struct {
	Theme                  string `yaml:"theme"`
	PageSize               int    `yaml:"page_size"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
}

// RefreshInterval returns the dashboard auto-refresh cadence.
func (u UIConfig) RefreshInterval() time.Duration {
	return time.Duration(u.RefreshIntervalSeconds) * time.Second
}

// LogsConfig tunes the backend log viewer.
type LogsConfig struct {
	DisplayLimit           int `yaml:"display_limit"`
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
}

// RefreshInterval returns the log tail refresh cadence.
func (l LogsConfig) RefreshInterval() time.Duration {
	return time.Duration(l.RefreshIntervalSeconds) * time.Second
}

// Keybinding defines a TUI keybinding that triggers a batch action.
type Keybinding struct {
	Action  string `yaml:"action"`  // built-in action name (remove, reset, retry, pause, unpause)
	Help    string `yaml:"help"`    // help text shown in TUI
	Confirm string `yaml:"confirm"` // confirmation modal title (empty = default phrasing)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:                   "http://localhost:8080",
			RequestTimeoutSeconds: 10,
			IndexTimeoutSeconds:   120,
		},
		Batch: BatchConfig{
			BurstSize:       5,
			IntervalSeconds: 2,
		},
		UI: UIConfig{
			Theme:                  styles.DefaultTheme,
			PageSize:               50,
			RefreshIntervalSeconds: 30,
		},
		Logs: LogsConfig{
			DisplayLimit:           20,
			RefreshIntervalSeconds: 5,
		},
		Keybindings: mergeKeybindings(defaultKeybindings, nil),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Merge user keybindings into defaults (user config overrides defaults)
	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration back to the given path. The settings view
// uses this to persist edits. Keybindings identical to the defaults are not
// written out.
func (c *Config) Save(path string) error {
	if path == "" {
		return fmt.Errorf("config path cannot be empty")
	}

	out := *c
	out.Keybindings = diffKeybindings(defaultKeybindings, c.Keybindings)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// The file carries API keys, keep it private.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.RequestTimeoutSeconds == 0 {
		c.Backend.RequestTimeoutSeconds = defaults.Backend.RequestTimeoutSeconds
	}
	if c.Backend.IndexTimeoutSeconds == 0 {
		c.Backend.IndexTimeoutSeconds = defaults.Backend.IndexTimeoutSeconds
	}
	if c.Batch.BurstSize == 0 {
		c.Batch.BurstSize = defaults.Batch.BurstSize
	}
	if c.Batch.IntervalSeconds == 0 {
		c.Batch.IntervalSeconds = defaults.Batch.IntervalSeconds
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.PageSize == 0 {
		c.UI.PageSize = defaults.UI.PageSize
	}
	if c.UI.RefreshIntervalSeconds == 0 {
		c.UI.RefreshIntervalSeconds = defaults.UI.RefreshIntervalSeconds
	}
	if c.Logs.DisplayLimit == 0 {
		c.Logs.DisplayLimit = defaults.Logs.DisplayLimit
	}
	if c.Logs.RefreshIntervalSeconds == 0 {
		c.Logs.RefreshIntervalSeconds = defaults.Logs.RefreshIntervalSeconds
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))

	// Copy defaults first
	for k, v := range defaults {
		result[k] = v
	}

	// Override with user config
	for k, v := range user {
		result[k] = v
	}

	return result
}

// diffKeybindings returns only the bindings that differ from the defaults.
func diffKeybindings(defaults, merged map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding)
	for k, v := range merged {
		if def, ok := defaults[k]; ok && def == v {
			continue
		}
		result[k] = v
	}
	return result
}

// DatabaseFile returns the path to the local SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "riven-tui.db")
}

// DefaultLogFile returns the path the TUI logs to when no --log-file is set.
func (c *Config) DefaultLogFile() string {
	return filepath.Join(c.DataDir, "riven-tui.log")
}

// ThemesDir returns the directory scanned for custom theme palettes.
func (c *Config) ThemesDir() string {
	return filepath.Join(c.DataDir, "themes")
}

func isValidAction(action string) bool {
	switch action {
	case ActionRemove, ActionReset, ActionRetry, ActionPause, ActionUnpause:
		return true
	default:
		return false
	}
}
