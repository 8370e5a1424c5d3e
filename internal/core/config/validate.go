package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url cannot be empty")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must use http or https, got %q", u.Scheme)
	}
	if c.Backend.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("backend.request_timeout_seconds must be at least 1")
	}
	if c.Backend.IndexTimeoutSeconds < 1 {
		return fmt.Errorf("backend.index_timeout_seconds must be at least 1")
	}

	if c.Batch.BurstSize < 1 {
		return fmt.Errorf("batch.burst_size must be at least 1")
	}
	if c.Batch.IntervalSeconds <= 0 {
		return fmt.Errorf("batch.interval_seconds must be positive")
	}

	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		return fmt.Errorf("ui.theme %q is not a known theme", c.UI.Theme)
	}
	if c.UI.PageSize < 1 || c.UI.PageSize > 1000 {
		return fmt.Errorf("ui.page_size must be between 1 and 1000")
	}
	if c.UI.RefreshIntervalSeconds < 1 {
		return fmt.Errorf("ui.refresh_interval_seconds must be at least 1")
	}

	if c.Logs.DisplayLimit < 1 {
		return fmt.Errorf("logs.display_limit must be at least 1")
	}
	if c.Logs.RefreshIntervalSeconds < 1 {
		return fmt.Errorf("logs.refresh_interval_seconds must be at least 1")
	}

	for key, kb := range c.Keybindings {
		if kb.Action == "" {
			return fmt.Errorf("keybinding %q must have an action", key)
		}
		if !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility. The configPath argument specifies the config
// file location to validate (empty string skips the config file check).
// This calls Validate() first for basic structural validation, then adds I/O
// checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Backend.APIKey == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "api_key",
			Message:  "no API key configured; backend calls will be rejected",
		})
	}
	if c.TMDB.BearerToken == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "TMDB",
			Item:     "bearer_token",
			Message:  "no bearer token configured; search and trending are disabled",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
