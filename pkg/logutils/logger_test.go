package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	defer closer()
	require.Error(t, err)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "riven-tui.log")

	logger, closer, err := New("info", path)
	require.NoError(t, err)
	defer closer()

	logger.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestNew_LevelApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riven-tui.log")

	logger, closer, err := New("debug", path)
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNew_EmptyFileUsesConsole(t *testing.T) {
	logger, closer, err := New("warn", "")
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
