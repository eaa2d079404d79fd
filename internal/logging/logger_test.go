package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Console(t *testing.T) {
	logger, err := New(config.LogConfig{Mode: "development", Level: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "esell.log")
	logger, err := New(config.LogConfig{Mode: "production", Level: "info", FileEnable: true, Filename: file})
	require.NoError(t, err)

	logger.Info("order created")
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "order created")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
