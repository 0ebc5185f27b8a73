package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(32*1024*1024), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 7, cfg.Pipeline.MovingAverageWindow)
	assert.InDelta(t, 0.2, cfg.Pipeline.SmoothingAlpha, 1e-9)
	assert.InDelta(t, 0.5, cfg.Pipeline.MaxRejectionRate, 1e-9)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RP_SERVER_PORT", "9090")
	t.Setenv("RP_LOGGING_LEVEL", "debug")
	t.Setenv("RP_PIPELINE_FORECAST_HORIZON_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 14, cfg.Pipeline.ForecastHorizonDays)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9191\nlogging:\n  format: text\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("RP_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o644))
	t.Setenv("RP_CONFIG_FILE", path)
	t.Setenv("RP_SERVER_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("RP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("RP_LOGGING_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown logging format")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer

	jsonCfg := &Config{Logging: LoggingConfig{Level: "info", Format: "json"}}
	jsonCfg.NewLogger(&buf).Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])

	buf.Reset()
	textCfg := &Config{Logging: LoggingConfig{Level: "info", Format: "text"}}
	textCfg.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Logging: LoggingConfig{Level: "warn", Format: "json"}}
	logger := cfg.NewLogger(&buf)

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	logger.Warn("emitted")
	assert.Contains(t, buf.String(), "emitted")
}
