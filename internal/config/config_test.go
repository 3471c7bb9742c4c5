package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Dataset.Source)
	assert.Equal(t, "_", cfg.Dataset.SeriesMatch)
	assert.Equal(t, " ", cfg.Dataset.GroupMatch)
	assert.Zero(t, cfg.Symbol.ScaleFactor, "zero defers to the popup preset")
	assert.True(t, cfg.Symbol.HideZero)
	assert.Equal(t, "#00ccff", cfg.Symbol.Style.FillColor)
	assert.Equal(t, "#336699", cfg.Symbol.Style.Color)
	assert.InDelta(t, 0.8, cfg.Symbol.Style.FillOpacity, 0.001)
	assert.Equal(t, "generic", cfg.Popup.Preset)
	assert.Equal(t, -1, cfg.Popup.Precision)
	assert.Equal(t, "en", cfg.Popup.Locale)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 256, cfg.Server.CacheSize)
	assert.Equal(t, 300, cfg.Server.CacheTTLSecs)
	assert.Equal(t, 1024, cfg.Server.MaxViews)
	assert.Equal(t, 1800, cfg.Server.ViewTTLSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
dataset:
  source: data/springsteenStateDecade.geojson
  label_property: State
symbol:
  scale_factor: 30
  hide_zero: false
popup:
  preset: concerts
  label_title: State
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/springsteenStateDecade.geojson", cfg.Dataset.Source)
	assert.Equal(t, "State", cfg.Dataset.LabelProperty)
	assert.InDelta(t, 30.0, cfg.Symbol.ScaleFactor, 0.001)
	assert.False(t, cfg.Symbol.HideZero)
	assert.Equal(t, "concerts", cfg.Popup.Preset)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "_", cfg.Dataset.SeriesMatch)
	assert.Equal(t, "#00ccff", cfg.Symbol.Style.FillColor)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
dataset:
  source: a.geojson
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SYMBOLMAP_DATASET_SOURCE", "b.geojson")
	t.Setenv("SYMBOLMAP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "b.geojson", cfg.Dataset.Source)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SYMBOLMAP_SERVER_PORT", "3000")
	t.Setenv("SYMBOLMAP_SYMBOL_SCALE_FACTOR", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.InDelta(t, 30.0, cfg.Symbol.ScaleFactor, 0.001)
}

func TestLoadRejectsInvalidScale(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SYMBOLMAP_SYMBOL_SCALE_FACTOR", "-2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale_factor")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("dataset: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Dataset: DatasetConfig{SeriesMatch: "_"},
			Symbol:  SymbolConfig{ScaleFactor: 50},
			Server:  ServerConfig{Port: 8080, CacheSize: 256, MaxViews: 1024, ViewTTLSecs: 1800},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Symbol.ScaleFactor = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Dataset.SeriesMatch = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "series_match")

	cfg = valid()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.CacheSize = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.MaxViews = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.ViewTTLSecs = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Fetch.MaxRetries = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")

	cfg = valid()
	cfg.Symbol.ScaleFactor = 0
	assert.NoError(t, cfg.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
