package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./plans", cfg.Documents.PlansDir)
	assert.Equal(t, "pdftotext", cfg.Documents.PdfToTextPath)
	assert.Equal(t, "fixed", cfg.Scoring.Mode)
	assert.Equal(t, "./reports", cfg.Report.OutputDir)
	assert.Equal(t, "all", cfg.Report.Format)
	assert.False(t, cfg.Registry.NPPESEnabled)
	assert.False(t, cfg.Registry.RxNormEnabled)
	assert.False(t, cfg.Registry.MarketplaceEnabled)
	assert.Equal(t, "https://npiregistry.cms.hhs.gov/api/", cfg.Registry.NPPESBaseURL)
	assert.Equal(t, "https://rxnav.nlm.nih.gov/REST", cfg.Registry.RxNormBaseURL)
	assert.Equal(t, "https://marketplace.api.healthcare.gov/api/v1", cfg.Registry.MarketplaceBaseURL)
	assert.Equal(t, 15, cfg.Registry.RequestTimeoutSecs)
	assert.Equal(t, "./hpnav_cache.db", cfg.Cache.Path)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
documents:
  plans_dir: /data/plans
scoring:
  mode: priority
report:
  format: json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/plans", cfg.Documents.PlansDir)
	assert.Equal(t, "priority", cfg.Scoring.Mode)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "./reports", cfg.Report.OutputDir)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
scoring:
  mode: priority
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HPNAV_SCORING_MODE", "fixed")
	t.Setenv("HPNAV_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "fixed", cfg.Scoring.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HPNAV_CACHE_TTL_HOURS", "72")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.Cache.TTLHours)
}

func TestLoadRejectsInvalidScoringMode(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HPNAV_SCORING_MODE", "adaptive")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scoring mode")
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
