package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "results/core", cfg.Results.CoreDir)
	assert.Equal(t, "results/commons", cfg.Results.CommonsDir)
	assert.Equal(t, 10, cfg.Extract.MaxDepth)
	assert.Equal(t, 0, cfg.Compare.ExpectedTotal)
	assert.Equal(t, 1, cfg.Compare.Workers)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.InDelta(t, 10, cfg.Fetch.RequestsPerSec, 0.001)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "bench.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
results:
  core_dir: /data/core
  commons_dir: /data/commons
extract:
  max_depth: 6
compare:
  expected_total: 76
  workers: 4
store:
  driver: postgres
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/core", cfg.Results.CoreDir)
	assert.Equal(t, "/data/commons", cfg.Results.CommonsDir)
	assert.Equal(t, 6, cfg.Extract.MaxDepth)
	assert.Equal(t, 76, cfg.Compare.ExpectedTotal)
	assert.Equal(t, 4, cfg.Compare.Workers)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	t.Setenv("BENCH_STORE_DRIVER", "postgres")
	t.Setenv("BENCH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("BENCH_SERVER_PORT", "3000")
	t.Setenv("BENCH_EXTRACT_MAX_DEPTH", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Extract.MaxDepth)
}

func TestLoadMalformedYAML(t *testing.T) {
	chTempDir(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("results: [broken"), 0644))

	_, err := Load()
	require.Error(t, err)
}

// validDefaults returns a Config with the fields validation cares about set
// to their defaults.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Results.CoreDir = "results/core"
	cfg.Results.CommonsDir = "results/commons"
	cfg.Extract.MaxDepth = 10
	cfg.Compare.Workers = 1
	cfg.Fetch.TimeoutSecs = 30
	cfg.Fetch.MaxRetries = 3
	cfg.Fetch.RequestsPerSec = 10
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateCompare_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("compare"))
}

func TestValidateCompare_MissingDirs(t *testing.T) {
	cfg := validDefaults()
	cfg.Results.CoreDir = ""
	cfg.Results.CommonsDir = ""

	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results.core_dir is required")
	assert.Contains(t, err.Error(), "results.commons_dir is required")
}

func TestValidateCompare_WorkerBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Compare.Workers = 0
	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compare.workers must be between 1 and 64")

	cfg.Compare.Workers = 65
	err = cfg.Validate("compare")
	require.Error(t, err)

	cfg.Compare.Workers = 64
	assert.NoError(t, cfg.Validate("compare"))
}

func TestValidateCompare_MaxDepth(t *testing.T) {
	cfg := validDefaults()
	cfg.Extract.MaxDepth = 0

	err := cfg.Validate("compare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract.max_depth must be >= 1")
}

func TestValidateFetch(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("fetch"))

	cfg.Fetch.RequestsPerSec = 0
	err := cfg.Validate("fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.requests_per_sec must be > 0")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
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
