package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 50.0, cfg.Server.RateLimitRPS, 0.001)
	assert.Equal(t, 100, cfg.Server.RateLimitBurst)
	assert.Equal(t, "Influencers", cfg.Import.RosterSheet)
	assert.Equal(t, []TrackerConfig{
		{Sheet: "2025 Influencer Tracker", Quarter: "Q4 2025"},
		{Sheet: "2026 Influencer Tracker", Quarter: "Q1 2026"},
	}, cfg.Import.Trackers)
	assert.Equal(t, []string{"Q4 2025"}, cfg.Import.CompletedQuarters)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "influencer", cfg.Cache.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: influencer.db
log:
  level: debug
  format: console
server:
  port: 9090
import:
  brand_id: brand-1
  trackers:
    - sheet: Spring
      quarter: Q2 2026
cache:
  enabled: true
  redis_url: redis://localhost:6379/0
  ttl: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "influencer.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "brand-1", cfg.Import.BrandID)
	assert.Equal(t, []TrackerConfig{{Sheet: "Spring", Quarter: "Q2 2026"}}, cfg.Import.Trackers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	// Defaults still apply for unset values
	assert.Equal(t, "Influencers", cfg.Import.RosterSheet)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INFLUENCER_STORE_DRIVER", "postgres")
	t.Setenv("INFLUENCER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("INFLUENCER_SERVER_PORT", "3000")
	t.Setenv("INFLUENCER_IMPORT_BRAND_ID", "brand-9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "brand-9", cfg.Import.BrandID)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
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

func TestInitLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influencer.log")
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}))
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	zap.L().Info("file sink check", zap.String("k", "v"))
	_ = zap.L().Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink check")
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "influencer.db"
	cfg.Store.MaxConns = 10
	cfg.Server.Port = 8080
	cfg.Server.RateLimitRPS = 50
	cfg.Server.RateLimitBurst = 100
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	cfg.Import.RosterSheet = "Influencers"
	cfg.Import.Trackers = []TrackerConfig{{Sheet: "2025 Influencer Tracker", Quarter: "Q4 2025"}}
	return cfg
}

func TestValidateStoreCommands(t *testing.T) {
	for _, mode := range []string{"migrate", "brands", "report", "chase", "board"} {
		t.Run(mode, func(t *testing.T) {
			assert.NoError(t, validDefaults().Validate(mode))

			cfg := validDefaults()
			cfg.Store.DatabaseURL = ""
			cfg.Store.Driver = "mysql"
			err := cfg.Validate(mode)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "store.database_url is required")
			assert.Contains(t, err.Error(), `store.driver "mysql"`)
		})
	}
}

func TestValidateStore_ConnBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.MinConns = 20
	err := cfg.Validate("migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.min_conns")
}

func TestValidateImport(t *testing.T) {
	cfg := validDefaults()
	cfg.Import.WorkbookPath = "tracker.xlsx"
	cfg.Import.BrandID = "brand-1"
	assert.NoError(t, cfg.Validate("import"))
}

func TestValidateImport_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Import.Trackers = []TrackerConfig{{Sheet: "2026 Influencer Tracker"}}

	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import.workbook_path is required")
	assert.Contains(t, err.Error(), "import.brand_id is required")
	assert.Contains(t, err.Error(), "import.trackers[0] needs sheet and quarter")
}

func TestValidateImport_NoSources(t *testing.T) {
	cfg := validDefaults()
	cfg.Import.WorkbookPath = "tracker.xlsx"
	cfg.Import.BrandID = "brand-1"
	cfg.Import.RosterSheet = ""
	cfg.Import.Trackers = nil

	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roster_sheet or at least one tracker")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RateLimitAndMetrics(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateLimitBurst = 0
	cfg.Metrics.Path = "metrics"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit_burst")
	assert.Contains(t, err.Error(), "metrics.path must start with /")

	cfg = validDefaults()
	cfg.Server.RateLimitRPS = 0
	cfg.Server.RateLimitBurst = 0
	assert.NoError(t, cfg.Validate("serve"), "rate limiting disabled")
}

func TestValidateCache(t *testing.T) {
	cfg := validDefaults()
	cfg.Cache.Enabled = true

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis_url is required")
	assert.Contains(t, err.Error(), "cache.ttl must be > 0")

	cfg.Cache.RedisURL = "redis://localhost:6379"
	cfg.Cache.TTL = time.Minute
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
