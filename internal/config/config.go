package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures the global zap logger. File enables rotated file
// output alongside stderr.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// TrackerConfig names one tracker tab and the quarter its rows belong to.
type TrackerConfig struct {
	Sheet   string `yaml:"sheet" mapstructure:"sheet"`
	Quarter string `yaml:"quarter" mapstructure:"quarter"`
}

// ImportConfig configures the workbook import.
type ImportConfig struct {
	WorkbookPath        string          `yaml:"workbook_path" mapstructure:"workbook_path"`
	BrandID             string          `yaml:"brand_id" mapstructure:"brand_id"`
	RosterSheet         string          `yaml:"roster_sheet" mapstructure:"roster_sheet"`
	Trackers            []TrackerConfig `yaml:"trackers" mapstructure:"trackers"`
	CompletedQuarters   []string        `yaml:"completed_quarters" mapstructure:"completed_quarters"`
	RetailerAliasesFile string          `yaml:"retailer_aliases_file" mapstructure:"retailer_aliases_file"`
}

// CacheConfig configures the aggregate cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL string        `yaml:"redis_url" mapstructure:"redis_url"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from config.yaml (if present) and environment
// variables prefixed with INFLUENCER_.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INFLUENCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 50.0)
	v.SetDefault("server.rate_limit_burst", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("import.workbook_path", "")
	v.SetDefault("import.brand_id", "")
	v.SetDefault("import.retailer_aliases_file", "")
	v.SetDefault("import.roster_sheet", "Influencers")
	v.SetDefault("import.trackers", []map[string]any{
		{"sheet": "2025 Influencer Tracker", "quarter": "Q4 2025"},
		{"sheet": "2026 Influencer Tracker", "quarter": "Q1 2026"},
	})
	v.SetDefault("import.completed_quarters", []string{"Q4 2025"})
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.prefix", "influencer")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs before it touches anything.
func (c *Config) Validate(mode string) error {
	var errs []string

	storeRequired := func() {
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q must be postgres or sqlite", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Store.MaxConns < 0 || c.Store.MinConns < 0 || (c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns) {
			errs = append(errs, "store.min_conns must be between 0 and store.max_conns")
		}
	}

	switch mode {
	case "migrate", "brands", "report", "chase", "board":
		storeRequired()
	case "import":
		storeRequired()
		if c.Import.WorkbookPath == "" {
			errs = append(errs, "import.workbook_path is required")
		}
		if c.Import.BrandID == "" {
			errs = append(errs, "import.brand_id is required")
		}
		if c.Import.RosterSheet == "" && len(c.Import.Trackers) == 0 {
			errs = append(errs, "import needs a roster_sheet or at least one tracker")
		}
		for i, t := range c.Import.Trackers {
			if t.Sheet == "" || t.Quarter == "" {
				errs = append(errs, fmt.Sprintf("import.trackers[%d] needs sheet and quarter", i))
			}
		}
	case "serve":
		storeRequired()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimitRPS < 0 {
			errs = append(errs, "server.rate_limit_rps must be >= 0")
		}
		if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
			errs = append(errs, "server.rate_limit_burst must be >= 1 when rate limiting")
		}
		if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
			errs = append(errs, "metrics.path must start with /")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Cache.Enabled {
		if c.Cache.RedisURL == "" {
			errs = append(errs, "cache.redis_url is required when cache.enabled")
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, "cache.ttl must be > 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger installs the global zap logger. When cfg.File is set, entries
// are also written to a size-rotated file.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}

	if cfg.File != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapCfg.Level)
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	zap.ReplaceGlobals(logger)
	return nil
}
