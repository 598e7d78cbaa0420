// Package config loads application configuration from file, environment,
// and defaults, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Results ResultsConfig `yaml:"results" mapstructure:"results"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Names   NamesConfig   `yaml:"names" mapstructure:"names"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ResultsConfig points at the per-source artifact directories.
type ResultsConfig struct {
	CoreDir    string `yaml:"core_dir" mapstructure:"core_dir"`
	CommonsDir string `yaml:"commons_dir" mapstructure:"commons_dir"`
}

// ExtractConfig tunes the deep value extractor.
type ExtractConfig struct {
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

// CompareConfig tunes comparison and report assembly.
type CompareConfig struct {
	// ExpectedTotal reconciles the enumerated entry count against an
	// externally declared expectation; 0 disables the check.
	ExpectedTotal int `yaml:"expected_total" mapstructure:"expected_total"`
	Workers       int `yaml:"workers" mapstructure:"workers"`
}

// NamesConfig configures benchmark-name canonicalization.
type NamesConfig struct {
	SynonymsFile string `yaml:"synonyms_file" mapstructure:"synonyms_file"`
}

// FetchConfig configures remote artifact retrieval.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// StoreConfig configures the report history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("results.core_dir", "results/core")
	v.SetDefault("results.commons_dir", "results/commons")
	v.SetDefault("extract.max_depth", 10)
	v.SetDefault("compare.expected_total", 0)
	v.SetDefault("compare.workers", 1)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_sec", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "bench.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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

// Validate checks the fields a run mode depends on. Modes: "compare",
// "fetch", "serve". Serve recomputes reports on request, so it inherits the
// compare checks.
func (c *Config) Validate(mode string) error {
	var problems []string
	check := func(bad bool, msg string) {
		if bad {
			problems = append(problems, msg)
		}
	}

	compareChecks := func() {
		check(c.Results.CoreDir == "", "results.core_dir is required")
		check(c.Results.CommonsDir == "", "results.commons_dir is required")
		check(c.Extract.MaxDepth < 1, "extract.max_depth must be >= 1")
		check(c.Compare.Workers < 1 || c.Compare.Workers > 64, "compare.workers must be between 1 and 64")
		check(c.Compare.ExpectedTotal < 0, "compare.expected_total must be >= 0")
	}

	switch mode {
	case "compare":
		compareChecks()
	case "fetch":
		check(c.Fetch.TimeoutSecs < 1, "fetch.timeout_secs must be >= 1")
		check(c.Fetch.MaxRetries < 0, "fetch.max_retries must be >= 0")
		check(c.Fetch.RequestsPerSec <= 0, "fetch.requests_per_sec must be > 0")
	case "serve":
		compareChecks()
		check(c.Server.Port <= 0, "server.port must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
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
	zap.ReplaceGlobals(logger)

	return nil
}
