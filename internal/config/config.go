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
	Documents DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DocumentsConfig configures plan document ingestion.
type DocumentsConfig struct {
	// PlansDir is the default directory scanned for plan documents.
	PlansDir      string `yaml:"plans_dir" mapstructure:"plans_dir"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// ScoringConfig configures the weighting of the scoring metrics.
type ScoringConfig struct {
	// Mode is "fixed" (standard weights) or "priority" (weights scaled
	// by the client's stated priorities).
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Format    string `yaml:"format" mapstructure:"format"`
}

// RegistryConfig configures the optional external registry lookups.
// All lookups are off by default; analysis runs fully offline without
// them.
type RegistryConfig struct {
	NPPESEnabled       bool   `yaml:"nppes_enabled" mapstructure:"nppes_enabled"`
	NPPESBaseURL       string `yaml:"nppes_base_url" mapstructure:"nppes_base_url"`
	RxNormEnabled      bool   `yaml:"rxnorm_enabled" mapstructure:"rxnorm_enabled"`
	RxNormBaseURL      string `yaml:"rxnorm_base_url" mapstructure:"rxnorm_base_url"`
	MarketplaceEnabled bool   `yaml:"marketplace_enabled" mapstructure:"marketplace_enabled"`
	MarketplaceBaseURL string `yaml:"marketplace_base_url" mapstructure:"marketplace_base_url"`
	MarketplaceAPIKey  string `yaml:"marketplace_api_key" mapstructure:"marketplace_api_key"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// CacheConfig configures the local lookup cache.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
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
	v.SetEnvPrefix("HPNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("documents.plans_dir", "./plans")
	v.SetDefault("documents.pdftotext_path", "pdftotext")
	v.SetDefault("scoring.mode", "fixed")
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.format", "all")
	v.SetDefault("registry.nppes_base_url", "https://npiregistry.cms.hhs.gov/api/")
	v.SetDefault("registry.rxnorm_base_url", "https://rxnav.nlm.nih.gov/REST")
	v.SetDefault("registry.marketplace_base_url", "https://marketplace.api.healthcare.gov/api/v1")
	v.SetDefault("registry.request_timeout_secs", 15)
	v.SetDefault("cache.path", "./hpnav_cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	if cfg.Scoring.Mode != "fixed" && cfg.Scoring.Mode != "priority" {
		return nil, eris.Errorf("config: invalid scoring mode %q", cfg.Scoring.Mode)
	}

	return &cfg, nil
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
