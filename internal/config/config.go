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
	Docs       DocsConfig       `yaml:"docs" mapstructure:"docs"`
	Footprints FootprintsConfig `yaml:"footprints" mapstructure:"footprints"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DocsConfig configures the rendered handbook site.
type DocsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// FootprintsConfig configures the building footprint download.
type FootprintsConfig struct {
	ManifestURL string `yaml:"manifest_url" mapstructure:"manifest_url"`
	Zoom        int    `yaml:"zoom" mapstructure:"zoom"`
	Output      string `yaml:"output" mapstructure:"output"`
	OutputCRS   string `yaml:"output_crs" mapstructure:"output_crs"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
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
	v.SetEnvPrefix("HANDBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("docs.dir", "docs")
	v.SetDefault("footprints.manifest_url", "https://minedbuildings.blob.core.windows.net/global-buildings/dataset-links.csv")
	v.SetDefault("footprints.zoom", 9)
	v.SetDefault("footprints.output", "london-boundingbox.geojson")
	v.SetDefault("footprints.output_crs", "EPSG:4326")
	v.SetDefault("footprints.temp_dir", "")
	v.SetDefault("fetch.user_agent", "handbook-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 300)
	v.SetDefault("fetch.max_retries", 3)

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

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Footprints.Zoom < 1 || c.Footprints.Zoom > 23 {
		return eris.Errorf("config: footprints.zoom %d out of range [1, 23]", c.Footprints.Zoom)
	}
	if c.Footprints.ManifestURL == "" {
		return eris.New("config: footprints.manifest_url is required")
	}
	if c.Footprints.Output == "" {
		return eris.New("config: footprints.output is required")
	}
	if c.Fetch.MaxRetries < 0 {
		return eris.Errorf("config: fetch.max_retries must be >= 0, got %d", c.Fetch.MaxRetries)
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
