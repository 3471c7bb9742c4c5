package config

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Symbol  SymbolConfig  `yaml:"symbol" mapstructure:"symbol"`
	Popup   PopupConfig   `yaml:"popup" mapstructure:"popup"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig configures where features come from and how attribute
// names are discovered.
type DatasetConfig struct {
	Source        string `yaml:"source" mapstructure:"source"`
	SeriesMatch   string `yaml:"series_match" mapstructure:"series_match"`
	GroupMatch    string `yaml:"group_match" mapstructure:"group_match"`
	LabelProperty string `yaml:"label_property" mapstructure:"label_property"`
}

// SymbolConfig configures proportional symbol sizing and styling.
type SymbolConfig struct {
	ScaleFactor float64     `yaml:"scale_factor" mapstructure:"scale_factor"`
	HideZero    bool        `yaml:"hide_zero" mapstructure:"hide_zero"`
	Style       StyleConfig `yaml:"style" mapstructure:"style"`
}

// StyleConfig holds circle marker paint options.
type StyleConfig struct {
	FillColor   string  `yaml:"fill_color" mapstructure:"fill_color"`
	Color       string  `yaml:"color" mapstructure:"color"`
	Weight      float64 `yaml:"weight" mapstructure:"weight"`
	Opacity     float64 `yaml:"opacity" mapstructure:"opacity"`
	FillOpacity float64 `yaml:"fill_opacity" mapstructure:"fill_opacity"`
}

// PopupConfig configures popup HTML fragments. Template and GroupTemplate
// override the preset when set.
type PopupConfig struct {
	Preset        string `yaml:"preset" mapstructure:"preset"`
	Template      string `yaml:"template" mapstructure:"template"`
	GroupTemplate string `yaml:"group_template" mapstructure:"group_template"`
	LabelTitle    string `yaml:"label_title" mapstructure:"label_title"`
	Unit          string `yaml:"unit" mapstructure:"unit"`
	Precision     int    `yaml:"precision" mapstructure:"precision"`
	Locale        string `yaml:"locale" mapstructure:"locale"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	CacheSize      int      `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLSecs   int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	MaxViews       int      `yaml:"max_views" mapstructure:"max_views"`
	ViewTTLSecs    int      `yaml:"view_ttl_secs" mapstructure:"view_ttl_secs"`
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
	v.SetEnvPrefix("SYMBOLMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.source", "")
	v.SetDefault("dataset.series_match", "_")
	v.SetDefault("dataset.group_match", " ")
	v.SetDefault("dataset.label_property", "")
	v.SetDefault("symbol.scale_factor", 0.0)
	v.SetDefault("symbol.hide_zero", true)
	v.SetDefault("symbol.style.fill_color", "#00ccff")
	v.SetDefault("symbol.style.color", "#336699")
	v.SetDefault("symbol.style.weight", 1.0)
	v.SetDefault("symbol.style.opacity", 1.0)
	v.SetDefault("symbol.style.fill_opacity", 0.8)
	v.SetDefault("popup.preset", "generic")
	v.SetDefault("popup.template", "")
	v.SetDefault("popup.group_template", "")
	v.SetDefault("popup.label_title", "")
	v.SetDefault("popup.unit", "")
	v.SetDefault("popup.precision", -1)
	v.SetDefault("popup.locale", "en")
	v.SetDefault("fetch.user_agent", "symbolmap/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.cache_size", 256)
	v.SetDefault("server.cache_ttl_secs", 300)
	v.SetDefault("server.max_views", 1024)
	v.SetDefault("server.view_ttl_secs", 1800)
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Symbol.ScaleFactor < 0 || math.IsNaN(c.Symbol.ScaleFactor) || math.IsInf(c.Symbol.ScaleFactor, 0) {
		return eris.Errorf("config: symbol.scale_factor must be a finite number >= 0 (0 uses the popup preset's scale), got %v", c.Symbol.ScaleFactor)
	}
	if c.Dataset.SeriesMatch == "" {
		return eris.New("config: dataset.series_match must not be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	if c.Server.CacheSize < 1 {
		return eris.Errorf("config: server.cache_size must be >= 1, got %d", c.Server.CacheSize)
	}
	if c.Server.MaxViews < 1 {
		return eris.Errorf("config: server.max_views must be >= 1, got %d", c.Server.MaxViews)
	}
	if c.Server.ViewTTLSecs < 1 {
		return eris.Errorf("config: server.view_ttl_secs must be >= 1, got %d", c.Server.ViewTTLSecs)
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
