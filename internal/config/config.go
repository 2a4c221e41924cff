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
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Overpass     OverpassConfig     `yaml:"overpass" mapstructure:"overpass"`
	Census       CensusConfig       `yaml:"census" mapstructure:"census"`
	Yelp         YelpConfig         `yaml:"yelp" mapstructure:"yelp"`
	PopularTimes PopularTimesConfig `yaml:"popular_times" mapstructure:"popular_times"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the signal cache backend.
type CacheConfig struct {
	// Driver selects the backend: memory, sqlite, or postgres.
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxEntries  int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// OverpassConfig configures the OpenStreetMap Overpass client.
type OverpassConfig struct {
	BaseURL             string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec      float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	POIRadiusMeters     int     `yaml:"poi_radius_meters" mapstructure:"poi_radius_meters"`
	TransitRadiusMeters int     `yaml:"transit_radius_meters" mapstructure:"transit_radius_meters"`
}

// CensusConfig configures the Census ACS client.
type CensusConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// YelpConfig configures the optional Yelp Fusion client.
type YelpConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PopularTimesConfig configures the popular-times lookup.
type PopularTimesConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ScoringConfig configures engine behavior.
type ScoringConfig struct {
	// ProfileOverrides points at an optional YAML file adjusting
	// category weights and benchmarks.
	ProfileOverrides string `yaml:"profile_overrides" mapstructure:"profile_overrides"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("VENDSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "vendscout-cache.db")
	v.SetDefault("cache.max_entries", 50000)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("overpass.requests_per_sec", 1)
	v.SetDefault("overpass.poi_radius_meters", 800)
	v.SetDefault("overpass.transit_radius_meters", 2000)
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.timeout_secs", 15)
	v.SetDefault("yelp.base_url", "https://api.yelp.com/v3")
	v.SetDefault("yelp.timeout_secs", 10)
	v.SetDefault("popular_times.timeout_secs", 20)
	v.SetDefault("popular_times.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	v.SetDefault("scoring.fetch_timeout_secs", 15)
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
