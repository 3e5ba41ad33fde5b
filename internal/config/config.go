package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends for the distance matrix client.
const (
	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

// Config stores all configuration of the service.
// Values are read by viper from an optional app.env file and the environment.
type Config struct {
	HTTPServerAddress string `mapstructure:"HTTP_SERVER_ADDRESS"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	RedisAddress      string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`

	GoogleAPIKey              string        `mapstructure:"GOOGLE_API_KEY"`
	DistanceMatrixURL         string        `mapstructure:"DISTANCE_MATRIX_URL"`
	DistanceMatrixUnits       string        `mapstructure:"DISTANCE_MATRIX_UNITS"`
	DistanceMatrixMaxElements int           `mapstructure:"DISTANCE_MATRIX_MAX_ELEMENTS"`
	DistanceMatrixTimeout     time.Duration `mapstructure:"DISTANCE_MATRIX_TIMEOUT"`
	DistanceMatrixQPS         float64       `mapstructure:"DISTANCE_MATRIX_QPS"`
	DistanceCache             string        `mapstructure:"DISTANCE_CACHE"`
	DistanceCacheTTL          time.Duration `mapstructure:"DISTANCE_CACHE_TTL"`

	Depot             string `mapstructure:"DEPOT"`
	MaxTimeLimit      int    `mapstructure:"MAX_TIME_LIMIT"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	SeedPath  string `mapstructure:"SEED_PATH"`
}

var defaults = map[string]any{
	"HTTP_SERVER_ADDRESS":          ":8080",
	"DATABASE_URL":                 "",
	"REDIS_ADDRESS":                "localhost:6379",
	"REDIS_PASSWORD":               "",
	"GOOGLE_API_KEY":               "",
	"DISTANCE_MATRIX_URL":          "https://maps.googleapis.com/maps/api/distancematrix/json",
	"DISTANCE_MATRIX_UNITS":        "imperial",
	"DISTANCE_MATRIX_MAX_ELEMENTS": 100,
	"DISTANCE_MATRIX_TIMEOUT":      "10s",
	"DISTANCE_MATRIX_QPS":          10.0,
	"DISTANCE_CACHE":               CacheRedis,
	"DISTANCE_CACHE_TTL":           "168h",
	"DEPOT":                        "LS2 9JT",
	"MAX_TIME_LIMIT":               3600,
	"WORKER_CONCURRENCY":           4,
	"LOG_LEVEL":                    "info",
	"LOG_FORMAT":                   "json",
	"SEED_PATH":                    "data/seeds/fixtures.yaml",
}

// Load reads configuration from path/app.env (if present) and environment variables.
// Environment variables take precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("load config: read app.env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.RedisPassword = trimOptionalQuotes(cfg.RedisPassword)
	cfg.GoogleAPIKey = trimOptionalQuotes(cfg.GoogleAPIKey)
	cfg.DistanceCache = strings.ToLower(strings.TrimSpace(cfg.DistanceCache))

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.DistanceMatrixMaxElements <= 0 {
		return fmt.Errorf("DISTANCE_MATRIX_MAX_ELEMENTS must be positive, got %d", c.DistanceMatrixMaxElements)
	}
	if c.MaxTimeLimit <= 0 {
		return fmt.Errorf("MAX_TIME_LIMIT must be positive, got %d", c.MaxTimeLimit)
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.WorkerConcurrency)
	}
	if strings.TrimSpace(c.Depot) == "" {
		return errors.New("DEPOT is required")
	}
	switch c.DistanceCache {
	case CacheRedis, CachePostgres, CacheNone:
	default:
		return fmt.Errorf("DISTANCE_CACHE must be one of redis, postgres, none; got %q", c.DistanceCache)
	}
	return nil
}

func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
