package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// OpenWeatherMap configuration.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTimeout time.Duration
	TileBaseURL        string

	// Query cache configuration.
	CacheEnabled bool
	CacheTTL     time.Duration

	// Favorites persistence. An empty path keeps favorites in memory only.
	FavoritesDBPath string

	// Favorites change feed.
	FavoritesKafkaEnabled bool
	KafkaBrokers          []string
	FavoritesTopic        string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	owmTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     parseList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"), "/"),
		OpenWeatherTimeout: owmTimeout,
		TileBaseURL:        strings.TrimRight(sharedcfg.EnvOrDefault("TILE_BASE_URL", "https://tile.openweathermap.org/map"), "/"),

		CacheEnabled: parseBool("CACHE_ENABLED", true),
		CacheTTL:     cacheTTL,

		FavoritesDBPath: os.Getenv("FAVORITES_DB_PATH"),

		FavoritesKafkaEnabled: parseBool("FAVORITES_KAFKA_ENABLED", false),
		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		FavoritesTopic:        sharedcfg.EnvOrDefault("FAVORITES_TOPIC", "dashboard-favorites"),
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.FavoritesKafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("FAVORITES_KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.FavoritesTopic == "" {
			return nil, errors.New("FAVORITES_TOPIC is required when FAVORITES_KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) bool {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return def
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
