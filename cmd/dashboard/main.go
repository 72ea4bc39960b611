package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard/internal/adapter/openweather"
	"github.com/couchcryptid/weather-dashboard/internal/adapter/tiles"
	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/favorites"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/storage"
)

// kvStore is the favorites persistence backend.
type kvStore interface {
	favorites.KV
	sharedobs.ReadinessChecker
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Weather provider, optionally behind the query cache (CACHE_ENABLED / CACHE_TTL).
	var provider domain.WeatherProvider = openweather.NewClient(
		cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.OpenWeatherTimeout, metrics, logger)
	if cfg.CacheEnabled {
		provider = openweather.NewCachedProvider(provider, cfg.CacheTTL, metrics)
		logger.Info("query cache enabled", "ttl", cfg.CacheTTL)
	} else {
		logger.Info("query cache disabled")
	}

	// Favorites persistence: SQLite when FAVORITES_DB_PATH is set, memory otherwise.
	var kv kvStore
	if cfg.FavoritesDBPath != "" {
		db, err := storage.OpenSQLite(ctx, cfg.FavoritesDBPath, logger)
		if err != nil {
			logger.Error("failed to open favorites store", "path", cfg.FavoritesDBPath, "error", err)
			os.Exit(1)
		}
		kv = db
		logger.Info("favorites persisted to sqlite", "path", cfg.FavoritesDBPath)
	} else {
		kv = storage.NewMemoryKV()
		logger.Info("favorites kept in memory")
	}

	// Favorites change feed (FAVORITES_KAFKA_ENABLED).
	var (
		publisher favorites.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.FavoritesKafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("favorites change feed enabled", "topic", cfg.FavoritesTopic, "brokers", cfg.KafkaBrokers)
	}

	store := favorites.New(ctx, kv, publisher, logger, metrics)
	tileClient := tiles.NewClient(cfg.OpenWeatherAPIKey, cfg.TileBaseURL, cfg.OpenWeatherTimeout, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Services{
		Weather:   provider,
		Favorites: store,
		Tiles:     tileClient,
		Ready:     kv,
	}, cfg.CORSOrigins, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := kv.Close(); err != nil {
		logger.Error("favorites store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
