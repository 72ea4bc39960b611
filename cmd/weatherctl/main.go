// Command weatherctl is an interactive terminal dashboard. Each line typed
// is a city search; a newer search cancels one still in flight. Lines
// starting with ':' are commands:
//
//	:fav [city]   toggle a favorite (defaults to the city shown)
//	:favs         list favorites
//	:s <prefix>   city suggestions (at least two characters)
//	:quit         exit
//
// Usage:
//
//	OPENWEATHER_API_KEY=... go run ./cmd/weatherctl -city London -db favorites.db -refresh 5m
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/openweather"
	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/favorites"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/storage"
)

func main() {
	city := flag.String("city", "", "city to show on start")
	dbPath := flag.String("db", "", "SQLite file for favorites (default FAVORITES_DB_PATH, else memory)")
	refresh := flag.Duration("refresh", 0, "re-run the last search at this interval (0 disables)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: failed to load .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = cfg.FavoritesDBPath
	}

	// Logs go to stderr so they do not interleave with the dashboard output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cfg.LogLevel == "debug" {
		logger = sharedobs.NewLogger(cfg.LogLevel, "text")
	}
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider domain.WeatherProvider = openweather.NewClient(
		cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.OpenWeatherTimeout, metrics, logger)
	if cfg.CacheEnabled {
		provider = openweather.NewCachedProvider(provider, cfg.CacheTTL, metrics)
	}

	var kv favorites.KV = storage.NewMemoryKV()
	if *dbPath != "" {
		db, err := storage.OpenSQLite(ctx, *dbPath, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer db.Close()
		kv = db
	}

	store := favorites.New(ctx, kv, nil, logger, metrics)
	session := dashboard.New(provider, store, logger, metrics)

	c := newConsole(session, os.Stdout)
	refreshCtx, stopRefresh := context.WithCancel(ctx)
	if *refresh > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.refreshEvery(refreshCtx, *refresh)
		}()
	}
	if *city != "" {
		c.search(ctx, *city)
	}
	c.run(ctx, os.Stdin)
	stopRefresh()
	c.wait()
}
