package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Favorites is the favorites store as seen by the API.
type Favorites interface {
	Toggle(ctx context.Context, city string) bool
	Remove(ctx context.Context, city string) bool
	IsFavorite(city string) bool
	List() []string
}

// Tiles fetches map overlay tiles.
type Tiles interface {
	Fetch(ctx context.Context, layer string, t domain.Tile) ([]byte, string, error)
}

// Services are the collaborators behind the API routes.
type Services struct {
	Weather   domain.WeatherProvider
	Favorites Favorites
	Tiles     Tiles
	Ready     sharedobs.ReadinessChecker
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	services   Services
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api and /tiles routes and the
// /healthz, /readyz, and /metrics routes. Browser requests from corsOrigins
// are allowed.
func NewServer(addr string, services Services, corsOrigins []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr: addr,
			Handler: cors.New(cors.Options{
				AllowedOrigins: corsOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         300,
			}).Handler(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		services: services,
		logger:   logger,
	}

	mux.HandleFunc("GET /api/weather", s.handleWeather)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/forecast/daily", s.handleDailyForecast)
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/nearby", s.handleNearby)
	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("GET /api/favorites/{city}", s.handleGetFavorite)
	mux.HandleFunc("POST /api/favorites/{city}/toggle", s.handleToggleFavorite)
	mux.HandleFunc("DELETE /api/favorites/{city}", s.handleRemoveFavorite)
	mux.HandleFunc("GET /api/layers", s.handleLayers)
	mux.HandleFunc("GET /tiles/{layer}/{z}/{x}/{y}", s.handleTile)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(services.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
