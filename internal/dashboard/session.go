// Package dashboard drives the interactive weather view: a search fetches
// current conditions and the forecast concurrently, then the cities nearby.
// Only the newest search or suggestion query may update the view; older ones
// are cancelled and their results discarded.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

const (
	// NearbyCount is how many neighbouring cities a search shows.
	NearbyCount = 6

	// HourlyEntries is how many forecast steps the hourly strip shows.
	HourlyEntries = 8

	// MinSuggestLength is the shortest prefix that triggers suggestions.
	MinSuggestLength = 2
)

// ErrSuperseded is returned when a newer query replaced this one before it
// finished. The view is left untouched.
var ErrSuperseded = errors.New("superseded by a newer query")

// Status is the lifecycle of the view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// View is what the dashboard renders.
type View struct {
	Status     Status
	Query      string
	Generation uint64

	Current  domain.Snapshot
	Forecast domain.Forecast
	Hourly   []domain.ForecastEntry
	Days     []domain.DaySummary
	Nearby   []domain.NearbyCity
	Favorite bool

	// Err is set only when Status is StatusFailed.
	Err error
}

func (v View) clone() View {
	v.Forecast.Entries = slices.Clone(v.Forecast.Entries)
	v.Hourly = slices.Clone(v.Hourly)
	v.Days = slices.Clone(v.Days)
	v.Nearby = slices.Clone(v.Nearby)
	return v
}

// Favorites is the subset of the favorites store the session needs.
type Favorites interface {
	Toggle(ctx context.Context, city string) bool
	IsFavorite(city string) bool
	List() []string
}

// Session holds one user's view. It is safe for concurrent use.
type Session struct {
	provider  domain.WeatherProvider
	favorites Favorites
	logger    *slog.Logger
	metrics   *observability.Metrics

	search  generation
	suggest generation

	mu          sync.RWMutex
	view        View
	suggestions []domain.CitySuggestion
}

// New creates an idle session.
func New(provider domain.WeatherProvider, favorites Favorites, logger *slog.Logger, metrics *observability.Metrics) *Session {
	return &Session{
		provider:    provider,
		favorites:   favorites,
		logger:      logger,
		metrics:     metrics,
		view:        View{Status: StatusIdle},
		suggestions: []domain.CitySuggestion{},
	}
}

// View returns the committed view.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.clone()
}

// Suggestions returns a copy of the committed suggestion list.
func (s *Session) Suggestions() []domain.CitySuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.suggestions)
}

// Search loads weather for city and commits the result to the view. A search
// started while another is running cancels the older one, which then returns
// ErrSuperseded. Upstream failures produce a failed view and are returned.
func (s *Session) Search(ctx context.Context, city string) (View, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return s.View(), fmt.Errorf("%w: city is required", domain.ErrNoData)
	}

	ctx, id := s.search.begin(ctx)
	defer s.search.finish(id)

	s.commit(id, View{Status: StatusLoading, Query: city, Generation: id})
	s.logger.Debug("search started", "city", city, "generation", id)

	view := s.load(ctx, city)
	view.Generation = id
	if !s.commit(id, view) {
		s.metrics.StaleResults.WithLabelValues("search").Inc()
		s.logger.Debug("search result discarded", "city", city, "generation", id)
		return view, ErrSuperseded
	}
	if view.Status == StatusFailed {
		return view, view.Err
	}
	return view, nil
}

// load fetches everything a view needs. Current weather and the forecast run
// concurrently and both must succeed; nearby cities are optional.
func (s *Session) load(ctx context.Context, city string) View {
	var (
		current  domain.Snapshot
		forecast domain.Forecast
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.provider.CurrentWeather(gctx, city)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = s.provider.Forecast(gctx, city)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("search failed", "city", city, "error", err)
		return View{Status: StatusFailed, Query: city, Err: err}
	}

	nearby, err := s.provider.NearbyCities(ctx, current.Coord, NearbyCount, city)
	if err != nil {
		s.logger.Warn("nearby cities unavailable", "city", city, "error", err)
		nearby = []domain.NearbyCity{}
	}

	return View{
		Status:   StatusReady,
		Query:    city,
		Current:  current,
		Forecast: forecast,
		Hourly:   domain.Upcoming(forecast, HourlyEntries),
		Days:     domain.SummarizeDays(forecast),
		Nearby:   nearby,
		Favorite: s.favorites.IsFavorite(current.City),
	}
}

// commit stores view if id is still the newest search.
func (s *Session) commit(id uint64, view View) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.search.isCurrent(id) {
		return false
	}
	s.view = view
	return true
}

// Suggest looks up city names for an autocomplete prefix. Prefixes shorter
// than MinSuggestLength clear the list without a request.
func (s *Session) Suggest(ctx context.Context, prefix string) ([]domain.CitySuggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < MinSuggestLength {
		s.suggest.stop()
		s.setSuggestions([]domain.CitySuggestion{})
		return []domain.CitySuggestion{}, nil
	}

	ctx, id := s.suggest.begin(ctx)
	defer s.suggest.finish(id)

	found, err := s.provider.CitySuggestions(ctx, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.suggest.isCurrent(id) {
		s.metrics.StaleResults.WithLabelValues("suggest").Inc()
		return found, ErrSuperseded
	}
	if err != nil {
		s.suggestions = []domain.CitySuggestion{}
		return nil, err
	}
	s.suggestions = found
	return found, nil
}

func (s *Session) setSuggestions(list []domain.CitySuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = list
}

// ToggleFavorite flips city in the favorites store and refreshes the view's
// star when city is the one shown.
func (s *Session) ToggleFavorite(ctx context.Context, city string) bool {
	now := s.favorites.Toggle(ctx, city)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Status == StatusReady && s.view.Current.City == city {
		s.view.Favorite = now
	}
	return now
}

// Favorites returns the favorites in insertion order.
func (s *Session) Favorites() []string {
	return s.favorites.List()
}
