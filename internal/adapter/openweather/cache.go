package openweather

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// CachedProvider wraps a WeatherProvider with a cache keyed by query. Entries
// stay fresh for the configured TTL; errors and empty results are not cached.
// Callers always receive their own copy of cached slices.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *cache.Cache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.WeatherProvider, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   cache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedProvider) CurrentWeather(ctx context.Context, city string) (domain.Snapshot, error) {
	return lookup(c, endpointWeather, "weather:"+city, func() (domain.Snapshot, error) {
		return c.inner.CurrentWeather(ctx, city)
	}, func(s domain.Snapshot) bool { return s.City != "" }, nil)
}

func (c *CachedProvider) Forecast(ctx context.Context, city string) (domain.Forecast, error) {
	return lookup(c, endpointForecast, "forecast:"+city, func() (domain.Forecast, error) {
		return c.inner.Forecast(ctx, city)
	}, func(f domain.Forecast) bool { return len(f.Entries) > 0 }, cloneForecast)
}

func (c *CachedProvider) CitySuggestions(ctx context.Context, prefix string) ([]domain.CitySuggestion, error) {
	return lookup(c, endpointSuggest, "suggest:"+prefix, func() ([]domain.CitySuggestion, error) {
		return c.inner.CitySuggestions(ctx, prefix)
	}, func(s []domain.CitySuggestion) bool { return len(s) > 0 }, slices.Clone[[]domain.CitySuggestion])
}

func (c *CachedProvider) NearbyCities(ctx context.Context, at domain.Coord, count int, exclude string) ([]domain.NearbyCity, error) {
	key := fmt.Sprintf("nearby:%.4f,%.4f|%d|%s", at.Lat, at.Lon, count, exclude)
	return lookup(c, endpointNearby, key, func() ([]domain.NearbyCity, error) {
		return c.inner.NearbyCities(ctx, at, count, exclude)
	}, func(n []domain.NearbyCity) bool { return len(n) > 0 }, slices.Clone[[]domain.NearbyCity])
}

// Flush drops every cached entry.
func (c *CachedProvider) Flush() {
	c.cache.Flush()
}

// lookup serves key from the cache or fetches and stores it. A non-nil clone
// copies values on the way in and out so the cached entry is never shared.
func lookup[T any](c *CachedProvider, endpoint, key string, fetch func() (T, error), keep func(T) bool, clone func(T) T) (T, error) {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if v, ok := c.cache.Get(key); ok {
		if result, ok := v.(T); ok {
			c.metrics.QueryCache.WithLabelValues(endpoint, "hit").Inc()
			return clone(result), nil
		}
	}
	c.metrics.QueryCache.WithLabelValues(endpoint, "miss").Inc()

	result, err := fetch()
	if err != nil {
		return result, err
	}
	if keep(result) {
		c.cache.SetDefault(key, clone(result))
	}
	return result, nil
}

func cloneForecast(f domain.Forecast) domain.Forecast {
	f.Entries = slices.Clone(f.Entries)
	return f
}

var _ domain.WeatherProvider = (*CachedProvider)(nil)
