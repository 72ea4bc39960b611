//go:build openweather

package openweather

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// Smoke tests against the real OpenWeatherMap API.
// Run with: OPENWEATHER_API_KEY=... go test -tags openweather ./internal/adapter/openweather/ -v

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		t.Skip("OPENWEATHER_API_KEY not set")
	}
	return NewClient(key, "https://api.openweathermap.org", 10*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_CurrentWeather(t *testing.T) {
	c := smokeClient(t)

	snap, err := c.CurrentWeather(context.Background(), "London")
	require.NoError(t, err)

	t.Logf("London: %.1f°C %s (%d%% humidity)", snap.Conditions.Temp, snap.Conditions.Description, snap.Conditions.Humidity)
	assert.Equal(t, "London", snap.City)
	assert.NotEmpty(t, snap.Conditions.Icon)
	assert.False(t, snap.ObservedAt.IsZero())
}

func TestSmoke_UnknownCity(t *testing.T) {
	c := smokeClient(t)

	_, err := c.CurrentWeather(context.Background(), "Qwxzqwxzqwxz")
	require.ErrorIs(t, err, domain.ErrRequestFailed)
	t.Logf("error: %v", err)
}

func TestSmoke_Forecast(t *testing.T) {
	c := smokeClient(t)

	f, err := c.Forecast(context.Background(), "Tokyo")
	require.NoError(t, err)
	require.NotEmpty(t, f.Entries)

	days := domain.SummarizeDays(f)
	t.Logf("Tokyo: %d entries over %d days", len(f.Entries), len(days))
	assert.LessOrEqual(t, len(days), 7)
}

func TestSmoke_SuggestionsAndNearby(t *testing.T) {
	c := smokeClient(t)

	suggestions, err := c.CitySuggestions(context.Background(), "Lon")
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	t.Logf("first suggestion: %s", suggestions[0].Label())

	nearby, err := c.NearbyCities(context.Background(), suggestions[0].Coord, 6, suggestions[0].Name)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(nearby), 6)
	for _, n := range nearby {
		t.Logf("nearby: %s (%.1f°C)", n.Name, n.Conditions.Temp)
	}
}
