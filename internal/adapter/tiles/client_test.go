package tiles

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func testClient(baseURL string) *Client {
	return NewClient("test-key", baseURL, 5*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestURL(t *testing.T) {
	c := testClient("https://tile.openweathermap.org/map/")

	got := c.URL(domain.LayerTemperature, domain.Tile{Z: 3, X: 4, Y: 2})
	assert.Equal(t, "https://tile.openweathermap.org/map/temp_new/3/4/2.png?appid=test-key", got)

	got = c.URL(domain.LayerPressure, domain.Tile{})
	assert.Equal(t, "https://tile.openweathermap.org/map/pressure_new/0/0/0.png?appid=test-key", got)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wind_new/2/1/3.png", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngMagic)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	data, contentType, err := c.Fetch(context.Background(), "wind", domain.Tile{Z: 2, X: 1, Y: 3})
	require.NoError(t, err)

	assert.Equal(t, pngMagic, data)
	assert.Equal(t, "image/png", contentType)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.TileRequests.WithLabelValues("wind", "success")), 0)
}

func TestFetch_InvalidInputSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	c := testClient(srv.URL)

	tests := []struct {
		name  string
		layer string
		tile  domain.Tile
	}{
		{"unknown layer", "clouds", domain.Tile{Z: 1}},
		{"negative zoom", "temp", domain.Tile{Z: -1}},
		{"zoom too deep", "temp", domain.Tile{Z: domain.MaxZoom + 1}},
		{"x outside grid", "temp", domain.Tile{Z: 2, X: 4, Y: 0}},
		{"negative y", "wind", domain.Tile{Z: 2, X: 0, Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.Fetch(context.Background(), tt.layer, tt.tile)
			require.ErrorIs(t, err, domain.ErrNoData)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).Fetch(context.Background(), "temp", domain.Tile{Z: 0})
	require.ErrorIs(t, err, domain.ErrRequestFailed)

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
}

func TestFetch_Any2xxSucceeds(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNonAuthoritativeInfo, http.StatusPartialContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				w.WriteHeader(status)
				_, _ = w.Write(pngMagic)
			}))
			defer srv.Close()

			body, _, err := testClient(srv.URL).Fetch(context.Background(), "wind", domain.Tile{Z: 2, X: 1, Y: 1})
			require.NoError(t, err)
			assert.Equal(t, pngMagic, body)
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
	}))
	defer srv.Close()
	_, _, err := testClient(srv.URL).Fetch(context.Background(), "wind", domain.Tile{Z: 2, X: 1, Y: 1})
	require.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestFetch_DefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(pngMagic)
	}))
	defer srv.Close()

	_, contentType, err := testClient(srv.URL).Fetch(context.Background(), "pressure", domain.Tile{Z: 1, X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}
