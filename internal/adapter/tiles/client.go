// Package tiles proxies OpenWeatherMap weather-layer map tiles so the API
// key never reaches the browser.
package tiles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// maxTileBytes bounds a single tile download; OWM tiles are 256x256 PNGs.
const maxTileBytes = 1 << 20

// Client fetches raster tiles for the weather layers.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a tile client. baseURL is the tile root, e.g.
// https://tile.openweathermap.org/map.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// URL returns the upstream address of a tile, including the API key.
func (c *Client) URL(layer domain.Layer, t domain.Tile) string {
	return fmt.Sprintf("%s/%s/%d/%d/%d.png?%s",
		c.baseURL, layer.ProviderName(), t.Z, t.X, t.Y, url.Values{"appid": {c.apiKey}}.Encode())
}

// Fetch downloads a tile and returns its bytes and content type. Unknown
// layers and out-of-range tiles return domain.ErrNoData without a request.
func (c *Client) Fetch(ctx context.Context, layerName string, t domain.Tile) ([]byte, string, error) {
	layer, err := domain.ParseLayer(layerName)
	if err != nil {
		c.metrics.TileRequests.WithLabelValues("unknown", "invalid").Inc()
		return nil, "", err
	}
	if err := t.Validate(); err != nil {
		c.metrics.TileRequests.WithLabelValues(string(layer), "invalid").Inc()
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(layer, t), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: tile: create request: %w", domain.ErrRequestFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.TileRequests.WithLabelValues(string(layer), "error").Inc()
		return nil, "", fmt.Errorf("%w: tile request: %w", domain.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.TileRequests.WithLabelValues(string(layer), "error").Inc()
		c.logger.Debug("tile fetch failed", "layer", layer, "z", t.Z, "x", t.X, "y", t.Y, "status", resp.StatusCode)
		return nil, "", &domain.RequestError{
			Endpoint:   "tile",
			StatusCode: resp.StatusCode,
			Message:    "Failed to fetch map tile",
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		c.metrics.TileRequests.WithLabelValues(string(layer), "error").Inc()
		return nil, "", fmt.Errorf("%w: tile: read body: %w", domain.ErrRequestFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	c.metrics.TileRequests.WithLabelValues(string(layer), "success").Inc()
	return data, contentType, nil
}
