package openweather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

const (
	// suggestionLimit matches the dashboard's autocomplete list length.
	suggestionLimit = 5

	// defaultNearbyCount is used when callers pass a non-positive count.
	defaultNearbyCount = 5
	// maxNearbyCount is the largest cnt the /find endpoint accepts.
	maxNearbyCount = 50
)

// Endpoint names used in errors, logs, and metric labels.
const (
	endpointWeather  = "weather"
	endpointForecast = "forecast"
	endpointSuggest  = "suggest"
	endpointNearby   = "nearby"
)

// defaultMessages are reported when a failed response carries no body.
var defaultMessages = map[string]string{
	endpointWeather:  "Failed to fetch current weather",
	endpointForecast: "Failed to fetch forecast",
	endpointSuggest:  "Failed to fetch city suggestions",
	endpointNearby:   "Failed to fetch nearby cities",
}

// Client implements domain.WeatherProvider using the OpenWeatherMap API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. baseURL is the API host,
// e.g. https://api.openweathermap.org.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather returns the current conditions for a city name.
func (c *Client) CurrentWeather(ctx context.Context, city string) (domain.Snapshot, error) {
	if strings.TrimSpace(city) == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: city is required", domain.ErrNoData)
	}

	params := url.Values{
		"q":     {city},
		"units": {"metric"},
	}

	var resp currentResponse
	if err := c.get(ctx, endpointWeather, "/data/2.5/weather", params, &resp); err != nil {
		return domain.Snapshot{}, err
	}
	if err := resp.validate(); err != nil {
		c.observe(endpointWeather, "error")
		return domain.Snapshot{}, invalidResponse(endpointWeather, err)
	}
	c.observe(endpointWeather, "success")
	return resp.snapshot(), nil
}

// Forecast returns the 5 day / 3 hour forecast for a city name.
func (c *Client) Forecast(ctx context.Context, city string) (domain.Forecast, error) {
	if strings.TrimSpace(city) == "" {
		return domain.Forecast{}, fmt.Errorf("%w: city is required", domain.ErrNoData)
	}

	params := url.Values{
		"q":     {city},
		"units": {"metric"},
	}

	var resp forecastResponse
	if err := c.get(ctx, endpointForecast, "/data/2.5/forecast", params, &resp); err != nil {
		return domain.Forecast{}, err
	}
	if err := resp.validate(); err != nil {
		c.observe(endpointForecast, "error")
		return domain.Forecast{}, invalidResponse(endpointForecast, err)
	}
	c.observe(endpointForecast, outcome(len(resp.List)))
	return resp.forecast(), nil
}

// CitySuggestions returns up to five geocoding matches for a name prefix.
// An empty prefix yields an empty result without a request.
func (c *Client) CitySuggestions(ctx context.Context, prefix string) ([]domain.CitySuggestion, error) {
	if strings.TrimSpace(prefix) == "" {
		return []domain.CitySuggestion{}, nil
	}

	params := url.Values{
		"q":     {prefix},
		"limit": {strconv.Itoa(suggestionLimit)},
	}

	var resp []directResult
	if err := c.get(ctx, endpointSuggest, "/geo/1.0/direct", params, &resp); err != nil {
		return nil, err
	}
	out := suggestions(resp)
	c.observe(endpointSuggest, outcome(len(out)))
	return out, nil
}

// NearbyCities returns up to count cities around a coordinate. One extra
// city is requested so that dropping the excluded name still fills count.
// A zero coordinate yields an empty result without a request.
func (c *Client) NearbyCities(ctx context.Context, at domain.Coord, count int, exclude string) ([]domain.NearbyCity, error) {
	if at.IsZero() {
		return []domain.NearbyCity{}, nil
	}
	if count <= 0 {
		count = defaultNearbyCount
	}
	count = min(count, maxNearbyCount)

	params := url.Values{
		"lat":   {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"cnt":   {strconv.Itoa(min(count+1, maxNearbyCount))},
		"units": {"metric"},
	}

	var resp findResponse
	if err := c.get(ctx, endpointNearby, "/data/2.5/find", params, &resp); err != nil {
		return nil, err
	}
	out := domain.FilterNearby(resp.cities(), exclude, count)
	c.observe(endpointNearby, outcome(len(out)))
	return out, nil
}

// get issues a GET against path and decodes a 2xx JSON body into out.
// Non-2xx responses become *domain.RequestError; everything else that goes
// wrong is wrapped in domain.ErrRequestFailed.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: create request: %w", domain.ErrRequestFailed, endpoint, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.observe(endpoint, "error")
		return fmt.Errorf("%w: %s request: %w", domain.ErrRequestFailed, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		c.observe(endpoint, "error")
		reqErr := &domain.RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(endpoint, body),
		}
		c.logger.Debug("weather API error", "endpoint", endpoint, "status", resp.StatusCode, "message", reqErr.Message)
		return reqErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.observe(endpoint, "error")
		return fmt.Errorf("%w: %s: decode response: %w", domain.ErrRequestFailed, endpoint, err)
	}
	return nil
}

func (c *Client) observe(endpoint, result string) {
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, result).Inc()
}

// errorMessage prefers the JSON "message" field, then the raw body text,
// then a fixed per-endpoint default.
func errorMessage(endpoint string, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return defaultMessages[endpoint]
}

func invalidResponse(endpoint string, err error) error {
	return fmt.Errorf("%w: %s: invalid response: %w", domain.ErrRequestFailed, endpoint, err)
}

func outcome(n int) string {
	if n == 0 {
		return "empty"
	}
	return "success"
}

var _ domain.WeatherProvider = (*Client)(nil)
