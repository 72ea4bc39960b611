package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Coord is a WGS-84 latitude/longitude pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the coordinate is unset. The provider never places
// a city at exactly (0, 0), so that pair doubles as "missing".
func (c Coord) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Conditions is the numeric part of a reading, shared by current weather,
// forecast entries and nearby cities.
type Conditions struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Humidity    int     `json:"humidity"` // percent
	Pressure    int     `json:"pressure"` // hPa
	WindSpeed   float64 `json:"wind_speed"`
	WindDeg     int     `json:"wind_deg"`
	Cloudiness  int     `json:"cloudiness"` // percent
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Snapshot is a single point-in-time weather reading for a city.
type Snapshot struct {
	City       string        `json:"city"`
	Country    string        `json:"country,omitempty"`
	Coord      Coord         `json:"coord"`
	Conditions Conditions    `json:"conditions"`
	Visibility int           `json:"visibility,omitempty"` // metres
	ObservedAt time.Time     `json:"observed_at"`
	Sunrise    time.Time     `json:"sunrise,omitzero"`
	Sunset     time.Time     `json:"sunset,omitzero"`
	Timezone   time.Duration `json:"timezone"` // offset from UTC
}

// Rounded holds display values rounded the way the dashboard shows them.
type Rounded struct {
	Temp      int `json:"temp"`
	FeelsLike int `json:"feels_like"`
	High      int `json:"high"`
	Low       int `json:"low"`
	Humidity  int `json:"humidity"`
	Wind      int `json:"wind"`
}

// Rounded returns the snapshot's display values.
func (s Snapshot) Rounded() Rounded {
	return Rounded{
		Temp:      Round(s.Conditions.Temp),
		FeelsLike: Round(s.Conditions.FeelsLike),
		High:      Round(s.Conditions.TempMax),
		Low:       Round(s.Conditions.TempMin),
		Humidity:  s.Conditions.Humidity,
		Wind:      Round(s.Conditions.WindSpeed),
	}
}

// ForecastEntry is one time-stamped step of a forecast.
type ForecastEntry struct {
	Time       time.Time  `json:"time"`
	Conditions Conditions `json:"conditions"`
	PoP        float64    `json:"pop"` // probability of precipitation, 0-1
}

// Forecast is an ordered sequence of future readings for a city.
type Forecast struct {
	City     string          `json:"city"`
	Country  string          `json:"country,omitempty"`
	Coord    Coord           `json:"coord"`
	Timezone time.Duration   `json:"timezone"`
	Entries  []ForecastEntry `json:"entries"`
}

// CitySuggestion is a geocoding match for a partial city name.
type CitySuggestion struct {
	Name    string `json:"name"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
	Coord   Coord  `json:"coord"`
}

// Label formats the suggestion as "Name, State, Country", skipping empty parts.
func (s CitySuggestion) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Name, s.State, s.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// NearbyCity is a city found around a coordinate together with its current reading.
type NearbyCity struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Country    string     `json:"country,omitempty"`
	Coord      Coord      `json:"coord"`
	Conditions Conditions `json:"conditions"`
}

// WeatherProvider fetches weather data for the dashboard.
type WeatherProvider interface {
	// CurrentWeather returns the current reading for a city.
	CurrentWeather(ctx context.Context, city string) (Snapshot, error)

	// Forecast returns the multi-step forecast for a city.
	Forecast(ctx context.Context, city string) (Forecast, error)

	// CitySuggestions returns geocoding matches for a name prefix.
	CitySuggestions(ctx context.Context, prefix string) ([]CitySuggestion, error)

	// NearbyCities returns up to count cities around a coordinate, excluding
	// any named exclude (case-insensitive).
	NearbyCities(ctx context.Context, at Coord, count int, exclude string) ([]NearbyCity, error)
}

// FilterNearby drops cities named exclude (case-insensitive) and truncates
// the result to count entries. Order is preserved.
func FilterNearby(cities []NearbyCity, exclude string, count int) []NearbyCity {
	if count <= 0 {
		return []NearbyCity{}
	}
	out := make([]NearbyCity, 0, min(len(cities), count))
	for _, c := range cities {
		if exclude != "" && strings.EqualFold(c.Name, exclude) {
			continue
		}
		out = append(out, c)
		if len(out) == count {
			break
		}
	}
	return out
}

// Round rounds half-up: Round(2.5) == 3, Round(-2.5) == -2.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// IconURL returns the provider image URL for an icon code at the given
// scale (1, 2 or 4). Scale 1 uses the unsuffixed image.
func IconURL(icon string, scale int) string {
	if icon == "" {
		return ""
	}
	if scale <= 1 {
		return fmt.Sprintf("https://openweathermap.org/img/wn/%s.png", icon)
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@%dx.png", icon, scale)
}
