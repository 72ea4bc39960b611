package openweather

import (
	"errors"
	"time"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// OpenWeatherMap API response types. Only the fields the dashboard uses are
// decoded; everything else in the payload is ignored.

type coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type clouds struct {
	All int `json:"all"`
}

// reading is the block shared by /weather, /forecast list items and /find list items.
type reading struct {
	Main    mainBlock   `json:"main"`
	Weather []condition `json:"weather"`
	Wind    wind        `json:"wind"`
	Clouds  clouds      `json:"clouds"`
	Dt      int64       `json:"dt"`
}

func (r reading) conditions() domain.Conditions {
	c := domain.Conditions{
		Temp:       r.Main.Temp,
		FeelsLike:  r.Main.FeelsLike,
		TempMin:    r.Main.TempMin,
		TempMax:    r.Main.TempMax,
		Humidity:   r.Main.Humidity,
		Pressure:   r.Main.Pressure,
		WindSpeed:  r.Wind.Speed,
		WindDeg:    r.Wind.Deg,
		Cloudiness: r.Clouds.All,
	}
	if len(r.Weather) > 0 {
		c.Description = r.Weather[0].Description
		c.Icon = r.Weather[0].Icon
	}
	return c
}

// currentResponse is the /data/2.5/weather payload.
type currentResponse struct {
	reading
	Coord      coord  `json:"coord"`
	Visibility int    `json:"visibility"`
	Timezone   int    `json:"timezone"`
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

func (r currentResponse) validate() error {
	if r.Name == "" {
		return errors.New("missing city name")
	}
	if len(r.Weather) == 0 {
		return errors.New("missing weather conditions")
	}
	if r.Dt == 0 {
		return errors.New("missing observation time")
	}
	return nil
}

func (r currentResponse) snapshot() domain.Snapshot {
	return domain.Snapshot{
		City:       r.Name,
		Country:    r.Sys.Country,
		Coord:      domain.Coord{Lat: r.Coord.Lat, Lon: r.Coord.Lon},
		Conditions: r.conditions(),
		Visibility: r.Visibility,
		ObservedAt: unixUTC(r.Dt),
		Sunrise:    unixUTC(r.Sys.Sunrise),
		Sunset:     unixUTC(r.Sys.Sunset),
		Timezone:   time.Duration(r.Timezone) * time.Second,
	}
}

// forecastResponse is the /data/2.5/forecast payload.
type forecastResponse struct {
	List []struct {
		reading
		Pop float64 `json:"pop"`
	} `json:"list"`
	City struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Coord    coord  `json:"coord"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func (r forecastResponse) validate() error {
	if r.City.Name == "" {
		return errors.New("missing city")
	}
	for i, item := range r.List {
		if item.Dt == 0 {
			return errors.New("forecast entry without time")
		}
		if i > 0 && item.Dt < r.List[i-1].Dt {
			return errors.New("forecast entries out of order")
		}
	}
	return nil
}

func (r forecastResponse) forecast() domain.Forecast {
	f := domain.Forecast{
		City:     r.City.Name,
		Country:  r.City.Country,
		Coord:    domain.Coord{Lat: r.City.Coord.Lat, Lon: r.City.Coord.Lon},
		Timezone: time.Duration(r.City.Timezone) * time.Second,
		Entries:  make([]domain.ForecastEntry, 0, len(r.List)),
	}
	for _, item := range r.List {
		f.Entries = append(f.Entries, domain.ForecastEntry{
			Time:       unixUTC(item.Dt),
			Conditions: item.conditions(),
			PoP:        item.Pop,
		})
	}
	return f
}

// directResult is one item of the /geo/1.0/direct payload (a bare JSON array).
type directResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func suggestions(results []directResult) []domain.CitySuggestion {
	out := make([]domain.CitySuggestion, 0, len(results))
	for _, r := range results {
		if r.Name == "" {
			continue
		}
		out = append(out, domain.CitySuggestion{
			Name:    r.Name,
			State:   r.State,
			Country: r.Country,
			Coord:   domain.Coord{Lat: r.Lat, Lon: r.Lon},
		})
	}
	return out
}

// findResponse is the /data/2.5/find payload.
type findResponse struct {
	List []struct {
		reading
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Coord coord  `json:"coord"`
		Sys   struct {
			Country string `json:"country"`
		} `json:"sys"`
	} `json:"list"`
}

func (r findResponse) cities() []domain.NearbyCity {
	out := make([]domain.NearbyCity, 0, len(r.List))
	for _, item := range r.List {
		if item.Name == "" {
			continue
		}
		out = append(out, domain.NearbyCity{
			ID:         item.ID,
			Name:       item.Name,
			Country:    item.Sys.Country,
			Coord:      domain.Coord{Lat: item.Coord.Lat, Lon: item.Coord.Lon},
			Conditions: item.conditions(),
		})
	}
	return out
}

// errorResponse is the body OpenWeatherMap sends with non-2xx statuses,
// e.g. {"cod":"404","message":"city not found"}.
type errorResponse struct {
	Message string `json:"message"`
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
