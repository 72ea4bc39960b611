package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// defaultNearbyCount matches the dashboard's nearby list.
const defaultNearbyCount = 6

type weatherResponse struct {
	domain.Snapshot
	Rounded domain.Rounded `json:"rounded"`
	IconURL string         `json:"icon_url,omitempty"`
}

// maxNearbyCount is the most results the upstream /find endpoint returns.
const maxNearbyCount = 50

type favoriteResponse struct {
	City     string `json:"city"`
	Favorite bool   `json:"favorite"`
}

type toggleResponse struct {
	City      string   `json:"city"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

type layerResponse struct {
	Name   domain.Layer `json:"name"`
	Legend string       `json:"legend"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	snap, err := s.services.Weather.CurrentWeather(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, weatherResponse{
		Snapshot: snap,
		Rounded:  snap.Rounded(),
		IconURL:  domain.IconURL(snap.Conditions.Icon, 2),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	f, err := s.services.Weather.Forecast(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) handleDailyForecast(w http.ResponseWriter, r *http.Request) {
	f, err := s.services.Weather.Forecast(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.SummarizeDays(f))
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	found, err := s.services.Weather.CitySuggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, found)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseFloat(q.Get("lat"), "lat")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lon, err := parseFloat(q.Get("lon"), "lon")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	count := defaultNearbyCount
	if raw := q.Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 || count > maxNearbyCount {
			s.writeError(w, r, fmt.Errorf("%w: count must be 1-%d", domain.ErrNoData, maxNearbyCount))
			return
		}
	}

	cities, err := s.services.Weather.NearbyCities(r.Context(), domain.Coord{Lat: lat, Lon: lon}, count, q.Get("exclude"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cities)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.favoriteList())
}

func (s *Server) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	sharedobs.WriteJSON(w, http.StatusOK, favoriteResponse{
		City:     city,
		Favorite: s.services.Favorites.IsFavorite(city),
	})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		s.writeError(w, r, fmt.Errorf("%w: city is required", domain.ErrNoData))
		return
	}
	now := s.services.Favorites.Toggle(r.Context(), city)
	sharedobs.WriteJSON(w, http.StatusOK, toggleResponse{
		City:      city,
		Favorite:  now,
		Favorites: s.favoriteList(),
	})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		s.writeError(w, r, fmt.Errorf("%w: city is required", domain.ErrNoData))
		return
	}
	s.services.Favorites.Remove(r.Context(), city)
	sharedobs.WriteJSON(w, http.StatusOK, s.favoriteList())
}

// favoriteList never returns nil so an empty list encodes as [].
func (s *Server) favoriteList() []string {
	if list := s.services.Favorites.List(); list != nil {
		return list
	}
	return []string{}
}

func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	layers := domain.Layers()
	out := make([]layerResponse, 0, len(layers))
	for _, l := range layers {
		out = append(out, layerResponse{Name: l, Legend: l.Legend()})
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	var tile domain.Tile
	for _, p := range []struct {
		name string
		dst  *int
	}{{"z", &tile.Z}, {"x", &tile.X}, {"y", &tile.Y}} {
		n, err := strconv.Atoi(strings.TrimSuffix(r.PathValue(p.name), ".png"))
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid tile %s", domain.ErrNoData, p.name))
			return
		}
		*p.dst = n
	}

	data, contentType, err := s.services.Tiles.Fetch(r.Context(), r.PathValue("layer"), tile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps domain errors to HTTP statuses: missing or invalid input is
// 400, upstream failures are 502, anything else is 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	var reqErr *domain.RequestError
	switch {
	case errors.Is(err, domain.ErrNoData):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.As(err, &reqErr):
		status = http.StatusBadGateway
		msg = reqErr.Message
	case errors.Is(err, domain.ErrRequestFailed):
		status = http.StatusBadGateway
		msg = "upstream request failed"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

func parseFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrNoData, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrNoData, name)
	}
	return v, nil
}
