// Package favorites keeps the ordered list of cities the user has starred.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// StorageKey is the key-value entry holding the JSON-encoded list.
const StorageKey = "favourites"

// KV persists the list between runs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Publisher announces list changes to other consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.FavoritesChanged) error
}

// Store is an ordered set of city names. It is safe for concurrent use.
// Persistence and publishing are best effort: failures are logged and
// counted but never surface to callers. They run outside the list lock,
// so a slow key-value store or broker never delays readers.
type Store struct {
	mu     sync.RWMutex
	cities []string
	seq    uint64

	// effects orders side effects by mutation sequence.
	effects sync.Mutex
	turn    *sync.Cond
	applied uint64

	kv        KV
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a store, loading any list previously saved in kv. kv and
// publisher may be nil for a purely in-memory store.
func New(ctx context.Context, kv KV, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Store {
	s := &Store{
		cities:    []string{},
		kv:        kv,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
	s.turn = sync.NewCond(&s.effects)
	if kv != nil {
		s.cities = s.load(ctx)
	}
	s.metrics.FavoritesCount.Set(float64(len(s.cities)))
	return s
}

// mutation is a committed change awaiting its side effects.
type mutation struct {
	seq    uint64
	city   string
	action domain.FavoriteAction
	cities []string
}

// Toggle adds city when absent and removes it when present. It reports
// whether city is a favorite afterwards. A blank city is ignored.
func (s *Store) Toggle(ctx context.Context, city string) bool {
	if strings.TrimSpace(city) == "" {
		return false
	}

	s.mu.Lock()
	action := domain.FavoriteAdded
	if slices.Contains(s.cities, city) {
		s.cities = without(s.cities, city)
		action = domain.FavoriteRemoved
	} else {
		s.cities = append(s.cities, city)
	}
	m := s.commit(city, action)
	s.mu.Unlock()

	s.changed(ctx, m)
	return action == domain.FavoriteAdded
}

// Remove drops city from the list. It reports whether anything was removed.
func (s *Store) Remove(ctx context.Context, city string) bool {
	if strings.TrimSpace(city) == "" {
		return false
	}

	s.mu.Lock()
	if !slices.Contains(s.cities, city) {
		s.mu.Unlock()
		return false
	}
	s.cities = without(s.cities, city)
	m := s.commit(city, domain.FavoriteRemoved)
	s.mu.Unlock()

	s.changed(ctx, m)
	return true
}

// IsFavorite reports exact-match membership.
func (s *Store) IsFavorite(city string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.cities, city)
}

// List returns a copy of the favorites in insertion order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cities)
}

// commit snapshots the list after a mutation. Callers hold s.mu.
func (s *Store) commit(city string, action domain.FavoriteAction) mutation {
	s.seq++
	return mutation{seq: s.seq, city: city, action: action, cities: slices.Clone(s.cities)}
}

// changed runs the side effects of m once every earlier mutation has run
// its own, so writes reach the store and the feed in mutation order.
func (s *Store) changed(ctx context.Context, m mutation) {
	s.effects.Lock()
	defer s.effects.Unlock()
	for s.applied != m.seq-1 {
		s.turn.Wait()
	}
	defer func() {
		s.applied = m.seq
		s.turn.Broadcast()
	}()

	s.metrics.FavoriteToggles.WithLabelValues(string(m.action)).Inc()
	s.metrics.FavoritesCount.Set(float64(len(m.cities)))
	s.logger.Debug("favorites changed", "city", m.city, "action", m.action, "count", len(m.cities))

	s.persist(ctx, m.cities)
	s.publish(ctx, domain.FavoritesChanged{
		ID:        uuid.NewString(),
		City:      m.city,
		Action:    m.action,
		Favorites: m.cities,
		ChangedAt: domain.Now().UTC(),
	})
}

func (s *Store) persist(ctx context.Context, cities []string) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(cities)
	if err == nil {
		err = s.kv.Put(ctx, StorageKey, data)
	}
	if err != nil {
		s.metrics.PersistErrors.Inc()
		s.logger.Warn("failed to persist favorites", "error", err)
	}
}

func (s *Store) publish(ctx context.Context, event domain.FavoritesChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("failed to publish favorites change", "event_id", event.ID, "error", err)
	}
}

// load reads the saved list. Missing, unreadable, or malformed data yields an
// empty list; duplicates keep their first position.
func (s *Store) load(ctx context.Context) []string {
	data, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("failed to load favorites", "error", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	cities, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding stored favorites", "error", err)
		return []string{}
	}
	s.logger.Info("favorites loaded", "count", len(cities))
	return cities
}

func decode(data []byte) ([]string, error) {
	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedState, err)
	}

	out := make([]string, 0, len(stored))
	for _, c := range stored {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func without(cities []string, city string) []string {
	return slices.DeleteFunc(cities, func(c string) bool { return c == city })
}
