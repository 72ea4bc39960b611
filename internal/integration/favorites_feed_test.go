//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/favorites"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/storage"
)

const testFavoritesTopic = "test-favorites"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("weather-dashboard-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a compacted single-partition topic through the controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		ConfigEntries: []kafkago.ConfigEntry{
			{ConfigName: "cleanup.policy", ConfigValue: "compact"},
		},
	}))
}

// changeMessage holds a deserialized message read from the favorites topic.
type changeMessage struct {
	Event   domain.FavoritesChanged
	Key     string
	Headers map[string]string
}

func readChange(ctx context.Context, t *testing.T, consumer *kafkago.Reader) changeMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from favorites topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.FavoritesChanged
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal favorites change")

	return changeMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestFavoritesFeed toggles favorites on a SQLite-backed store wired to the
// Kafka writer, then checks both the change feed and the persisted list.
func TestFavoritesFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFavoritesTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		FavoritesTopic: testFavoritesTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	dbPath := filepath.Join(t.TempDir(), "favorites.db")
	kv, err := storage.OpenSQLite(ctx, dbPath, discardLogger())
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	store := favorites.New(ctx, kv, writer, discardLogger(), metrics)

	assert.True(t, store.Toggle(ctx, "London"))
	assert.True(t, store.Toggle(ctx, "Paris"))
	assert.False(t, store.Toggle(ctx, "London"))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testFavoritesTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readChange(ctx, t, consumer)
	assert.Equal(t, favorites.StorageKey, first.Key)
	assert.Equal(t, "London", first.Event.City)
	assert.Equal(t, domain.FavoriteAdded, first.Event.Action)
	assert.Equal(t, "added", first.Headers["action"])
	assert.Equal(t, first.Event.ID, first.Headers["event_id"])

	second := readChange(ctx, t, consumer)
	assert.Equal(t, []string{"London", "Paris"}, second.Event.Favorites)

	third := readChange(ctx, t, consumer)
	assert.Equal(t, domain.FavoriteRemoved, third.Event.Action)
	assert.Equal(t, []string{"Paris"}, third.Event.Favorites)
	assert.Equal(t, favorites.StorageKey, third.Key, "every change shares the compaction key")

	// Reopen the database: the store must come back with the same list.
	require.NoError(t, kv.Close())
	reopened, err := storage.OpenSQLite(ctx, dbPath, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	restored := favorites.New(ctx, reopened, nil, discardLogger(), observability.NewMetricsForTesting())
	assert.Equal(t, []string{"Paris"}, restored.List())
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublishErrors), 0)
}
