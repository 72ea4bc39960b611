package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/favorites"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes favorites changes to a Kafka topic.
// It implements favorites.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured favorites topic.
// Every message carries the same key, so a compacted topic retains only the
// latest list.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.FavoritesTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes a single change event.
func (w *Writer) Publish(ctx context.Context, event domain.FavoritesChanged) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish favorites change %s: %w", event.ID, err)
	}
	w.logger.Debug("favorites change published", "event_id", event.ID, "action", event.Action)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FavoritesChanged event into a Kafka message.
func serializeToMessage(event domain.FavoritesChanged) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize favorites change: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(favorites.StorageKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "changed_at", Value: []byte(event.ChangedAt.Format(time.RFC3339))},
		},
	}, nil
}

var _ favorites.Publisher = (*Writer)(nil)
