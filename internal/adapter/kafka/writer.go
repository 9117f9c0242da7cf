package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/uscrn-etl/internal/config"
	"github.com/couchcryptid/uscrn-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// maxBatchBytes leaves room for a full year of hourly rows in one message.
const maxBatchBytes = 16 << 20

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes one message per station and year to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Compression:  kafkago.Snappy,
		BatchBytes:   maxBatchBytes,
	}
	return &Writer{writer: w, logger: logger}
}

// Save publishes every station dataset in data in a single WriteMessages call.
// Messages are keyed "year/station" so a station's history stays on one
// partition.
func (w *Writer) Save(ctx context.Context, data domain.AllYearsData) error {
	msgs, err := serializeToMessages(data)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: write %d messages: %w", domain.ErrPersistence, len(msgs), err)
	}
	w.logger.Info("station datasets published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessages marshals each station dataset into a Kafka message,
// ordered by year and then station label.
func serializeToMessages(data domain.AllYearsData) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, year := range data.Years() {
		stations := data[year]
		for _, label := range stations.Labels() {
			ds := stations[label]
			value, err := json.Marshal(ds)
			if err != nil {
				return nil, fmt.Errorf("serialize %s/%s: %w", year, label, err)
			}
			msgs = append(msgs, kafkago.Message{
				Key:   []byte(year + "/" + label),
				Value: value,
				Headers: []kafkago.Header{
					{Key: "year", Value: []byte(year)},
					{Key: "station", Value: []byte(label)},
					{Key: "rows", Value: []byte(strconv.Itoa(ds.Rows()))},
				},
			})
		}
	}
	return msgs, nil
}
