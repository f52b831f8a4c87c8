package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaBroadcaster struct {
	writer MessageWriter
	logger logger.ZapLogger
	now    func() time.Time
}

// NewKafkaWriter builds an async writer: publishing never blocks a cart mutation, delivery
// failures surface in the completion log.
func NewKafkaWriter(cfg *Config, log logger.ZapLogger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver cart events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
}

func NewKafkaBroadcaster(writer MessageWriter, log logger.ZapLogger) *KafkaBroadcaster {
	return &KafkaBroadcaster{
		writer: writer,
		logger: log,
		now:    time.Now,
	}
}

func (b *KafkaBroadcaster) Publish(ctx context.Context, sessionID string) error {
	value, err := json.Marshal(cart.Event{
		EventID:   uuid.New().String(),
		EventType: cart.EventCartUpdated,
		Timestamp: b.now().UTC(),
	})
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sessionID),
		Value: value,
	})
}

func (b *KafkaBroadcaster) Close() error {
	return b.writer.Close()
}
