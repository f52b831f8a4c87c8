package listener

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// MessageReader is the part of *kafka.Reader the listener needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func NewKafkaReader(cfg *Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
}

// BadgeListener keeps the cart-count badge of every session current. It is not wired to any
// cart store: on each cartUpdated signal it re-reads the persisted cart.
type BadgeListener struct {
	reader MessageReader
	repo   cart.Repository
	logger logger.ZapLogger

	mu     sync.RWMutex
	counts map[string]int
}

func NewBadgeListener(reader MessageReader, repo cart.Repository, logger logger.ZapLogger) *BadgeListener {
	return &BadgeListener{
		reader: reader,
		repo:   repo,
		logger: logger,
		counts: make(map[string]int),
	}
}

func (l *BadgeListener) Start(ctx context.Context) {
	l.logger.Info("Starting cart badge Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping cart badge Kafka listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg)
		}
	}
}

func (l *BadgeListener) processMessage(ctx context.Context, msg kafka.Message) {
	var event cart.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != cart.EventCartUpdated {
		return
	}

	sessionID := string(msg.Key)
	if sessionID == "" {
		l.logger.Warn("Dropping cart event without session key", zap.String("event_id", event.EventID))
		return
	}
	l.Refresh(ctx, sessionID)
}

// Refresh re-reads one session's persisted cart and records its item count.
func (l *BadgeListener) Refresh(ctx context.Context, sessionID string) {
	data, err := l.repo.Load(ctx, sessionID)
	if err != nil {
		l.logger.Error("Failed to load cart for badge", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	items, err := cart.DecodeItems(data)
	if err != nil {
		l.logger.Error("Failed to parse cart for badge", zap.String("session_id", sessionID), zap.Error(err))
		items = nil
	}

	count := cart.ComputeTotals(items).ItemCount
	l.mu.Lock()
	l.counts[sessionID] = count
	l.mu.Unlock()

	l.logger.Debug("Cart badge updated", zap.String("session_id", sessionID), zap.Int("item_count", count))
}

// Count returns the last known item count of a session and whether any signal was seen for it.
func (l *BadgeListener) Count(sessionID string) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.counts[sessionID]
	return n, ok
}

func (l *BadgeListener) Close() error {
	return l.reader.Close()
}
