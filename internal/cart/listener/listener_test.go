package listener

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader hands out queued messages, then blocks until the context ends.
type fakeReader struct {
	msgs   chan kafka.Message
	closed bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m, ok := <-f.msgs:
		if !ok {
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		}
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func eventMessage(t *testing.T, sessionID, eventType string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(cart.Event{EventID: "e-1", EventType: eventType, Timestamp: time.Now()})
	require.NoError(t, err)
	return kafka.Message{Key: []byte(sessionID), Value: value}
}

func saveCart(t *testing.T, repo cart.Repository, sessionID, body string) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), sessionID, []byte(body)))
}

func TestBadgeListener_ProcessMessage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	l := NewBadgeListener(&fakeReader{}, repo, logger.NewNop())

	saveCart(t, repo, "a", `[{"id":"p1","name":"A","price":10,"quantity":2,"image":"a.jpg"},{"id":"p2","name":"B","price":3,"quantity":4,"image":"b.jpg"}]`)

	_, seen := l.Count("a")
	assert.False(t, seen)

	l.processMessage(ctx, eventMessage(t, "a", cart.EventCartUpdated))
	n, seen := l.Count("a")
	assert.True(t, seen)
	assert.Equal(t, 6, n)

	t.Run("other event types are ignored", func(t *testing.T) {
		l.processMessage(ctx, eventMessage(t, "b", "cartAbandoned"))
		_, seen := l.Count("b")
		assert.False(t, seen)
	})

	t.Run("messages without a session are dropped", func(t *testing.T) {
		l.processMessage(ctx, eventMessage(t, "", cart.EventCartUpdated))
		_, seen := l.Count("")
		assert.False(t, seen)
	})

	t.Run("garbage payload", func(t *testing.T) {
		l.processMessage(ctx, kafka.Message{Key: []byte("c"), Value: []byte("not json")})
		_, seen := l.Count("c")
		assert.False(t, seen)
	})

	t.Run("corrupt cart counts as empty", func(t *testing.T) {
		saveCart(t, repo, "d", `{broken`)
		l.processMessage(ctx, eventMessage(t, "d", cart.EventCartUpdated))
		n, seen := l.Count("d")
		assert.True(t, seen)
		assert.Equal(t, 0, n)
	})
}

func TestBadgeListener_Start(t *testing.T) {
	repo := repository.NewMemoryRepository()
	saveCart(t, repo, "a", `[{"id":"p1","name":"A","price":10,"quantity":3,"image":"a.jpg"}]`)

	reader := &fakeReader{msgs: make(chan kafka.Message, 1)}
	reader.msgs <- eventMessage(t, "a", cart.EventCartUpdated)
	close(reader.msgs)

	l := NewBadgeListener(reader, repo, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, ok := l.Count("a")
		return ok && n == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}

	require.NoError(t, l.Close())
	assert.True(t, reader.closed)
}

var _ MessageReader = (*kafka.Reader)(nil)
var _ io.Closer = (*BadgeListener)(nil)
