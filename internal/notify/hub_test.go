package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := NewHub(testLogger())
	a := h.Subscribe()
	b := h.Subscribe()

	require.NoError(t, h.Broadcast(context.Background(), Event{Name: "orderCreated", OrderID: "o1"}))

	assert.Equal(t, "o1", (<-a.Events()).OrderID)
	assert.Equal(t, "o1", (<-b.Events()).OrderID)
}

func TestBroadcastPreservesOrder(t *testing.T) {
	h := NewHub(testLogger())
	sub := h.Subscribe()

	ctx := context.Background()
	_ = h.Broadcast(ctx, Event{Name: "orderCreated", OrderID: "o1"})
	_ = h.Broadcast(ctx, Event{Name: "orderStatusUpdate", OrderID: "o1"})
	_ = h.Broadcast(ctx, Event{Name: "orderDeleted", OrderID: "o1"})

	assert.Equal(t, "orderCreated", (<-sub.Events()).Name)
	assert.Equal(t, "orderStatusUpdate", (<-sub.Events()).Name)
	assert.Equal(t, "orderDeleted", (<-sub.Events()).Name)
}

func TestCloseUnsubscribes(t *testing.T) {
	h := NewHub(testLogger())
	sub := h.Subscribe()
	require.Equal(t, 1, h.Len())

	sub.Close()
	assert.Equal(t, 0, h.Len())

	_, open := <-sub.Events()
	assert.False(t, open)

	// Closing again is a no-op.
	sub.Close()
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub(testLogger())
	slow := h.Subscribe()

	ctx := context.Background()
	for i := 0; i <= subscriberBuffer; i++ {
		_ = h.Broadcast(ctx, Event{Name: "orderCreated", OrderID: "o1"})
	}

	assert.Equal(t, 0, h.Len())

	// Buffered events remain readable, then the channel closes.
	n := 0
	for range slow.Events() {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}
