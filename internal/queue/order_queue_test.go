package queue

import (
	"context"
	"testing"
	"time"

	"activity-ticketing/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(id string) *model.OrderEvent {
	return &model.OrderEvent{
		EventID:    id,
		Type:       model.OrderEventCreated,
		OrderID:    "O250601123456-12345",
		UserID:     7,
		ActivityID: 1,
		PaidAmount: decimal.NewFromInt(1250),
		OccurredAt: time.Now().UTC(),
	}
}

func TestMemoryQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryOrderEventQueue(10)

	msgs, err := q.SubscribeEvents(ctx)
	require.NoError(t, err)

	require.NoError(t, q.PublishEvent(ctx, sampleEvent("evt-1")))

	select {
	case msg := <-msgs:
		assert.Equal(t, "evt-1", msg.Data.EventID)
		assert.Equal(t, model.OrderEventCreated, msg.Data.Type)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("expected a delivery")
	}
}

func TestMemoryQueue_NackRequeues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryOrderEventQueue(10)

	msgs, err := q.SubscribeEvents(ctx)
	require.NoError(t, err)

	require.NoError(t, q.PublishEvent(ctx, sampleEvent("evt-2")))

	msg := <-msgs
	msg.Nack(true)

	// Nack 後同一筆事件要再被投遞一次
	select {
	case redelivered := <-msgs:
		assert.Equal(t, "evt-2", redelivered.Data.EventID)
		redelivered.Ack()
	case <-time.After(time.Second):
		t.Fatal("expected redelivery after nack")
	}
}

func TestMemoryQueue_NackDoesNotBlockWhenFull(t *testing.T) {
	q := NewMemoryOrderEventQueue(1)

	subCtx, subCancel := context.WithCancel(context.Background())
	msgs, err := q.SubscribeEvents(subCtx)
	require.NoError(t, err)

	require.NoError(t, q.PublishEvent(subCtx, sampleEvent("evt-3")))
	msg := <-msgs

	// 先停掉訂閱者，確保沒有人在背後消化緩衝
	subCancel()
	select {
	case _, ok := <-msgs:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription did not shut down")
	}

	// 把緩衝填滿，讓重回隊列沒有位置
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, q.PublishEvent(ctx, sampleEvent("evt-4")))

	// 隊列滿時 Nack 必須丟棄而不是卡住消費者
	done := make(chan struct{})
	go func() {
		msg.Nack(true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nack blocked on a full queue")
	}

	// 被丟棄的事件不會再出現，留在緩衝裡的事件照常投遞
	resub, err := q.SubscribeEvents(ctx)
	require.NoError(t, err)

	next := <-resub
	assert.Equal(t, "evt-4", next.Data.EventID)
	next.Ack()
}

func TestMemoryQueue_SubscribeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	q := NewMemoryOrderEventQueue(10)
	msgs, err := q.SubscribeEvents(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("subscription did not shut down")
	}
}
