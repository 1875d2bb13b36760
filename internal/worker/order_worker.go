package worker

import (
	"context"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/queue"
	"activity-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// EventHandlerFunc 處理單一訂單生命週期事件
type EventHandlerFunc func(ctx context.Context, event *model.OrderEvent) error

type OrderEventWorker interface {
	// 訂閱事件流並逐筆處理
	Start(ctx context.Context) error
}

type OrderEventWorkerImpl struct {
	queue   queue.OrderEventQueue
	handler EventHandlerFunc
}

func NewOrderEventWorker(queue queue.OrderEventQueue, handler EventHandlerFunc) OrderEventWorker {
	if handler == nil {
		handler = logEvent
	}
	return &OrderEventWorkerImpl{
		queue:   queue,
		handler: handler,
	}
}

func (w *OrderEventWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handler(ctx, msg.Data); err != nil {
				// 處理失敗就留給隊列重試
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

// logEvent 預設處理器：記錄事件，下游通知/報表協作者由此接手
func logEvent(_ context.Context, event *model.OrderEvent) error {
	logger.WithComponent("event_worker").Info("order event",
		zap.String("event_id", event.EventID),
		zap.String("type", string(event.Type)),
		zap.String("order_id", event.OrderID),
		zap.Int("activity_id", event.ActivityID),
		zap.String("paid_amount", event.PaidAmount.String()),
	)
	return nil
}
