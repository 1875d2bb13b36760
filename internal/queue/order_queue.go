package queue

import (
	"context"

	"activity-ticketing/internal/model"
	"activity-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.OrderEvent
	Ack  func()
	Nack func(requeue bool)
}

type OrderEventQueue interface {
	// 發送訂單生命週期事件
	PublishEvent(ctx context.Context, event *model.OrderEvent) error
	// 訂閱事件流
	SubscribeEvents(ctx context.Context) (<-chan Delivery, error)
}

type MemoryOrderEventQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列（測試用）
	ch chan *model.OrderEvent
}

func NewMemoryOrderEventQueue(bufferSize int) OrderEventQueue {
	return &MemoryOrderEventQueueImpl{
		ch: make(chan *model.OrderEvent, bufferSize),
	}
}

func (q *MemoryOrderEventQueueImpl) PublishEvent(ctx context.Context, event *model.OrderEvent) error {
	q.ch <- event
	return nil
}

func (q *MemoryOrderEventQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// 非阻塞重回隊列：隊列滿時丟棄，不能卡住消費者
						select {
						case q.ch <- event:
						default:
							logger.WithComponent("order_queue").Warn("queue full, dropping requeued event",
								zap.String("event_id", event.EventID), zap.String("order_id", event.OrderID))
						}
					},
				}
			}
		}
	}()

	return out, nil
}
