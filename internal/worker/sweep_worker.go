package worker

import (
	"context"
	"time"

	"activity-ticketing/internal/service"
	"activity-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// SweepWorker 週期性掃描：
//   - pending 且逾期未付款的訂單轉 expired（唯一的 wall-clock 逾時，不在請求路徑上）
//   - 票種 is_active 依售票區間翻轉
//   - 活動已結束仍未核銷的票轉 overdue
type SweepWorker interface {
	Start(ctx context.Context)
}

type SweepWorkerImpl struct {
	orderService    service.OrderService
	ticketService   service.TicketService
	activityService service.ActivityService
	interval        time.Duration
}

func NewSweepWorker(
	orderService service.OrderService,
	ticketService service.TicketService,
	activityService service.ActivityService,
	interval time.Duration,
) SweepWorker {
	return &SweepWorkerImpl{
		orderService:    orderService,
		ticketService:   ticketService,
		activityService: activityService,
		interval:        interval,
	}
}

func (w *SweepWorkerImpl) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx, time.Now())
			}
		}
	}()
}

func (w *SweepWorkerImpl) runOnce(ctx context.Context, now time.Time) {
	log := logger.WithComponent("sweep_worker")

	expired, err := w.orderService.ExpireOverdueOrders(ctx, now)
	if err != nil {
		log.Error("expire sweep failed", zap.Error(err))
	} else if expired > 0 {
		log.Info("expired overdue orders", zap.Int("count", expired))
	}

	flipped, err := w.activityService.SweepSaleWindows(ctx, now)
	if err != nil {
		log.Error("sale window sweep failed", zap.Error(err))
	} else if flipped > 0 {
		log.Info("flipped ticket type sale flags", zap.Int("count", flipped))
	}

	overdue, err := w.ticketService.SweepOverdueTickets(ctx, now)
	if err != nil {
		log.Error("overdue ticket sweep failed", zap.Error(err))
	} else if overdue > 0 {
		log.Info("marked overdue tickets", zap.Int("count", overdue))
	}
}
