package service

import (
	"context"
	"errors"
	"time"

	"activity-ticketing/internal/cache"
	"activity-ticketing/internal/idgen"
	"activity-ticketing/internal/model"
	"activity-ticketing/internal/monitoring"
	"activity-ticketing/internal/queue"
	"activity-ticketing/internal/repository"
	apperrors "activity-ticketing/pkg/app_errors"
	"activity-ticketing/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxIDAttempts 編號撞號時的換號重試上限
const maxIDAttempts = 3

type OrderService interface {
	// CreateOrder 驗證購票請求並在單一交易內建立訂單、明細、票券與付款佔位
	CreateOrder(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error)
	ListOrderTickets(ctx context.Context, id string) ([]*model.Ticket, error)
	// CancelOrder 只有 pending 訂單可取消；取消會連動票券並歸還庫存
	CancelOrder(ctx context.Context, id string) error
	// MarkOrderPaid 冪等：已付款訂單重複回調是 no-op 而非錯誤
	MarkOrderPaid(ctx context.Context, req model.PaymentCallbackRequest) error
	// ExpireOverdueOrders 逾期掃描：pending 且超過 paid_expired_at 的訂單轉 expired，
	// 重複掃描沒有額外效果
	ExpireOverdueOrders(ctx context.Context, now time.Time) (int, error)
}

type OrderServiceImpl struct {
	txm            repository.TxManager
	repository     repository.OrderRepository
	ticketRepo     repository.TicketRepository
	ticketTypeRepo repository.TicketTypeRepository
	activityRepo   repository.ActivityRepository
	paymentRepo    repository.PaymentRepository
	inventoryGate  cache.InventoryGate
	eventQueue     queue.OrderEventQueue
	paymentGrace   time.Duration
}

func NewOrderService(
	txm repository.TxManager,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	ticketTypeRepository repository.TicketTypeRepository,
	activityRepository repository.ActivityRepository,
	paymentRepository repository.PaymentRepository,
	inventoryGate cache.InventoryGate,
	eventQueue queue.OrderEventQueue,
	paymentGrace time.Duration,
) OrderService {
	return &OrderServiceImpl{
		txm:            txm,
		repository:     orderRepository,
		ticketRepo:     ticketRepository,
		ticketTypeRepo: ticketTypeRepository,
		activityRepo:   activityRepository,
		paymentRepo:    paymentRepository,
		inventoryGate:  inventoryGate,
		eventQueue:     eventQueue,
		paymentGrace:   paymentGrace,
	}
}

// validatedLine 驗證通過的購票行，帶上已解析的退票期限
type validatedLine struct {
	ticketType     *model.TicketType
	quantity       int
	refundDeadline time.Time
}

// validateRequest 純讀取的請求驗證：不動任何狀態。
// 這裡的庫存檢查只是快照；最終判定在交易內的條件式扣減。
func (s *OrderServiceImpl) validateRequest(ctx context.Context, req model.CreateOrderRequest) ([]validatedLine, error) {
	activity, err := s.activityRepo.FindByID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if !activity.IsPurchasable(time.Now()) {
		return nil, apperrors.ErrActivityNotFound
	}

	ticketTypes, err := s.ticketTypeRepo.ListByActivityID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if len(ticketTypes) == 0 {
		return nil, apperrors.ErrNoInventory
	}

	byID := make(map[int]*model.TicketType, len(ticketTypes))
	for _, t := range ticketTypes {
		byID[t.ID] = t
	}

	seen := make(map[int]bool, len(req.Tickets))
	lines := make([]validatedLine, 0, len(req.Tickets))
	total := decimal.Zero

	for _, line := range req.Tickets {
		if line.Quantity <= 0 {
			return nil, apperrors.ErrInvalidInput
		}
		if seen[line.ID] {
			return nil, apperrors.ErrDuplicateLine
		}
		seen[line.ID] = true

		ticketType, ok := byID[line.ID]
		if !ok {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		if line.Quantity > ticketType.RemainingQuantity {
			return nil, apperrors.ErrInsufficientStock
		}

		total = total.Add(ticketType.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		lines = append(lines, validatedLine{
			ticketType:     ticketType,
			quantity:       line.Quantity,
			refundDeadline: ticketType.RefundDeadline(),
		})
	}

	// 嚴格的十進位相等，不是容差比較
	if !total.Equal(req.PaidAmount) {
		return nil, apperrors.ErrPriceMismatch
	}

	return lines, nil
}

func (s *OrderServiceImpl) CreateOrder(ctx context.Context, userID int, req model.CreateOrderRequest) (*model.Order, error) {
	log := logger.WithComponent("order_service")

	lines, err := s.validateRequest(ctx, req)
	if err != nil {
		monitoring.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	// Redis 閘門快速失敗；閘門本身故障時只記 log，正確性交給資料庫
	gateReserved := false
	if err := s.inventoryGate.Reserve(ctx, req.Tickets); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			monitoring.ReservationsFailedTotal.WithLabelValues("gate_insufficient_stock").Inc()
			return nil, err
		}
		log.Warn("inventory gate unavailable, falling through to database", zap.Error(err))
	} else {
		gateReserved = true
	}

	// 取號撞到既有編號時換一組重來；撞號是機率事件，不該讓用戶吃 500
	var order *model.Order

	for attempt := 1; ; attempt++ {
		order, err = s.attemptCreate(ctx, userID, req, lines)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrIDCollision) && attempt < maxIDAttempts {
			log.Warn("order id/ticket id collision, regenerating",
				zap.Int("attempt", attempt))
			continue
		}
		break
	}

	if err != nil {
		// 閘門預扣要還回去；用 Background 確保用戶斷線也會執行
		if gateReserved {
			if rbErr := s.inventoryGate.Release(context.Background(), req.Tickets); rbErr != nil {
				log.Error("failed to release inventory gate after rollback", zap.Error(rbErr))
			}
		}
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			monitoring.ReservationsFailedTotal.WithLabelValues("insufficient_stock").Inc()
		}
		monitoring.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	monitoring.OrdersCreatedTotal.Inc()
	s.publishEvent(order, model.OrderEventCreated)

	return order, nil
}

// attemptCreate 產生一組全新的訂單/票券編號並在單一交易內落庫。
// 編號撞到既有主鍵時回傳 ErrIDCollision，由呼叫端決定是否換號重試。
func (s *OrderServiceImpl) attemptCreate(ctx context.Context, userID int, req model.CreateOrderRequest, lines []validatedLine) (*model.Order, error) {
	now := time.Now()

	orderID, err := idgen.NewOrderID(now)
	if err != nil {
		return nil, err
	}

	totalQuantity := 0
	for _, line := range lines {
		totalQuantity += line.quantity
	}

	// 整批取號一次到位：批次內保證不重複，避免同秒大單自撞
	ticketIDs, err := idgen.NewTicketIDBatch(now, totalQuantity)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            orderID,
		UserID:        userID,
		ActivityID:    req.ActivityID,
		Status:        model.OrderStatusPending,
		PaidAmount:    req.PaidAmount,
		PaidExpiredAt: now.Add(s.paymentGrace),
		Invoice:       req.Invoice,
	}

	items := make([]model.OrderItem, 0, len(lines))
	tickets := make([]*model.Ticket, 0, totalQuantity)

	for _, line := range lines {
		items = append(items, model.OrderItem{
			OrderID:      orderID,
			TicketTypeID: line.ticketType.ID,
			Quantity:     line.quantity,
		})

		// 一張票一列：數量 N 產生 N 張票
		for i := 0; i < line.quantity; i++ {
			ticketID := ticketIDs[len(tickets)]
			tickets = append(tickets, &model.Ticket{
				ID:             ticketID,
				OrderID:        orderID,
				ActivityID:     req.ActivityID,
				TicketTypeID:   line.ticketType.ID,
				Status:         model.TicketStatusUnassigned,
				RefundDeadline: line.refundDeadline,
				QRCodeToken:    model.QRCodeTokenFor(ticketID, model.TicketStatusUnassigned),
			})
		}
	}

	// 單一交易：任一行扣減失敗，整張訂單連同先前的扣減一起回滾
	err = s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		for _, line := range lines {
			if err := s.ticketTypeRepo.ReserveStock(ctx, tx, line.ticketType.ID, line.quantity); err != nil {
				return err
			}
		}

		if err := s.repository.Create(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repository.CreateItems(ctx, tx, items); err != nil {
			return err
		}
		if err := s.ticketRepo.CreateBatch(ctx, tx, tickets); err != nil {
			return err
		}

		return s.paymentRepo.Create(ctx, tx, &model.Payment{
			OrderID:    orderID,
			PaidAmount: req.PaidAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderServiceImpl) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	if !idgen.IsOrderID(id) {
		return nil, apperrors.ErrOrderNotFound
	}
	return s.repository.FindByID(ctx, id)
}

func (s *OrderServiceImpl) ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	return s.repository.List(ctx, filter)
}

func (s *OrderServiceImpl) ListOrderTickets(ctx context.Context, id string) ([]*model.Ticket, error) {
	if !idgen.IsOrderID(id) {
		return nil, apperrors.ErrOrderNotFound
	}
	if _, err := s.repository.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListByOrderID(ctx, id)
}

func (s *OrderServiceImpl) CancelOrder(ctx context.Context, id string) error {
	if !idgen.IsOrderID(id) {
		return apperrors.ErrOrderNotFound
	}

	items, err := s.repository.ListItems(ctx, id)
	if err != nil {
		return err
	}

	var canceled *model.Order

	err = s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		order, err := s.repository.TransitionStatus(ctx, tx, id, model.OrderStatusPending, model.OrderStatusCanceled)
		if err != nil {
			return err
		}
		canceled = order

		if _, err := s.ticketRepo.CancelByOrderID(ctx, tx, id); err != nil {
			return err
		}

		// 取消歸還庫存：不歸還會讓取消訂單永久吃掉可售量
		for _, item := range items {
			if err := s.ticketTypeRepo.ReleaseStock(ctx, tx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.releaseGate(items)
	monitoring.OrdersCanceledTotal.Inc()
	s.publishEvent(canceled, model.OrderEventCanceled)

	return nil
}

func (s *OrderServiceImpl) MarkOrderPaid(ctx context.Context, req model.PaymentCallbackRequest) error {
	if !idgen.IsOrderID(req.OrderID) {
		return apperrors.ErrOrderNotFound
	}

	order, err := s.repository.FindByID(ctx, req.OrderID)
	if err != nil {
		return err
	}
	// 冪等：重複回調直接成功
	if order.Status == model.OrderStatusPaid {
		return nil
	}
	if !req.Amount.Equal(order.PaidAmount) {
		return apperrors.ErrPriceMismatch
	}

	var paid *model.Order

	err = s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		updated, err := s.repository.TransitionStatus(ctx, tx, req.OrderID, model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			return err
		}
		paid = updated

		return s.paymentRepo.Confirm(ctx, tx, req.OrderID, req.Amount, req.Method, req.RawPayload, time.Now().UTC())
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			// 跟另一個回調搶輸了：再確認一次是否已付款
			current, findErr := s.repository.FindByID(ctx, req.OrderID)
			if findErr == nil && current.Status == model.OrderStatusPaid {
				return nil
			}
		}
		return err
	}

	monitoring.OrdersPaidTotal.Inc()
	s.publishEvent(paid, model.OrderEventPaid)

	return nil
}

func (s *OrderServiceImpl) ExpireOverdueOrders(ctx context.Context, now time.Time) (int, error) {
	log := logger.WithComponent("order_service")

	var expiredIDs []string

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		ids, err := s.repository.ExpireDue(ctx, tx, now)
		if err != nil {
			return err
		}
		expiredIDs = ids

		for _, id := range ids {
			if _, err := s.ticketRepo.CancelByOrderID(ctx, tx, id); err != nil {
				return err
			}

			items, err := s.repository.ListItems(ctx, id)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := s.ticketTypeRepo.ReleaseStock(ctx, tx, item.TicketTypeID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range expiredIDs {
		monitoring.OrdersExpiredTotal.Inc()

		items, err := s.repository.ListItems(ctx, id)
		if err != nil {
			log.Warn("failed to load items for gate release", zap.String("order_id", id), zap.Error(err))
			continue
		}
		s.releaseGate(items)

		order, err := s.repository.FindByID(ctx, id)
		if err == nil {
			s.publishEvent(order, model.OrderEventExpired)
		}
	}

	return len(expiredIDs), nil
}

// releaseGate 把訂單明細的數量還回 Redis 閘門（best-effort）
func (s *OrderServiceImpl) releaseGate(items []model.OrderItem) {
	if len(items) == 0 {
		return
	}
	lines := make([]model.OrderLineRequest, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.OrderLineRequest{ID: item.TicketTypeID, Quantity: item.Quantity})
	}
	if err := s.inventoryGate.Release(context.Background(), lines); err != nil {
		logger.WithComponent("order_service").Warn("failed to release inventory gate", zap.Error(err))
	}
}

// publishEvent 發佈生命週期事件；失敗只記 log，不影響已提交的訂單
func (s *OrderServiceImpl) publishEvent(order *model.Order, eventType model.OrderEventType) {
	if order == nil {
		return
	}
	event := &model.OrderEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		ActivityID: order.ActivityID,
		PaidAmount: order.PaidAmount,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventQueue.PublishEvent(context.Background(), event); err != nil {
		logger.WithComponent("order_service").Warn("failed to publish order event",
			zap.String("order_id", order.ID), zap.String("type", string(eventType)), zap.Error(err))
	}
}

// failureReason 對應 metrics 的 reason 標籤
func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrActivityNotFound):
		return "activity_not_found"
	case errors.Is(err, apperrors.ErrNoInventory):
		return "no_inventory"
	case errors.Is(err, apperrors.ErrDuplicateLine):
		return "duplicate_line"
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		return "unknown_ticket_type"
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperrors.ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperrors.ErrIDCollision):
		return "id_collision"
	default:
		return "internal"
	}
}
