package service

import (
	"context"
	"time"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/queue"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTxManager 測試用的交易管理器：直接以 nil tx 執行閉包。
// repository 都是 mock，不會真的碰 tx。
type fakeTxManager struct {
	beginErr error
	calls    int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id string, from, to model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, tx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ExpireDue(ctx context.Context, tx pgx.Tx, now time.Time) ([]string, error) {
	args := m.Called(ctx, tx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByOrderID(ctx context.Context, orderID string) ([]*model.Ticket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByOrderID(ctx context.Context, orderID string) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) CheckIn(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Assign(ctx context.Context, id string, req model.AssignTicketRequest) (*model.Ticket, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) CancelByOrderID(ctx context.Context, tx pgx.Tx, orderID string) (int, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Int(0), args.Error(1)
}

type MockTicketTypeRepository struct {
	mock.Mock
}

func (m *MockTicketTypeRepository) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) ListByActivityID(ctx context.Context, activityID int) ([]*model.TicketType, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) ReserveStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) ReleaseStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) SweepSaleWindow(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) List(ctx context.Context) ([]*model.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindByID(ctx context.Context, id int) (*model.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Activity), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	args := m.Called(ctx, tx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Confirm(ctx context.Context, tx pgx.Tx, orderID string, amount decimal.Decimal, method, rawPayload string, paidAt time.Time) error {
	args := m.Called(ctx, tx, orderID, amount, method, rawPayload, paidAt)
	return args.Error(0)
}

type MockInventoryGate struct {
	mock.Mock
}

func (m *MockInventoryGate) WarmUp(ctx context.Context, ticketTypeID int, stock int) error {
	args := m.Called(ctx, ticketTypeID, stock)
	return args.Error(0)
}

func (m *MockInventoryGate) GetStock(ctx context.Context, ticketTypeID int) (int, error) {
	args := m.Called(ctx, ticketTypeID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryGate) Reserve(ctx context.Context, lines []model.OrderLineRequest) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockInventoryGate) Release(ctx context.Context, lines []model.OrderLineRequest) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

type MockOrderEventQueue struct {
	mock.Mock
}

func (m *MockOrderEventQueue) PublishEvent(ctx context.Context, event *model.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOrderEventQueue) SubscribeEvents(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
