package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
	// TransitionStatus 條件式狀態轉換：只有目前狀態為 from 時才會更新。
	// 前置條件不成立時回傳 ErrInvalidState，訂單不存在時回傳 ErrOrderNotFound。
	TransitionStatus(ctx context.Context, tx pgx.Tx, id string, from, to model.OrderStatus) (*model.Order, error)
	// ExpireDue 將所有已逾期未付款的 pending 訂單轉為 expired，回傳受影響的訂單編號
	ExpireDue(ctx context.Context, tx pgx.Tx, now time.Time) ([]string, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

const orderColumns = `id, user_id, activity_id, status, paid_amount, paid_expired_at,
		invoice_type, receiver_name, tax_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	var invoiceType, receiverName, taxID *string

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ActivityID,
		&order.Status,
		&order.PaidAmount,
		&order.PaidExpiredAt,
		&invoiceType,
		&receiverName,
		&taxID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if invoiceType != nil {
		invoice := &model.Invoice{Type: model.InvoiceType(*invoiceType)}
		if receiverName != nil {
			invoice.ReceiverName = *receiverName
		}
		if taxID != nil {
			invoice.TaxID = *taxID
		}
		order.Invoice = invoice
	}

	return &order, nil
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, activity_id, status, paid_amount, paid_expired_at,
			invoice_type, receiver_name, tax_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	var invoiceType, receiverName, taxID *string
	if order.Invoice != nil {
		t := string(order.Invoice.Type)
		invoiceType = &t
		receiverName = &order.Invoice.ReceiverName
		if order.Invoice.TaxID != "" {
			taxID = &order.Invoice.TaxID
		}
	}

	err := tx.QueryRow(ctx, query,
		order.ID, order.UserID, order.ActivityID, order.Status,
		order.PaidAmount, order.PaidExpiredAt,
		invoiceType, receiverName, taxID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrIDCollision
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderRepositoryImpl) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, ticket_type_id, quantity)
		VALUES ($1, $2, $3)
	`

	for _, item := range items {
		if _, err := tx.Exec(ctx, query, item.OrderID, item.TicketTypeID, item.Quantity); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *OrderRepositoryImpl) List(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	addCondition := func(expr string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(expr, argPos))
		args = append(args, value)
		argPos++
	}

	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}
	if filter.ActivityID != nil {
		addCondition("activity_id = $%d", *filter.ActivityID)
	}
	if filter.UserID != nil {
		addCondition("user_id = $%d", *filter.UserID)
	}
	if filter.From != nil {
		addCondition("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("created_at < $%d", *filter.To)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepositoryImpl) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	query := `
		SELECT order_id, ticket_type_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY ticket_type_id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.OrderID, &item.TicketTypeID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *OrderRepositoryImpl) TransitionStatus(
	ctx context.Context,
	tx pgx.Tx,
	id string,
	from, to model.OrderStatus,
) (*model.Order, error) {
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrInvalidState
	}

	// 狀態前置條件寫進 WHERE，併發請求中恰有一個看得到 from 狀態
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + orderColumns + `
	`

	order, err := scanOrder(tx.QueryRow(ctx, query, to, time.Now().UTC(), id, from))
	if err == nil {
		return order, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// 沒更新到任何列：分辨是訂單不存在還是狀態不符
	var current model.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return nil, apperrors.ErrInvalidState
}

func (r *OrderRepositoryImpl) ExpireDue(ctx context.Context, tx pgx.Tx, now time.Time) ([]string, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE status = $3 AND paid_expired_at < $4
		RETURNING id
	`

	rows, err := tx.Query(ctx, query, model.OrderStatusExpired, time.Now().UTC(), model.OrderStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
