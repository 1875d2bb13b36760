package repository

import (
	"context"
	"fmt"
	"time"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error
	// Confirm 閘道確認後補上付款方式、原始載荷與付款時間
	Confirm(ctx context.Context, tx pgx.Tx, orderID string, amount decimal.Decimal, method, rawPayload string, paidAt time.Time) error
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (order_id, paid_amount, method, raw_payload)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		payment.OrderID, payment.PaidAmount, payment.Method, payment.RawPayload,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepositoryImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	query := `
		SELECT order_id, paid_amount, method, raw_payload, paid_at, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`

	var payment model.Payment
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&payment.OrderID,
		&payment.PaidAmount,
		&payment.Method,
		&payment.RawPayload,
		&payment.PaidAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *PaymentRepositoryImpl) Confirm(
	ctx context.Context,
	tx pgx.Tx,
	orderID string,
	amount decimal.Decimal,
	method, rawPayload string,
	paidAt time.Time,
) error {
	query := `
		UPDATE payments
		SET paid_amount = $1, method = $2, raw_payload = $3, paid_at = $4, updated_at = $5
		WHERE order_id = $6
	`

	result, err := tx.Exec(ctx, query, amount, method, rawPayload, paidAt, time.Now().UTC(), orderID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}

	return nil
}
