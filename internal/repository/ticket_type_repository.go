package repository

import (
	"context"
	"time"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketTypeRepository 票種存取。remaining_quantity 只能經由
// ReserveStock / ReleaseStock 的條件式 UPDATE 變動，這裡是唯一的寫入路徑。
type TicketTypeRepository interface {
	FindByID(ctx context.Context, id int) (*model.TicketType, error)
	ListByActivityID(ctx context.Context, activityID int) ([]*model.TicketType, error)

	// Transaction methods
	// ReserveStock 原子性扣減庫存：只有在剩餘量足夠時才成功，
	// 兩個併發請求搶最後一張票時恰有一個成功
	ReserveStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	// ReleaseStock 原子性歸還庫存，上限為 total_quantity
	ReleaseStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error

	// SweepSaleWindow 依目前時間翻轉 is_active，回傳受影響的票種數
	SweepSaleWindow(ctx context.Context, now time.Time) (int, error)
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

const ticketTypeColumns = `id, activity_id, name, price, total_quantity, remaining_quantity,
		start_time, end_time, sale_start_at, sale_end_at, is_active, created_at, updated_at`

func scanTicketType(row pgx.Row) (*model.TicketType, error) {
	var t model.TicketType
	err := row.Scan(
		&t.ID,
		&t.ActivityID,
		&t.Name,
		&t.Price,
		&t.TotalQuantity,
		&t.RemainingQuantity,
		&t.StartTime,
		&t.EndTime,
		&t.SaleStartAt,
		&t.SaleEndAt,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE id = $1
	`

	ticketType, err := scanTicketType(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return ticketType, nil
}

func (r *TicketTypeRepositoryImpl) ListByActivityID(ctx context.Context, activityID int) ([]*model.TicketType, error) {
	query := `
		SELECT ` + ticketTypeColumns + `
		FROM ticket_types
		WHERE activity_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)

	for rows.Next() {
		ticketType, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, ticketType)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) ReserveStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidInput
	}

	// 檢查與扣減必須是同一個條件式 UPDATE，
	// rows affected 為 0 即代表庫存不足（或票種不存在）
	query := `
		UPDATE ticket_types
		SET remaining_quantity = remaining_quantity - $1, updated_at = $2
		WHERE id = $3 AND remaining_quantity >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientStock
	}

	return nil
}

func (r *TicketTypeRepositoryImpl) ReleaseStock(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidInput
	}

	// LEAST 保證歸還後不會超過 total_quantity
	query := `
		UPDATE ticket_types
		SET remaining_quantity = LEAST(total_quantity, remaining_quantity + $1), updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}

func (r *TicketTypeRepositoryImpl) SweepSaleWindow(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE ticket_types
		SET is_active = (COALESCE(sale_start_at, start_time) <= $1
		                 AND $1 < COALESCE(sale_end_at, end_time)),
		    updated_at = $2
		WHERE is_active != (COALESCE(sale_start_at, start_time) <= $1
		                    AND $1 < COALESCE(sale_end_at, end_time))
	`

	result, err := r.pool.Exec(ctx, query, now, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
