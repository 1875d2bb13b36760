package repository

import (
	"context"
	"fmt"
	"time"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByID(ctx context.Context, id string) (*model.Ticket, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*model.Ticket, error)
	CountByOrderID(ctx context.Context, orderID string) (int, error)

	// CheckIn 核銷：只有 assigned 狀態能轉 used，併發核銷恰有一個成功。
	// 票券不存在回傳 ErrTicketNotFound，狀態不符回傳 ErrInvalidState。
	CheckIn(ctx context.Context, id string) (*model.Ticket, error)
	// Assign 指派：只有 unassigned 狀態能指派持票人
	Assign(ctx context.Context, id string, req model.AssignTicketRequest) (*model.Ticket, error)
	// SweepOverdue 活動已結束仍未核銷的票轉為 overdue，回傳受影響張數
	SweepOverdue(ctx context.Context, now time.Time) (int, error)

	// Transaction methods
	CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error
	// CancelByOrderID 訂單取消/逾期時，把訂單下所有尚未核銷的票轉為 canceled
	CancelByOrderID(ctx context.Context, tx pgx.Tx, orderID string) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, order_id, activity_id, ticket_type_id, status, refund_deadline,
		qr_code_token, assigned_user_id, assigned_name, assigned_email, created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.OrderID,
		&ticket.ActivityID,
		&ticket.TicketTypeID,
		&ticket.Status,
		&ticket.RefundDeadline,
		&ticket.QRCodeToken,
		&ticket.AssignedUserID,
		&ticket.AssignedName,
		&ticket.AssignedEmail,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, order_id, activity_id, ticket_type_id, status,
			refund_deadline, qr_code_token
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	for _, ticket := range tickets {
		err := tx.QueryRow(ctx, query,
			ticket.ID, ticket.OrderID, ticket.ActivityID, ticket.TicketTypeID,
			ticket.Status, ticket.RefundDeadline, ticket.QRCodeToken,
		).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
		if err != nil {
			// 取號撞到既有主鍵：回報給服務層換號重試，不是硬錯誤
			if isUniqueViolation(err) {
				return apperrors.ErrIDCollision
			}
			return fmt.Errorf("failed to create ticket: %w", err)
		}
	}

	return nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) ListByOrderID(ctx context.Context, orderID string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) CountByOrderID(ctx context.Context, orderID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TicketRepositoryImpl) CheckIn(ctx context.Context, id string) (*model.Ticket, error) {
	// 狀態前置條件寫進 WHERE：兩個併發核銷恰有一個更新到列
	query := `
		UPDATE tickets
		SET status = $1, qr_code_token = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + ticketColumns + `
	`

	token := model.QRCodeTokenFor(id, model.TicketStatusUsed)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query,
		model.TicketStatusUsed, token, time.Now().UTC(), id, model.TicketStatusAssigned,
	))
	if err == nil {
		return ticket, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to check in ticket: %w", err)
	}

	return nil, r.classifyMiss(ctx, id)
}

func (r *TicketRepositoryImpl) Assign(ctx context.Context, id string, req model.AssignTicketRequest) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $1, qr_code_token = $2,
		    assigned_user_id = $3, assigned_name = $4, assigned_email = $5,
		    updated_at = $6
		WHERE id = $7 AND status = $8
		RETURNING ` + ticketColumns + `
	`

	token := model.QRCodeTokenFor(id, model.TicketStatusAssigned)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query,
		model.TicketStatusAssigned, token,
		req.UserID, req.Name, req.Email,
		time.Now().UTC(), id, model.TicketStatusUnassigned,
	))
	if err == nil {
		return ticket, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to assign ticket: %w", err)
	}

	return nil, r.classifyMiss(ctx, id)
}

// classifyMiss 條件式 UPDATE 沒更新到列時，分辨票券不存在與狀態不符
func (r *TicketRepositoryImpl) classifyMiss(ctx context.Context, id string) error {
	var current model.TicketStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM tickets WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrTicketNotFound
		}
		return err
	}
	return apperrors.ErrInvalidState
}

func (r *TicketRepositoryImpl) CancelByOrderID(ctx context.Context, tx pgx.Tx, orderID string) (int, error) {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND status IN ($4, $5)
	`

	result, err := tx.Exec(ctx, query,
		model.TicketStatusCanceled, time.Now().UTC(), orderID,
		model.TicketStatusUnassigned, model.TicketStatusAssigned,
	)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}

func (r *TicketRepositoryImpl) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE status IN ($3, $4)
		  AND activity_id IN (SELECT id FROM activities WHERE end_time < $5)
		  AND order_id IN (SELECT id FROM orders WHERE status = $6)
	`

	result, err := r.pool.Exec(ctx, query,
		model.TicketStatusOverdue, time.Now().UTC(),
		model.TicketStatusUnassigned, model.TicketStatusAssigned,
		now, model.OrderStatusPaid,
	)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
