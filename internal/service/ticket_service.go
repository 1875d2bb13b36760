package service

import (
	"context"
	"time"

	"activity-ticketing/internal/idgen"
	"activity-ticketing/internal/model"
	"activity-ticketing/internal/monitoring"
	"activity-ticketing/internal/repository"
	apperrors "activity-ticketing/pkg/app_errors"
)

type TicketService interface {
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	// CheckIn 核銷：只有 assigned 能轉 used，併發核銷恰有一個成功
	CheckIn(ctx context.Context, id string) (*model.Ticket, error)
	// Assign 指派持票人：訂單必須已付款，票必須是 unassigned
	Assign(ctx context.Context, id string, req model.AssignTicketRequest) (*model.Ticket, error)
	// SweepOverdueTickets 活動結束仍未核銷的票轉 overdue
	SweepOverdueTickets(ctx context.Context, now time.Time) (int, error)
}

type TicketServiceImpl struct {
	repo      repository.TicketRepository
	orderRepo repository.OrderRepository
}

func NewTicketService(repo repository.TicketRepository, orderRepo repository.OrderRepository) TicketService {
	return &TicketServiceImpl{repo: repo, orderRepo: orderRepo}
}

func (s *TicketServiceImpl) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	if !idgen.IsTicketID(id) {
		return nil, apperrors.ErrTicketNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *TicketServiceImpl) CheckIn(ctx context.Context, id string) (*model.Ticket, error) {
	if !idgen.IsTicketID(id) {
		return nil, apperrors.ErrTicketNotFound
	}

	ticket, err := s.repo.CheckIn(ctx, id)
	if err != nil {
		return nil, err
	}

	monitoring.TicketCheckinsTotal.Inc()
	return ticket, nil
}

func (s *TicketServiceImpl) Assign(ctx context.Context, id string, req model.AssignTicketRequest) (*model.Ticket, error) {
	if !idgen.IsTicketID(id) {
		return nil, apperrors.ErrTicketNotFound
	}

	// 指派對象：站內用戶，或無帳號贈票的姓名+信箱，二擇一
	hasUser := req.UserID != nil
	hasGuest := req.Name != nil && req.Email != nil
	if hasUser == hasGuest {
		return nil, apperrors.ErrInvalidInput
	}

	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 票要等訂單付款後才能指派
	order, err := s.orderRepo.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		return nil, apperrors.ErrInvalidState
	}

	return s.repo.Assign(ctx, id, req)
}

func (s *TicketServiceImpl) SweepOverdueTickets(ctx context.Context, now time.Time) (int, error) {
	n, err := s.repo.SweepOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	monitoring.TicketsOverdueTotal.Add(float64(n))
	return n, nil
}
