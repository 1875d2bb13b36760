package service

import (
	"context"
	"time"

	"activity-ticketing/internal/cache"
	"activity-ticketing/internal/model"
	"activity-ticketing/internal/repository"
)

type ActivityService interface {
	List(ctx context.Context) ([]*model.Activity, error)
	GetByID(ctx context.Context, id int) (*model.Activity, error)
	ListTicketTypes(ctx context.Context, activityID int) ([]*model.TicketType, error)
	// OpenForSale 活動開賣：預熱該活動底下所有票種的 Redis 庫存閘門
	OpenForSale(ctx context.Context, activityID int) error
	// SweepSaleWindows 依目前時間翻轉票種的 is_active
	SweepSaleWindows(ctx context.Context, now time.Time) (int, error)
}

type ActivityServiceImpl struct {
	repo           repository.ActivityRepository
	ticketTypeRepo repository.TicketTypeRepository
	inventoryGate  cache.InventoryGate
}

func NewActivityService(
	repo repository.ActivityRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	inventoryGate cache.InventoryGate,
) ActivityService {
	return &ActivityServiceImpl{
		repo:           repo,
		ticketTypeRepo: ticketTypeRepo,
		inventoryGate:  inventoryGate,
	}
}

func (s *ActivityServiceImpl) List(ctx context.Context) ([]*model.Activity, error) {
	return s.repo.List(ctx)
}

func (s *ActivityServiceImpl) GetByID(ctx context.Context, id int) (*model.Activity, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ActivityServiceImpl) ListTicketTypes(ctx context.Context, activityID int) ([]*model.TicketType, error) {
	if _, err := s.repo.FindByID(ctx, activityID); err != nil {
		return nil, err
	}
	return s.ticketTypeRepo.ListByActivityID(ctx, activityID)
}

func (s *ActivityServiceImpl) OpenForSale(ctx context.Context, activityID int) error {
	activity, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		return err
	}
	ticketTypes, err := s.ticketTypeRepo.ListByActivityID(ctx, activity.ID)
	if err != nil {
		return err
	}
	for _, t := range ticketTypes {
		if err := s.inventoryGate.WarmUp(ctx, t.ID, t.RemainingQuantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActivityServiceImpl) SweepSaleWindows(ctx context.Context, now time.Time) (int, error) {
	return s.ticketTypeRepo.SweepSaleWindow(ctx, now)
}
