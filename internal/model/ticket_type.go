package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType 票種模型
// RemainingQuantity 只能經由 repository 的條件式 UPDATE 變動（見 ReserveStock / ReleaseStock）
type TicketType struct {
	ID                int             `json:"id" db:"id"`
	ActivityID        int             `json:"activityId" db:"activity_id"`
	Name              string          `json:"name" db:"name"`
	Price             decimal.Decimal `json:"price" db:"price"`
	TotalQuantity     int             `json:"totalQuantity" db:"total_quantity"`
	RemainingQuantity int             `json:"remainingQuantity" db:"remaining_quantity"`
	StartTime         time.Time       `json:"startTime" db:"start_time"`
	EndTime           time.Time       `json:"endTime" db:"end_time"`
	SaleStartAt       *time.Time      `json:"saleStartAt,omitempty" db:"sale_start_at"`
	SaleEndAt         *time.Time      `json:"saleEndAt,omitempty" db:"sale_end_at"`
	IsActive          bool            `json:"isActive" db:"is_active"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// RefundDeadline 退票期限：優先採售票結束時間，否則活動結束時間
func (t *TicketType) RefundDeadline() time.Time {
	if t.SaleEndAt != nil {
		return *t.SaleEndAt
	}
	return t.EndTime
}

// SaleWindow 實際售票區間（SaleStartAt/SaleEndAt 未設定時退回 StartTime/EndTime）
func (t *TicketType) SaleWindow() (time.Time, time.Time) {
	start, end := t.StartTime, t.EndTime
	if t.SaleStartAt != nil {
		start = *t.SaleStartAt
	}
	if t.SaleEndAt != nil {
		end = *t.SaleEndAt
	}
	return start, end
}

// InSaleWindow 檢查目前時間是否在售票區間內
func (t *TicketType) InSaleWindow(now time.Time) bool {
	start, end := t.SaleWindow()
	return !now.Before(start) && now.Before(end)
}

// TicketTypeResponse 票種響應
type TicketTypeResponse struct {
	ID                int             `json:"id"`
	ActivityID        int             `json:"activityId"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	TotalQuantity     int             `json:"totalQuantity"`
	RemainingQuantity int             `json:"remainingQuantity"`
	IsActive          bool            `json:"isActive"`
}
