package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusExpired  OrderStatus = "expired"
	OrderStatusCanceled OrderStatus = "canceled"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusExpired, OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// paid / expired / canceled 在本子系統內皆為終態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:  {OrderStatusPaid, OrderStatusExpired, OrderStatusCanceled},
		OrderStatusPaid:     {},
		OrderStatusExpired:  {},
		OrderStatusCanceled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// InvoiceType 發票類型
type InvoiceType string

const (
	InvoiceTypeBusiness InvoiceType = "business"
	InvoiceTypePersonal InvoiceType = "personal"
)

// Invoice 發票資料（與訂單 1:1，可選）
type Invoice struct {
	Type         InvoiceType `json:"type" db:"invoice_type"`
	ReceiverName string      `json:"receiverName" db:"receiver_name"`
	TaxID        string      `json:"taxId,omitempty" db:"tax_id"`
}

// Order 訂單模型
// 訂單與其明細、票券、付款佔位是在同一個交易內建立的；之後唯一的變動是狀態轉換
type Order struct {
	ID            string          `json:"id" db:"id"`
	UserID        int             `json:"userId" db:"user_id"`
	ActivityID    int             `json:"activityId" db:"activity_id"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaidAmount    decimal.Decimal `json:"paidAmount" db:"paid_amount"`
	PaidExpiredAt time.Time       `json:"paidExpiredAt" db:"paid_expired_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
	Invoice       *Invoice        `json:"invoice,omitempty" db:"-"`
}

// OrderItem 訂單明細：每個票種買了幾張的去正規化紀錄
type OrderItem struct {
	OrderID      string `json:"orderId" db:"order_id"`
	TicketTypeID int    `json:"ticketTypeId" db:"ticket_type_id"`
	Quantity     int    `json:"quantity" db:"quantity"`
}

// OrderFilter 訂單查詢條件
type OrderFilter struct {
	Status     *OrderStatus
	ActivityID *int
	UserID     *int
	From       *time.Time
	To         *time.Time
}

// OrderLineRequest 下單的單一票種行
type OrderLineRequest struct {
	ID       int `json:"id" binding:"required"`
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 創建訂單請求
type CreateOrderRequest struct {
	ActivityID int                `json:"activityId" binding:"required"`
	Tickets    []OrderLineRequest `json:"tickets" binding:"required,min=1,dive"`
	PaidAmount decimal.Decimal    `json:"paidAmount" binding:"required"`
	Invoice    *Invoice           `json:"invoice,omitempty"`
}

// OrderResponse 訂單響應
type OrderResponse struct {
	ID            string          `json:"id"`
	ActivityID    int             `json:"activityId"`
	Status        OrderStatus     `json:"status"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaidExpiredAt time.Time       `json:"paidExpiredAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	Invoice       *Invoice        `json:"invoice,omitempty"`
}

// ToResponse 轉換為對外響應
func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		ActivityID:    o.ActivityID,
		Status:        o.Status,
		PaidAmount:    o.PaidAmount,
		PaidExpiredAt: o.PaidExpiredAt,
		CreatedAt:     o.CreatedAt,
		Invoice:       o.Invoice,
	}
}
