package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType 訂單生命週期事件類型
type OrderEventType string

const (
	OrderEventCreated  OrderEventType = "order.created"
	OrderEventPaid     OrderEventType = "order.paid"
	OrderEventCanceled OrderEventType = "order.canceled"
	OrderEventExpired  OrderEventType = "order.expired"
)

// OrderEvent 發佈到事件流的訂單生命週期事件。
// 下游協作者（通知、報表）從這裡接，核心不等它們。
type OrderEvent struct {
	EventID    string          `json:"event_id"`
	Type       OrderEventType  `json:"type"`
	OrderID    string          `json:"order_id"`
	UserID     int             `json:"user_id"`
	ActivityID int             `json:"activity_id"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
