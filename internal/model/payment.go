package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment 付款紀錄（與訂單 1:1）
// 建單時以佔位列寫入，閘道回調確認後補上方式、原始載荷與時間
type Payment struct {
	OrderID    string          `json:"orderId" db:"order_id"`
	PaidAmount decimal.Decimal `json:"paidAmount" db:"paid_amount"`
	Method     string          `json:"method" db:"method"`
	RawPayload string          `json:"rawPayload,omitempty" db:"raw_payload"`
	PaidAt     *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// PaymentCallbackRequest 外部金流閘道回調載荷
type PaymentCallbackRequest struct {
	OrderID    string          `json:"orderId" binding:"required"`
	Method     string          `json:"method" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	RawPayload string          `json:"rawPayload,omitempty"`
}
