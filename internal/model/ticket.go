package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusUnassigned TicketStatus = "unassigned"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusUsed       TicketStatus = "used"
	TicketStatusCanceled   TicketStatus = "canceled"
	TicketStatusOverdue    TicketStatus = "overdue"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusUnassigned, TicketStatusAssigned, TicketStatusUsed,
		TicketStatusCanceled, TicketStatusOverdue:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// 票券狀態在核心寫入路徑上只會往前走，不會回退
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusUnassigned: {TicketStatusAssigned, TicketStatusCanceled, TicketStatusOverdue},
		TicketStatusAssigned:   {TicketStatusUsed, TicketStatusCanceled, TicketStatusOverdue},
		TicketStatusUsed:       {},
		TicketStatusCanceled:   {},
		TicketStatusOverdue:    {},
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

// Ticket 票券模型：一張票對應一個座位，獨立於同訂單的其他票
type Ticket struct {
	ID             string       `json:"id" db:"id"`
	OrderID        string       `json:"orderId" db:"order_id"`
	ActivityID     int          `json:"activityId" db:"activity_id"`
	TicketTypeID   int          `json:"ticketTypeId" db:"ticket_type_id"`
	Status         TicketStatus `json:"status" db:"status"`
	RefundDeadline time.Time    `json:"refundDeadline" db:"refund_deadline"`
	QRCodeToken    string       `json:"qrCodeToken" db:"qr_code_token"`
	AssignedUserID *int         `json:"assignedUserId,omitempty" db:"assigned_user_id"`
	AssignedName   *string      `json:"assignedName,omitempty" db:"assigned_name"`
	AssignedEmail  *string      `json:"assignedEmail,omitempty" db:"assigned_email"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// QRCodeTokenFor 以票券 id 與狀態導出 QR token
func QRCodeTokenFor(ticketID string, status TicketStatus) string {
	sum := sha256.Sum256([]byte(ticketID + ":" + string(status)))
	return hex.EncodeToString(sum[:])
}

// AssignTicketRequest 票券指派請求：指派給站內用戶或以姓名/信箱贈票
type AssignTicketRequest struct {
	UserID *int    `json:"userId,omitempty"`
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
}

// TicketResponse 票券響應
type TicketResponse struct {
	ID     string       `json:"id"`
	Status TicketStatus `json:"status"`
}
