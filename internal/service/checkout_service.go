package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"activity-ticketing/internal/idgen"
	"activity-ticketing/internal/model"
	"activity-ticketing/internal/repository"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// CheckoutSession 交給外部金流閘道的付款初始化載荷。
// 由訂單資料決定性地組出，不改動任何訂單狀態；
// 狀態只會經由閘道回調的 MarkOrderPaid 變動。
type CheckoutSession struct {
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	GatewayURL  string          `json:"gatewayUrl"`
}

type CheckoutService interface {
	// BuildSession 只有 pending 訂單能進入結帳
	BuildSession(ctx context.Context, orderID string) (*CheckoutSession, error)
}

type CheckoutServiceImpl struct {
	orderRepo      repository.OrderRepository
	ticketTypeRepo repository.TicketTypeRepository
	gatewayURL     string
	currency       string
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	gatewayURL string,
	currency string,
) CheckoutService {
	return &CheckoutServiceImpl{
		orderRepo:      orderRepo,
		ticketTypeRepo: ticketTypeRepo,
		gatewayURL:     gatewayURL,
		currency:       currency,
	}
}

func (s *CheckoutServiceImpl) BuildSession(ctx context.Context, orderID string) (*CheckoutSession, error) {
	if !idgen.IsOrderID(orderID) {
		return nil, apperrors.ErrOrderNotFound
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperrors.ErrInvalidState
	}

	items, err := s.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// 明細依票種編號排序（ListItems 已保證），描述因此是決定性的
	parts := make([]string, 0, len(items))
	for _, item := range items {
		ticketType, err := s.ticketTypeRepo.FindByID(ctx, item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fmt.Sprintf("%s x%d", ticketType.Name, item.Quantity))
	}

	return &CheckoutSession{
		OrderID:     order.ID,
		Amount:      order.PaidAmount,
		Currency:    s.currency,
		Description: strings.Join(parts, ", "),
		GatewayURL:  s.gatewayURL,
	}, nil
}

// RenderHTML 組出自動送出的付款表單，交給買家瀏覽器轉導到閘道
func (session *CheckoutSession) RenderHTML() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body>")
	b.WriteString(fmt.Sprintf(`<form id="checkout" method="post" action="%s">`, html.EscapeString(session.GatewayURL)))
	b.WriteString(fmt.Sprintf(`<input type="hidden" name="order_id" value="%s">`, html.EscapeString(session.OrderID)))
	b.WriteString(fmt.Sprintf(`<input type="hidden" name="amount" value="%s">`, session.Amount.String()))
	b.WriteString(fmt.Sprintf(`<input type="hidden" name="currency" value="%s">`, html.EscapeString(session.Currency)))
	b.WriteString(fmt.Sprintf(`<input type="hidden" name="description" value="%s">`, html.EscapeString(session.Description)))
	b.WriteString(`</form><script>document.getElementById("checkout").submit();</script>`)
	b.WriteString("</body></html>")
	return b.String()
}
