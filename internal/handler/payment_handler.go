package handler

import (
	"net/http"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler 承接外部金流閘道的回調。
// 回調觸發的是冪等的 mark-paid 轉換，重送不會出錯。
type PaymentHandler struct {
	service service.OrderService
}

func NewPaymentHandler(service service.OrderService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments/callback", h.Callback)
	}
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	var req model.PaymentCallbackRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	if err := h.service.MarkOrderPaid(c, req); err != nil {
		HandleError(c, err, "PaymentCallback")
		return
	}

	c.Status(http.StatusOK)
}
