package handler

import (
	"net/http"
	"strconv"
	"time"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service  service.OrderService
	checkout service.CheckoutService
}

func NewOrderHandler(service service.OrderService, checkout service.CheckoutService) *OrderHandler {
	return &OrderHandler{service: service, checkout: checkout}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("orders", h.GetOrders)
		router.GET("orders/:id", h.GetOrder)
		router.GET("orders/:id/tickets", h.GetOrderTickets)
		router.GET("orders/:id/checkout", h.Checkout)
		router.POST("orders", h.CreateOrder)
		router.POST("orders/:id/cancel", h.CancelOrder)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, err := ActorID(c)
	if err != nil {
		HandleError(c, err, "CreateOrder")
		return
	}

	var orderReq model.CreateOrderRequest
	if err := BindJson(c, &orderReq); err != nil {
		return
	}

	created, err := h.service.CreateOrder(c, userID, orderReq)
	if err != nil {
		HandleError(c, err, "CreateOrder")
		return
	}

	c.JSON(http.StatusCreated, created.ToResponse())
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrderByID(c, c.Param("id"))
	if err != nil {
		HandleError(c, err, "GetOrder")
		return
	}

	c.JSON(http.StatusOK, order.ToResponse())
}

// orderListQuery 訂單列表查詢參數
type orderListQuery struct {
	Status     string `form:"status"`
	ActivityID string `form:"activityId"`
	UserID     string `form:"userId"`
	From       string `form:"from"`
	To         string `form:"to"`
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	var q orderListQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}

	var filter model.OrderFilter

	if q.Status != "" {
		status := model.OrderStatus(q.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = &status
	}
	if q.ActivityID != "" {
		id, err := strconv.Atoi(q.ActivityID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activityId"})
			return
		}
		filter.ActivityID = &id
	}
	if q.UserID != "" {
		id, err := strconv.Atoi(q.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
			return
		}
		filter.UserID = &id
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from time"})
			return
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to time"})
			return
		}
		filter.To = &to
	}

	orders, err := h.service.ListOrders(c, filter)
	if err != nil {
		HandleError(c, err, "GetOrders")
		return
	}

	responses := make([]model.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, order.ToResponse())
	}

	c.JSON(http.StatusOK, responses)
}

func (h *OrderHandler) GetOrderTickets(c *gin.Context) {
	tickets, err := h.service.ListOrderTickets(c, c.Param("id"))
	if err != nil {
		HandleError(c, err, "GetOrderTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if _, err := ActorID(c); err != nil {
		HandleError(c, err, "CancelOrder")
		return
	}

	if err := h.service.CancelOrder(c, c.Param("id")); err != nil {
		HandleError(c, err, "CancelOrder")
		return
	}

	c.Status(http.StatusOK)
}

// Checkout 把 pending 訂單轉成給金流閘道的付款載荷，回自動送出的 HTML 表單
func (h *OrderHandler) Checkout(c *gin.Context) {
	session, err := h.checkout.BuildSession(c, c.Param("id"))
	if err != nil {
		HandleError(c, err, "Checkout")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(session.RenderHTML()))
}
