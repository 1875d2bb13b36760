package handler

import (
	"net/http"
	"strconv"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service service.ActivityService
}

func NewActivityHandler(service service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("activities", h.List)
		router.GET("activities/:id", h.GetActivity)
		router.GET("activities/:id/ticket-types", h.ListTicketTypes)
		router.POST("activities/:id/open-sale", h.OpenForSale)
	}
}

func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(c)
	if err != nil {
		HandleError(c, err, "ListActivities")
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity id"})
		return
	}

	activity, err := h.service.GetByID(c, id)
	if err != nil {
		HandleError(c, err, "GetActivity")
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *ActivityHandler) ListTicketTypes(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity id"})
		return
	}

	ticketTypes, err := h.service.ListTicketTypes(c, id)
	if err != nil {
		HandleError(c, err, "ListTicketTypes")
		return
	}

	responses := make([]model.TicketTypeResponse, 0, len(ticketTypes))
	for _, t := range ticketTypes {
		responses = append(responses, model.TicketTypeResponse{
			ID:                t.ID,
			ActivityID:        t.ActivityID,
			Name:              t.Name,
			Price:             t.Price,
			TotalQuantity:     t.TotalQuantity,
			RemainingQuantity: t.RemainingQuantity,
			IsActive:          t.IsActive,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// OpenForSale 開賣：預熱 Redis 庫存閘門（主辦方操作）
func (h *ActivityHandler) OpenForSale(c *gin.Context) {
	if _, err := ActorID(c); err != nil {
		HandleError(c, err, "OpenForSale")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity id"})
		return
	}

	if err := h.service.OpenForSale(c, id); err != nil {
		HandleError(c, err, "OpenForSale")
		return
	}

	c.Status(http.StatusOK)
}
