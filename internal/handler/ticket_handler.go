package handler

import (
	"net/http"

	"activity-ticketing/internal/model"
	"activity-ticketing/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets/:id", h.GetTicket)
		router.POST("tickets/:id/checkin", h.CheckIn)
		router.POST("tickets/:id/assign", h.Assign)
	}
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.service.GetByID(c, c.Param("id"))
	if err != nil {
		HandleError(c, err, "GetTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// CheckIn 核銷：主辦方人員掃碼入場
func (h *TicketHandler) CheckIn(c *gin.Context) {
	if _, err := ActorID(c); err != nil {
		HandleError(c, err, "CheckIn")
		return
	}

	ticket, err := h.service.CheckIn(c, c.Param("id"))
	if err != nil {
		HandleError(c, err, "CheckIn")
		return
	}

	c.JSON(http.StatusOK, model.TicketResponse{
		ID:     ticket.ID,
		Status: ticket.Status,
	})
}

func (h *TicketHandler) Assign(c *gin.Context) {
	if _, err := ActorID(c); err != nil {
		HandleError(c, err, "Assign")
		return
	}

	var req model.AssignTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	ticket, err := h.service.Assign(c, c.Param("id"), req)
	if err != nil {
		HandleError(c, err, "Assign")
		return
	}

	c.JSON(http.StatusOK, ticket)
}
