package handler

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "activity-ticketing/pkg/app_errors"
	"activity-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ActorID 從上游認證協作者塞的標頭取出操作者編號；
// 缺標頭視為未授權（授權本身在外部執行，這裡只驗前置條件）
func ActorID(c *gin.Context) (int, error) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return 0, apperrors.ErrUnauthorized
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ErrUnauthorized
	}
	return id, nil
}

// HandleError 把服務層的 typed error 對應到 HTTP 狀態碼
func HandleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrActivityNotFound):
		log.Warn("Activity not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Unknown ticket type")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ticket type"})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrNoInventory):
		log.Warn("Activity has no ticket types")
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity has no ticket types"})
	case errors.Is(err, apperrors.ErrDuplicateLine):
		log.Warn("Duplicate ticket type in request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate ticket type in request"})
	case errors.Is(err, apperrors.ErrPriceMismatch):
		log.Warn("Price mismatch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Declared total does not match ticket prices"})
	case errors.Is(err, apperrors.ErrInsufficientStock):
		log.Warn("Insufficient stock")
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
	case errors.Is(err, apperrors.ErrInvalidState):
		log.Warn("Invalid state")
		c.JSON(http.StatusConflict, gin.H{"error": "Operation not allowed in current state"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Unauthorized")
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
