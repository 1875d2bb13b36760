package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupPaymentTestRouter(mockService *MockOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	paymentHandler := NewPaymentHandler(mockService)
	paymentHandler.RegisterRoutes(router)

	return router
}

func TestPaymentCallback(t *testing.T) {
	callback := model.PaymentCallbackRequest{
		OrderID:    "O250601123456-12345",
		Method:     "credit_card",
		Amount:     decimal.NewFromInt(1250),
		RawPayload: `{"gateway_txn":"abc123"}`,
	}

	t.Run("Success", func(t *testing.T) {
		mockService := &MockOrderService{}
		router := setupPaymentTestRouter(mockService)

		mockService.On("MarkOrderPaid", mock.Anything, mock.Anything).Return(nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", callback)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Success - replayed callback is still 200", func(t *testing.T) {
		mockService := &MockOrderService{}
		router := setupPaymentTestRouter(mockService)

		// 冪等的 mark-paid：重送回調也回 200
		mockService.On("MarkOrderPaid", mock.Anything, mock.Anything).Return(nil).Twice()

		for i := 0; i < 2; i++ {
			req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", callback)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ErrPriceMismatch", func(t *testing.T) {
		mockService := &MockOrderService{}
		router := setupPaymentTestRouter(mockService)

		mockService.On("MarkOrderPaid", mock.Anything, mock.Anything).
			Return(apperrors.ErrPriceMismatch).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", callback)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - ErrOrderNotFound", func(t *testing.T) {
		mockService := &MockOrderService{}
		router := setupPaymentTestRouter(mockService)

		mockService.On("MarkOrderPaid", mock.Anything, mock.Anything).
			Return(apperrors.ErrOrderNotFound).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/payments/callback", callback)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
