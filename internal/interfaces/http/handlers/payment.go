// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment intent endpoints
type PaymentHandler struct {
	intentCreator payment.IntentCreator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(intentCreator payment.IntentCreator) *PaymentHandler {
	return &PaymentHandler{
		intentCreator: intentCreator,
	}
}

// CreateIntent handles POST /payment/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	receipt := fmt.Sprintf("user-%d", userID)
	intent, err := h.intentCreator.CreateIntent(c.Request.Context(), req.Amount, receipt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to create payment intent",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment intent created successfully",
		"data":    intent,
	})
}
