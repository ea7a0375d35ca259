package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

// OrderHandler handles the entitlement store endpoints: purchases posted by
// the client, cancellation, and order queries.
type OrderHandler struct {
	orderService core.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os core.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// mapOrderErrorToStatus maps errors from core.OrderService to HTTP status codes.
func mapOrderErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrOrderNotFound.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrNoActiveSubscription):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrNoActiveSubscription.Error()}
	case errors.Is(err, core.ErrInvalidBillingCycle), errors.Is(err, core.ErrInvalidPaymentStatus):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: err.Error()}
	default:
		log.Printf("Internal Server Error in OrderHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	order, err := h.orderService.UpsertPurchase(c.Request.Context(), userID.(string), req)
	if err != nil {
		mapOrderErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// CancelOrder handles POST /orders/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	order, err := h.orderService.CancelLatest(c.Request.Context(), userID.(string))
	if err != nil {
		mapOrderErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// GetLatestOrder handles GET /orders/latest
func (h *OrderHandler) GetLatestOrder(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	order, err := h.orderService.GetLatest(c.Request.Context(), userID.(string))
	if err != nil {
		mapOrderErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrders handles GET /orders/history
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	orders, err := h.orderService.History(c.Request.Context(), userID.(string))
	if err != nil {
		mapOrderErrorToStatus(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, responses)
}
