package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

// UserHandler handles the current-user profile, ad-coin operations and the
// admin premium grant.
type UserHandler struct {
	userService core.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// mapUserErrorToStatus maps errors from core.UserService to HTTP status codes.
func mapUserErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrInsufficientCoins):
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: core.ErrInsufficientCoins.Error(), Code: "INSUFFICIENT_COINS"}
	default:
		log.Printf("Internal Server Error in UserHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	user, status, err := h.userService.Profile(c.Request.Context(), userID.(string))
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: user, Subscription: status})
}

// GrantAdReward handles POST /users/me/ad-reward
func (h *UserHandler) GrantAdReward(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	user, err := h.userService.GrantAdReward(c.Request.Context(), userID.(string))
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CoinBalanceResponse{AdCoins: user.AdCoins})
}

// SpendAdCoin handles POST /users/me/unlock
func (h *UserHandler) SpendAdCoin(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	user, err := h.userService.SpendAdCoin(c.Request.Context(), userID.(string))
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CoinBalanceResponse{AdCoins: user.AdCoins})
}

// SetPremium handles PATCH /admin/users/:userId/premium
func (h *UserHandler) SetPremium(c *gin.Context) {
	targetUserID := c.Param("userId")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User ID is required in path"})
		return
	}

	var req models.SetPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.userService.SetPremium(c.Request.Context(), targetUserID, *req.IsPremium)
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
