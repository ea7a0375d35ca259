package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/auth"
	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/models"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	userService core.UserService
	tokens      *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{userService: us, tokens: tm}
}

// mapAuthErrorToStatus maps errors from auth flows to HTTP status codes.
func mapAuthErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrEmailTaken):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrEmailTaken.Error()}
	case errors.Is(err, core.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrInvalidCredentials.Error()}
	default:
		log.Printf("Internal Server Error in AuthHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), req)
	if err != nil {
		mapAuthErrorToStatus(c, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		mapAuthErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		mapAuthErrorToStatus(c, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		mapAuthErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
