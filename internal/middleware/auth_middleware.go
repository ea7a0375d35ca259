package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/auth"
)

// ErrorResponse mirrors the one in internal/api/dto_models.go to avoid an
// import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuthMiddleware provides Gin middleware for JWT authentication.
type AuthMiddleware struct {
	tokens *auth.TokenManager
}

// NewAuthMiddleware creates a new AuthMiddleware instance. It panics if the
// token manager is nil, as authenticated routes cannot function without it.
func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	if tokens == nil {
		panic("token manager is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{tokens: tokens}
}

// VerifyToken validates the bearer JWT from the Authorization header and sets
// "userID" in the Gin context for downstream handlers.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		userID, err := m.tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
