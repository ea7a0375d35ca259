package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware gates operator-only endpoints behind a static API key sent
// in the X-Admin-Key header. Admin calls come from tooling, not the mobile
// client, so they carry no user JWT.
type AdminMiddleware struct {
	apiKey string
}

// NewAdminMiddleware creates a new AdminMiddleware instance. It panics on an
// empty key so a misconfigured deployment cannot leave admin routes open.
func NewAdminMiddleware(apiKey string) *AdminMiddleware {
	if apiKey == "" {
		panic("admin API key is not configured for AdminMiddleware")
	}
	return &AdminMiddleware{apiKey: apiKey}
}

// VerifyKey checks the X-Admin-Key header against the configured key.
func (m *AdminMiddleware) VerifyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid admin credentials"})
			return
		}
		c.Next()
	}
}
