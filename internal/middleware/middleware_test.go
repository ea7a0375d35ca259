package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decorly/decorly-backend/internal/auth"
)

func protectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return router
}

func TestVerifyTokenAllowsValidBearer(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	token, err := tokens.Generate("user-42")
	require.NoError(t, err)

	router := protectedRouter(NewAuthMiddleware(tokens).VerifyToken())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-42")
}

func TestVerifyTokenRejectsMissingAndMalformedHeaders(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	router := protectedRouter(NewAuthMiddleware(tokens).VerifyToken())

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer bad.token.here"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestVerifyKeyChecksAdminHeader(t *testing.T) {
	router := protectedRouter(NewAdminMiddleware("admin-key").VerifyKey())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Admin-Key", "admin-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Admin-Key", "wrong-key")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
