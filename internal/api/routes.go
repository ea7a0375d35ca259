package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/auth"
	"github.com/decorly/decorly-backend/internal/config"
	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) are applied to the
// router before this function is called, in main.go.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	tokens *auth.TokenManager,
	userService core.UserService,
	orderService core.OrderService,
	webhookService core.WebhookService,
	designService core.DesignService,
) {
	authMW := middleware.NewAuthMiddleware(tokens)
	adminMW := middleware.NewAdminMiddleware(appConfig.AdminAPIKey)

	authHandler := NewAuthHandler(userService, tokens)
	userHandler := NewUserHandler(userService)
	orderHandler := NewOrderHandler(orderService)
	webhookHandler := NewWebhookHandler(webhookService, appConfig.RevenueCatWebhookSecret)
	designHandler := NewDesignHandler(designService)

	apiV1 := router.Group("/api/v1")
	{
		// Public credential endpoints.
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
		}

		// Current-user profile and ad-coin operations.
		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			usersGroup.GET("/me", userHandler.GetMe)
			usersGroup.POST("/me/ad-reward", userHandler.GrantAdReward)
			usersGroup.POST("/me/unlock", userHandler.SpendAdCoin)
		}

		// Admin endpoints are gated by the X-Admin-Key header, not a user JWT.
		adminGroup := apiV1.Group("/admin", adminMW.VerifyKey())
		{
			adminGroup.PATCH("/users/:userId/premium", userHandler.SetPremium)
		}

		// Entitlement store: purchases posted by the client after its billing
		// SDK completes a transaction.
		ordersGroup := apiV1.Group("/orders", authMW.VerifyToken())
		{
			ordersGroup.POST("", orderHandler.CreateOrder)
			ordersGroup.POST("/cancel", orderHandler.CancelOrder)
			ordersGroup.GET("/latest", orderHandler.GetLatestOrder)
			ordersGroup.GET("/history", orderHandler.ListOrders)
		}

		// Billing provider webhook. No user JWT here; the handler checks the
		// provider's shared bearer secret itself.
		apiV1.POST("/webhooks/billing", webhookHandler.HandleBillingEvent)

		// Design generation and collection.
		designsGroup := apiV1.Group("/designs", authMW.VerifyToken())
		{
			designsGroup.POST("", designHandler.GenerateDesign)
			designsGroup.GET("", designHandler.ListDesigns)
			designsGroup.DELETE("/:designId", designHandler.DeleteDesign)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
