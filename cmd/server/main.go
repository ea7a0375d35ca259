package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/api"
	"github.com/decorly/decorly-backend/internal/auth"
	"github.com/decorly/decorly-backend/internal/billing"
	"github.com/decorly/decorly-backend/internal/config"
	"github.com/decorly/decorly-backend/internal/core"
	"github.com/decorly/decorly-backend/internal/db"
	"github.com/decorly/decorly-backend/internal/generator"
	"github.com/decorly/decorly-backend/internal/middleware"
	"github.com/decorly/decorly-backend/internal/storage"
)

// keepAliveInterval is just under the idle timeout of the free hosting tier,
// which spins the instance down after 15 minutes without traffic.
const keepAliveInterval = 14 * time.Minute

func main() {
	// .env is optional; in deployment the environment is set by the platform.
	_ = godotenv.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded")

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	firestoreClient, err := db.InitFirestore(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Firestore", zap.Error(err))
	}
	defer firestoreClient.Close()
	zapLogger.Info("Firestore client initialized")

	imageStore, err := storage.NewCloudinaryStore(
		appConfig.CloudinaryCloudName,
		appConfig.CloudinaryAPIKey,
		appConfig.CloudinaryAPISecret,
	)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Cloudinary image store", zap.Error(err))
	}
	designGenerator := generator.NewRunPodClient(appConfig.RunPodEndpointURL, appConfig.RunPodAPIKey)
	entitlementSyncer := billing.NewRevenueCatClient(appConfig.RevenueCatAPIKey)
	tokens := auth.NewTokenManager(appConfig.JWTSecret)

	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	orderRepo := db.NewFirestoreOrderRepository(firestoreClient)
	designRepo := db.NewFirestoreDesignRepository(firestoreClient)

	orderService := core.NewOrderService(orderRepo, userRepo, entitlementSyncer, zapLogger)
	userService := core.NewUserService(userRepo, orderService, zapLogger)
	webhookService := core.NewWebhookService(orderRepo, userRepo, zapLogger)
	designService := core.NewDesignService(designRepo, userRepo, orderService, imageStore, designGenerator, zapLogger)
	zapLogger.Info("Core services initialized")

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware skipped: CLIENT_URL is not configured")
	}

	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		tokens,
		userService,
		orderService,
		webhookService,
		designService,
	)

	if appConfig.KeepAliveURL != "" {
		go runKeepAlive(appConfig.KeepAliveURL, zapLogger)
	}

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully")
}

// runKeepAlive pings the given URL on a fixed interval so the hosting platform
// does not idle the instance. Fire-and-forget: failures are logged only.
func runKeepAlive(url string, logger *zap.Logger) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	logger.Info("Keep-alive pinger started", zap.String("url", url), zap.Duration("interval", keepAliveInterval))
	for range ticker.C {
		resp, err := http.Get(url)
		if err != nil {
			logger.Warn("Keep-alive ping failed", zap.Error(err))
			continue
		}
		resp.Body.Close()
	}
}
