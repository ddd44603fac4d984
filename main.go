package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/InternBridge/internship-service/internal/auth"
	"github.com/InternBridge/internship-service/internal/cache"
	"github.com/InternBridge/internship-service/internal/config"
	"github.com/InternBridge/internship-service/internal/events"
	"github.com/InternBridge/internship-service/internal/handlers"
	"github.com/InternBridge/internship-service/internal/identity"
	"github.com/InternBridge/internship-service/internal/repositories/mongodb"
	"github.com/InternBridge/internship-service/internal/services"
	"github.com/InternBridge/internship-service/internal/storage"
	"github.com/InternBridge/internship-service/internal/utils"
	"github.com/InternBridge/internship-service/internal/validator"
	"github.com/InternBridge/internship-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	ctx := context.Background()

	// Initialize MongoDB
	mongoClient, err := pkg.InitMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to initialize mongodb: %v", err)
	}
	if err := mongodb.EnsureIndexes(ctx, mongoClient, cfg.MongoDB); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	repo := mongodb.NewRepository(mongoClient, cfg.MongoDB)

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Identity provider and local token path
	provider := identity.NewCasdoorProvider(cfg.Casdoor, redisClient, logger)
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}
	reconciler := auth.NewReconciler(tokens, provider, repo.User(), logger)

	// Events: kafka when brokers are configured, in-process channel otherwise
	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka publisher: %v", err)
		}
	} else {
		publisher = events.NewChannelPublisher(cfg.EventsTopic, slogLogger)
	}

	// Resume storage (optional)
	var store storage.Storage
	if cfg.CloudinaryURL != "" {
		cloudinaryStore, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.UploadFolder)
		if err != nil {
			log.Printf("Warning: Failed to initialize cloudinary: %v", err)
		} else {
			store = cloudinaryStore
		}
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(services.ManagerDeps{
		Repo:       repo,
		Passwords:  auth.NewPasswordService(),
		Tokens:     tokens,
		Reconciler: reconciler,
		Provider:   provider,
		Publisher:  publisher,
		Cache:      cache.NewCacheHelper(redisClient, "internbridge:"),
		Logger:     logger,
	})

	// Initialize handlers
	authMiddleware := handlers.NewAuthMiddleware(reconciler, repo.User())
	handlerManager := handlers.NewHandlerManager(serviceManager, authMiddleware, store, validator, logger, cfg.AdminAPIKey)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := serviceManager.Close(); err != nil {
		logger.Warn("Event publisher close failed", "error", err)
	}
	if err := repo.Close(shutdownCtx); err != nil {
		logger.Warn("MongoDB disconnect failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited")
}
