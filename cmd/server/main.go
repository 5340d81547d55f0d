package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/lotdesk/internal/handlers"
	"github.com/alimgiray/lotdesk/internal/metrics"
	"github.com/alimgiray/lotdesk/internal/middleware"
	"github.com/alimgiray/lotdesk/internal/realtime"
	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/alimgiray/lotdesk/internal/workers"
	"github.com/alimgiray/lotdesk/pkg/config"
	"github.com/alimgiray/lotdesk/pkg/database"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init()
	gin.SetMode(cfg.Server.Mode)
	metrics.Register()

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	channel, closeChannel := newRealtimeChannel(cfg.Redis)
	defer closeChannel()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(database.DB)
	userService := services.NewUserService(userRepo)
	orgContentRepo := repositories.NewOrgContentRepository(database.DB)
	orgContentService := services.NewOrgContentService(orgContentRepo)
	exceptionDateRepo := repositories.NewExceptionDateRepository(database.DB)
	exceptionDateService := services.NewExceptionDateService(exceptionDateRepo, orgContentService)
	exportService := services.NewExportService(orgContentService, exceptionDateService)

	// Tow requests and their live feed
	towRequestRepo := repositories.NewTowRequestRepository(database.DB)
	feed := realtime.NewFeed(towRequestRepo, cfg.Feed.FetchRate, cfg.Feed.FetchBurst)
	towRequestService := services.NewTowRequestService(towRequestRepo, channel, feed, cfg.Feed.SeedPageLimit)

	workerManager := workers.NewWorkerManager(feed, channel, cfg.Feed.Workers)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	handlers.SetupRoutes(router, &handlers.Handlers{
		Health:         handlers.NewHealthHandler(database.DB),
		NotFound:       handlers.NewNotFoundHandler(),
		OrgContent:     handlers.NewOrgContentHandler(orgContentService, exceptionDateService, exportService),
		ExceptionDates: handlers.NewExceptionDateHandler(exceptionDateService),
		TowRequests:    handlers.NewTowRequestHandler(towRequestService),
	}, middleware.RequireAuth([]byte(cfg.Auth.JWTSecret), userService))

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shut down: %v", err)
	}
	logger.Info("Server stopped")
}

// newRealtimeChannel uses Redis pub/sub when an address is configured, so several
// instances share changes, and the in-process bus otherwise
func newRealtimeChannel(cfg config.RedisConfig) (realtime.Channel, func()) {
	if cfg.Address == "" {
		logger.Info("Realtime changes use the in-process bus")
		return realtime.NewBus(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("Failed to connect to Redis at %s: %v", cfg.Address, err)
	}

	logger.WithField("address", cfg.Address).Info("Realtime changes use Redis pub/sub")
	return realtime.NewRedisChannel(client), func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
