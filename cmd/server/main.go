package main

// @title           Classroom Service API
// @version         1.0
// @description     Course, assignment and submission management with real-time notifications
// @host            localhost:8080
// @BasePath        /api
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	"classroom-service/internal/api/routes"
	"classroom-service/internal/config"
	"classroom-service/internal/database"
	"classroom-service/internal/mailer"
	"classroom-service/internal/repositories/postgres"
	"classroom-service/internal/services"
	"classroom-service/internal/storage"
	"classroom-service/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("Starting classroom server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewMinioStorage(&cfg.Minio, cfg.Upload.MaxFileSizeMB)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	redisService := services.NewRedisService(redisClient)
	mail := mailer.New(&cfg.Email, logger)

	userRepo := postgres.NewUserRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)

	authService := services.NewAuthService(userRepo, mail, redisService, &cfg.JWT, &cfg.Email)
	subscriptionService := services.NewSubscriptionService(courseRepo, assignmentRepo)

	hub := websocket.NewHub(subscriptionService, logger)

	router := routes.NewRouter(cfg, db, redisService, store, mail, hub, authService)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
