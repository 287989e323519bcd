package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/config"
	"github.com/skillport/skillport-api/internal/database"
	"github.com/skillport/skillport-api/internal/handler"
	"github.com/skillport/skillport-api/internal/middleware"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
	"github.com/skillport/skillport-api/internal/router"
	"github.com/skillport/skillport-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.Assignment{},
		&models.AssignmentEntry{},
		&models.Contest{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	contestRepo := repository.NewContestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)

	validationService := service.NewValidationService(assignmentRepo, notificationService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, validationService, notificationService, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, notificationService, validate, logger)
	extensionService := service.NewExtensionSyncService(submissionService, validate, logger)
	statsService := service.NewValidationStatsService(assignmentRepo, redisClient, cfg.StatsCacheTTL, logger)
	dashboardService := service.NewMentorDashboardService(assignmentRepo, userRepo, statsService, redisClient, cfg.DashboardCacheTTL, logger)
	contestService := service.NewContestService(contestRepo, redisClient, cfg.ContestCacheTTL, validate, logger)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(runCtx)

	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, validate, logger)
	extensionHandler := handler.NewExtensionHandler(extensionService, validate, logger)
	statsHandler := handler.NewStatsHandler(statsService, dashboardService, logger)
	contestHandler := handler.NewContestHandler(contestService, validate, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, 30*time.Second)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler:   submissionHandler,
		AssignmentHandler:   assignmentHandler,
		ExtensionHandler:    extensionHandler,
		StatsHandler:        statsHandler,
		ContestHandler:      contestHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
