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

	"github.com/oppspot/oppspot-api/internal/config"
	"github.com/oppspot/oppspot-api/internal/database"
	"github.com/oppspot/oppspot-api/internal/handler"
	"github.com/oppspot/oppspot-api/internal/middleware"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/observability"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/router"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/pkg/ai"
	"github.com/oppspot/oppspot-api/pkg/storage"
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
		&models.DataRoom{},
		&models.AccessGrant{},
		&models.ActivityLog{},
		&models.Document{},
		&models.Task{},
		&models.Workflow{},
		&models.WorkflowStep{},
		&models.ApprovalRequest{},
		&models.RecomputeRun{},
		&models.ImportJob{},
		&models.Company{},
		&models.Profile{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	var uploader service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		cloudinaryService, err := storage.NewCloudinary(storage.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudinaryService
	}

	var summarizer ai.Summarizer
	if cfg.OpenAIAPIKey != "" {
		openaiSummarizer, err := ai.NewOpenAISummarizer(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}
		summarizer = openaiSummarizer
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	roomRepo := repository.NewDataRoomRepository(db)
	grantRepo := repository.NewAccessGrantRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	runRepo := repository.NewRecomputeRunRepository(db)
	importJobRepo := repository.NewImportJobRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	rootCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	feedService := service.NewFeedService(redisClient, service.FeedChannelBase(cfg.AppEnv), natsConn, logger)
	feedService.Start(rootCtx)

	activityService := service.NewActivityService(activityRepo, feedService, logger)
	accessService := service.NewAccessService(roomRepo, grantRepo, activityService, validate, logger)
	roomService := service.NewDataRoomService(roomRepo, documentRepo, taskRepo, approvalRepo, activityService, accessService, redisClient, cfg.SummaryCacheTTL, validate, logger)
	documentService := service.NewDocumentService(documentRepo, accessService, activityService, uploader, cfg.MaxUploadMB, validate, logger)
	taskService := service.NewTaskService(taskRepo, accessService, activityService, validate, logger)
	workflowService := service.NewWorkflowService(workflowRepo, accessService, activityService, validate, logger)
	approvalService := service.NewApprovalService(approvalRepo, accessService, activityService, validate, logger)
	analyzer := service.NewRedFlagAnalyzer(taskRepo, approvalRepo, documentRepo, summarizer, logger)
	recomputeService := service.NewRecomputeService(runRepo, accessService, activityService, analyzer, cfg.RecomputeCooldown, logger)
	importService := service.NewImportService(importJobRepo, companyRepo, logger)
	profileService := service.NewProfileService(profileRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())

	router.Register(app, cfg, router.Dependencies{
		DataRoomHandler:  handler.NewDataRoomHandler(roomService, logger),
		DocumentHandler:  handler.NewDocumentHandler(documentService, logger),
		TaskHandler:      handler.NewTaskHandler(taskService, logger),
		WorkflowHandler:  handler.NewWorkflowHandler(workflowService, logger),
		ApprovalHandler:  handler.NewApprovalHandler(approvalService, logger),
		AccessHandler:    handler.NewAccessHandler(accessService, logger),
		ActivityHandler:  handler.NewActivityHandler(activityService, accessService, logger),
		RecomputeHandler: handler.NewRecomputeHandler(recomputeService, logger),
		FeedHandler:      handler.NewFeedHandler(feedService, accessService, logger, cfg.FeedKeepAlive),
		ImportHandler:    handler.NewImportHandler(importService, logger),
		ProfileHandler:   handler.NewProfileHandler(profileService, logger),
		CronHandler:      handler.NewCronHandler(grantRepo, importService, cfg.ImportJobRetention, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		CronMiddleware:   middleware.CronProtected(cfg.CronSecret),
		UploadLimiter:    middleware.RateLimit("document_upload", cfg.UploadRateLimit, time.Minute),
		ImportLimiter:    middleware.RateLimit("import", cfg.ImportRateLimit, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, recomputeService)
}

func waitForShutdown(app *fiber.App, recompute interface{ Wait() }) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	recompute.Wait()

	log.Println("server stopped")
}
