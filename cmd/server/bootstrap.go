package main

import (
	"gorm.io/gorm"

	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/internal/handlers"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/internal/utils"
	"github.com/stackroom/backend/pkg/logger"
)

// app holds every initialized dependency the HTTP layer needs.
type app struct {
	cfg *config.Config
	db  *gorm.DB

	activity  *services.ActivityLogService
	access    *services.AccessService
	taskQueue services.TaskQueue
	worker    *services.Worker
	hub       *services.EventHub

	authHandler     *handlers.AuthHandler
	projectHandler  *handlers.ProjectHandler
	stackHandler    *handlers.StackHandler
	insightHandler  *handlers.InsightHandler
	imageHandler    *handlers.ImageHandler
	documentHandler *handlers.DocumentHandler
	tagHandler      *handlers.TagHandler
	chatHandler     *handlers.ChatHandler
	sseHandler      *handlers.SSEHandler
	dashHandler     *handlers.DashboardHandler
	activityHandler *handlers.ActivityLogHandler
	healthHandler   *handlers.HealthHandler
}

// bootstrap wires the database, services and handlers together.
func bootstrap(cfg *config.Config) *app {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Audit trail plus its retention scheduler.
	activity := services.NewActivityLogService(db, cfg.Logs.RetentionDays)
	activity.StartRetentionScheduler()

	access := services.NewAccessService(db)
	mailer := services.NewMailService(cfg.SMTP)
	hub := services.NewEventHub()

	// Thumbnail pipeline: Redis-backed when enabled, inline otherwise.
	thumbnails := services.NewThumbnailService(db, cfg.Uploads.ThumbnailWidth)
	taskQueue := services.NewTaskQueue(&cfg.Redis)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(thumbnails.Process)
	}
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(thumbnails.Process)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start thumbnail worker")
				worker = nil
			}
		}
	}

	authService := services.NewAuthService(db, &cfg.JWT)
	if err := authService.CleanupExpiredTokens(); err != nil {
		logger.Warn().Err(err).Msg("Failed to prune expired refresh tokens")
	}

	projectService := services.NewProjectService(db, access, mailer)
	stackService := services.NewStackService(db, access)
	insightService := services.NewInsightService(db, access, stackService)
	imageService := services.NewImageService(db, access, stackService, taskQueue)
	documentService := services.NewDocumentService(db, access, stackService)
	tagService := services.NewTagService(db, access)
	chatService := services.NewChatService(db, access, stackService, insightService, hub)
	dashService := services.NewDashboardService(db)

	return &app{
		cfg:       cfg,
		db:        db,
		activity:  activity,
		access:    access,
		taskQueue: taskQueue,
		worker:    worker,
		hub:       hub,

		authHandler:     handlers.NewAuthHandler(authService),
		projectHandler:  handlers.NewProjectHandler(projectService),
		stackHandler:    handlers.NewStackHandler(stackService, insightService),
		insightHandler:  handlers.NewInsightHandler(insightService),
		imageHandler:    handlers.NewImageHandler(imageService, cfg.Uploads),
		documentHandler: handlers.NewDocumentHandler(documentService, cfg.Uploads),
		tagHandler:      handlers.NewTagHandler(tagService, insightService),
		chatHandler:     handlers.NewChatHandler(chatService),
		sseHandler:      handlers.NewSSEHandler(hub, access),
		dashHandler:     handlers.NewDashboardHandler(dashService),
		activityHandler: handlers.NewActivityLogHandler(activity),
		healthHandler:   handlers.NewHealthHandler(db, taskQueue, hub),
	}
}

// shutdown stops background workers and schedulers.
func (a *app) shutdown() {
	a.activity.StopRetentionScheduler()
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.taskQueue != nil {
		a.taskQueue.Close()
	}
	if err := models.Close(a.db); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
	logger.Info().Msg("Background workers stopped")
}
