package main

import (
	"github.com/gin-gonic/gin"

	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, a *app) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	r.GET("/health", a.healthHandler.CheckHealth)

	// Uploaded files (images, thumbnails, documents).
	r.Static("/uploads", a.cfg.Uploads.Dir)

	// Brute-force protection on the credential endpoints.
	loginLimiter := middleware.NewRateLimiter(5, 10)

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/users/register", loginLimiter.Middleware(), a.authHandler.Register)
		api.POST("/users/login", loginLimiter.Middleware(), a.authHandler.Login)
		api.POST("/auth/refresh", a.authHandler.Refresh)

		// SSE stream authenticates via token query param inside the handler.
		api.GET("/events/chat", a.sseHandler.StreamChatEvents)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		protected.Use(middleware.AuditLog(a.activity))
		{
			// Account
			protected.POST("/auth/logout", a.authHandler.Logout)
			protected.GET("/users/me", a.authHandler.Me)
			protected.PUT("/users/me", a.authHandler.UpdateMe)
			protected.PUT("/users/me/password", a.authHandler.ChangePassword)

			// Projects and collaborators
			protected.GET("/projects", a.projectHandler.List)
			protected.POST("/projects", a.projectHandler.Create)
			protected.GET("/projects/:id", a.projectHandler.GetByID)
			protected.PUT("/projects/:id", a.projectHandler.Update)
			protected.DELETE("/projects/:id", a.projectHandler.Delete)
			protected.GET("/projects/:id/collaborators", a.projectHandler.ListCollaborators)
			protected.POST("/projects/:id/collaborators", a.projectHandler.AddCollaborator)
			protected.DELETE("/projects/:id/collaborators/:userId", a.projectHandler.RemoveCollaborator)

			// Research stacks
			protected.POST("/stacks/project/:projectId", a.stackHandler.Create)
			protected.GET("/stacks/project/:projectId", a.stackHandler.ListForProject)
			protected.GET("/stacks/:id", a.stackHandler.GetByID)

			// Insights
			protected.POST("/insights/stack/:stackId", a.insightHandler.Create)
			protected.GET("/insights/stack/:stackId", a.insightHandler.ListForStack)
			protected.GET("/insights/:id", a.insightHandler.GetByID)
			protected.PUT("/insights/:id", a.insightHandler.Update)
			protected.DELETE("/insights/:id", a.insightHandler.Delete)
			protected.POST("/insights/:id/documents/:documentId", a.insightHandler.LinkDocument)
			protected.DELETE("/insights/:id/documents/:documentId", a.insightHandler.UnlinkDocument)
			protected.GET("/insights/:id/documents", a.insightHandler.GetDocument)

			// Images
			protected.POST("/images/stack/:stackId", a.imageHandler.Upload)
			protected.GET("/images/stack/:stackId", a.imageHandler.ListForStack)
			protected.GET("/images/project/:projectId", a.imageHandler.ListForProject)
			protected.GET("/images/:id", a.imageHandler.GetByID)
			protected.GET("/images/:id/file", a.imageHandler.Download)
			protected.DELETE("/images/:id", a.imageHandler.Delete)
			protected.POST("/images/:id/tags/:tagId", a.imageHandler.AttachTag)
			protected.DELETE("/images/:id/tags/:tagId", a.imageHandler.DetachTag)

			// Documents and cross-project references
			protected.POST("/documents/stack/:stackId", a.documentHandler.Upload)
			protected.POST("/documents/project/:projectId", a.documentHandler.UploadToProject)
			protected.GET("/documents/stack/:stackId", a.documentHandler.ListForStack)
			protected.GET("/documents/project/:projectId", a.documentHandler.ListForProject)
			protected.GET("/documents/:id", a.documentHandler.GetByID)
			protected.GET("/documents/:id/file", a.documentHandler.Download)
			protected.PUT("/documents/:id", a.documentHandler.Update)
			protected.DELETE("/documents/:id", a.documentHandler.Delete)
			protected.POST("/documents/:id/references", a.documentHandler.AddReference)
			protected.DELETE("/documents/:id/references", a.documentHandler.RemoveReference)
			protected.GET("/documents/:id/references", a.documentHandler.ListReferences)
			protected.POST("/documents/:id/tags/:tagId", a.documentHandler.AttachTag)
			protected.DELETE("/documents/:id/tags/:tagId", a.documentHandler.DetachTag)

			// Tags
			protected.POST("/tags/project/:projectId", a.tagHandler.Create)
			protected.GET("/tags/project/:projectId", a.tagHandler.ListForProject)
			protected.PUT("/tags/:id", a.tagHandler.Update)
			protected.DELETE("/tags/:id", a.tagHandler.Delete)
			protected.POST("/tags/insight/:insightId/tag/:tagId", a.tagHandler.AttachToInsight)
			protected.DELETE("/tags/insight/:insightId/tag/:tagId", a.tagHandler.DetachFromInsight)

			// Chat
			protected.POST("/chat/project/:projectId", a.chatHandler.Send)
			protected.GET("/chat/project/:projectId", a.chatHandler.GetMessages)

			// Dashboard
			protected.GET("/dashboard/stats", a.dashHandler.Stats)

			// Activity logs
			protected.GET("/activity-logs", a.activityHandler.List)
			protected.GET("/activity-logs/retention", a.activityHandler.GetRetention)
			protected.PUT("/activity-logs/retention", a.activityHandler.SetRetention)
			protected.POST("/activity-logs/cleanup", a.activityHandler.Cleanup)
		}
	}
}
