package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"care-portal-server/internal/config"
	"care-portal-server/internal/handlers"
	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/storage"
	"care-portal-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, hub *presence.Hub, files *storage.FileStore) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	onboardingHandler := handlers.NewOnboardingHandler(db)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, hub)
	documentHandler := handlers.NewDocumentHandler(db, files, hub, cfg)
	messageHandler := handlers.NewMessageHandler(db, hub)
	notificationHandler := handlers.NewNotificationHandler(db)
	presenceHandler := handlers.NewPresenceHandler(db, hub, cfg)
	healthHandler := handlers.NewHealthHandler(db)

	users := store.NewUserStore(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
		}

		// Signed download links carry their own credential
		public.GET("/documents/download/:token", documentHandler.Download)
	}

	// The WebSocket endpoint authenticates via query token inside the handler
	router.GET("/ws", presenceHandler.Connect)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Onboarding stays reachable before the wizard is finished
		onboardingRoutes := private.Group("/onboarding")
		{
			onboardingRoutes.GET("", onboardingHandler.GetStatus)
			onboardingRoutes.POST("/basic", onboardingHandler.SubmitBasic)
			onboardingRoutes.POST("/contact", onboardingHandler.SubmitContact)
			onboardingRoutes.POST("/details", onboardingHandler.SubmitDetails)
		}

		// Everything below requires a completed onboarding
		dashboard := private.Group("")
		dashboard.Use(middleware.OnboardingMiddleware(users))
		{
			userRoutes := dashboard.Group("/users")
			{
				userRoutes.GET("/doctors", userHandler.ListDoctors)
				userRoutes.GET("/doctors/:id", userHandler.GetDoctor)
				userRoutes.GET("/my-patients", middleware.RoleAuthMiddleware(models.RoleDoctor), userHandler.ListMyPatients)
				userRoutes.GET("/patients/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), userHandler.GetPatient)
				userRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.ListUsers)
			}

			appointmentRoutes := dashboard.Group("/appointments")
			{
				appointmentRoutes.POST("", appointmentHandler.Create)
				appointmentRoutes.GET("", appointmentHandler.List)
				appointmentRoutes.GET("/calendar", appointmentHandler.Calendar)
				appointmentRoutes.GET("/:id", appointmentHandler.Get)
				appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateStatus)
				appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.Reschedule)
			}

			documentRoutes := dashboard.Group("/documents")
			{
				documentRoutes.GET("", documentHandler.Browse)
				documentRoutes.POST("", documentHandler.Upload)
				documentRoutes.POST("/folders", documentHandler.CreateFolder)
				documentRoutes.DELETE("/folders/:id", documentHandler.DeleteFolder)
				documentRoutes.PATCH("/:id/move", documentHandler.Move)
				documentRoutes.DELETE("/:id", documentHandler.Delete)
				documentRoutes.POST("/:id/share", documentHandler.Share)
				documentRoutes.GET("/:id/download-link", documentHandler.DownloadLink)
			}

			conversationRoutes := dashboard.Group("/conversations")
			{
				conversationRoutes.POST("", messageHandler.StartConversation)
				conversationRoutes.GET("", messageHandler.ListConversations)
				conversationRoutes.GET("/:id/messages", messageHandler.ListMessages)
				conversationRoutes.POST("/:id/messages", messageHandler.SendMessage)
				conversationRoutes.PATCH("/:id/read", messageHandler.MarkRead)
			}

			notificationRoutes := dashboard.Group("/notifications")
			{
				notificationRoutes.GET("", notificationHandler.List)
				notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
				notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
			}

			presenceRoutes := dashboard.Group("/presence")
			{
				presenceRoutes.GET("/online", presenceHandler.OnlineUsers)
				presenceRoutes.GET("/users/:id", presenceHandler.UserStatus)
			}
		}
	}

	router.GET("/health", healthHandler.Check)
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
