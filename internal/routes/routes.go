package routes

import (
	"platechat-server/internal/chat"
	"platechat-server/internal/config"
	"platechat-server/internal/handlers"
	"platechat-server/internal/middleware"
	"platechat-server/internal/notify"
	"platechat-server/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes. The hub is constructed by
// the caller so its lifecycle can be tied to the process context.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, hub *chat.Hub) {
	// Stores: single instances, injected everywhere they are needed
	messages := store.NewConversationStore(db)
	blocks := store.NewBlockStore(db)
	registry := store.NewRegistry(db)

	var notifier notify.Dispatcher
	if cfg.Push.Enabled {
		notifier = notify.NewExpoDispatcher(cfg.Push, registry)
	} else {
		notifier = notify.NewLogDispatcher()
	}

	chatService := chat.NewService(messages, blocks, registry, hub, notifier)
	summaryBuilder := chat.NewSummaryBuilder(messages, registry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(registry)
	vehicleHandler := handlers.NewVehicleHandler(db)
	chatHandler := handlers.NewChatHandler(messages, summaryBuilder, hub, chatService, cfg)
	blockHandler := handlers.NewBlockHandler(blocks, registry)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/push-token", authHandler.UpdatePushToken)
		}

		// User lookup routes
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/search", userHandler.SearchByPlate)
			userRoutes.GET("/:id", userHandler.GetUserByID)
		}

		// Vehicle routes
		vehicleRoutes := private.Group("/vehicles")
		{
			vehicleRoutes.POST("", vehicleHandler.RegisterVehicle)
			vehicleRoutes.GET("", vehicleHandler.ListVehicles)
			vehicleRoutes.PATCH("/:id/primary", vehicleHandler.SetPrimaryVehicle)
			vehicleRoutes.DELETE("/:id", vehicleHandler.DeleteVehicle)
		}

		// Chat routes
		chatRoutes := private.Group("/chat")
		{
			chatRoutes.GET("/ws", chatHandler.ServeWS)
			chatRoutes.GET("/history/:partnerId", chatHandler.GetHistory)
			chatRoutes.GET("/conversations", chatHandler.GetConversations)
			chatRoutes.POST("/upload", chatHandler.UploadImage)
			chatRoutes.PATCH("/:partnerId/read", chatHandler.MarkConversationRead)
			chatRoutes.DELETE("/:partnerId", chatHandler.DeleteConversation)
		}

		// Block routes
		blockRoutes := private.Group("/blocks")
		{
			blockRoutes.GET("", blockHandler.ListBlocked)
			blockRoutes.GET("/:userId", blockHandler.BlockStatus)
			blockRoutes.POST("/:userId", blockHandler.BlockUser)
			blockRoutes.DELETE("/:userId", blockHandler.UnblockUser)
		}
	}

	// Uploaded chat images are served as opaque static files
	router.Static("/uploads", cfg.UploadDir)

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
