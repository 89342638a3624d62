package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mboyle/threadline-api/config"
	"github.com/mboyle/threadline-api/controllers"
	"github.com/mboyle/threadline-api/engine"
	"github.com/mboyle/threadline-api/gate"
	"github.com/mboyle/threadline-api/middleware"
	"github.com/mboyle/threadline-api/models"
	"github.com/mboyle/threadline-api/services"
)

func main() {
	log.Println("Starting Threadline API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.MessageHistory{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Attachment storage
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, attachments disabled")
	}

	// Wire the messaging engine behind the moderation/rate gate
	submissionGate := gate.New(cfg.BlockedWords, cfg.RateLimitMax, cfg.RateLimitWindow)
	defer submissionGate.Stop()
	controllers.SetEngine(engine.New(db, submissionGate))

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with middleware and all routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RequestLogger())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.POST("/users", controllers.CreateUser)
		v1.POST("/auth/login", controllers.Login)

		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg))
		{
			authed.GET("/users/me", controllers.GetCurrentUser)
			authed.DELETE("/users/:id", controllers.DeleteUser)

			authed.POST("/messages", controllers.SendMessage)
			authed.GET("/messages", controllers.ListConversation)
			authed.GET("/messages/unread", controllers.UnreadMessages)
			authed.POST("/messages/read", controllers.MarkMessagesRead)
			authed.PUT("/messages/:id", controllers.EditMessage)
			authed.POST("/messages/:id/replies", controllers.ReplyToMessage)
			authed.GET("/messages/:id/thread", controllers.GetThread)
			authed.GET("/messages/:id/history", controllers.GetMessageHistory)
			authed.POST("/messages/:id/attachment", controllers.UploadAttachment)
			authed.GET("/messages/:id/attachment", controllers.GetAttachment)

			authed.GET("/notifications", controllers.ListNotifications)
			authed.GET("/notifications/unread-count", controllers.UnreadNotificationCount)
			authed.POST("/notifications/:id/read", controllers.MarkNotificationRead)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Threadline API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
