package main

import (
	"fmt"
	"log"
	"net/http"

	"pulse/backend/internal/activity"
	"pulse/backend/internal/auth"
	"pulse/backend/internal/cache"
	"pulse/backend/internal/config"
	"pulse/backend/internal/database"
	"pulse/backend/internal/feed"
	"pulse/backend/internal/handler"
	"pulse/backend/internal/hub"
	"pulse/backend/internal/notify"
	"pulse/backend/internal/party"
	"pulse/backend/internal/push"
	"pulse/backend/internal/social"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Swagger imports
	_ "pulse/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Pulse API
// @version         1.0
// @description     This is the API for the Pulse service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Unable to create logger, %v", err)
	}
	defer logger.Sync()

	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Activity fan-out: notifications and feed items are always
	// persisted; the remaining sinks attach only when configured.
	dispatcher := activity.NewDispatcher(
		activity.NewNotificationSink(database.DB),
		activity.NewFeedSink(database.DB),
		logger,
	)

	notifyHub := hub.NewHub()
	dispatcher.AttachStream(notifyHub)

	var unread *cache.UnreadCounter
	if config.AppConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.AppConfig.RedisAddr})
		unread = cache.NewUnreadCounter(rdb)
		dispatcher.AttachCounter(unread)
	}

	if brokers := config.AppConfig.PushBrokers(); len(brokers) > 0 {
		gateway := push.NewGateway(database.DB, brokers, config.AppConfig.KafkaPushTopic, logger)
		defer gateway.Close()
		dispatcher.AttachPush(gateway)
	}

	graph := social.NewGraph(database.DB, dispatcher, logger)

	handler.Init(handler.Deps{
		Graph:         graph,
		Parties:       party.NewStore(database.DB, dispatcher, logger),
		Notifications: notify.NewService(database.DB, unread, logger),
		Feed:          feed.NewService(database.DB, graph),
		Hub:           notifyHub,
	})

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterAccount)
			authRoutes.POST("/login", handler.LoginAccount)
		}

		// Account routes (protected)
		accountRoutes := apiV1.Group("/accounts")
		accountRoutes.Use(auth.AuthMiddleware())
		{
			accountRoutes.GET("", handler.SearchAccounts) // Must be before /:id
			accountRoutes.GET("/me", handler.GetMe)
			accountRoutes.POST("/me/privacy", handler.TogglePrivacy)
			accountRoutes.POST("/me/deactivate", handler.DeactivateMe)
			accountRoutes.GET("/:id", handler.GetAccountByID)
			accountRoutes.GET("/:id/parties", handler.GetHostedParties)

			// Social graph routes
			accountRoutes.POST("/:id/follow", handler.FollowAccount)
			accountRoutes.POST("/:id/block", handler.BlockAccount)
			accountRoutes.GET("/:id/followers", handler.GetFollowers)
			accountRoutes.GET("/:id/following", handler.GetFollowing)
		}

		// Party routes (protected)
		partyRoutes := apiV1.Group("/parties")
		partyRoutes.Use(auth.AuthMiddleware())
		{
			partyRoutes.POST("", handler.CreateParty)
			partyRoutes.GET("", handler.GetActiveParties)
			partyRoutes.GET("/attending", handler.GetAttendingParties) // Must be before /:id
			partyRoutes.GET("/:id", handler.GetParty)
			partyRoutes.PUT("/:id", handler.UpdateParty)
			partyRoutes.DELETE("/:id", handler.DeleteParty)
			partyRoutes.POST("/:id/attend", handler.AttendParty)
			partyRoutes.POST("/:id/like", handler.LikeParty)
			partyRoutes.POST("/:id/flag", handler.FlagParty)
			partyRoutes.POST("/:id/requesters/:accountID/approve", handler.ApproveRequest)
			partyRoutes.POST("/:id/requesters/:accountID/deny", handler.DenyRequest)
		}

		// Notification routes (protected)
		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(auth.AuthMiddleware())
		{
			notificationRoutes.GET("", handler.GetNotifications)
			notificationRoutes.GET("/unread", handler.GetUnreadCount)
			notificationRoutes.GET("/stream", handler.StreamNotifications)
		}

		// Feed route (protected)
		feedRoutes := apiV1.Group("/feed")
		feedRoutes.Use(auth.AuthMiddleware())
		{
			feedRoutes.GET("", handler.GetFeed)
		}

		// Device routes (protected)
		deviceRoutes := apiV1.Group("/devices")
		deviceRoutes.Use(auth.AuthMiddleware())
		{
			deviceRoutes.POST("", handler.RegisterDevice)
			deviceRoutes.DELETE("/:token", handler.UnregisterDevice)
		}

		// Admin routes (protected by auth and staff check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.StaffMiddleware())
		{
			adminRoutes.GET("/flags", handler.GetFlags)
			adminRoutes.POST("/flags/:id/resolve", handler.ResolveFlag)
		}
	}

	fmt.Println("Server is running on :8080")
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(":8080"))
}
