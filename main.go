package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"atelierlux/api/database"
	"atelierlux/api/handlers"
	"atelierlux/api/logger"
	"atelierlux/api/middleware"
	"atelierlux/api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	appLog, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Postgres holds the admin accounts and the site's content blocks.
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		appLog.Fatal("failed to initialize PostgreSQL", "error", err)
	}
	defer dbClient.Close()

	// ClickHouse holds the collected analytics events.
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		appLog.Fatal("failed to initialize ClickHouse", "error", err)
	}
	defer chClient.Close()

	// Redis holds the live admin sessions.
	redisClient, err := database.NewRedisClient()
	if err != nil {
		appLog.Fatal("failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	userStore := store.NewUserStore(dbClient.DB)
	settingStore := store.NewSettingStore(dbClient.DB)
	sessionStore := store.NewSessionStore(redisClient)
	eventStore := store.NewEventStore(chClient, appLog)

	authHandlers := handlers.NewAuthHandlers(userStore, sessionStore, appLog)
	collectHandlers := handlers.NewCollectHandlers(eventStore, appLog)
	statsHandlers := handlers.NewStatsHandlers(eventStore, appLog)
	settingsHandlers := handlers.NewSettingsHandlers(settingStore, appLog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		// Hit by every visitor's browser, including beacons on tab close.
		api.POST("/collect", collectHandlers.Collect)

		// The public site reads its content blocks from here.
		api.GET("/settings", settingsHandlers.List)
		api.GET("/settings/:key", settingsHandlers.Get)

		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(sessionStore, appLog))
		{
			protected.GET("/profile", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"user_id":    c.MustGet("user_id").(int),
					"user_email": c.MustGet("user_email").(string),
				})
			})

			protected.PUT("/settings/:key", settingsHandlers.Upsert)
			protected.DELETE("/settings/:key", settingsHandlers.Delete)

			stats := protected.Group("/stats")
			{
				stats.GET("/event-counts", statsHandlers.GetEventCountsOverTime)
				stats.GET("/top-paths", statsHandlers.GetTopPaths)
				stats.GET("/average-dwell", statsHandlers.GetAverageDwell)
				stats.GET("/top-elements", statsHandlers.GetTopElements)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		appLog.Info("API server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("API server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Fatal("server forced to shutdown", "error", err)
	}

	appLog.Info("server exiting")
}
