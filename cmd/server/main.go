package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"anonmsg/internal/api"        // Custom package for API handlers
	"anonmsg/internal/config"     // Custom package for configuration
	"anonmsg/internal/db"         // Custom package for the store codec
	"anonmsg/internal/middleware" // Custom package for middleware
	"anonmsg/internal/repository" // Custom package for store operations
	"anonmsg/internal/service"    // Custom package for account operations
	"anonmsg/internal/session"    // Custom package for the session store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// A missing secret would make every session forgeable
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	// Setup the store codec and the repository over it
	codec, err := db.NewFileStore(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err) // Fatal error if the data dir is unusable
	}
	repo := repository.New(codec)               // Single serialization point for all store access
	accounts := service.NewAccountService(repo) // Account operations over the repository

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Sessions live in Redis so logout actually revokes tokens
	sessions := session.NewRedisStore(redisClient, cfg.JWTSecret)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/api/signup", api.SignupHandler(accounts, sessions)) // Account creation endpoint
	r.POST("/api/login", api.LoginHandler(accounts, sessions))   // Login endpoint
	r.POST("/api/logout", api.LogoutHandler(sessions))           // Logout endpoint

	// Anonymous send route (rate limited per IP)
	sendLimiter := middleware.NewSendLimiter()
	r.POST("/api/users/:recipientId/messages", sendLimiter.Handler(), api.SendMessageHandler(accounts))

	// Account routes (protected by the session middleware)
	accountGroup := r.Group("/api/account")
	accountGroup.Use(middleware.SessionAuthMiddleware(sessions))
	accountGroup.GET("/messages", api.MessagesHandler(accounts))               // Inbox endpoint
	accountGroup.GET("/info", api.InfoHandler(accounts))                       // Profile endpoint
	accountGroup.POST("/update-theme", api.UpdateThemeHandler(accounts))       // Theme endpoint
	accountGroup.POST("/toggle-link", api.ToggleLinkHandler(accounts))         // Link toggle endpoint
	accountGroup.POST("/regenerate-link", api.RegenerateLinkHandler(accounts)) // Link regeneration endpoint
	accountGroup.POST("/change-password", api.ChangePasswordHandler(accounts)) // Password change endpoint
	accountGroup.POST("/delete", api.DeleteAccountHandler(accounts, sessions)) // Account deletion endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
