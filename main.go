// File: mountify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mountify/config"
	"mountify/cron"
	"mountify/database"
	bookingRepo "mountify/database/repository/booking"
	referralRepo "mountify/database/repository/referral"
	"mountify/handlers"
	"mountify/middleware"
	"mountify/routes"
	"mountify/services/configurator"
	"mountify/services/referral"
	"mountify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	refRepo := referralRepo.NewMongoReferralRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()

	// services.
	ledger := &referral.DefaultLedger{
		Repo:   refRepo,
		Logger: logger,
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessionStore := configurator.NewSessionStore(utils.GetSessionCacheClient(), sessionTTL)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisUsageQueueDB,
	})
	defer asynqClient.Close()
	cron.InitUsageWorker(ledger)

	configuratorHandler := handlers.NewConfiguratorHandler(sessionStore, ledger, bkRepo, asynqClient, logger)
	referralHandler := handlers.NewReferralHandler(ledger, refRepo)

	// Register routes with the assembled handlers.
	routes.RegisterRoutes(router, configuratorHandler, referralHandler)

	utils.StartHealthMonitor([]*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
