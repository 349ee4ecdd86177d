package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentlink-appointments/config"
	_ "talentlink-appointments/docs" // Important for Swagger
	"talentlink-appointments/internal/delivery/http/middleware"
	v1 "talentlink-appointments/internal/delivery/http/v1"
	"talentlink-appointments/internal/notification"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/auth"
	"talentlink-appointments/pkg/email"
	"talentlink-appointments/pkg/logger"
	"talentlink-appointments/pkg/messaging"
	"talentlink-appointments/pkg/redis"
	"talentlink-appointments/pkg/security"
	"talentlink-appointments/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           TalentLink Appointments API
// @version         1.0
// @description     Interview scheduling between recruiters and candidates.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting appointments service", "port", cfg.Port, "db_driver", cfg.DBDriver)

	secLog := security.NewSecurityLogger("talentlink-appointments", cfg.AppEnv)
	defer secLog.Sync()

	ctx := context.Background()

	// 3. Setup Database
	store, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.close()

	// 4. Setup Redis (optional)
	var (
		rateStore   middleware.RateLimitStore
		redisHealth usecase.HealthCheck
		opts        = []usecase.AppointmentUsecaseOption{usecase.WithNotificationTimeout(cfg.NotificationTimeout)}
	)
	redisClient, err := redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("Redis disabled - in-memory rate limiting, no notification retries")
	case err != nil:
		logger.Log.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	default:
		defer redisClient.Close()
		rateStore = middleware.NewRedisRateLimitStore(redisClient)
		redisHealth = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
		opts = append(opts, usecase.WithRetryQueue(notification.NewRedisRetryQueue(redisClient, notification.DefaultRetryQueueKey)))
	}

	// 5. Setup Notifications
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - proposal and confirmation emails will fail")
	}
	messagingClient := messaging.NewClient(cfg.MessagingServiceURL, cfg.NotificationTimeout)
	dispatcher := notification.NewDispatcher(emailService, messagingClient)

	// 6. Setup UseCases
	eligibilityUC := usecase.NewEligibilityUsecase(store.eligibility, cfg.EligiblePipelineStatuses)
	appointmentUC := usecase.NewAppointmentUsecase(store.tx, store.appointments, store.eligibility, dispatcher, opts...)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": store.health,
		"redis":    redisHealth,
	})

	// 7. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSUrl)

	// 8. Setup Router
	if !validation.RegisterGinValidators() {
		logger.Log.Error("Failed to register custom validators")
		os.Exit(1)
	}
	router := v1.NewRouter(v1.RouterDeps{
		EligibilityUC:  eligibilityUC,
		AppointmentUC:  appointmentUC,
		HealthUC:       healthUC,
		JWKSProvider:   jwksProvider,
		SecurityLog:    secLog,
		RateLimitStore: rateStore,
		Config:         cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
