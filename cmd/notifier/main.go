// Command notifier replays proposal emails and refusal messages that failed
// after their appointment transaction committed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentlink-appointments/config"
	"talentlink-appointments/internal/notification"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/email"
	"talentlink-appointments/pkg/logger"
	"talentlink-appointments/pkg/messaging"
	"talentlink-appointments/pkg/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		logger.Log.Error("Notifier requires redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	queue := notification.NewRedisRetryQueue(redisClient, notification.DefaultRetryQueueKey)
	dispatcher := notification.NewDispatcher(
		email.NewEmailService(cfg),
		messaging.NewClient(cfg.MessagingServiceURL, cfg.NotificationTimeout),
	)
	retryUC := usecase.NewNotificationRetryUsecase(queue, dispatcher, cfg.NotifierBatchSize, cfg.NotifierRatePerSecond)

	logger.Log.Info("Notifier started", "poll_interval", cfg.NotifierPollInterval.String(), "batch_size", cfg.NotifierBatchSize)

	ticker := time.NewTicker(cfg.NotifierPollInterval)
	defer ticker.Stop()

	for {
		drain(ctx, retryUC, queue)

		select {
		case <-ctx.Done():
			logger.Log.Info("Notifier exiting")
			return
		case <-ticker.C:
		}
	}
}

// drain replays what was queued when the poll started. Jobs requeued during
// this pass wait for the next tick.
func drain(ctx context.Context, retryUC usecase.NotificationRetryUsecase, queue *notification.RedisRetryQueue) {
	pending, err := queue.Len(ctx)
	if err != nil {
		logger.Log.Error("Failed to read retry queue length", "error", err)
		return
	}

	var processed int64
	for processed < pending && ctx.Err() == nil {
		n, err := retryUC.ProcessBatch(ctx)
		if err != nil {
			logger.Log.Error("Retry batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		processed += int64(n)
	}
	if processed > 0 {
		logger.Log.Info("Retry pass finished", "processed", processed)
	}
}
