package usecase

import (
	"context"
	"fmt"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	maxNotificationAttempts = 5
	retryWorkers            = 4
)

// NotificationRetryUsecase replays notifications that failed after their transaction committed
type NotificationRetryUsecase interface {
	// ProcessBatch drains up to one batch of jobs and returns how many were taken.
	ProcessBatch(ctx context.Context) (int, error)
}

type notificationRetryUsecase struct {
	queue     domain.NotificationRetryQueue
	port      domain.NotificationPort
	limiter   *rate.Limiter
	batchSize int
}

// NewNotificationRetryUsecase creates the retry drain. ratePerSecond caps outbound calls.
func NewNotificationRetryUsecase(queue domain.NotificationRetryQueue, port domain.NotificationPort, batchSize int, ratePerSecond float64) NotificationRetryUsecase {
	if batchSize <= 0 {
		batchSize = 20
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &notificationRetryUsecase{
		queue:     queue,
		port:      port,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		batchSize: batchSize,
	}
}

func (u *notificationRetryUsecase) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := u.queue.Dequeue(ctx, u.batchSize)
	if err != nil {
		return 0, fmt.Errorf("dequeue notification jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(retryWorkers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := u.limiter.Wait(gctx); err != nil {
				// Shutting down: hand the job back untouched.
				u.requeue(ctx, job)
				return err
			}
			u.replay(gctx, job)
			return nil
		})
	}
	return len(jobs), g.Wait()
}

func (u *notificationRetryUsecase) replay(ctx context.Context, job domain.NotificationJob) {
	err := u.deliver(ctx, job)
	if err == nil {
		logger.Log.InfoContext(ctx, "notification retry delivered",
			"job_id", job.ID,
			"kind", job.Kind,
			"appointment_id", job.AppointmentID,
			"attempts", job.Attempts+1,
		)
		return
	}

	job.Attempts++
	job.LastError = err.Error()
	if job.Attempts >= maxNotificationAttempts {
		logger.Log.ErrorContext(ctx, "notification dropped after max attempts",
			"job_id", job.ID,
			"kind", job.Kind,
			"appointment_id", job.AppointmentID,
			"error", err,
		)
		return
	}

	logger.Log.WarnContext(ctx, "notification retry failed",
		"job_id", job.ID,
		"kind", job.Kind,
		"attempts", job.Attempts,
		"error", err,
	)
	u.requeue(ctx, job)
}

func (u *notificationRetryUsecase) deliver(ctx context.Context, job domain.NotificationJob) error {
	switch job.Kind {
	case domain.NotificationKindProposalEmail:
		if job.Proposal == nil {
			return fmt.Errorf("proposal job %s has no payload", job.ID)
		}
		return u.port.SendProposalEmail(ctx, *job.Proposal)
	case domain.NotificationKindRefusalMessage:
		if job.Refusal == nil {
			return fmt.Errorf("refusal job %s has no payload", job.ID)
		}
		return deliverRefusal(ctx, u.port, job.Refusal)
	}
	return fmt.Errorf("unknown notification kind %q", job.Kind)
}

func (u *notificationRetryUsecase) requeue(ctx context.Context, job domain.NotificationJob) {
	if err := u.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		logger.Log.ErrorContext(ctx, "failed to requeue notification", "job_id", job.ID, "error", err)
	}
}
