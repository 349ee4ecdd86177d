package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// DefaultRetryQueueKey is the Redis list holding failed notifications
const DefaultRetryQueueKey = "talentlink:notifications:retry"

// RedisRetryQueue is a FIFO of notification jobs on a Redis list.
// Jobs are pushed on the left and popped from the right.
type RedisRetryQueue struct {
	client *redis.Client
	key    string
}

func NewRedisRetryQueue(client *redis.Client, key string) *RedisRetryQueue {
	if key == "" {
		key = DefaultRetryQueueKey
	}
	return &RedisRetryQueue{client: client, key: key}
}

var _ domain.NotificationRetryQueue = (*RedisRetryQueue)(nil)

func (q *RedisRetryQueue) Enqueue(ctx context.Context, job domain.NotificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode notification job: %w", err)
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *RedisRetryQueue) Dequeue(ctx context.Context, n int) ([]domain.NotificationJob, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := q.client.RPopCount(ctx, q.key, n).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.NotificationJob, 0, len(raw))
	for _, item := range raw {
		var job domain.NotificationJob
		if err := json.Unmarshal([]byte(item), &job); err != nil {
			// A corrupt entry cannot be replayed; drop it rather than block the queue.
			logger.Log.ErrorContext(ctx, "dropping undecodable notification job", "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Len reports how many jobs are waiting
func (q *RedisRetryQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
