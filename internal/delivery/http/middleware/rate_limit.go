package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitStore counts hits per key inside a fixed window
type RateLimitStore interface {
	// Incr records one hit and returns the count so far and when the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests when the store errors
	FailClosed bool
}

// DefaultRateLimitConfig keys by IP
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// UserRateLimitConfig keys authenticated calls by user id
func UserRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:user:",
		KeyFunc: func(c *gin.Context) string {
			if id := c.GetInt64(string(domain.KeyUserID)); id > 0 {
				return strconv.FormatInt(id, 10)
			}
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware rejects callers above config.Limit hits per window.
// When the primary store fails the fallback store is used, unless FailClosed is set.
func RateLimitMiddleware(config RateLimitConfig, store, fallback RateLimitStore, secLog *security.SecurityLogger) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		count, resetAt, err := store.Incr(c.Request.Context(), key, config.Window)
		if err != nil {
			secLog.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventRateLimitUnavailable,
				IP:        c.ClientIP(),
				RequestID: c.GetString(string(domain.KeyRequestID)),
				Details:   map[string]interface{}{"error": err.Error()},
			})
			if config.FailClosed || fallback == nil {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt, _ = fallback.Incr(c.Request.Context(), key, config.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			secLog.LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(string(domain.KeyRequestID)),
				c.FullPath(),
			)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RedisRateLimitStore shares counters across API replicas
type RedisRateLimitStore struct {
	client *goredis.Client
	script *goredis.Script
}

func NewRedisRateLimitStore(client *goredis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, script: goredis.NewScript(rateLimitLuaScript)}
}

func (s *RedisRateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	ttlSeconds := int(window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := s.script.Run(ctx, s.client, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimitStore keeps counters in process. Used without Redis and as fallback.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
	hits    int
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{entries: make(map[string]*rateLimitEntry), now: time.Now}
}

func (s *MemoryRateLimitStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// Sweep expired keys every 1000 hits.
	s.hits++
	if s.hits%1000 == 0 {
		for k, e := range s.entries {
			if now.After(e.resetAt) {
				delete(s.entries, k)
			}
		}
	}

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &rateLimitEntry{resetAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt, nil
}
