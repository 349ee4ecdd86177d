package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string
	// Database
	DBDriver   string
	DBUrl      string
	SQLitePath string
	// Auth (tokens are issued by the identity service)
	JWTSecret   string
	JWKSUrl     string
	FrontendURL string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Collaborators
	MessagingServiceURL string
	NotificationTimeout time.Duration
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	// Service-to-service token for the pipeline webhook
	InternalAPIToken string
	// Application statuses that make a candidate eligible for an interview
	EligiblePipelineStatuses []string
	// Notification retry worker
	NotifierBatchSize     int
	NotifierRatePerSecond float64
	NotifierPollInterval  time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file (only present locally)
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBUrl:      getEnv("DATABASE_URL", ""),
		SQLitePath: getEnv("SQLITE_PATH", "appointments.db"),
		// Auth
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWKSUrl:     getEnv("JWKS_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@talentlink.local"),
		// Collaborators
		MessagingServiceURL: strings.TrimRight(getEnv("MESSAGING_SERVICE_URL", "http://localhost:8004"), "/"),
		NotificationTimeout: time.Duration(getEnvInt("NOTIFICATION_TIMEOUT_SECONDS", 8)) * time.Second,
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Internal
		InternalAPIToken:         getEnv("INTERNAL_API_TOKEN", ""),
		EligiblePipelineStatuses: getEnvList("ELIGIBLE_PIPELINE_STATUSES", []string{"review", "interview", "offer"}),
		// Notifier
		NotifierBatchSize:     getEnvInt("NOTIFIER_BATCH_SIZE", 20),
		NotifierRatePerSecond: getEnvFloat("NOTIFIER_RATE_PER_SECOND", 5),
		NotifierPollInterval:  time.Duration(getEnvInt("NOTIFIER_POLL_SECONDS", 10)) * time.Second,
	}

	if cfg.DBDriver == DriverPostgres && cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. Every authenticated request will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory store and failed notifications will not be retried.")
	}
	if cfg.InternalAPIToken == "" {
		log.Println("WARNING: INTERNAL_API_TOKEN not configured. Pipeline webhook is disabled.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
