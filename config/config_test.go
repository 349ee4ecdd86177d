package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/appointments")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 8*time.Second, cfg.NotificationTimeout)
	assert.Equal(t, []string{"review", "interview", "offer"}, cfg.EligiblePipelineStatuses)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("NOTIFICATION_TIMEOUT_SECONDS", "5")
	t.Setenv("ELIGIBLE_PIPELINE_STATUSES", " Interview, ,offer ")
	t.Setenv("MESSAGING_SERVICE_URL", "http://messaging:8004/")
	t.Setenv("RATE_LIMIT_GLOBAL_THRESHOLD", "not-a-number")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.NotificationTimeout)
	assert.Equal(t, []string{"interview", "offer"}, cfg.EligiblePipelineStatuses)
	assert.Equal(t, "http://messaging:8004", cfg.MessagingServiceURL)
	assert.Equal(t, 100, cfg.RateLimitGlobalThreshold)
	assert.True(t, cfg.IsProduction())
}
