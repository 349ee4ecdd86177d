package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSecurityLoggerWith(zap.New(core), "talentlink-appointments", "test"), logs
}

func TestLogLevels(t *testing.T) {
	sl, logs := newObserved()
	ctx := context.Background()

	sl.LogRateLimitTriggered(ctx, "10.0.0.1", "curl", "req-1", "/v1/recruiters/appointments")
	sl.Log(ctx, SecurityEvent{Event: EventInvalidInternalToken, IP: "10.0.0.2"})
	sl.Log(ctx, SecurityEvent{Event: EventDataExport, Details: map[string]interface{}{"format": "csv"}})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "rate_limit_triggered", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "talentlink-appointments", fields["service"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, `{"endpoint":"/v1/recruiters/appointments"}`, fields["details"])
}

func TestForbiddenRoleHashesUserID(t *testing.T) {
	sl, logs := newObserved()
	sl.LogForbiddenRole(context.Background(), 42, "candidate", "recruiter", "10.0.0.1", "req-2", "/v1/recruiters/appointments")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, HashValue("42"), fields["subject_value"])
	assert.NotContains(t, fields["subject_value"], "42")
	assert.Len(t, HashValue("42"), 16)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().LogUnauthorized(context.Background(), "10.0.0.1", "", "", "expired")
	})
}
