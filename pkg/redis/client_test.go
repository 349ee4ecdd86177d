package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing URL", func(t *testing.T) {
		_, err := New(ctx, Config{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("Invalid URL", func(t *testing.T) {
		_, err := New(ctx, Config{URL: "://nope"})
		assert.Error(t, err)
	})

	t.Run("Connects and answers health checks", func(t *testing.T) {
		s := miniredis.RunT(t)
		client, err := New(ctx, Config{URL: "redis://" + s.Addr()})
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, HealthCheck(ctx, client))

		s.Close()
		assert.Error(t, HealthCheck(ctx, client))
	})

	t.Run("Password from URL", func(t *testing.T) {
		s := miniredis.RunT(t)
		s.RequireAuth("s3cret")

		client, err := New(ctx, Config{URL: "redis://:s3cret@" + s.Addr()})
		require.NoError(t, err)
		client.Close()

		_, err = New(ctx, Config{URL: "redis://" + s.Addr()})
		assert.Error(t, err)
	})
}

func TestHealthCheckNilClient(t *testing.T) {
	assert.Error(t, HealthCheck(context.Background(), nil))
}
