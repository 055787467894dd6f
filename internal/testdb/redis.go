package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisURL returns a redis:// URL for a Redis server.
func RedisURL(t *testing.T) string {
	t.Helper()
	if url := externalURL(RedisURLEnv); url != "" {
		return url
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	container, err := tcredis.Run(ctx, RedisImage)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start redis container")

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}
