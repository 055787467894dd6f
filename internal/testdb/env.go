package testdb

import (
	"os"
	"strings"
	"time"
)

// Environment variables that point tests at already-running services.
const (
	PostgresURLEnv = "TASKBOARD_TEST_POSTGRES_URL"
	MongoURIEnv    = "TASKBOARD_TEST_MONGO_URI"
	RedisURLEnv    = "TASKBOARD_TEST_REDIS_URL"
)

// Container images used when no external service is configured.
const (
	PostgresImage = "postgres:16-alpine"
	MongoImage    = "mongo:7"
	RedisImage    = "redis:7-alpine"
)

// TestTimeout bounds setup operations against a service.
const TestTimeout = 30 * time.Second

// externalURL returns the trimmed value of env, or "" when unset.
func externalURL(env string) string {
	return strings.TrimSpace(os.Getenv(env))
}
