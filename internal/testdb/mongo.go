package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURI returns a connection string for a MongoDB server.
func MongoURI(t *testing.T) string {
	t.Helper()
	if uri := externalURL(MongoURIEnv); uri != "" {
		return uri
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	container, err := tcmongo.Run(ctx, MongoImage)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start mongodb container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

// Mongo returns a uniquely named database that is dropped when the test
// ends, so tests sharing a server do not see each other's documents.
func Mongo(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(MongoURI(t)))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil), "mongodb is not reachable")

	name := "taskboard_test_" + uuid.NewString()[:8]
	db := client.Database(name)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}
