// Package testutil provides shared helpers for integration tests that need
// a live MongoDB. Tests are skipped when no server is reachable, so the
// suite still runs on machines without one.
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTestURI = "mongodb://localhost:27017"

// TestContext returns a context with a generous timeout for one test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the test MongoDB and returns a throwaway database
// that is dropped on cleanup. The URI comes from POPCORNPAL_TEST_MONGO_URI,
// falling back to localhost. Skips the test when no server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("POPCORNPAL_TEST_MONGO_URI")
	if uri == "" {
		uri = defaultTestURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping: cannot create mongo client: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("skipping: mongo not reachable at %s: %v", uri, err)
	}

	dbName := fmt.Sprintf("popcornpal_test_%d_%d", time.Now().UnixNano(), rand.Intn(10000))
	db := client.Database(dbName)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}
