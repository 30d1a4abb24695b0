package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/popcornpal/popcornpal/internal/app/store/emailverify"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/passwordreset"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/store/votestore"
	"github.com/popcornpal/popcornpal/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection with the configured pool
// sizes and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store relies on: unique email and
// username for users, one review per user per movie, one vote per user per
// review, and the TTL indexes on verification codes and reset tokens.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	stores := map[string]indexer{
		"users":           userstore.New(db),
		"movies":          moviestore.New(db),
		"reviews":         reviewstore.New(db),
		"votes":           votestore.New(db),
		"email_verify":    emailverify.New(db, appCfg.EmailVerifyExpiry),
		"password_resets": passwordreset.New(db, appCfg.PasswordResetExpiry),
	}
	for name, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	logger.Info("database indexes ensured")
	return nil
}
