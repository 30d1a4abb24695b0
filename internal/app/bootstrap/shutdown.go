package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the mail dispatcher, the Gemini client and
// the MongoDB connection. The dispatcher is stopped first so queued emails
// drain while the database is still up.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if dispatcher != nil {
		dispatcher.Stop()
	}
	if geminiClient != nil {
		if err := geminiClient.Close(); err != nil {
			logger.Error("gemini client close failed", zap.Error(err))
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
