// Package backend builds the configured blob store.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore/file"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore/postgres"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore/remote"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore/s3"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

// Open creates the store selected by cfg.Backend, optionally compressed,
// behind a circuit breaker.
func Open(ctx context.Context, cfg config.StoreConfig, metrics *monitoring.Metrics, logger *logging.Logger) (*blobstore.Guarded, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var (
		store blobstore.Store
		err   error
	)
	switch cfg.Backend {
	case "memory":
		store = blobstore.NewMemory()
	case "file":
		store, err = file.New(cfg.Path, file.WithBackups(cfg.Backups), file.WithLogger(logger))
	case "s3":
		store, err = s3.New(ctx, s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		}, logger)
	case "postgres":
		store, err = postgres.New(ctx, cfg.DatabaseURL)
	case "remote":
		store, err = remote.New(remote.Config{
			BaseURL: cfg.RemoteURL,
			Token:   cfg.RemoteToken,
			Timeout: cfg.Timeout,
			Retries: 2,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	if cfg.Compress {
		compressed, err := blobstore.NewCompressed(store)
		if err != nil {
			blobstore.Close(store)
			return nil, err
		}
		store = compressed
	}

	logger.Info("blob store opened",
		zap.String("backend", cfg.Backend),
		zap.Bool("compress", cfg.Compress),
	)
	return blobstore.NewGuarded(store, blobstore.GuardOptions{
		Backend:  cfg.Backend,
		Timeout:  cfg.Timeout,
		Failures: cfg.BreakerFailures,
		Cooldown: cfg.BreakerCooldown,
		Metrics:  metrics,
	}), nil
}
