// Package app wires configuration into a ready-to-use game type store.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/cache"
	"github.com/twilightcoders/cardgames/internal/config"
	"github.com/twilightcoders/cardgames/internal/database"
	"github.com/twilightcoders/cardgames/internal/gametype"
)

// OpenRepository opens the backend named by cfg.StoreDriver, applying its schema.
// The returned close func releases the connection and is never nil.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (gametype.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("using postgres game type store")
		return database.NewPostgresRepository(pool), pool.Close, nil

	case config.DriverSQLite:
		repo, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("using sqlite game type store")
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.WithError(err).Warn("closing sqlite store")
			}
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory game type store; data is lost on restart")
		return gametype.NewMemoryRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewStore opens the repository and, when REDIS_ADDR is set, the shortId cache.
func NewStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*gametype.Store, func(), error) {
	repo, closeRepo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []gametype.Option{gametype.WithLogger(logger)}
	closeAll := closeRepo

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			closeRepo()
			return nil, nil, err
		}
		opts = append(opts, gametype.WithCache(cache.NewShortIDCache(rdb, cfg.CacheTTL)))
		closeAll = func() {
			if err := rdb.Close(); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Warn("closing redis client")
			}
			closeRepo()
		}
		logger.WithField("addr", cfg.RedisAddr).Info("short id cache enabled")
	}

	return gametype.NewStore(repo, opts...), closeAll, nil
}

// SeedFromFile loads path and creates the game types it defines.
func SeedFromFile(ctx context.Context, store *gametype.Store, path string, reset bool) (int, error) {
	inputs, err := gametype.LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	return store.Seed(ctx, inputs, reset)
}
