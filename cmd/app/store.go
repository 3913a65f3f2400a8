package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/config"
	"github.com/BuzzLyutic/task-tracker-api/internal/repo"
)

// openStore подключает хранилище, выбранное в конфиге, и создает схему
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.TaskRepository, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return repo.NewMemoryRepo(), func() {}, nil

	case config.StoreSQLite:
		r, err := repo.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully opened SQLite database", zap.String("dsn", cfg.SQLiteDSN))
		return r, func() { r.Close() }, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping the database: %w", err)
		}
		r := repo.NewTaskRepo(pool)
		if err := r.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Info("Successfully connected to the Database!")
		return r, pool.Close, nil
	}
}
