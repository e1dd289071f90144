package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Connect opens a pool, checks it and makes sure the drawings table exists.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	if _, err = pool.Exec(ctx, CreateDrawingsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create drawings table: %w", err)
	}

	logrus.Info("db connected successfully")
	return pool, nil
}
