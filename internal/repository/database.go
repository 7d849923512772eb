package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("asset not found in datasource")
	ErrNoCandles     = errors.New("no candles found in datasource")
)

// Database holds the connection pool for historical market data access.
type Database struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDatabase creates a Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string, logger *zap.Logger) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{pool: pool, logger: logger}, nil
}

func (db *Database) Close() {
	db.pool.Close()
}
