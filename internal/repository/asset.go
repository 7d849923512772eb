package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type Asset struct {
	ID         int
	Ticker     string
	Name       string
	Type       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

const assetByTickerQuery = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

// GetAssetByTicker retrieves an asset by its ticker symbol.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*Asset, error) {
	var asset Asset
	err := db.pool.QueryRow(ctx, assetByTickerQuery, ticker).Scan(
		&asset.ID,
		&asset.Ticker,
		&asset.Name,
		&asset.Type,
		&asset.CreatedAt,
		&asset.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s: %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return &asset, nil
}
