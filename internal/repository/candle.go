package repository

import (
	"context"
	"time"

	"marketsim/types"

	"go.uber.org/zap"
)

const dailyCandlesQuery = `
SELECT c.open, c.high, c.low, c.close, c.volume, c.bucket
FROM daily_candles c
JOIN assets a ON a.id = c.asset_id
WHERE a.ticker = $1 AND c.bucket >= $2 AND c.bucket <= $3
ORDER BY c.bucket`

// GetDailyCandles returns the time-ordered daily series for one symbol over
// the inclusive date range. It satisfies the engine's market data provider
// contract: an empty range reports ErrNoCandles.
func (db *Database) GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]types.Candle, error) {
	rows, err := db.pool.Query(ctx, dailyCandlesQuery, symbol, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []types.Candle
	for rows.Next() {
		candle := types.Candle{Symbol: symbol}
		if err := rows.Scan(
			&candle.Open,
			&candle.High,
			&candle.Low,
			&candle.Close,
			&candle.Volume,
			&candle.Timestamp,
		); err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}

	db.logger.Debug("loaded daily candles",
		zap.String("symbol", symbol),
		zap.Int("count", len(candles)))
	return candles, nil
}
