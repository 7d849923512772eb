package engine

import (
	"context"
	"time"

	"marketsim/internal/repository"
	"marketsim/types"

	"go.uber.org/zap"
)

// AssetCatalog resolves a ticker to a known asset. The repository's
// Database satisfies it.
type AssetCatalog interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*repository.Asset, error)
}

// ValidateSymbols resolves each configured symbol against the catalog and
// returns the ones that exist, preserving order. Unknown tickers are logged
// and skipped, never fatal.
func ValidateSymbols(ctx context.Context, catalog AssetCatalog, symbols []string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	valid := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if _, err := catalog.GetAssetByTicker(ctx, symbol); err != nil {
			logger.Warn("unknown ticker, skipping",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		valid = append(valid, symbol)
	}
	return valid
}

// MarketDataProvider supplies historical daily candles for one symbol. A
// provider error for a symbol is treated as "no data" by FetchMarketData;
// the run proceeds without that symbol.
type MarketDataProvider interface {
	GetDailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]types.Candle, error)
}

// FetchMarketData materializes the run's read-only market data set from a
// provider. Symbols the provider cannot serve are skipped, never fatal.
func FetchMarketData(
	ctx context.Context,
	provider MarketDataProvider,
	cfg types.BacktestConfig,
	logger *zap.Logger,
) map[string][]types.Candle {
	if logger == nil {
		logger = zap.NewNop()
	}

	data := make(map[string][]types.Candle, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		candles, err := provider.GetDailyCandles(ctx, symbol, cfg.StartDate, cfg.EndDate)
		if err != nil {
			logger.Warn("no market data for symbol, skipping",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		data[symbol] = candles
	}
	return data
}
