package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestConfig is the immutable input of a single backtest run.
type BacktestConfig struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital decimal.Decimal
	Symbols        []string

	CommissionPerShare   decimal.Decimal
	CommissionPercentage decimal.Decimal
	Slippage             decimal.Decimal

	// MaxPositionSize caps a single position as a fraction of portfolio
	// value; zero means unlimited. MaxDailyLoss stops the run when a
	// day's return falls below its negative; zero disables the check.
	MaxPositionSize decimal.Decimal
	MaxDailyLoss    decimal.Decimal

	ExecutionDelay time.Duration
	MarketImpact   decimal.Decimal
}

// NewBacktestConfig returns a config with the standard cost-model defaults:
// $0.01 per share, no percentage commission, 0.1% slippage, one minute
// execution delay and 0.0005 market impact per 1000 shares.
func NewBacktestConfig(start, end time.Time, initialCapital decimal.Decimal, symbols []string) BacktestConfig {
	return BacktestConfig{
		StartDate:            start,
		EndDate:              end,
		InitialCapital:       initialCapital,
		Symbols:              symbols,
		CommissionPerShare:   decimal.RequireFromString("0.01"),
		CommissionPercentage: decimal.Zero,
		Slippage:             decimal.RequireFromString("0.001"),
		ExecutionDelay:       time.Minute,
		MarketImpact:         decimal.RequireFromString("0.0005"),
	}
}
