package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySnapshot is one entry in the portfolio's end-of-day value log.
type DailySnapshot struct {
	Date             time.Time
	TotalValue       decimal.Decimal
	Cash             decimal.Decimal
	PositionsValue   decimal.Decimal
	UnrealizedPnL    decimal.Decimal
	RealizedPnL      decimal.Decimal
	TotalReturn      decimal.Decimal
	ReturnPercentage decimal.Decimal
	PositionCount    int
}

// PortfolioSummary mirrors the summary bundle a live portfolio exposes, so
// simulated and live portfolios are interchangeable for downstream analytics.
type PortfolioSummary struct {
	Name             string
	InitialCash      decimal.Decimal
	CurrentCash      decimal.Decimal
	TotalValue       decimal.Decimal
	PositionsValue   decimal.Decimal
	TotalReturn      decimal.Decimal
	ReturnPercentage decimal.Decimal
	UnrealizedPnL    decimal.Decimal
	RealizedPnL      decimal.Decimal
	CurrentDrawdown  decimal.Decimal
	PeakValue        decimal.Decimal
	PositionCount    int
	TransactionCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DailyMetric is the per-day performance row computed by the metrics
// calculator and persisted one row per trading day.
type DailyMetric struct {
	Date             time.Time
	PortfolioValue   decimal.Decimal
	CashBalance      decimal.Decimal
	PositionsValue   decimal.Decimal
	DailyReturn      decimal.Decimal
	DailyPnL         decimal.Decimal
	CumulativeReturn decimal.Decimal
	Drawdown         decimal.Decimal
	TradesExecuted   int
	PositionsCount   int
}
