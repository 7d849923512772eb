package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	StatusCompleted   RunStatus = "completed"
	StatusStoppedRisk RunStatus = "stopped_by_risk_limit"
	StatusFailed      RunStatus = "failed"
)

// PerformanceReport is the aggregate performance bundle of a finished run.
type PerformanceReport struct {
	TotalReturn          decimal.Decimal
	ReturnPercentage     decimal.Decimal
	AnnualizedReturn     decimal.Decimal
	Volatility           decimal.Decimal
	AnnualizedVolatility decimal.Decimal
	SharpeRatio          decimal.Decimal
	MaxDrawdown          decimal.Decimal
	TradingDays          int

	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        decimal.Decimal
	AvgTradeReturn decimal.Decimal

	DailyReturns         []decimal.Decimal
	DailyPortfolioValues []decimal.Decimal
}

// RiskReport is the aggregate risk bundle of a finished run.
type RiskReport struct {
	MaxDrawdown          decimal.Decimal
	AvgDrawdown          decimal.Decimal
	Volatility           decimal.Decimal
	AnnualizedVolatility decimal.Decimal
	DownsideDeviation    decimal.Decimal
	SortinoRatio         decimal.Decimal
	CalmarRatio          decimal.Decimal
	VaR95                decimal.Decimal
	VaR99                decimal.Decimal
	MaxConsecutiveLosses int
}

// BacktestResult is assembled once at the end of a run and immutable after
// construction.
type BacktestResult struct {
	BacktestID string
	Status     RunStatus
	Config     BacktestConfig

	TotalReturn      decimal.Decimal
	ReturnPercentage decimal.Decimal
	SharpeRatio      decimal.Decimal
	MaxDrawdown      decimal.Decimal
	Volatility       decimal.Decimal

	// TotalTrades counts executed transactions; the matched round-trip
	// count and win/loss stats live in Performance.
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       decimal.Decimal

	DailyReturns         []decimal.Decimal
	DailyPortfolioValues []decimal.Decimal
	DailyMetrics         []DailyMetric
	Trades               []TradeRecord
	Positions            []Position

	Performance PerformanceReport
	Risk        RiskReport

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
