package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketsim/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Risk-stop ceilings. The drawdown and value floors are fixed; the daily
// loss limit comes from the config.
var (
	maxDrawdownLimit   = decimal.RequireFromString("0.25")
	minPortfolioValue  = decimal.NewFromInt(1000)
	ErrNoTradingDates  = errors.New("no trading dates between start and end")
	ErrStrategyFailure = errors.New("strategy callback failed")
)

// Strategy is the injected signal generator: called once per trading day
// with that day's market slice and the run's strategy parameters.
type Strategy func(dayData map[string]types.Candle, date time.Time, params map[string]string) ([]types.Signal, error)

// ProgressFunc receives best-effort progress milestones: 15 when processing
// starts, 15..85 across the date loop, 90 before final metrics, 100 on
// success and -1 with an error message on fatal failure.
type ProgressFunc func(percent int, message string)

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

func WithParameters(params map[string]string) Option {
	return func(e *Engine) { e.params = params }
}

// WithRiskFreeRate overrides the annual risk-free rate used for Sharpe.
func WithRiskFreeRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.riskFreeRate = rate }
}

// Engine orchestrates one backtest run: it owns the date loop and wires the
// portfolio, execution engine and metric calculators together. An Engine is
// used for a single run; independent runs never share state.
type Engine struct {
	cfg      types.BacktestConfig
	strategy Strategy

	params       map[string]string
	progress     ProgressFunc
	riskFreeRate decimal.Decimal
	logger       *zap.Logger
}

func New(cfg types.BacktestConfig, strategy Strategy, opts ...Option) *Engine {
	e := &Engine{
		cfg:          cfg,
		strategy:     strategy,
		riskFreeRate: DefaultRiskFreeRate,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run replays the configured period day by day against the supplied market
// data. The data is treated as read-only input; ctx cancellation is
// observed at day boundaries and ends the run like a risk stop, still
// producing partial metrics. Only a strategy failure is fatal.
func (e *Engine) Run(ctx context.Context, marketData map[string][]types.Candle) (*types.BacktestResult, error) {
	startTime := time.Now().UTC()
	backtestID := uuid.NewString()

	p := newPortfolio(e.cfg.InitialCapital, "Backtest Portfolio")
	execution := NewExecutionEngine(e.cfg, e.logger)
	performance := NewPerformanceCalculator(e.riskFreeRate)
	risk := NewRiskCalculator()

	e.report(15, "Processing market data and signals...")

	dates := tradingDates(e.cfg.StartDate, e.cfg.EndDate)
	if len(dates) == 0 {
		e.report(-1, ErrNoTradingDates.Error())
		return nil, ErrNoTradingDates
	}

	e.logger.Info("backtest started",
		zap.String("backtest_id", backtestID),
		zap.Int("trading_days", len(dates)),
		zap.Strings("symbols", e.cfg.Symbols))

	index := indexByDay(marketData)

	status := types.StatusCompleted
	var allTrades []types.Transaction
	var dailyMetrics []types.DailyMetric

	for i, date := range dates {
		if ctx.Err() != nil {
			e.logger.Info("backtest cancelled", zap.String("backtest_id", backtestID))
			status = types.StatusStoppedRisk
			break
		}

		e.report(15+70*i/len(dates), fmt.Sprintf("Processing %s...", date.Format("2006-01-02")))

		dayData := dayMarketData(index, date)

		signals, err := e.strategy(dayData, date, e.params)
		if err != nil {
			e.report(-1, fmt.Sprintf("Backtest failed: %v", err))
			e.logger.Error("strategy callback failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrStrategyFailure, err)
		}

		dayTrades := execution.ExecuteSignals(signals, p, dayData)
		allTrades = append(allTrades, dayTrades...)

		p.RefreshPrices(closePrices(dayData))

		metric := performance.Daily(p, dayTrades, date)
		dailyMetrics = append(dailyMetrics, metric)
		p.RecordSnapshot(date)

		if e.riskLimitBreached(p, metric) {
			e.logger.Info("risk limit breached, stopping run",
				zap.String("backtest_id", backtestID),
				zap.Time("date", date),
				zap.String("drawdown", metric.Drawdown.String()))
			status = types.StatusStoppedRisk
			break
		}
	}

	e.report(90, "Calculating final performance metrics...")

	perfReport := performance.Finalize(dailyMetrics, allTrades, e.cfg.InitialCapital)
	riskReport := risk.Calculate(dailyMetrics, allTrades)

	e.report(100, "Backtest completed successfully")

	endTime := time.Now().UTC()
	result := &types.BacktestResult{
		BacktestID:           backtestID,
		Status:               status,
		Config:               e.cfg,
		TotalReturn:          perfReport.TotalReturn,
		ReturnPercentage:     perfReport.ReturnPercentage,
		SharpeRatio:          perfReport.SharpeRatio,
		MaxDrawdown:          perfReport.MaxDrawdown,
		Volatility:           perfReport.Volatility,
		TotalTrades:          len(allTrades),
		WinningTrades:        perfReport.WinningTrades,
		LosingTrades:         perfReport.LosingTrades,
		WinRate:              perfReport.WinRate,
		DailyReturns:         perfReport.DailyReturns,
		DailyPortfolioValues: perfReport.DailyPortfolioValues,
		DailyMetrics:         dailyMetrics,
		Trades:               execution.TradeRecords(),
		Positions:            p.Positions(),
		Performance:          perfReport,
		Risk:                 riskReport,
		StartTime:            startTime,
		EndTime:              endTime,
		Duration:             endTime.Sub(startTime),
	}

	e.logger.Info("backtest finished",
		zap.String("backtest_id", backtestID),
		zap.String("status", string(status)),
		zap.String("return_pct", result.ReturnPercentage.String()),
		zap.Int("trades", result.TotalTrades),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// riskLimitBreached checks the three stop conditions after a day's
// snapshot: configured max daily loss, the fixed 25% drawdown ceiling, and
// the fixed $1,000 value floor.
func (e *Engine) riskLimitBreached(p *portfolio, metric types.DailyMetric) bool {
	if e.cfg.MaxDailyLoss.IsPositive() && metric.DailyReturn.LessThan(e.cfg.MaxDailyLoss.Neg()) {
		return true
	}
	if metric.Drawdown.GreaterThan(maxDrawdownLimit) {
		return true
	}
	if p.TotalValue().LessThanOrEqual(minPortfolioValue) {
		return true
	}
	return false
}

func (e *Engine) report(percent int, message string) {
	if e.progress != nil {
		e.progress(percent, message)
	}
}

const dayKeyLayout = "2006-01-02"

// indexByDay builds a per-symbol calendar-day index over the input series so
// the date loop can slice a day in constant time.
func indexByDay(marketData map[string][]types.Candle) map[string]map[string]types.Candle {
	index := make(map[string]map[string]types.Candle, len(marketData))
	for symbol, candles := range marketData {
		days := make(map[string]types.Candle, len(candles))
		for _, candle := range candles {
			days[candle.Timestamp.Format(dayKeyLayout)] = candle
		}
		index[symbol] = days
	}
	return index
}

// dayMarketData returns one day's candle per symbol. Symbols without a bar
// that day are simply absent from the map.
func dayMarketData(index map[string]map[string]types.Candle, date time.Time) map[string]types.Candle {
	day := make(map[string]types.Candle, len(index))
	key := date.Format(dayKeyLayout)
	for symbol, days := range index {
		if candle, ok := days[key]; ok {
			day[symbol] = candle
		}
	}
	return day
}

func closePrices(dayData map[string]types.Candle) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(dayData))
	for symbol, candle := range dayData {
		prices[symbol] = candle.Close
	}
	return prices
}
