package engine

import (
	"math"
	"time"

	"marketsim/types"

	"github.com/shopspring/decimal"
)

const tradingDaysPerYear = 252

// DefaultRiskFreeRate is the annual risk-free rate used for Sharpe when no
// override is configured.
var DefaultRiskFreeRate = decimal.RequireFromString("0.02")

// PerformanceCalculator derives per-day and whole-run performance metrics
// from portfolio snapshots and the transaction log. All computations are
// read-only over their inputs.
type PerformanceCalculator struct {
	riskFreeRate decimal.Decimal
}

func NewPerformanceCalculator(annualRiskFree decimal.Decimal) *PerformanceCalculator {
	return &PerformanceCalculator{riskFreeRate: annualRiskFree}
}

// Daily computes the metric row for one trading day from the portfolio's
// current state and its previous snapshot. Call before RecordSnapshot so
// the previous day's value is still the latest snapshot.
func (c *PerformanceCalculator) Daily(p *portfolio, dayTrades []types.Transaction, date time.Time) types.DailyMetric {
	prev := p.initialCash
	if n := len(p.snapshots); n > 0 {
		prev = p.snapshots[n-1].TotalValue
	}

	current := p.TotalValue()

	dailyReturn := decimal.Zero
	if prev.IsPositive() {
		dailyReturn = current.Sub(prev).Div(prev)
	}

	cumulative := decimal.Zero
	if p.initialCash.IsPositive() {
		cumulative = current.Sub(p.initialCash).Div(p.initialCash)
	}

	// Drawdown against the peak as it will stand after today.
	peak := p.peakValue
	if current.GreaterThan(peak) {
		peak = current
	}
	drawdown := decimal.Zero
	if peak.IsPositive() {
		drawdown = peak.Sub(current).Div(peak)
	}

	return types.DailyMetric{
		Date:             date,
		PortfolioValue:   current,
		CashBalance:      p.cash,
		PositionsValue:   p.PositionsValue(),
		DailyReturn:      dailyReturn,
		DailyPnL:         current.Sub(prev),
		CumulativeReturn: cumulative,
		Drawdown:         drawdown,
		TradesExecuted:   len(dayTrades),
		PositionsCount:   len(p.positions),
	}
}

// Finalize aggregates a full run. Degenerate inputs (no days, no trades,
// zero variance) yield a zero-valued report, never an error.
func (c *PerformanceCalculator) Finalize(
	daily []types.DailyMetric,
	trades []types.Transaction,
	initialCapital decimal.Decimal,
) types.PerformanceReport {
	if len(daily) == 0 {
		return types.PerformanceReport{}
	}

	finalValue := daily[len(daily)-1].PortfolioValue
	totalReturn := finalValue.Sub(initialCapital)

	returnPct := decimal.Zero
	if initialCapital.IsPositive() {
		returnPct = finalValue.Div(initialCapital).Sub(decimal.NewFromInt(1))
	}

	allReturns := make([]decimal.Decimal, 0, len(daily))
	values := make([]decimal.Decimal, 0, len(daily))
	var activeReturns []float64
	maxDrawdown := decimal.Zero

	for _, metric := range daily {
		allReturns = append(allReturns, metric.DailyReturn)
		values = append(values, metric.PortfolioValue)
		if !metric.DailyReturn.IsZero() {
			activeReturns = append(activeReturns, metric.DailyReturn.InexactFloat64())
		}
		if metric.Drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = metric.Drawdown
		}
	}

	volatility := sampleStdDev(activeReturns)
	sharpe := c.sharpeRatio(activeReturns, volatility)
	annualized := annualizeReturn(returnPct.InexactFloat64(), len(daily))

	report := types.PerformanceReport{
		TotalReturn:          totalReturn,
		ReturnPercentage:     returnPct,
		AnnualizedReturn:     decimal.NewFromFloat(annualized),
		Volatility:           decimal.NewFromFloat(volatility),
		AnnualizedVolatility: decimal.NewFromFloat(volatility * math.Sqrt(tradingDaysPerYear)),
		SharpeRatio:          decimal.NewFromFloat(sharpe),
		MaxDrawdown:          maxDrawdown,
		TradingDays:          len(daily),
		DailyReturns:         allReturns,
		DailyPortfolioValues: values,
	}

	fillTradeStats(&report, trades)
	return report
}

func (c *PerformanceCalculator) sharpeRatio(returns []float64, volatility float64) float64 {
	if len(returns) == 0 || volatility == 0 {
		return 0
	}
	dailyRiskFree := c.riskFreeRate.InexactFloat64() / tradingDaysPerYear
	excess := mean(returns) - dailyRiskFree
	return excess / volatility * math.Sqrt(tradingDaysPerYear)
}

func annualizeReturn(totalReturnPct float64, tradingDays int) float64 {
	if tradingDays == 0 {
		return 0
	}
	years := float64(tradingDays) / tradingDaysPerYear
	return math.Pow(1+totalReturnPct, 1/years) - 1
}

// lot is one open buy parcel awaiting FIFO matching.
type lot struct {
	quantity decimal.Decimal
	price    decimal.Decimal
	fees     decimal.Decimal
}

// matchRoundTrips reconstructs per-round-trip P&L by matching each sell
// against the oldest open buy lots of the same symbol, allocating the lot
// and sell fees proportionally to the matched quantity.
func matchRoundTrips(trades []types.Transaction) []decimal.Decimal {
	open := make(map[string][]lot)
	var pnls []decimal.Decimal

	for _, tx := range trades {
		switch tx.Type {
		case types.TransactionTypeBuy:
			open[tx.Symbol] = append(open[tx.Symbol], lot{
				quantity: tx.Quantity,
				price:    tx.Price,
				fees:     tx.Fees,
			})

		case types.TransactionTypeSell:
			lots, ok := open[tx.Symbol]
			if !ok {
				continue
			}

			remaining := tx.Quantity
			for remaining.IsPositive() && len(lots) > 0 {
				head := &lots[0]

				closeQty := decimal.Min(remaining, head.quantity)
				pnl := tx.Price.Sub(head.price).Mul(closeQty)
				feeShare := head.fees.Add(tx.Fees).Mul(closeQty.Div(tx.Quantity))
				pnls = append(pnls, pnl.Sub(feeShare))

				head.quantity = head.quantity.Sub(closeQty)
				remaining = remaining.Sub(closeQty)
				if !head.quantity.IsPositive() {
					lots = lots[1:]
				}
			}

			if len(lots) == 0 {
				delete(open, tx.Symbol)
			} else {
				open[tx.Symbol] = lots
			}
		}
	}

	return pnls
}

func fillTradeStats(report *types.PerformanceReport, trades []types.Transaction) {
	pnls := matchRoundTrips(trades)
	if len(pnls) == 0 {
		return
	}

	total := decimal.Zero
	for _, pnl := range pnls {
		total = total.Add(pnl)
		switch {
		case pnl.IsPositive():
			report.WinningTrades++
		case pnl.IsNegative():
			report.LosingTrades++
		}
	}

	count := decimal.NewFromInt(int64(len(pnls)))
	report.TotalTrades = len(pnls)
	report.WinRate = decimal.NewFromInt(int64(report.WinningTrades)).Div(count)
	report.AvgTradeReturn = total.Div(count)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev returns the sample standard deviation, zero for fewer than
// two observations.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		diff := x - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
