package engine

import (
	"math"
	"sort"

	"marketsim/types"

	"github.com/shopspring/decimal"
)

// RiskCalculator derives downside and tail-risk metrics from the daily
// metric sequence. Stateless; safe to share across runs.
type RiskCalculator struct{}

func NewRiskCalculator() *RiskCalculator {
	return &RiskCalculator{}
}

// Calculate aggregates the risk bundle. Empty or degenerate inputs yield a
// zero-valued report.
func (c *RiskCalculator) Calculate(daily []types.DailyMetric, trades []types.Transaction) types.RiskReport {
	if len(daily) == 0 {
		return types.RiskReport{}
	}

	returns := make([]float64, 0, len(daily))
	maxDrawdown := 0.0
	var drawdownSum float64
	var drawdownDays int

	for _, metric := range daily {
		returns = append(returns, metric.DailyReturn.InexactFloat64())

		dd := metric.Drawdown.InexactFloat64()
		if dd > maxDrawdown {
			maxDrawdown = dd
		}
		if dd > 0 {
			drawdownSum += dd
			drawdownDays++
		}
	}

	avgDrawdown := 0.0
	if drawdownDays > 0 {
		avgDrawdown = drawdownSum / float64(drawdownDays)
	}

	volatility := sampleStdDev(returns)
	downside := downsideDeviation(returns)

	return types.RiskReport{
		MaxDrawdown:          decimal.NewFromFloat(maxDrawdown),
		AvgDrawdown:          decimal.NewFromFloat(avgDrawdown),
		Volatility:           decimal.NewFromFloat(volatility),
		AnnualizedVolatility: decimal.NewFromFloat(volatility * math.Sqrt(tradingDaysPerYear)),
		DownsideDeviation:    decimal.NewFromFloat(downside),
		SortinoRatio:         decimal.NewFromFloat(sortinoRatio(returns, downside)),
		CalmarRatio:          decimal.NewFromFloat(calmarRatio(returns, maxDrawdown)),
		VaR95:                decimal.NewFromFloat(valueAtRisk(returns, 0.95)),
		VaR99:                decimal.NewFromFloat(valueAtRisk(returns, 0.99)),
		MaxConsecutiveLosses: maxConsecutiveLosses(returns),
	}
}

// downsideDeviation is the sample standard deviation of the negative
// returns only.
func downsideDeviation(returns []float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	return sampleStdDev(negative)
}

func sortinoRatio(returns []float64, downside float64) float64 {
	if downside == 0 || len(returns) == 0 {
		return 0
	}
	return mean(returns) / downside * math.Sqrt(tradingDaysPerYear)
}

func calmarRatio(returns []float64, maxDrawdown float64) float64 {
	if maxDrawdown == 0 || len(returns) == 0 {
		return 0
	}
	return mean(returns) * tradingDaysPerYear / maxDrawdown
}

// valueAtRisk is the historical return at the lower (1-confidence)
// percentile of the sorted daily returns.
func valueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	idx := int((1 - confidence) * float64(len(sorted)))
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func maxConsecutiveLosses(returns []float64) int {
	longest, current := 0, 0
	for _, r := range returns {
		if r < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
