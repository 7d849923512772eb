package engine

import (
	"testing"

	"marketsim/types"

	"github.com/shopspring/decimal"
)

func metricDay(day int, ret, drawdown, value string) types.DailyMetric {
	return types.DailyMetric{
		Date:           testTime.AddDate(0, 0, day),
		PortfolioValue: dec(value),
		DailyReturn:    dec(ret),
		Drawdown:       dec(drawdown),
	}
}

func TestDailyMetric(t *testing.T) {
	calc := NewPerformanceCalculator(DefaultRiskFreeRate)
	p := newPortfolio(dec("10000"), "test")
	if !p.Apply(buyTx("AAPL", "100", "50", "0")) {
		t.Fatal("setup buy rejected")
	}

	// Day one: position appreciates, no prior snapshot so the baseline is
	// the initial capital.
	p.RefreshPrices(map[string]decimal.Decimal{"AAPL": dec("55")})
	m := calc.Daily(p, nil, testTime)

	if !m.PortfolioValue.Equal(dec("10500")) {
		t.Errorf("portfolio value = %s, want 10500", m.PortfolioValue)
	}
	if !m.DailyReturn.Equal(dec("0.05")) {
		t.Errorf("daily return = %s, want 0.05", m.DailyReturn)
	}
	if !m.DailyPnL.Equal(dec("500")) {
		t.Errorf("daily pnl = %s, want 500", m.DailyPnL)
	}
	if !m.CumulativeReturn.Equal(dec("0.05")) {
		t.Errorf("cumulative return = %s, want 0.05", m.CumulativeReturn)
	}
	if !m.Drawdown.IsZero() {
		t.Errorf("drawdown = %s, want 0 on a new-high day", m.Drawdown)
	}
	if !m.CashBalance.Equal(dec("5000")) {
		t.Errorf("cash = %s, want 5000", m.CashBalance)
	}
	if m.PositionsCount != 1 {
		t.Errorf("positions count = %d, want 1", m.PositionsCount)
	}

	// Day two: snapshot yesterday, then give back some of the gain.
	p.RecordSnapshot(testTime)
	p.RefreshPrices(map[string]decimal.Decimal{"AAPL": dec("52.5")})
	m = calc.Daily(p, nil, testTime.AddDate(0, 0, 1))

	decApproxEqual(t, dec("-0.0238095"), m.DailyReturn, "0.0000001", "day two return")
	decApproxEqual(t, dec("0.0238095"), m.Drawdown, "0.0000001", "day two drawdown")
	if !m.DailyPnL.Equal(dec("-250")) {
		t.Errorf("day two pnl = %s, want -250", m.DailyPnL)
	}
	if !m.CumulativeReturn.Equal(dec("0.025")) {
		t.Errorf("day two cumulative = %s, want 0.025", m.CumulativeReturn)
	}
}

func TestFinalizeEmptyRun(t *testing.T) {
	calc := NewPerformanceCalculator(DefaultRiskFreeRate)
	report := calc.Finalize(nil, nil, dec("10000"))

	if !report.TotalReturn.IsZero() || report.TradingDays != 0 {
		t.Errorf("empty run should yield a zero report, got %+v", report)
	}
}

func TestFinalizeDegenerateVolatility(t *testing.T) {
	tests := []struct {
		name  string
		daily []types.DailyMetric
	}{
		{
			name: "all flat days",
			daily: []types.DailyMetric{
				metricDay(0, "0", "0", "10000"),
				metricDay(1, "0", "0", "10000"),
				metricDay(2, "0", "0", "10000"),
			},
		},
		{
			name: "single active day",
			daily: []types.DailyMetric{
				metricDay(0, "0", "0", "10000"),
				metricDay(1, "0.01", "0", "10100"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewPerformanceCalculator(DefaultRiskFreeRate)
			report := calc.Finalize(tt.daily, nil, dec("10000"))

			if !report.Volatility.IsZero() {
				t.Errorf("volatility = %s, want 0", report.Volatility)
			}
			if !report.SharpeRatio.IsZero() {
				t.Errorf("sharpe = %s, want 0 when volatility is 0", report.SharpeRatio)
			}
		})
	}
}

func TestFinalizeComputesRunMetrics(t *testing.T) {
	daily := []types.DailyMetric{
		metricDay(0, "0.01", "0", "10100"),
		metricDay(1, "-0.02", "0.02", "9898"),
		metricDay(2, "0", "0.02", "9898"),
		metricDay(3, "0.03", "0", "10200"),
	}

	calc := NewPerformanceCalculator(DefaultRiskFreeRate)
	report := calc.Finalize(daily, nil, dec("10000"))

	if !report.TotalReturn.Equal(dec("200")) {
		t.Errorf("total return = %s, want 200", report.TotalReturn)
	}
	if !report.ReturnPercentage.Equal(dec("0.02")) {
		t.Errorf("return pct = %s, want 0.02", report.ReturnPercentage)
	}
	if report.TradingDays != 4 {
		t.Errorf("trading days = %d, want 4", report.TradingDays)
	}
	if !report.MaxDrawdown.Equal(dec("0.02")) {
		t.Errorf("max drawdown = %s, want 0.02", report.MaxDrawdown)
	}
	if len(report.DailyReturns) != 4 {
		t.Errorf("daily returns holds %d entries, want all 4 including flat days", len(report.DailyReturns))
	}

	// Volatility over the three non-zero returns only.
	decApproxEqual(t, dec("0.0251661"), report.Volatility, "0.0001", "volatility")
	decApproxEqual(t, dec("4.155"), report.SharpeRatio, "0.01", "sharpe")
	// (1.02)^(252/4) - 1
	decApproxEqual(t, dec("2.4819"), report.AnnualizedReturn, "0.001", "annualized return")
}

func TestMatchRoundTripsFIFO(t *testing.T) {
	trades := []types.Transaction{
		buyTx("AAPL", "100", "10", "1"),
		buyTx("AAPL", "50", "12", "0.5"),
		sellTx("AAPL", "120", "15", "1.2"),
	}

	pnls := matchRoundTrips(trades)
	if len(pnls) != 2 {
		t.Fatalf("want 2 round trips, got %d", len(pnls))
	}

	// First lot: (15-10)*100 - (1+1.2)*(100/120)
	decApproxEqual(t, dec("498.1667"), pnls[0], "0.001", "first round trip")
	// Second lot: (15-12)*20 - (0.5+1.2)*(20/120)
	decApproxEqual(t, dec("59.7167"), pnls[1], "0.001", "second round trip")
}

func TestMatchRoundTripsEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		trades  []types.Transaction
		wantLen int
	}{
		{
			name:    "sell with no open lots is skipped",
			trades:  []types.Transaction{sellTx("AAPL", "100", "15", "0")},
			wantLen: 0,
		},
		{
			name: "sell beyond open quantity matches what exists",
			trades: []types.Transaction{
				buyTx("AAPL", "100", "10", "0"),
				sellTx("AAPL", "150", "15", "0"),
			},
			wantLen: 1,
		},
		{
			name: "symbols are matched independently",
			trades: []types.Transaction{
				buyTx("AAPL", "100", "10", "0"),
				buyTx("MSFT", "50", "20", "0"),
				sellTx("AAPL", "100", "11", "0"),
				sellTx("MSFT", "50", "19", "0"),
			},
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pnls := matchRoundTrips(tt.trades)
			if len(pnls) != tt.wantLen {
				t.Errorf("round trips = %d, want %d", len(pnls), tt.wantLen)
			}
		})
	}
}

func TestTradeStats(t *testing.T) {
	trades := []types.Transaction{
		buyTx("AAPL", "100", "10", "1"),
		buyTx("AAPL", "50", "12", "0.5"),
		sellTx("AAPL", "120", "15", "1.2"),
		buyTx("MSFT", "10", "100", "0"),
		sellTx("MSFT", "10", "90", "0"),
	}

	var report types.PerformanceReport
	fillTradeStats(&report, trades)

	if report.TotalTrades != 3 {
		t.Errorf("total trades = %d, want 3", report.TotalTrades)
	}
	if report.WinningTrades != 2 || report.LosingTrades != 1 {
		t.Errorf("win/loss = %d/%d, want 2/1", report.WinningTrades, report.LosingTrades)
	}
	decApproxEqual(t, dec("0.6667"), report.WinRate, "0.0001", "win rate")
}

func TestAnnualizeReturn(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		days int
		want string
	}{
		{"zero days", 0.05, 0, "0"},
		{"full year is identity", 0.10, 252, "0.10"},
		{"half year compounds", 0.05, 126, "0.1025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annualizeReturn(tt.pct, tt.days)
			decApproxEqual(t, dec(tt.want), decimal.NewFromFloat(got), "0.0001", "annualized")
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	if got := sampleStdDev(nil); got != 0 {
		t.Errorf("stddev of nothing = %f, want 0", got)
	}
	if got := sampleStdDev([]float64{0.05}); got != 0 {
		t.Errorf("stddev of one value = %f, want 0", got)
	}
	got := sampleStdDev([]float64{0.01, -0.01})
	decApproxEqual(t, dec("0.0141421"), decimal.NewFromFloat(got), "0.0001", "two-point stddev")
}
