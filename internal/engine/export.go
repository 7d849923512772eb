package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"marketsim/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WriteTradesCSVFile writes the per-trade records to a CSV file at path.
func WriteTradesCSVFile(path string, trades []types.TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return WriteTradesCSV(f, trades)
}

// WriteTradesCSV writes the per-trade records to any io.Writer as CSV. Each
// row includes the portfolio value and cash balance immediately after the
// trade.
func WriteTradesCSV(w io.Writer, trades []types.TradeRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"symbol",
		"trade_type",
		"quantity",
		"price",
		"total_amount",
		"commission",
		"signal_timestamp",
		"execution_timestamp",
		"portfolio_value",
		"cash_balance",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, trade := range trades {
		record := []string{
			trade.Symbol,
			string(trade.Type),
			trade.Quantity.String(),
			trade.Price.String(),
			trade.TotalAmount.String(),
			trade.Fees.String(),
			trade.CreatedAt.Format(time.RFC3339),
			trade.ExecutedAt.Format(time.RFC3339),
			trade.PortfolioValue.String(),
			trade.CashBalance.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteDailyMetricsCSVFile writes the per-day metric rows to a CSV file.
func WriteDailyMetricsCSVFile(path string, metrics []types.DailyMetric) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create daily metrics file: %w", err)
	}
	defer f.Close()

	return WriteDailyMetricsCSV(f, metrics)
}

func WriteDailyMetricsCSV(w io.Writer, metrics []types.DailyMetric) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"portfolio_value",
		"cash_balance",
		"positions_value",
		"daily_return",
		"daily_pnl",
		"cumulative_return",
		"drawdown",
		"trades_executed",
		"positions_count",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, metric := range metrics {
		record := []string{
			metric.Date.Format("2006-01-02"),
			metric.PortfolioValue.String(),
			metric.CashBalance.String(),
			metric.PositionsValue.String(),
			metric.DailyReturn.String(),
			metric.DailyPnL.String(),
			metric.CumulativeReturn.String(),
			metric.Drawdown.String(),
			fmt.Sprintf("%d", metric.TradesExecuted),
			fmt.Sprintf("%d", metric.PositionsCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// PrintResult writes a human-readable summary of a finished run to w.
func PrintResult(w io.Writer, result *types.BacktestResult) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Backtest ID:           %s\n", result.BacktestID)
	fmt.Fprintf(w, "Status:                %s\n", result.Status)
	fmt.Fprintf(w, "Period:                %s to %s\n",
		result.Config.StartDate.Format("2006-01-02"),
		result.Config.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Trading Days:          %d\n", result.Performance.TradingDays)

	fmt.Fprintln(w, "\n-- Performance --")
	fmt.Fprintf(w, "Total Return:          %s\n", result.TotalReturn.StringFixed(2))
	fmt.Fprintf(w, "Return %%:              %s\n", result.ReturnPercentage.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Annualized Return:     %s\n", result.Performance.AnnualizedReturn.StringFixed(4))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", result.SharpeRatio.StringFixed(4))
	fmt.Fprintf(w, "Max Drawdown:          %s\n", result.MaxDrawdown.StringFixed(4))
	fmt.Fprintf(w, "Volatility:            %s\n", result.Volatility.StringFixed(6))

	fmt.Fprintln(w, "\n-- Trades --")
	fmt.Fprintf(w, "Transactions:          %d\n", result.TotalTrades)
	fmt.Fprintf(w, "Round Trips:           %d\n", result.Performance.TotalTrades)
	fmt.Fprintf(w, "Winning / Losing:      %d / %d\n", result.WinningTrades, result.LosingTrades)
	fmt.Fprintf(w, "Win Rate:              %s\n", result.WinRate.StringFixed(4))

	fmt.Fprintln(w, "\n-- Risk --")
	fmt.Fprintf(w, "Sortino Ratio:         %s\n", result.Risk.SortinoRatio.StringFixed(4))
	fmt.Fprintf(w, "Calmar Ratio:          %s\n", result.Risk.CalmarRatio.StringFixed(4))
	fmt.Fprintf(w, "VaR 95%% / 99%%:         %s / %s\n",
		result.Risk.VaR95.StringFixed(6), result.Risk.VaR99.StringFixed(6))
	fmt.Fprintf(w, "Max Loss Streak:       %d days\n", result.Risk.MaxConsecutiveLosses)

	fmt.Fprintf(w, "\nDuration:              %s\n", result.Duration)
	fmt.Fprintln(w, "===========================")
}
