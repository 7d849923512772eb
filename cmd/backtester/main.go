package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"marketsim/internal/config"
	"marketsim/internal/engine"
	"marketsim/internal/repository"
	"marketsim/strategies/momentum"
	"marketsim/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := repository.NewDatabase(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	btCfg, err := buildBacktestConfig(cfg.Backtest)
	if err != nil {
		logger.Fatal("Invalid backtest configuration", zap.Error(err))
	}

	btCfg.Symbols = engine.ValidateSymbols(ctx, db, btCfg.Symbols, logger)
	if len(btCfg.Symbols) == 0 {
		logger.Fatal("No configured symbol exists in the asset catalog")
	}

	marketData := engine.FetchMarketData(ctx, db, btCfg, logger)
	if len(marketData) == 0 {
		logger.Fatal("No market data available for any configured symbol")
	}

	bar := newProgressBar()
	progress := func(percent int, message string) {
		if percent < 0 {
			return
		}
		bar.Describe(message)
		bar.Set(percent)
	}

	riskFree, err := decimal.NewFromString(cfg.Backtest.RiskFreeRate)
	if err != nil {
		riskFree = engine.DefaultRiskFreeRate
	}

	eng := engine.New(btCfg, momentum.New(20),
		engine.WithLogger(logger),
		engine.WithProgress(progress),
		engine.WithRiskFreeRate(riskFree),
		engine.WithParameters(map[string]string{"quantity": "100"}),
	)

	result, err := eng.Run(ctx, marketData)
	if err != nil {
		logger.Fatal("Backtest failed", zap.Error(err))
	}

	engine.PrintResult(os.Stdout, result)

	if err := engine.WriteTradesCSVFile(cfg.Output.TradesCSV, result.Trades); err != nil {
		logger.Error("Failed to write trades CSV", zap.Error(err))
	}
	if err := engine.WriteDailyMetricsCSVFile(cfg.Output.DailyCSV, result.DailyMetrics); err != nil {
		logger.Error("Failed to write daily metrics CSV", zap.Error(err))
	}
}

func buildBacktestConfig(raw config.BacktestConfig) (types.BacktestConfig, error) {
	start, err := time.Parse("2006-01-02", raw.StartDate)
	if err != nil {
		return types.BacktestConfig{}, err
	}
	end, err := time.Parse("2006-01-02", raw.EndDate)
	if err != nil {
		return types.BacktestConfig{}, err
	}
	capital, err := decimal.NewFromString(raw.InitialCapital)
	if err != nil {
		return types.BacktestConfig{}, err
	}

	cfg := types.NewBacktestConfig(start, end, capital, raw.Symbols)
	if v, err := decimal.NewFromString(raw.CommissionPerShare); err == nil {
		cfg.CommissionPerShare = v
	}
	if v, err := decimal.NewFromString(raw.CommissionPercentage); err == nil {
		cfg.CommissionPercentage = v
	}
	if v, err := decimal.NewFromString(raw.Slippage); err == nil {
		cfg.Slippage = v
	}
	if v, err := decimal.NewFromString(raw.MarketImpact); err == nil {
		cfg.MarketImpact = v
	}
	if raw.MaxDailyLoss != "" {
		if v, err := decimal.NewFromString(raw.MaxDailyLoss); err == nil {
			cfg.MaxDailyLoss = v
		}
	}
	if raw.ExecutionDelay > 0 {
		cfg.ExecutionDelay = raw.ExecutionDelay
	}
	return cfg, nil
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapCfg := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapCfg.Build()
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
