package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the backtester CLI.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Backtest BacktestConfig
	Output   OutputConfig
}

// DatabaseConfig holds database specific configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoggingConfig holds logging specific configuration.
type LoggingConfig struct {
	Level string
}

// BacktestConfig holds the run defaults; dates are parsed by the caller.
type BacktestConfig struct {
	StartDate            string
	EndDate              string
	InitialCapital       string
	Symbols              []string
	CommissionPerShare   string
	CommissionPercentage string
	Slippage             string
	MaxDailyLoss         string
	ExecutionDelay       time.Duration
	MarketImpact         string
	RiskFreeRate         string
}

// OutputConfig holds report/export destinations.
type OutputConfig struct {
	TradesCSV string
	DailyCSV  string
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("logging.level", "info")

	v.SetDefault("backtest.initialCapital", "100000")
	v.SetDefault("backtest.commissionPerShare", "0.01")
	v.SetDefault("backtest.commissionPercentage", "0.0")
	v.SetDefault("backtest.slippage", "0.001")
	v.SetDefault("backtest.executionDelay", "1m")
	v.SetDefault("backtest.marketImpact", "0.0005")
	v.SetDefault("backtest.riskFreeRate", "0.02")

	v.SetDefault("output.tradesCSV", "trades.csv")
	v.SetDefault("output.dailyCSV", "daily_metrics.csv")
}

// DSN builds the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}
