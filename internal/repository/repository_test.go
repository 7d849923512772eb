package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAssetByTickerQueryShape(t *testing.T) {
	for _, want := range []string{"FROM assets", "WHERE ticker = $1"} {
		if !strings.Contains(assetByTickerQuery, want) {
			t.Errorf("asset query missing %q:\n%s", want, assetByTickerQuery)
		}
	}
}

func TestDailyCandlesQueryShape(t *testing.T) {
	for _, want := range []string{
		"FROM daily_candles",
		"JOIN assets",
		"a.ticker = $1",
		"c.bucket >= $2",
		"c.bucket <= $3",
		"ORDER BY c.bucket",
	} {
		if !strings.Contains(dailyCandlesQuery, want) {
			t.Errorf("candle query missing %q:\n%s", want, dailyCandlesQuery)
		}
	}

	// Selected columns must line up with the scan order in GetDailyCandles.
	wantColumns := "SELECT c.open, c.high, c.low, c.close, c.volume, c.bucket"
	if !strings.Contains(dailyCandlesQuery, wantColumns) {
		t.Errorf("candle query column order changed:\n%s", dailyCandlesQuery)
	}
}

func TestSentinelErrors(t *testing.T) {
	if errors.Is(ErrAssetNotFound, ErrNoCandles) {
		t.Error("sentinel errors must be distinct")
	}

	// Callers match wrapped sentinels with errors.Is, the same way
	// GetAssetByTicker wraps a missing ticker.
	wrapped := fmt.Errorf("ticker %s: %w", "GARBAGE", ErrAssetNotFound)
	if !errors.Is(wrapped, ErrAssetNotFound) {
		t.Error("wrapped ErrAssetNotFound not matchable with errors.Is")
	}
}
