// Package momentum provides a simple moving-average momentum strategy used
// to exercise the backtest engine's injected-strategy contract. It buys
// when the close crosses above its SMA and sells the position when the
// close crosses back below.
package momentum

import (
	"strconv"
	"time"

	"marketsim/internal/engine"
	"marketsim/types"

	"github.com/shopspring/decimal"
)

type symbolState struct {
	closes  []decimal.Decimal
	holding bool
}

// New returns a strategy callback with an SMA window of the given length.
// The callback keeps per-symbol history across days; a single backtest run
// is sequential, so no locking is needed.
func New(window int) engine.Strategy {
	if window < 2 {
		window = 2
	}
	state := make(map[string]*symbolState)

	return func(dayData map[string]types.Candle, date time.Time, params map[string]string) ([]types.Signal, error) {
		quantity := orderQuantity(params)

		var signals []types.Signal
		for symbol, candle := range dayData {
			s, ok := state[symbol]
			if !ok {
				s = &symbolState{}
				state[symbol] = s
			}

			s.closes = append(s.closes, candle.Close)
			if len(s.closes) < window {
				continue
			}
			if len(s.closes) > window {
				s.closes = s.closes[1:]
			}

			avg := sma(s.closes)
			above := candle.Close.GreaterThan(avg)

			switch {
			case above && !s.holding:
				s.holding = true
				signals = append(signals, types.NewSignal(
					symbol, types.SignalTypeBuy, quantity, candle.Close, date))
			case !above && s.holding:
				s.holding = false
				signals = append(signals, types.NewSignal(
					symbol, types.SignalTypeSell, quantity, candle.Close, date))
			}
		}
		return signals, nil
	}
}

func sma(closes []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range closes {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(len(closes))))
}

func orderQuantity(params map[string]string) decimal.Decimal {
	if raw, ok := params["quantity"]; ok {
		if qty, err := strconv.ParseInt(raw, 10, 64); err == nil && qty > 0 {
			return decimal.NewFromInt(qty)
		}
	}
	return decimal.NewFromInt(100)
}
