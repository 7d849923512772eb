package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalType string

const (
	SignalTypeBuy  SignalType = "buy"
	SignalTypeSell SignalType = "sell"
	SignalTypeHold SignalType = "hold"
)

type Signal struct {
	Symbol      string
	Type        SignalType
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Strength    decimal.Decimal
	Confidence  decimal.Decimal
	GeneratedAt time.Time
}

func NewSignal(
	symbol string,
	signalType SignalType,
	quantity decimal.Decimal,
	price decimal.Decimal,
	generatedAt time.Time,
) Signal {
	return Signal{
		Symbol:      symbol,
		Type:        signalType,
		Quantity:    quantity,
		Price:       price,
		GeneratedAt: generatedAt,
	}
}
