package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionType string

const (
	PositionTypeLong  PositionType = "long"
	PositionTypeShort PositionType = "short"
)

type Position struct {
	Symbol       string
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
	CurrentPrice decimal.Decimal
	Type         PositionType
	OpenedAt     time.Time
	UpdatedAt    time.Time
}

// MarketValue is quantity times the last known price, zero until the
// position has been priced.
func (p Position) MarketValue() decimal.Decimal {
	if p.CurrentPrice.IsZero() {
		return decimal.Zero
	}
	return p.Quantity.Mul(p.CurrentPrice)
}

func (p Position) UnrealizedPnL() decimal.Decimal {
	if p.CurrentPrice.IsZero() {
		return decimal.Zero
	}
	return p.CurrentPrice.Sub(p.AveragePrice).Mul(p.Quantity)
}

func (p Position) CostBasis() decimal.Decimal {
	return p.AveragePrice.Mul(p.Quantity.Abs())
}
