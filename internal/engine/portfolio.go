package engine

import (
	"time"

	"marketsim/types"

	"github.com/shopspring/decimal"
)

// portfolio is the simulated portfolio of a single backtest run. It keeps
// the same accounting rules as a live portfolio: cash can never go negative
// from a buy, positions use weighted-average cost basis, and a position is
// removed the moment its quantity reaches zero.
type portfolio struct {
	name        string
	initialCash decimal.Decimal
	cash        decimal.Decimal

	positions    map[string]*types.Position
	transactions []types.Transaction
	snapshots    []types.DailySnapshot

	peakValue decimal.Decimal
	createdAt time.Time
	updatedAt time.Time
}

func newPortfolio(initialCash decimal.Decimal, name string) *portfolio {
	now := time.Now().UTC()
	return &portfolio{
		name:        name,
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*types.Position),
		peakValue:   initialCash,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Apply validates and applies one transaction. It reports false and leaves
// the portfolio untouched when the transaction cannot be honored: a buy that
// costs more than the available cash, or a sell of shares not held.
func (p *portfolio) Apply(tx types.Transaction) bool {
	switch tx.Type {
	case types.TransactionTypeBuy:
		totalCost := tx.TotalAmount.Add(tx.Fees)
		if totalCost.GreaterThan(p.cash) {
			return false
		}
		p.applyBuy(tx, totalCost)

	case types.TransactionTypeSell:
		pos, ok := p.positions[tx.Symbol]
		if !ok || pos.Quantity.LessThan(tx.Quantity) {
			return false
		}
		p.applySell(tx, pos)

	case types.TransactionTypeDividend:
		p.cash = p.cash.Add(tx.TotalAmount)

	case types.TransactionTypeFee:
		p.cash = p.cash.Sub(tx.TotalAmount)

	case types.TransactionTypeSplit:
		// Cash-neutral; share adjustments are not modeled.

	default:
		return false
	}

	p.transactions = append(p.transactions, tx)
	p.updatedAt = tx.ExecutedAt
	return true
}

func (p *portfolio) applyBuy(tx types.Transaction, totalCost decimal.Decimal) {
	p.cash = p.cash.Sub(totalCost)

	if pos, ok := p.positions[tx.Symbol]; ok {
		newQty := pos.Quantity.Add(tx.Quantity)
		pos.AveragePrice = weightedAvg(pos.AveragePrice, pos.Quantity, tx.Price, tx.Quantity)
		pos.Quantity = newQty
		pos.UpdatedAt = tx.ExecutedAt
		return
	}

	p.positions[tx.Symbol] = &types.Position{
		Symbol:       tx.Symbol,
		Quantity:     tx.Quantity,
		AveragePrice: tx.Price,
		CurrentPrice: tx.Price,
		Type:         types.PositionTypeLong,
		OpenedAt:     tx.ExecutedAt,
		UpdatedAt:    tx.ExecutedAt,
	}
}

func (p *portfolio) applySell(tx types.Transaction, pos *types.Position) {
	p.cash = p.cash.Add(tx.TotalAmount.Sub(tx.Fees))

	// The average price only changes on buys.
	pos.Quantity = pos.Quantity.Sub(tx.Quantity)
	pos.UpdatedAt = tx.ExecutedAt

	if pos.Quantity.LessThanOrEqual(decimal.Zero) {
		delete(p.positions, tx.Symbol)
	}
}

// weightedAvg blends an existing cost basis with a new purchase:
// (q1*p1 + q2*p2) / (q1 + q2).
func weightedAvg(existingAvg, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvg.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}

// RefreshPrices updates the last known price of every held position present
// in the map. Symbols without a quote today are left untouched.
func (p *portfolio) RefreshPrices(prices map[string]decimal.Decimal) {
	now := time.Now().UTC()
	for symbol, pos := range p.positions {
		if price, ok := prices[symbol]; ok {
			pos.CurrentPrice = price
			pos.UpdatedAt = now
		}
	}
	p.updatedAt = now
}

func (p *portfolio) TotalValue() decimal.Decimal {
	return p.cash.Add(p.PositionsValue())
}

func (p *portfolio) PositionsValue() decimal.Decimal {
	value := decimal.Zero
	for _, pos := range p.positions {
		value = value.Add(pos.MarketValue())
	}
	return value
}

func (p *portfolio) UnrealizedPnL() decimal.Decimal {
	pnl := decimal.Zero
	for _, pos := range p.positions {
		pnl = pnl.Add(pos.UnrealizedPnL())
	}
	return pnl
}

func (p *portfolio) RealizedPnL() decimal.Decimal {
	return p.TotalValue().Sub(p.initialCash).Sub(p.UnrealizedPnL())
}

// CurrentDrawdown is the fractional decline from the running peak, zero
// when no peak has been established.
func (p *portfolio) CurrentDrawdown() decimal.Decimal {
	if p.peakValue.IsZero() {
		return decimal.Zero
	}
	return p.peakValue.Sub(p.TotalValue()).Div(p.peakValue)
}

// RecordSnapshot appends the end-of-day state and advances the peak value
// when today's total exceeds it.
func (p *portfolio) RecordSnapshot(date time.Time) {
	total := p.TotalValue()

	returnPct := decimal.Zero
	if p.initialCash.IsPositive() {
		returnPct = total.Div(p.initialCash).Sub(decimal.NewFromInt(1))
	}

	p.snapshots = append(p.snapshots, types.DailySnapshot{
		Date:             date,
		TotalValue:       total,
		Cash:             p.cash,
		PositionsValue:   p.PositionsValue(),
		UnrealizedPnL:    p.UnrealizedPnL(),
		RealizedPnL:      p.RealizedPnL(),
		TotalReturn:      total.Sub(p.initialCash),
		ReturnPercentage: returnPct,
		PositionCount:    len(p.positions),
	})

	if total.GreaterThan(p.peakValue) {
		p.peakValue = total
	}
}

// Position returns a copy of the position for symbol.
func (p *portfolio) Position(symbol string) (types.Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return types.Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions; callers never alias the
// portfolio's own map.
func (p *portfolio) Positions() []types.Position {
	out := make([]types.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	return out
}

func (p *portfolio) Transactions() []types.Transaction {
	out := make([]types.Transaction, len(p.transactions))
	copy(out, p.transactions)
	return out
}

func (p *portfolio) Snapshots() []types.DailySnapshot {
	out := make([]types.DailySnapshot, len(p.snapshots))
	copy(out, p.snapshots)
	return out
}

// Summary exposes the same bundle shape a live portfolio reports.
func (p *portfolio) Summary() types.PortfolioSummary {
	total := p.TotalValue()

	returnPct := decimal.Zero
	if p.initialCash.IsPositive() {
		returnPct = total.Div(p.initialCash).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	}

	return types.PortfolioSummary{
		Name:             p.name,
		InitialCash:      p.initialCash,
		CurrentCash:      p.cash,
		TotalValue:       total,
		PositionsValue:   p.PositionsValue(),
		TotalReturn:      total.Sub(p.initialCash),
		ReturnPercentage: returnPct,
		UnrealizedPnL:    p.UnrealizedPnL(),
		RealizedPnL:      p.RealizedPnL(),
		CurrentDrawdown:  p.CurrentDrawdown(),
		PeakValue:        p.peakValue,
		PositionCount:    len(p.positions),
		TransactionCount: len(p.transactions),
		CreatedAt:        p.createdAt,
		UpdatedAt:        p.updatedAt,
	}
}
