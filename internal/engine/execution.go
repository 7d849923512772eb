package engine

import (
	"time"

	"marketsim/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var oneThousand = decimal.NewFromInt(1000)

// Order lives inside the execution engine only for as long as it is
// pending; market orders fill or fail within the same day and are never
// kept as pending.
type Order struct {
	ID         string
	Symbol     string
	Type       types.OrderType
	Side       types.Side
	Quantity   decimal.Decimal
	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal
	Status     types.OrderStatus

	CreatedAt      time.Time
	FilledAt       time.Time
	FilledQuantity decimal.Decimal
	FilledPrice    decimal.Decimal
	Commission     decimal.Decimal

	// Carried from the generating signal into the transaction.
	signalStrength  decimal.Decimal
	confidenceScore decimal.Decimal
}

func NewOrder(symbol string, orderType types.OrderType, side types.Side, quantity decimal.Decimal, createdAt time.Time) *Order {
	return &Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Type:      orderType,
		Side:      side,
		Quantity:  quantity,
		Status:    types.OrderPending,
		CreatedAt: createdAt,
	}
}

// ExecutionEngine converts signals into orders and fills them against one
// day of market data using the configured cost model. It owns the set of
// still-open limit/stop orders across days.
type ExecutionEngine struct {
	cfg    types.BacktestConfig
	logger *zap.Logger

	pending  []*Order
	executed []*Order
	rejected int

	records []types.TradeRecord
}

func NewExecutionEngine(cfg types.BacktestConfig, logger *zap.Logger) *ExecutionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionEngine{cfg: cfg, logger: logger}
}

// ExecuteSignals turns buy/sell signals into market orders, fills them
// against the day's close prices, applies the resulting transactions to the
// portfolio, and then re-evaluates any pending limit/stop orders against the
// day's range. Signals the engine cannot act on are skipped, never fatal.
func (e *ExecutionEngine) ExecuteSignals(
	signals []types.Signal,
	p *portfolio,
	dayData map[string]types.Candle,
) []types.Transaction {
	var executed []types.Transaction

	for _, signal := range signals {
		order := e.signalToOrder(signal)
		if order == nil {
			continue
		}

		tx, ok := e.fillMarketOrder(order, dayData)
		if !ok {
			// No market data for the symbol today; drop silently.
			continue
		}

		if !p.Apply(tx) {
			order.Status = types.OrderRejected
			e.rejected++
			e.logger.Debug("order rejected by portfolio",
				zap.String("symbol", order.Symbol),
				zap.String("side", string(order.Side)))
			continue
		}

		e.markFilled(order, tx)
		e.recordTrade(tx, p)
		executed = append(executed, tx)
	}

	executed = append(executed, e.processPending(p, dayData)...)
	return executed
}

// PlaceOrder queues a limit/stop/stop-limit order for evaluation on
// subsequent days. Market orders are not queued; they only exist within
// ExecuteSignals.
func (e *ExecutionEngine) PlaceOrder(order *Order) {
	if order == nil || order.Type == types.TypeMarket {
		return
	}
	order.Status = types.OrderPending
	e.pending = append(e.pending, order)
}

func (e *ExecutionEngine) signalToOrder(signal types.Signal) *Order {
	var side types.Side
	switch signal.Type {
	case types.SignalTypeBuy:
		side = types.SideTypeBuy
	case types.SignalTypeSell:
		side = types.SideTypeSell
	default:
		return nil
	}

	if !signal.Quantity.IsPositive() || signal.Symbol == "" {
		return nil
	}

	order := NewOrder(signal.Symbol, types.TypeMarket, side, signal.Quantity, signal.GeneratedAt)
	order.signalStrength = signal.Strength
	order.confidenceScore = signal.Confidence
	return order
}

func (e *ExecutionEngine) fillMarketOrder(order *Order, dayData map[string]types.Candle) (types.Transaction, bool) {
	candle, ok := dayData[order.Symbol]
	if !ok {
		return types.Transaction{}, false
	}

	price := e.applySlippage(candle.Close, order.Side, order.Quantity)
	commission := e.commissionFor(order.Quantity, price)
	executedAt := order.CreatedAt.Add(e.cfg.ExecutionDelay)

	return types.Transaction{
		Type:            types.TransactionType(order.Side),
		Symbol:          order.Symbol,
		Quantity:        order.Quantity,
		Price:           price,
		TotalAmount:     price.Mul(order.Quantity),
		Fees:            commission,
		Note:            "market order execution",
		SignalStrength:  order.signalStrength,
		ConfidenceScore: order.confidenceScore,
		ExecutedAt:      executedAt,
		CreatedAt:       order.CreatedAt,
	}, true
}

// applySlippage adjusts the reference price for execution cost: buys pay
// up, sells receive less. Market impact scales with order size per 1000
// shares.
func (e *ExecutionEngine) applySlippage(base decimal.Decimal, side types.Side, quantity decimal.Decimal) decimal.Decimal {
	impact := e.cfg.MarketImpact.Mul(quantity.Div(oneThousand))
	total := e.cfg.Slippage.Add(impact)

	if side == types.SideTypeBuy {
		return base.Mul(decimal.NewFromInt(1).Add(total))
	}
	return base.Mul(decimal.NewFromInt(1).Sub(total))
}

func (e *ExecutionEngine) commissionFor(quantity, price decimal.Decimal) decimal.Decimal {
	perShare := e.cfg.CommissionPerShare.Mul(quantity)
	percentage := price.Mul(quantity).Mul(e.cfg.CommissionPercentage)
	return perShare.Add(percentage)
}

// processPending re-evaluates queued limit/stop orders against the day's
// high/low/close. Filled orders leave the pending set in the same pass;
// unfilled ones persist with no expiry.
func (e *ExecutionEngine) processPending(p *portfolio, dayData map[string]types.Candle) []types.Transaction {
	if len(e.pending) == 0 {
		return nil
	}

	var executed []types.Transaction
	remaining := e.pending[:0]

	for _, order := range e.pending {
		candle, ok := dayData[order.Symbol]
		if !ok {
			remaining = append(remaining, order)
			continue
		}

		fillPrice, triggered := evaluateTrigger(order, candle)
		if !triggered {
			remaining = append(remaining, order)
			continue
		}

		commission := e.commissionFor(order.Quantity, fillPrice)
		tx := types.Transaction{
			Type:        types.TransactionType(order.Side),
			Symbol:      order.Symbol,
			Quantity:    order.Quantity,
			Price:       fillPrice,
			TotalAmount: fillPrice.Mul(order.Quantity),
			Fees:        commission,
			Note:        string(order.Type) + " order execution",
			ExecutedAt:  candle.Timestamp,
			CreatedAt:   order.CreatedAt,
		}

		if !p.Apply(tx) {
			order.Status = types.OrderRejected
			e.rejected++
			continue
		}

		e.markFilled(order, tx)
		e.recordTrade(tx, p)
		executed = append(executed, tx)
	}

	e.pending = remaining
	return executed
}

// evaluateTrigger decides whether a pending order fills against the day's
// candle and at what price. The order-type switch is exhaustive over the
// closed set of order kinds.
func evaluateTrigger(order *Order, candle types.Candle) (decimal.Decimal, bool) {
	switch order.Type {
	case types.TypeLimit:
		if order.Side == types.SideTypeBuy && candle.Low.LessThanOrEqual(order.LimitPrice) {
			return decimal.Min(order.LimitPrice, candle.Close), true
		}
		if order.Side == types.SideTypeSell && candle.High.GreaterThanOrEqual(order.LimitPrice) {
			return decimal.Max(order.LimitPrice, candle.Close), true
		}

	case types.TypeStop, types.TypeStopLimit:
		if order.Side == types.SideTypeBuy && candle.High.GreaterThanOrEqual(order.StopPrice) {
			return decimal.Max(order.StopPrice, candle.Close), true
		}
		if order.Side == types.SideTypeSell && candle.Low.LessThanOrEqual(order.StopPrice) {
			return decimal.Min(order.StopPrice, candle.Close), true
		}

	case types.TypeMarket:
		// Market orders never reach the pending set.
	}

	return decimal.Zero, false
}

func (e *ExecutionEngine) markFilled(order *Order, tx types.Transaction) {
	order.Status = types.OrderFilled
	order.FilledAt = tx.ExecutedAt
	order.FilledPrice = tx.Price
	order.FilledQuantity = tx.Quantity
	order.Commission = tx.Fees
	e.executed = append(e.executed, order)
}

func (e *ExecutionEngine) recordTrade(tx types.Transaction, p *portfolio) {
	e.records = append(e.records, types.TradeRecord{
		Transaction:    tx,
		PortfolioValue: p.TotalValue(),
		CashBalance:    p.cash,
	})
}

// TradeRecords returns the per-trade persistence rows accumulated so far.
func (e *ExecutionEngine) TradeRecords() []types.TradeRecord {
	out := make([]types.TradeRecord, len(e.records))
	copy(out, e.records)
	return out
}

// Summary reports fill diagnostics for the run.
func (e *ExecutionEngine) Summary() types.ExecutionSummary {
	filled := len(e.executed)
	total := filled + len(e.pending) + e.rejected

	summary := types.ExecutionSummary{
		TotalOrders:    total,
		FilledOrders:   filled,
		PendingOrders:  len(e.pending),
		RejectedOrders: e.rejected,
	}

	for _, order := range e.executed {
		summary.TotalCommission = summary.TotalCommission.Add(order.Commission)
	}
	if total > 0 {
		summary.FillRate = decimal.NewFromInt(int64(filled)).Div(decimal.NewFromInt(int64(total)))
	}
	if filled > 0 {
		summary.AvgCommissionPerTrade = summary.TotalCommission.Div(decimal.NewFromInt(int64(filled)))
	}
	return summary
}
