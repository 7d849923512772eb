package types

import "github.com/shopspring/decimal"

// ExecutionSummary reports fill diagnostics for a run's execution engine.
type ExecutionSummary struct {
	TotalOrders           int
	FilledOrders          int
	PendingOrders         int
	RejectedOrders        int
	FillRate              decimal.Decimal
	TotalCommission       decimal.Decimal
	AvgCommissionPerTrade decimal.Decimal
}
