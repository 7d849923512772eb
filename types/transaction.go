package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBuy      TransactionType = "buy"
	TransactionTypeSell     TransactionType = "sell"
	TransactionTypeDividend TransactionType = "dividend"
	TransactionTypeFee      TransactionType = "fee"
	TransactionTypeSplit    TransactionType = "split"
)

// Transaction is an append-only record of one executed portfolio mutation.
// It is never modified after creation.
type Transaction struct {
	Type        TransactionType
	Symbol      string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
	Fees        decimal.Decimal
	Note        string

	// Signal metadata carried through from the generating signal, zero
	// when the transaction did not originate from a signal.
	SignalStrength  decimal.Decimal
	ConfidenceScore decimal.Decimal

	ExecutedAt time.Time
	CreatedAt  time.Time
}

// TradeRecord is the persisted per-trade shape: the transaction plus the
// portfolio state captured immediately after it was applied.
type TradeRecord struct {
	Transaction
	PortfolioValue decimal.Decimal
	CashBalance    decimal.Decimal
}
