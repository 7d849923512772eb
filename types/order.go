package types

type Side string

type OrderType string

type OrderStatus string

const (
	SideTypeBuy  Side = "buy"
	SideTypeSell Side = "sell"

	TypeMarket    OrderType = "market"
	TypeLimit     OrderType = "limit"
	TypeStop      OrderType = "stop"
	TypeStopLimit OrderType = "stop_limit"

	OrderPending         OrderStatus = "pending"
	OrderFilled          OrderStatus = "filled"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderCancelled       OrderStatus = "cancelled"
	OrderRejected        OrderStatus = "rejected"
)
