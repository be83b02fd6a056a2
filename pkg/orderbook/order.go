package orderbook

import "github.com/shopspring/decimal"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Order is a resting book entry. Qty is the remaining (unfilled) quantity
// and is mutated in place as fills happen; an order whose Qty reaches zero
// is removed from the book, never kept at zero.
type Order struct {
	ID        string
	AccountID string
	Side      Side
	Price     decimal.Decimal
	Qty       decimal.Decimal
}

// Fill is one execution produced while sweeping the book. Price is always
// the resting order's limit price, never the aggressor's.
type Fill struct {
	BuyOrderID    string
	SellOrderID   string
	BuyAccountID  string
	SellAccountID string
	Price         decimal.Decimal
	Qty           decimal.Decimal
}
