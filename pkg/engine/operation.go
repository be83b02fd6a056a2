package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openexchange/matchbook/pkg/orderbook"
)

type OpType string

const (
	OpCreate OpType = "CREATE"
	OpDelete OpType = "DELETE"
)

// Operation is one order instruction as it arrives on the wire. Numeric
// fields stay textual until validation parses them into decimals, so a
// malformed amount is rejected per operation instead of flowing into the
// book as garbage.
type Operation struct {
	TypeOp     string `json:"type_op"`
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	OrderID    string `json:"order_id"`
	Pair       string `json:"pair"`
	LimitPrice string `json:"limit_price"`
	Side       string `json:"side"`
}

func (op Operation) side() (orderbook.Side, error) {
	switch orderbook.Side(op.Side) {
	case orderbook.BUY, orderbook.SELL:
		return orderbook.Side(op.Side), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSide, op.Side)
	}
}

// validateCreate checks a CREATE operation and builds the order to match.
func (op Operation) validateCreate() (*orderbook.Order, error) {
	if op.OrderID == "" {
		return nil, ErrEmptyOrderID
	}
	if op.Pair == "" {
		return nil, ErrEmptyPair
	}
	side, err := op.side()
	if err != nil {
		return nil, err
	}
	qty, err := decimal.NewFromString(op.Amount)
	if err != nil || !qty.IsPositive() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, op.Amount)
	}
	price, err := decimal.NewFromString(op.LimitPrice)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, op.LimitPrice)
	}
	return &orderbook.Order{
		ID:        op.OrderID,
		AccountID: op.AccountID,
		Side:      side,
		Price:     price,
		Qty:       qty,
	}, nil
}

func (op Operation) validateDelete() (orderbook.Side, error) {
	if op.OrderID == "" {
		return "", ErrEmptyOrderID
	}
	if op.Pair == "" {
		return "", ErrEmptyPair
	}
	return op.side()
}
