package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one execution, immutable once appended to the ledger.
// Price is the resting order's limit price.
type Trade struct {
	BuyOrderID    string
	SellOrderID   string
	BuyAccountID  string
	SellAccountID string
	Qty           decimal.Decimal
	Price         decimal.Decimal
	Pair          string
	Timestamp     time.Time
}
