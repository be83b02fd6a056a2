package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/openexchange/matchbook/pkg/orderbook"
)

// Engine consumes order operations one at a time, matching CREATEs against
// per-pair books and appending executions to a single trade ledger in fill
// order. It is strictly sequential: no locking, at most one call in flight,
// and callers build a fresh engine per batch.
type Engine struct {
	books  map[string]*orderbook.Book
	trades []Trade

	now func() time.Time
}

// Rejection reports one operation that failed validation. The rest of the
// batch is unaffected.
type Rejection struct {
	Index   int
	OrderID string
	Err     error
}

func New() *Engine {
	return &Engine{
		books: make(map[string]*orderbook.Book),
		now:   time.Now,
	}
}

// Process applies a single operation. CREATE sweeps the opposite side of
// the pair's book for price-crossing counterparties and rests any
// remainder; DELETE removes a resting order by id on the named side and
// is a no-op when the id is absent. A returned error means the operation
// was rejected and the book and ledger are untouched.
func (e *Engine) Process(op Operation) error {
	switch OpType(op.TypeOp) {
	case OpCreate:
		return e.create(op)
	case OpDelete:
		return e.cancel(op)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOpType, op.TypeOp)
	}
}

// ProcessAll applies operations strictly in input order. Operations that
// fail validation are collected and reported; processing continues with
// the remainder.
func (e *Engine) ProcessAll(ops []Operation) []Rejection {
	var rejected []Rejection
	for i, op := range ops {
		if err := e.Process(op); err != nil {
			rejected = append(rejected, Rejection{Index: i, OrderID: op.OrderID, Err: err})
		}
	}
	return rejected
}

func (e *Engine) create(op Operation) error {
	order, err := op.validateCreate()
	if err != nil {
		return err
	}

	book := e.book(op.Pair)
	if book.Contains(order.ID) {
		return fmt.Errorf("%w: %s", orderbook.ErrDuplicateID, order.ID)
	}

	for _, f := range book.Add(order) {
		e.trades = append(e.trades, Trade{
			BuyOrderID:    f.BuyOrderID,
			SellOrderID:   f.SellOrderID,
			BuyAccountID:  f.BuyAccountID,
			SellAccountID: f.SellAccountID,
			Qty:           f.Qty,
			Price:         f.Price,
			Pair:          op.Pair,
			Timestamp:     e.now(),
		})
	}
	return nil
}

func (e *Engine) cancel(op Operation) error {
	side, err := op.validateDelete()
	if err != nil {
		return err
	}
	book, ok := e.books[op.Pair]
	if !ok {
		return nil
	}
	// Absent id is a no-op, not an error.
	_ = book.Cancel(op.OrderID, side)
	return nil
}

func (e *Engine) book(pair string) *orderbook.Book {
	if b, ok := e.books[pair]; ok {
		return b
	}
	b := orderbook.NewBook(pair)
	e.books[pair] = b
	return b
}

// Book returns the book for a pair, or nil if the pair never traded.
func (e *Engine) Book(pair string) *orderbook.Book {
	return e.books[pair]
}

// Pairs returns the pairs with a book, sorted for deterministic output.
func (e *Engine) Pairs() []string {
	pairs := make([]string, 0, len(e.books))
	for pair := range e.books {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Trades returns the ledger: every execution in the order it occurred.
func (e *Engine) Trades() []Trade {
	return e.trades
}
