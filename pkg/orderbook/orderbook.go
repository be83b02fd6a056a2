package orderbook

import (
	"container/heap"
	"fmt"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// Book is a price-level limit order book for one trading pair.
//
// Each side keeps a map from price (canonical decimal string) to a FIFO
// queue of resting orders, plus a heap of the live price levels so the
// best level is always reachable in O(1). FIFO within a level gives
// resting orders at the same price strict time priority.
//
// The book holds no lock: one batch is processed by one goroutine at a
// time, and every batch gets a fresh book.
type Book struct {
	pair string

	bids *bookSide
	asks *bookSide

	// resting orders by id, shared across both sides
	resting map[string]*Order
}

type bookSide struct {
	levels map[string]*deque.Deque[*Order]
	prices *PriceHeap
}

func newBookSide(less func(a, b decimal.Decimal) bool) *bookSide {
	return &bookSide{
		levels: make(map[string]*deque.Deque[*Order]),
		prices: NewPriceHeap(less),
	}
}

func NewBook(pair string) *Book {
	// Bids sorted greatest first, asks least first.
	return &Book{
		pair:    pair,
		bids:    newBookSide(func(a, b decimal.Decimal) bool { return a.GreaterThan(b) }),
		asks:    newBookSide(func(a, b decimal.Decimal) bool { return a.LessThan(b) }),
		resting: make(map[string]*Order),
	}
}

func (b *Book) Pair() string { return b.pair }

// Contains reports whether an order with the given id is currently resting
// on either side of the book.
func (b *Book) Contains(id string) bool {
	_, ok := b.resting[id]
	return ok
}

// Add matches the incoming order against the opposite side while prices
// cross, then rests any remainder on its own side. Fills are returned in
// the order the crosses occurred. The order's id must not already be
// resting; see Contains.
func (b *Book) Add(order *Order) []Fill {
	var (
		own, counter *bookSide
		crosses      func(limit, best decimal.Decimal) bool
	)
	if order.Side == BUY {
		own, counter = b.bids, b.asks
		crosses = func(limit, best decimal.Decimal) bool { return limit.GreaterThanOrEqual(best) }
	} else {
		own, counter = b.asks, b.bids
		crosses = func(limit, best decimal.Decimal) bool { return limit.LessThanOrEqual(best) }
	}

	var fills []Fill
	for order.Qty.IsPositive() {
		best, ok := counter.peek()
		if !ok || !crosses(order.Price, best) {
			break
		}

		q := counter.levels[best.String()]
		maker := q.PopFront()

		fillQty := decimal.Min(order.Qty, maker.Qty)
		order.Qty = order.Qty.Sub(fillQty)
		maker.Qty = maker.Qty.Sub(fillQty)

		fills = append(fills, b.newFill(order, maker, fillQty, best))

		if maker.Qty.IsPositive() {
			q.PushFront(maker)
		} else {
			delete(b.resting, maker.ID)
		}
	}

	if order.Qty.IsPositive() {
		own.add(order)
		b.resting[order.ID] = order
	}
	return fills
}

// Cancel removes the resting order with the given id, searching only the
// named side. It returns ErrOrderNotFound if no such order rests there;
// callers treating cancellation as idempotent may ignore it.
func (b *Book) Cancel(id string, side Side) error {
	order, ok := b.resting[id]
	if !ok || order.Side != side {
		return fmt.Errorf("%w: %s %s", ErrOrderNotFound, side, id)
	}

	s := b.bids
	if side == SELL {
		s = b.asks
	}
	key := order.Price.String()
	q := s.levels[key]
	if q != nil {
		if i := q.Index(func(o *Order) bool { return o.ID == id }); i >= 0 {
			q.Remove(i)
		}
	}
	delete(b.resting, id)
	return nil
}

// Bids returns the resting bids, best (highest) price first, FIFO within
// a price level. The slice is a snapshot; the orders are live.
func (b *Book) Bids() []*Order { return b.bids.snapshot() }

// Asks returns the resting asks, best (lowest) price first, FIFO within
// a price level.
func (b *Book) Asks() []*Order { return b.asks.snapshot() }

func (b *Book) newFill(taker, maker *Order, qty, price decimal.Decimal) Fill {
	if taker.Side == BUY {
		return Fill{
			BuyOrderID:    taker.ID,
			SellOrderID:   maker.ID,
			BuyAccountID:  taker.AccountID,
			SellAccountID: maker.AccountID,
			Price:         price,
			Qty:           qty,
		}
	}
	return Fill{
		BuyOrderID:    maker.ID,
		SellOrderID:   taker.ID,
		BuyAccountID:  maker.AccountID,
		SellAccountID: taker.AccountID,
		Price:         price,
		Qty:           qty,
	}
}

// peek returns the best live price on this side, discarding heap entries
// whose level has been emptied by fills or cancels.
func (s *bookSide) peek() (decimal.Decimal, bool) {
	for {
		best, ok := s.prices.Peek()
		if !ok {
			return decimal.Decimal{}, false
		}
		q := s.levels[best.String()]
		if q == nil || q.Len() == 0 {
			heap.Pop(s.prices)
			delete(s.levels, best.String())
			continue
		}
		return best, true
	}
}

func (s *bookSide) add(order *Order) {
	key := order.Price.String()
	if s.levels[key] == nil {
		s.levels[key] = &deque.Deque[*Order]{}
		heap.Push(s.prices, order.Price)
	}
	s.levels[key].PushBack(order)
}

func (s *bookSide) snapshot() []*Order {
	var out []*Order
	for _, price := range s.prices.Sorted() {
		q := s.levels[price.String()]
		if q == nil {
			continue
		}
		for i := 0; i < q.Len(); i++ {
			out = append(out, q.At(i))
		}
	}
	return out
}
