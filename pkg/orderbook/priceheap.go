package orderbook

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PriceHeap implements heap.Interface over decimal price levels.
// The index map dedupes pushes of a price that is already tracked.
type PriceHeap struct {
	prices []decimal.Decimal
	less   func(a, b decimal.Decimal) bool
	index  map[string]bool
}

func NewPriceHeap(less func(a, b decimal.Decimal) bool) *PriceHeap {
	return &PriceHeap{
		prices: []decimal.Decimal{},
		less:   less,
		index:  make(map[string]bool),
	}
}

func (h PriceHeap) Len() int {
	return len(h.prices)
}

func (h PriceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}

func (h PriceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}

func (h *PriceHeap) Push(x any) {
	price := x.(decimal.Decimal)
	if !h.index[price.String()] {
		h.index[price.String()] = true
		h.prices = append(h.prices, price)
	}
}

func (h *PriceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.index, price.String())
	return price
}

func (h *PriceHeap) Peek() (decimal.Decimal, bool) {
	if len(h.prices) == 0 {
		return decimal.Decimal{}, false
	}
	return h.prices[0], true
}

// Sorted returns a copy of the tracked prices, best first.
func (h *PriceHeap) Sorted() []decimal.Decimal {
	out := make([]decimal.Decimal, len(h.prices))
	copy(out, h.prices)
	sort.Slice(out, func(i, j int) bool {
		return h.less(out[i], out[j])
	})
	return out
}
