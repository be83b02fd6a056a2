package api

import (
	"github.com/openexchange/matchbook/pkg/engine"
	"github.com/openexchange/matchbook/pkg/orderbook"
)

// ProcessRequest is the intake document. Orders is a pointer so a missing
// field can be told apart from an empty batch.
type ProcessRequest struct {
	Orders *[]engine.Operation `json:"orders"`
}

// Quantities serialize with exactly 5 fractional digits and prices with
// exactly 2, for book entries and trades alike.
const (
	amountPlaces = 5
	pricePlaces  = 2
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type BookEntry struct {
	OrderID    string `json:"order_id"`
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	LimitPrice string `json:"limit_price"`
	Pair       string `json:"pair"`
	Side       string `json:"side"`
}

type TradeInfo struct {
	BuyerOrderID    string `json:"buyer_order_id"`
	SellerOrderID   string `json:"seller_order_id"`
	BuyerAccountID  string `json:"buyer_account_id"`
	SellerAccountID string `json:"seller_account_id"`
	Amount          string `json:"amount"`
	Price           string `json:"price"`
	Pair            string `json:"pair"`
	Timestamp       string `json:"timestamp"`
}

type OrderBookView struct {
	Bids []BookEntry `json:"bids"`
	Asks []BookEntry `json:"asks"`
}

type RejectionInfo struct {
	Index   int    `json:"index"`
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason"`
}

type ProcessResponse struct {
	OrderBook OrderBookView   `json:"orderBook"`
	Trades    []TradeInfo     `json:"trades"`
	Rejected  []RejectionInfo `json:"rejected,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// BuildResponse snapshots the engine after a batch: both book sides in
// best-first price order across pairs, the full trade ledger in fill
// order, and any per-operation rejections.
func BuildResponse(eng *engine.Engine, rejected []engine.Rejection) ProcessResponse {
	resp := ProcessResponse{
		OrderBook: OrderBookView{
			Bids: []BookEntry{},
			Asks: []BookEntry{},
		},
		Trades: []TradeInfo{},
	}

	for _, pair := range eng.Pairs() {
		book := eng.Book(pair)
		for _, o := range book.Bids() {
			resp.OrderBook.Bids = append(resp.OrderBook.Bids, newBookEntry(o, pair))
		}
		for _, o := range book.Asks() {
			resp.OrderBook.Asks = append(resp.OrderBook.Asks, newBookEntry(o, pair))
		}
	}

	for _, t := range eng.Trades() {
		resp.Trades = append(resp.Trades, TradeInfo{
			BuyerOrderID:    t.BuyOrderID,
			SellerOrderID:   t.SellOrderID,
			BuyerAccountID:  t.BuyAccountID,
			SellerAccountID: t.SellAccountID,
			Amount:          t.Qty.StringFixed(amountPlaces),
			Price:           t.Price.StringFixed(pricePlaces),
			Pair:            t.Pair,
			Timestamp:       t.Timestamp.UTC().Format(timestampLayout),
		})
	}

	for _, r := range rejected {
		resp.Rejected = append(resp.Rejected, RejectionInfo{
			Index:   r.Index,
			OrderID: r.OrderID,
			Reason:  r.Err.Error(),
		})
	}

	return resp
}

func newBookEntry(o *orderbook.Order, pair string) BookEntry {
	return BookEntry{
		OrderID:    o.ID,
		AccountID:  o.AccountID,
		Amount:     o.Qty.StringFixed(amountPlaces),
		LimitPrice: o.Price.StringFixed(pricePlaces),
		Pair:       pair,
		Side:       string(o.Side),
	}
}
