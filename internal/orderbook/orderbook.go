// Package orderbook pairs a bid Side and an ask Side for a single
// instrument, and exposes the top-of-book and depth queries the
// matching engine and facade build on.
package orderbook

import (
	"matchcore/internal/book"
	"matchcore/internal/price"
)

// OrderBook owns one bid Side and one ask Side. The no-cross invariant
// (max(bids) < min(asks) whenever both are non-empty) holds at every
// externally observable point; a matching call may cross transiently
// but must resolve it before returning.
type OrderBook struct {
	Bids *book.Side
	Asks *book.Side
}

// New constructs an empty order book.
func New() *OrderBook {
	return &OrderBook{
		Bids: book.NewSide(book.Bid),
		Asks: book.NewSide(book.Ask),
	}
}

// LevelView is the externally-visible shape of a price level: the price
// and the aggregated remaining quantity resting at it.
type LevelView struct {
	Price price.Price
	Qty   uint64
}

func levelView(lvl *book.PriceLevel) LevelView {
	return LevelView{Price: lvl.Price, Qty: lvl.TotalQty()}
}

// TopBid returns the best bid's price and aggregate quantity, or false
// if the bid side is empty.
func (ob *OrderBook) TopBid() (LevelView, bool) {
	lvl, ok := ob.Bids.Best()
	if !ok {
		return LevelView{}, false
	}
	return levelView(lvl), true
}

// TopAsk returns the best ask's price and aggregate quantity, or false
// if the ask side is empty.
func (ob *OrderBook) TopAsk() (LevelView, bool) {
	lvl, ok := ob.Asks.Best()
	if !ok {
		return LevelView{}, false
	}
	return levelView(lvl), true
}

// MidPrice returns the top bid's price if the bid side is non-empty,
// else the top ask's price, else false.
func (ob *OrderBook) MidPrice() (price.Price, bool) {
	if bid, ok := ob.TopBid(); ok {
		return bid.Price, true
	}
	if ask, ok := ob.TopAsk(); ok {
		return ask.Price, true
	}
	return price.Price{}, false
}

// Depth returns the first n levels from the best outward on the given
// side.
func (ob *OrderBook) Depth(dir book.Direction, n int) []LevelView {
	var levels []*book.PriceLevel
	switch dir {
	case book.Bid:
		levels = ob.Bids.Depth(n)
	default:
		levels = ob.Asks.Depth(n)
	}
	out := make([]LevelView, len(levels))
	for i, lvl := range levels {
		out[i] = levelView(lvl)
	}
	return out
}

// CancelBid cancels ownerID's resting order at price p on the bid side.
func (ob *OrderBook) CancelBid(p price.Price, ownerID uint64) bool {
	return ob.Bids.Cancel(p, ownerID)
}

// CancelAsk cancels ownerID's resting order at price p on the ask side.
func (ob *OrderBook) CancelAsk(p price.Price, ownerID uint64) bool {
	return ob.Asks.Cancel(p, ownerID)
}

// Crossed reports whether the book is currently crossed (top bid >= top
// ask), which must never be observably true outside of a matching call
// in progress.
func (ob *OrderBook) Crossed() bool {
	bid, bidOk := ob.TopBid()
	ask, askOk := ob.TopAsk()
	if !bidOk || !askOk {
		return false
	}
	return bid.Price.Compare(ask.Price) >= 0
}
