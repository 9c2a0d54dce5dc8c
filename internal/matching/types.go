package matching

import (
	"matchcore/internal/book"
	"matchcore/internal/price"
)

// Side aliases book.Direction: Bid means the incoming order is a buy
// (it rests on, and matches against the opposite of, the bid side),
// Ask means it is a sell. Reusing book.Direction keeps "which side does
// this limit order live on" a single concept across packages.
type Side = book.Direction

const (
	Buy  Side = book.Bid
	Sell Side = book.Ask
)

// Order is an incoming order presented to the matching engine. Price is
// ignored for pure market orders (MarketBuy/MarketSell).
type Order struct {
	OwnerID   uint64
	Qty       uint64
	Price     price.Price
	OrderUUID string
}

// Fill is a single maker/taker match, published to the engine's sink as
// soon as it is generated.
type Fill struct {
	TakerOwner uint64
	MakerOwner uint64
	Price      price.Price
	Qty        uint64
}

// ExecutionReport summarizes the outcome of a matching call.
//
// Accepted is false only for a pure market order (MarketBuy/MarketSell)
// that found the opposing side completely empty at call time; for
// MatchUntil and its derivatives (IOC, FOK, LOC, MatchAndInsert) a
// non-marketable or empty book still reports Accepted=true with
// FilledQty=0, per spec.
type ExecutionReport struct {
	Accepted     bool
	RequestedQty uint64
	FilledQty    uint64
}

// Sink receives each fill as it is generated. It must be non-blocking;
// the engine provides no buffering of its own beyond the dispatcher's
// bounded queue (see dispatcher.go).
type Sink func(Fill)
