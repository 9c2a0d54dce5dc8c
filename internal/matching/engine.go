// Package matching implements the core matching algorithm: walking the
// opposing Side against an incoming order under strict price/time
// priority, producing fills and partial fills while the order book's
// no-cross invariant is restored before the call returns.
package matching

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchcore/internal/book"
	"matchcore/internal/bookerr"
	"matchcore/internal/orderbook"
	"matchcore/internal/price"
)

// Engine walks one OrderBook's sides against incoming orders. It holds
// no lock of its own — the facade is responsible for serializing access
// to a single Engine instance.
type Engine struct {
	book       *orderbook.OrderBook
	dispatcher *dispatcher
	logger     zerolog.Logger
}

// New constructs an Engine over book. sink may be nil, in which case
// fills are silently dropped (per spec: "when absent, fills are
// dropped").
func New(ob *orderbook.OrderBook, sink Sink) *Engine {
	e := &Engine{book: ob, logger: log.Logger}
	if sink != nil {
		e.dispatcher = newDispatcher(sink, defaultDispatchBuffer)
	}
	return e
}

// Close stops the fill-dispatch goroutine, if one was started. Safe
// to call on an Engine constructed with a nil sink.
func (e *Engine) Close() {
	if e.dispatcher != nil {
		e.dispatcher.stop()
	}
}

// DroppedFills returns how many fills were discarded because the
// dispatch queue was saturated.
func (e *Engine) DroppedFills() uint64 {
	if e.dispatcher == nil {
		return 0
	}
	return e.dispatcher.Dropped()
}

func (e *Engine) publish(f Fill) {
	if e.dispatcher != nil {
		e.dispatcher.publish(f)
	}
}

// opposingAndCross returns the opposing Side for an incoming order on
// the given side, and the predicate deciding whether a given opposing
// price is marketable against limit. When limit is nil (a pure market
// order) every price crosses.
func opposingAndCross(ob *orderbook.OrderBook, side Side, limit *price.Price) (*book.Side, func(price.Price) bool) {
	if limit == nil {
		always := func(price.Price) bool { return true }
		if side == Buy {
			return ob.Asks, always
		}
		return ob.Bids, always
	}
	if side == Buy {
		return ob.Asks, func(best price.Price) bool { return best.Compare(*limit) <= 0 }
	}
	return ob.Bids, func(best price.Price) bool { return best.Compare(*limit) >= 0 }
}

func restingSide(ob *orderbook.OrderBook, side Side) *book.Side {
	if side == Buy {
		return ob.Bids
	}
	return ob.Asks
}

// matchLoop implements the algorithm from spec.md §4.6 step 4: consume
// the opposing side's best level front-to-back while marketable and
// qty remains, emitting a fill per resting order touched (full or
// partial), never reordering within a level.
func (e *Engine) matchLoop(takerOwner uint64, need uint64, opposing *book.Side, crosses func(price.Price) bool) uint64 {
	var filled uint64
	for filled < need {
		lvl, ok := opposing.BestMut()
		if !ok {
			break
		}
		if !crosses(lvl.Price) {
			break
		}

		head, ok := lvl.Front()
		if !ok {
			bookerr.Invariant("price level registered in side with no resting orders")
		}
		headQty := head.RemainingQty()
		if headQty == 0 {
			bookerr.Invariant("resting order at head of level has zero quantity")
		}

		remainingNeed := need - filled
		levelPrice := lvl.Price

		if headQty <= remainingNeed {
			// Full fill of head.
			lvl.PopFront()
			filled += headQty
			e.publish(Fill{TakerOwner: takerOwner, MakerOwner: head.OwnerID(), Price: levelPrice, Qty: headQty})
			if lvl.Empty() {
				opposing.RemoveLevel(levelPrice)
			}
		} else {
			// Partial fill of head; loop exits next iteration since
			// filled will equal need.
			take := remainingNeed
			head.SetQty(headQty - take)
			filled += take
			e.publish(Fill{TakerOwner: takerOwner, MakerOwner: head.OwnerID(), Price: levelPrice, Qty: take})
		}
	}
	return filled
}

func (e *Engine) assertNotCrossed() {
	if e.book.Crossed() {
		bookerr.Invariant("order book crossed after a matching call returned")
	}
}

// MarketBuy matches order against the ask side with no price ceiling.
func (e *Engine) MarketBuy(order Order) ExecutionReport {
	return e.marketOrder(order, Buy)
}

// MarketSell matches order against the bid side with no price floor.
func (e *Engine) MarketSell(order Order) ExecutionReport {
	return e.marketOrder(order, Sell)
}

func (e *Engine) marketOrder(order Order, side Side) ExecutionReport {
	if order.Qty == 0 {
		return ExecutionReport{Accepted: true, RequestedQty: 0, FilledQty: 0}
	}

	opposing, crosses := opposingAndCross(e.book, side, nil)
	if _, ok := opposing.Best(); !ok {
		e.logger.Debug().Uint64("owner", order.OwnerID).Msg("market order rejected: no liquidity")
		return ExecutionReport{Accepted: false, RequestedQty: order.Qty, FilledQty: 0}
	}

	filled := e.matchLoop(order.OwnerID, order.Qty, opposing, crosses)
	e.assertNotCrossed()
	return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: filled}
}

// MatchUntil matches order against the opposing side up to its limit
// price, and returns the report together with the order carrying
// RemainingQty = RequestedQty - FilledQty (via Order.Qty).
func (e *Engine) MatchUntil(order Order, side Side) (ExecutionReport, Order) {
	if order.Qty == 0 {
		return ExecutionReport{Accepted: true, RequestedQty: 0, FilledQty: 0}, order
	}

	limit := order.Price
	opposing, crosses := opposingAndCross(e.book, side, &limit)
	if _, ok := opposing.Best(); !ok {
		return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: 0}, order
	}

	filled := e.matchLoop(order.OwnerID, order.Qty, opposing, crosses)
	e.assertNotCrossed()

	remainder := order
	remainder.Qty = order.Qty - filled
	return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: filled}, remainder
}

// MatchAndInsert is the GTC limit order entry point: it matches as much
// of order as the book allows, then rests any remainder on its own
// side. Returns whether a remainder was inserted.
func (e *Engine) MatchAndInsert(order Order, side Side) (ExecutionReport, bool) {
	report, remainder := e.MatchUntil(order, side)
	if remainder.Qty > 0 {
		e.insertResting(remainder, side)
		return report, true
	}
	return report, false
}

func (e *Engine) insertResting(order Order, side Side) {
	ro := book.NewRestingOrder(order.OwnerID, order.Qty)
	ro.OrderUUID = order.OrderUUID
	restingSide(e.book, side).Insert(order.Price, ro)
}

// IOC (immediate-or-cancel): run MatchUntil and discard any remainder
// rather than resting it.
func (e *Engine) IOC(order Order, side Side) ExecutionReport {
	report, _ := e.MatchUntil(order, side)
	return report
}

// FOK (fill-or-kill): simulate whether MatchUntil would fill order.Qty
// entirely at marketable prices without mutating the book; execute
// only if the simulation says it would.
func (e *Engine) FOK(order Order, side Side) ExecutionReport {
	if order.Qty == 0 {
		return ExecutionReport{Accepted: true, RequestedQty: 0, FilledQty: 0}
	}

	available := e.simulateAvailable(order, side)
	if available < order.Qty {
		return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: 0}
	}

	report, _ := e.MatchUntil(order, side)
	return report
}

// simulateAvailable sums marketable opposing liquidity without
// mutating anything, for FOK's pre-flight check.
func (e *Engine) simulateAvailable(order Order, side Side) uint64 {
	limit := order.Price
	opposing, crosses := opposingAndCross(e.book, side, &limit)

	var total uint64
	opposing.Ascend(func(lvl *book.PriceLevel) bool {
		if !crosses(lvl.Price) {
			return false
		}
		total += lvl.TotalQty()
		return total < order.Qty
	})
	return total
}

// LOC (limit-or-cancel / post-only): reject immediately if order would
// cross the spread, otherwise rest it as a pure limit order. Returns
// whether the order was inserted.
func (e *Engine) LOC(order Order, side Side) (ExecutionReport, bool) {
	limit := order.Price
	opposing, crosses := opposingAndCross(e.book, side, &limit)

	if lvl, ok := opposing.Best(); ok && crosses(lvl.Price) {
		return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: 0}, false
	}

	e.insertResting(order, side)
	return ExecutionReport{Accepted: true, RequestedQty: order.Qty, FilledQty: 0}, true
}
