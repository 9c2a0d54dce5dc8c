// Package bookerr names the error kinds of the book, orderbook, matching
// and facade packages. Those packages report these conditions through
// their own return values (a false ok, ExecutionReport.Accepted,
// facade.Result.Success) and do not return the sentinels below; the one
// kind they do raise from here is an invariant violation, via Invariant.
package bookerr

import "errors"

var (
	// ErrEmptyBook names a top-of-book query against an empty side, which
	// orderbook.TopBid/TopAsk report as a false ok.
	ErrEmptyBook = errors.New("bookerr: side is empty")

	// ErrNoLiquidity names a pure market order meeting an opposing side
	// with no resting orders at all at call time, which the engine reports
	// as ExecutionReport.Accepted=false. MatchUntil reports a clean zero
	// fill in that case instead.
	ErrNoLiquidity = errors.New("bookerr: no liquidity on opposing side")

	// ErrNotMarketable names a MatchUntil call whose limit price does not
	// cross the opposing top of book; this is not a fault, it just means
	// nothing was filled (FilledQty=0).
	ErrNotMarketable = errors.New("bookerr: order does not cross the book")

	// ErrUnknownOrderKind names a facade insert request with an order kind
	// outside {Market, GTC, FOK, IOC, LOC}, which the facade reports as
	// Result{Success: false}.
	ErrUnknownOrderKind = errors.New("bookerr: unknown order kind")
)

// Invariant panics with a message naming the violated invariant. These are
// programmer errors per spec: a zero-qty resting order, an empty
// PriceLevel left registered in a Side, or a crossed book surviving a
// matching call should never happen by construction, and indicate a bug
// in the caller or in this package rather than a condition callers can
// recover from.
func Invariant(msg string) {
	panic("matchcore: invariant violation: " + msg)
}
