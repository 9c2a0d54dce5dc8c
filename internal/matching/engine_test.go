package matching

import (
	"testing"
	"time"

	"matchcore/internal/book"
	"matchcore/internal/orderbook"
	"matchcore/internal/price"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, fills *[]Fill) (*Engine, *orderbook.OrderBook) {
	t.Helper()
	ob := orderbook.New()
	e := New(ob, func(f Fill) { *fills = append(*fills, f) })
	t.Cleanup(e.Close)
	return e, ob
}

// waitFills blocks until at least want fills have been delivered by the
// async dispatch goroutine, or the test fails on timeout.
func waitFills(t *testing.T, fills *[]Fill, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(*fills) >= want }, time.Second, time.Millisecond)
}

func askLadder(ob *orderbook.OrderBook, qtyPerLevel uint64, owner uint64) {
	for m := uint32(1); m <= 5; m++ {
		ob.Asks.Insert(price.New(m, 0), book.NewRestingOrder(owner, qtyPerLevel))
	}
}

func TestS1_CrossingLimit(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)

	ob.Bids.Insert(price.New(1, 0), book.NewRestingOrder(101, 50))
	ob.Bids.Insert(price.New(2, 11), book.NewRestingOrder(102, 50))
	ob.Bids.Insert(price.New(2, 0), book.NewRestingOrder(103, 50))

	report, inserted := e.MatchAndInsert(Order{OwnerID: 999, Qty: 60, Price: price.New(2, 0)}, Sell)

	assert.True(t, report.Accepted)
	assert.Equal(t, uint64(60), report.RequestedQty)
	assert.Equal(t, uint64(60), report.FilledQty)
	assert.False(t, inserted, "fully filled, nothing should rest")

	lvl, ok := ob.Bids.Best()
	require.True(t, ok)
	assert.Equal(t, price.New(2, 0), lvl.Price)
	assert.Equal(t, uint64(40), lvl.TotalQty())

	waitFills(t, &fills, 2)
	assert.Equal(t, uint64(102), fills[0].MakerOwner, "best bid (2.11) consumed first")
	assert.Equal(t, price.New(2, 11), fills[0].Price)
	assert.Equal(t, uint64(50), fills[0].Qty)
	assert.Equal(t, uint64(103), fills[1].MakerOwner)
	assert.Equal(t, price.New(2, 0), fills[1].Price)
	assert.Equal(t, uint64(10), fills[1].Qty)
}

func TestS2_MarketBuyExhaustsDepth(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	askLadder(ob, 100, 1)

	report := e.MarketBuy(Order{OwnerID: 999, Qty: 500})
	assert.True(t, report.Accepted)
	assert.Equal(t, uint64(500), report.RequestedQty)
	assert.Equal(t, uint64(500), report.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())
}

func TestS3_MarketBuyOverReach(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	askLadder(ob, 100, 1)

	report := e.MarketBuy(Order{OwnerID: 999, Qty: 512})
	assert.True(t, report.Accepted)
	assert.Equal(t, uint64(512), report.RequestedQty)
	assert.Equal(t, uint64(500), report.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())
}

func TestS4_MarketBuyEmptyBook(t *testing.T) {
	var fills []Fill
	e, _ := newTestEngine(t, &fills)
	report := e.MarketBuy(Order{OwnerID: 999, Qty: 512})
	assert.False(t, report.Accepted)
	assert.Equal(t, uint64(512), report.RequestedQty)
	assert.Equal(t, uint64(0), report.FilledQty)
}

func TestS5_FIFOTieBreak(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Bids.Insert(price.New(10, 0), book.NewRestingOrder(1, 10))
	ob.Bids.Insert(price.New(10, 0), book.NewRestingOrder(2, 10))
	ob.Bids.Insert(price.New(10, 0), book.NewRestingOrder(3, 10))

	report := e.MarketSell(Order{OwnerID: 999, Qty: 1})
	assert.Equal(t, uint64(1), report.FilledQty)

	waitFills(t, &fills, 1)
	assert.Equal(t, uint64(1), fills[0].MakerOwner, "earliest resting owner at the level fills first")
}

func TestS6_IOCDiscardsRemainder(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(5, 0), book.NewRestingOrder(1, 200))

	report := e.IOC(Order{OwnerID: 999, Qty: 500, Price: price.New(5, 0)}, Buy)
	assert.True(t, report.Accepted)
	assert.Equal(t, uint64(500), report.RequestedQty)
	assert.Equal(t, uint64(200), report.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())
	assert.Equal(t, 0, ob.Bids.Len(), "IOC must never rest its remainder")
}

func TestMatchUntilNotMarketable(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(10, 0), book.NewRestingOrder(1, 100))

	report, remainder := e.MatchUntil(Order{OwnerID: 999, Qty: 50, Price: price.New(9, 0)}, Buy)
	assert.True(t, report.Accepted)
	assert.Equal(t, uint64(0), report.FilledQty)
	assert.Equal(t, uint64(50), remainder.Qty)
}

func TestMatchUntilInclusiveLimit(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(10, 0), book.NewRestingOrder(1, 100))

	// incoming.price == best_opposing_price must match (inclusive).
	report, _ := e.MatchUntil(Order{OwnerID: 999, Qty: 30, Price: price.New(10, 0)}, Buy)
	assert.Equal(t, uint64(30), report.FilledQty)
}

func TestFOKAllOrNothing(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(10, 0), book.NewRestingOrder(1, 50))

	report := e.FOK(Order{OwnerID: 999, Qty: 100, Price: price.New(10, 0)}, Buy)
	assert.Equal(t, uint64(0), report.FilledQty, "insufficient liquidity must kill the whole order")
	lvl, ok := ob.Asks.Best()
	require.True(t, ok)
	assert.Equal(t, uint64(50), lvl.TotalQty(), "book must be untouched by a failed simulation")
	assert.Empty(t, fills)

	report = e.FOK(Order{OwnerID: 999, Qty: 50, Price: price.New(10, 0)}, Buy)
	assert.Equal(t, uint64(50), report.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())
}

func TestLOCRejectsWhenCrossing(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(10, 0), book.NewRestingOrder(1, 50))

	report, inserted := e.LOC(Order{OwnerID: 999, Qty: 10, Price: price.New(10, 0)}, Buy)
	assert.False(t, inserted)
	assert.Equal(t, uint64(0), report.FilledQty)
	assert.Equal(t, 0, ob.Bids.Len())

	report, inserted = e.LOC(Order{OwnerID: 999, Qty: 10, Price: price.New(9, 0)}, Buy)
	assert.True(t, inserted)
	assert.Equal(t, 1, ob.Bids.Len())
}

func TestPartialFillThenEmptyBookEndsCleanly(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(10, 0), book.NewRestingOrder(1, 50))

	report := e.MarketBuy(Order{OwnerID: 999, Qty: 60})
	assert.Equal(t, uint64(50), report.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())

	// Next call against the now-empty book must report no liquidity,
	// not panic on a stale reference to the removed level.
	report = e.MarketBuy(Order{OwnerID: 999, Qty: 10})
	assert.False(t, report.Accepted)
}

func TestConservationOfQuantity(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(1, 0), book.NewRestingOrder(1, 30))
	ob.Asks.Insert(price.New(2, 0), book.NewRestingOrder(2, 30))

	report := e.MarketBuy(Order{OwnerID: 999, Qty: 45})
	assert.Equal(t, uint64(45), report.FilledQty)

	waitFills(t, &fills, 2)
	var sum uint64
	for _, f := range fills {
		sum += f.Qty
	}
	assert.Equal(t, report.FilledQty, sum, "sum of fill quantities must equal reported filled quantity")

	lvl, ok := ob.Asks.Best()
	require.True(t, ok)
	assert.Equal(t, uint64(15), lvl.TotalQty(), "remaining resting quantity must account for the rest")
}

func TestRoundTripEmptyingViaOffsettingMarketOrders(t *testing.T) {
	var fills []Fill
	e, ob := newTestEngine(t, &fills)
	ob.Asks.Insert(price.New(5, 0), book.NewRestingOrder(1, 100))

	buyReport := e.MarketBuy(Order{OwnerID: 2, Qty: 100})
	require.Equal(t, uint64(100), buyReport.FilledQty)
	assert.Equal(t, 0, ob.Asks.Len())
	assert.Equal(t, 0, ob.Bids.Len())

	ob.Bids.Insert(price.New(5, 0), book.NewRestingOrder(2, 100))
	sellReport := e.MarketSell(Order{OwnerID: 3, Qty: 100})
	require.Equal(t, uint64(100), sellReport.FilledQty)
	assert.Equal(t, 0, ob.Bids.Len())
	assert.False(t, ob.Crossed())
}
