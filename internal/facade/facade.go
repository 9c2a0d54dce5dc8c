// Package facade is the single synchronous entry point an external RPC
// layer calls into: it owns the readers-writer lock guarding one
// OrderBook/Engine pair, and translates wire-shaped requests into
// matching-engine calls.
package facade

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matchcore/internal/bookerr"
	"matchcore/internal/matching"
	"matchcore/internal/metrics"
	"matchcore/internal/orderbook"
	"matchcore/internal/price"
)

// OrderKind mirrors the wire encoding: 0=Market, 1=GTC, 2=FOK, 3=IOC,
// 4=LOC. Any other value is UnknownOrderKind.
type OrderKind uint8

const (
	Market OrderKind = 0
	GTC    OrderKind = 1
	FOK    OrderKind = 2
	IOC    OrderKind = 3
	LOC    OrderKind = 4
)

func (k OrderKind) valid() bool { return k <= LOC }

// Result is the small result variant every write operation returns.
// It never panics or propagates an error to the collaborator: failure
// is communicated through Success/Accepted being false.
type Result struct {
	Success   bool
	Accepted  bool
	Requested uint64
	Filled    uint64
	Resting   bool
}

// Facade wraps one instrument's OrderBook and Engine behind a single
// readers-writer lock. Write operations (insert, cancel, any matching
// call) take the exclusive lock; queries take the shared lock.
type Facade struct {
	mu      sync.RWMutex
	book    *orderbook.OrderBook
	engine  *matching.Engine
	metrics *metrics.Collector
	logger  zerolog.Logger
}

// New constructs a Facade. publish is the optional fill-event sink;
// when nil, fills are dropped. mc may be nil to disable metrics.
func New(publish matching.Sink, mc *metrics.Collector) *Facade {
	ob := orderbook.New()
	f := &Facade{
		book:    ob,
		metrics: mc,
		logger:  log.Logger,
	}
	f.engine = matching.New(ob, publish)
	return f
}

// Close stops the engine's background fill-dispatch goroutine.
func (f *Facade) Close() {
	f.engine.Close()
}

func (f *Facade) observeRejected(side string, kind OrderKind) {
	if f.metrics == nil {
		return
	}
	f.metrics.RejectedTotal.WithLabelValues(side, kindLabel(kind)).Inc()
}

func (f *Facade) observeInserted(side string, kind OrderKind) {
	if f.metrics == nil {
		return
	}
	f.metrics.OrdersInsertedTotal.WithLabelValues(side, kindLabel(kind)).Inc()
}

func (f *Facade) observeFill(side string, qty uint64) {
	if f.metrics == nil {
		return
	}
	f.metrics.FillsTotal.WithLabelValues(side).Inc()
	f.metrics.FillQtyTotal.WithLabelValues(side).Add(float64(qty))
}

func (f *Facade) observeDepth() {
	if f.metrics == nil {
		return
	}
	f.metrics.BookDepth.WithLabelValues("bid").Set(float64(f.book.Bids.Len()))
	f.metrics.BookDepth.WithLabelValues("ask").Set(float64(f.book.Asks.Len()))
	f.metrics.FillsDropped.Set(float64(f.engine.DroppedFills()))
}

func kindLabel(k OrderKind) string {
	switch k {
	case Market:
		return "market"
	case GTC:
		return "gtc"
	case FOK:
		return "fok"
	case IOC:
		return "ioc"
	case LOC:
		return "loc"
	default:
		return "unknown"
	}
}

// InsertBuy inserts an order on the bid side per kind's semantics.
func (f *Facade) InsertBuy(kind OrderKind, priceF32 float32, ownerID uint64, qty uint64) Result {
	return f.insert(kind, priceF32, ownerID, qty, matching.Buy)
}

// InsertSell inserts an order on the ask side per kind's semantics.
func (f *Facade) InsertSell(kind OrderKind, priceF32 float32, ownerID uint64, qty uint64) Result {
	return f.insert(kind, priceF32, ownerID, qty, matching.Sell)
}

func (f *Facade) insert(kind OrderKind, priceF32 float32, ownerID uint64, qty uint64, side matching.Side) (result Result) {
	if !kind.valid() {
		f.logger.Debug().Uint8("kind", uint8(kind)).Msg("insert rejected: unknown order kind")
		return Result{Success: false}
	}

	p := price.FromFloat(float64(priceF32))
	order := matching.Order{OwnerID: ownerID, Qty: qty, Price: p, OrderUUID: uuid.NewString()}

	f.mu.Lock()
	defer f.mu.Unlock()

	// An Invariant panic means the engine detected a programmer error
	// mid-match. Per spec, the call must fail cleanly rather than take
	// the whole process down with it; recover here, at the single write
	// boundary every matching call passes through, and report failure.
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error().Interface("panic", r).Msg("insert recovered from invariant violation")
			result = Result{Success: false}
		}
	}()

	var report matching.ExecutionReport
	resting := false

	switch kind {
	case Market:
		if side == matching.Buy {
			report = f.engine.MarketBuy(order)
		} else {
			report = f.engine.MarketSell(order)
		}
	case GTC:
		var inserted bool
		report, inserted = f.engine.MatchAndInsert(order, side)
		resting = inserted
	case IOC:
		report = f.engine.IOC(order, side)
	case FOK:
		report = f.engine.FOK(order, side)
	case LOC:
		var inserted bool
		report, inserted = f.engine.LOC(order, side)
		resting = inserted
	default:
		bookerr.Invariant("unreachable: kind.valid() already screened unknown kinds")
	}

	sideLabel := "buy"
	if side == matching.Sell {
		sideLabel = "sell"
	}
	if !report.Accepted {
		f.observeRejected(sideLabel, kind)
	} else {
		f.observeInserted(sideLabel, kind)
		if report.FilledQty > 0 {
			f.observeFill(sideLabel, report.FilledQty)
		}
	}
	f.observeDepth()

	return Result{
		Success:   true,
		Accepted:  report.Accepted,
		Requested: report.RequestedQty,
		Filled:    report.FilledQty,
		Resting:   resting,
	}
}

// CancelBuy removes ownerID's resting order at priceF32 from the bid
// side.
func (f *Facade) CancelBuy(priceF32 float32, ownerID uint64) Result {
	return f.cancel(priceF32, ownerID, matching.Buy)
}

// CancelSell removes ownerID's resting order at priceF32 from the ask
// side.
func (f *Facade) CancelSell(priceF32 float32, ownerID uint64) Result {
	return f.cancel(priceF32, ownerID, matching.Sell)
}

func (f *Facade) cancel(priceF32 float32, ownerID uint64, side matching.Side) Result {
	p := price.FromFloat(float64(priceF32))

	f.mu.Lock()
	defer f.mu.Unlock()

	var ok bool
	sideLabel := "buy"
	if side == matching.Buy {
		ok = f.book.CancelBid(p, ownerID)
	} else {
		sideLabel = "sell"
		ok = f.book.CancelAsk(p, ownerID)
	}
	if ok && f.metrics != nil {
		f.metrics.OrdersCancelledTotal.WithLabelValues(sideLabel).Inc()
	}
	f.observeDepth()

	return Result{Success: ok}
}

// TopBid returns the best bid's price and aggregate quantity.
func (f *Facade) TopBid() (orderbook.LevelView, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.book.TopBid()
}

// TopAsk returns the best ask's price and aggregate quantity.
func (f *Facade) TopAsk() (orderbook.LevelView, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.book.TopAsk()
}

// MidPrice returns the facade's current reference price.
func (f *Facade) MidPrice() (price.Price, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.book.MidPrice()
}

// Depth returns the first n levels from the best outward on side.
func (f *Facade) Depth(side matching.Side, n int) []orderbook.LevelView {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.book.Depth(side, n)
}

// DroppedFills returns how many fills were discarded because the
// dispatch queue was saturated.
func (f *Facade) DroppedFills() uint64 {
	return f.engine.DroppedFills()
}
