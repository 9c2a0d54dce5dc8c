package book

import "matchcore/internal/price"

// PriceLevel is the FIFO queue of RestingOrders at a single price: the
// front is the oldest (first to match), the back is the newest. A
// PriceLevel must never be left registered in a Side once it has no
// orders left — that bookkeeping is the Side's responsibility, not this
// type's.
type PriceLevel struct {
	Price  price.Price
	orders []*RestingOrder
}

// NewPriceLevel constructs an empty level at the given price.
func NewPriceLevel(p price.Price) *PriceLevel {
	return &PriceLevel{Price: p}
}

// PushBack appends a RestingOrder to the back of the queue (newest),
// preserving time priority. O(1) amortized.
func (lvl *PriceLevel) PushBack(o *RestingOrder) {
	lvl.orders = append(lvl.orders, o)
}

// Front returns the oldest RestingOrder without removing it.
func (lvl *PriceLevel) Front() (*RestingOrder, bool) {
	if len(lvl.orders) == 0 {
		return nil, false
	}
	return lvl.orders[0], true
}

// PopFront removes and returns the oldest RestingOrder. O(1): the
// backing array is not compacted, only the slice header advances.
func (lvl *PriceLevel) PopFront() (*RestingOrder, bool) {
	if len(lvl.orders) == 0 {
		return nil, false
	}
	o := lvl.orders[0]
	lvl.orders = lvl.orders[1:]
	return o, true
}

// RemoveOwner scans for the first RestingOrder whose OwnerID matches and
// removes it, preserving the relative order of the rest. O(k) in the
// level's depth. Returns the removed order and true, or (nil, false) if
// no match was found.
func (lvl *PriceLevel) RemoveOwner(ownerID uint64) (*RestingOrder, bool) {
	for i, o := range lvl.orders {
		if o.OwnerID() == ownerID {
			removed := o
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			return removed, true
		}
	}
	return nil, false
}

// Len returns the number of resting orders at this level.
func (lvl *PriceLevel) Len() int { return len(lvl.orders) }

// Empty reports whether the level holds no orders; a level in this
// state must be removed from its Side in the same operation that
// emptied it.
func (lvl *PriceLevel) Empty() bool { return len(lvl.orders) == 0 }

// TotalQty sums RemainingQty across every resting order at this level,
// used for top-of-book aggregation.
func (lvl *PriceLevel) TotalQty() uint64 {
	var total uint64
	for _, o := range lvl.orders {
		total += o.RemainingQty()
	}
	return total
}

// Orders returns a read-only view of the queue in time-priority order,
// front first. Callers must not mutate the returned slice.
func (lvl *PriceLevel) Orders() []*RestingOrder {
	return lvl.orders
}
