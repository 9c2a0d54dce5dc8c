// Package book implements the price-indexed order book: RestingOrder,
// the per-price FIFO PriceLevel, and the sorted-by-price Side. Time
// priority is captured purely by position within a PriceLevel's queue;
// there is no timestamp field on RestingOrder.
package book

// RestingOrder is a limit order currently resting in the book, awaiting
// a match. Cancellation (PriceLevel.RemoveOwner) matches on OwnerID
// alone, not on structural equality of the whole order.
type RestingOrder struct {
	ownerID      uint64
	remainingQty uint64

	// OrderUUID is stamped by the facade for trace/log correlation only;
	// matching and cancellation never read it.
	OrderUUID string
}

// NewRestingOrder constructs a resting order. remainingQty must be
// strictly positive; the caller (PriceLevel/Side) is responsible for
// never inserting a zero-qty order, since a zero-qty head is an
// invariant violation during matching.
func NewRestingOrder(ownerID, remainingQty uint64) *RestingOrder {
	return &RestingOrder{ownerID: ownerID, remainingQty: remainingQty}
}

// OwnerID identifies the submitter. Uniqueness across the book is not
// enforced; cancel matches on the first RestingOrder at a price level
// whose OwnerID matches.
func (o *RestingOrder) OwnerID() uint64 { return o.ownerID }

// RemainingQty is strictly positive while the order is resting.
func (o *RestingOrder) RemainingQty() uint64 { return o.remainingQty }

// SetQty mutates the remaining quantity, used by the matching engine to
// record a partial fill.
func (o *RestingOrder) SetQty(qty uint64) { o.remainingQty = qty }

// Equal reports structural equality, for callers that want the stronger
// (owner, qty) comparison the source used; production cancellation
// deliberately does not use this (see PriceLevel.RemoveOwner).
func (o *RestingOrder) Equal(other *RestingOrder) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ownerID == other.ownerID && o.remainingQty == other.remainingQty
}
