package book

import (
	"matchcore/internal/price"

	"github.com/tidwall/btree"
)

// Direction selects which end of the price range a Side treats as
// "best": bids want the highest price, asks the lowest.
type Direction int

const (
	Bid Direction = iota
	Ask
)

// Side is a sorted Price -> PriceLevel map, one per book per direction.
// It is backed by github.com/tidwall/btree rather than a re-sorted hash
// map, per the design note in spec.md recommending an intrinsically
// ordered structure. The comparator is flipped for bids so that, for
// both directions, the tree's own Min/MinMut returns the side's "best"
// level — the same trick the teacher's engine.OrderBook uses for its
// bids/asks btrees.
type Side struct {
	direction Direction
	levels    *btree.BTreeG[*PriceLevel]
}

// NewSide constructs an empty Side for the given direction.
func NewSide(dir Direction) *Side {
	var less func(a, b *PriceLevel) bool
	switch dir {
	case Bid:
		// Descending by price: Min() yields the highest bid.
		less = func(a, b *PriceLevel) bool { return a.Price.Compare(b.Price) > 0 }
	default:
		// Ascending by price: Min() yields the lowest ask.
		less = func(a, b *PriceLevel) bool { return a.Price.Compare(b.Price) < 0 }
	}
	return &Side{direction: dir, levels: btree.NewBTreeG(less)}
}

// Direction reports whether this is a Bid or Ask side.
func (s *Side) Direction() Direction { return s.direction }

// Insert adds a RestingOrder at the given price. If the price level
// already exists the order is appended to the back of its queue
// (preserving FIFO); otherwise a new level is created and inserted at
// its sorted position.
func (s *Side) Insert(p price.Price, o *RestingOrder) {
	if existing, ok := s.levels.GetMut(&PriceLevel{Price: p}); ok {
		existing.PushBack(o)
		return
	}
	lvl := NewPriceLevel(p)
	lvl.PushBack(o)
	s.levels.Set(lvl)
}

// Cancel looks up price, and if present scans its level for the first
// RestingOrder whose OwnerID matches, removing it. If the level becomes
// empty, the price key is removed from the Side. Returns false if the
// price is not present or no order at that price matches ownerID.
func (s *Side) Cancel(p price.Price, ownerID uint64) bool {
	lvl, ok := s.levels.GetMut(&PriceLevel{Price: p})
	if !ok {
		return false
	}
	_, removed := lvl.RemoveOwner(ownerID)
	if removed && lvl.Empty() {
		s.levels.Delete(&PriceLevel{Price: p})
	}
	return removed
}

// Best returns the side's best level (highest for bids, lowest for
// asks) for read-only queries, or false if the side is empty.
func (s *Side) Best() (*PriceLevel, bool) {
	return s.levels.Min()
}

// BestMut returns the side's best level for in-place mutation by the
// matching engine.
func (s *Side) BestMut() (*PriceLevel, bool) {
	return s.levels.MinMut()
}

// RemoveLevel deletes the level at p, if present. Used by the matching
// engine once a level has been fully consumed.
func (s *Side) RemoveLevel(p price.Price) {
	s.levels.Delete(&PriceLevel{Price: p})
}

// Ascend visits levels from best to worst, calling fn for each; it
// stops early if fn returns false.
func (s *Side) Ascend(fn func(*PriceLevel) bool) {
	s.levels.Scan(fn)
}

// Depth returns up to the first n levels from the best outward.
func (s *Side) Depth(n int) []*PriceLevel {
	if n <= 0 {
		return nil
	}
	out := make([]*PriceLevel, 0, n)
	s.Ascend(func(lvl *PriceLevel) bool {
		out = append(out, lvl)
		return len(out) < n
	})
	return out
}

// Len reports the number of distinct price levels on this side.
func (s *Side) Len() int { return s.levels.Len() }
