// Package price implements the fixed-point Price value type used both as
// the ordering key of a price level and as a map key: major.minor, minor
// clamped to the 0-99 cent range. A non-floating representation is used
// throughout so the type stays Eq/Ord/Hash-safe and matching stays
// deterministic, per the design rationale in spec.md.
package price

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is an immutable fixed-point decimal: major units plus a
// two-digit minor (cent) component.
type Price struct {
	Major uint32
	Minor uint8
}

// hundred is reused by FromFloat to scale the fractional component.
var hundred = decimal.NewFromInt(100)

// New constructs a Price, clamping minor to [0, 99] and coercing the
// non-representable (0, 0) to (0, 1).
func New(major uint32, minor uint8) Price {
	if minor > 99 {
		minor = 99
	}
	if major == 0 && minor == 0 {
		minor = 1
	}
	return Price{Major: major, Minor: minor}
}

// FromFloat converts a binary float into a Price: major = floor(x),
// minor = round((x - major) * 100) with half-to-even rounding. The
// scaling and rounding is done through shopspring/decimal rather than on
// the raw float64 so that the half-to-even rule is exact rather than an
// approximation built on float rounding error.
func FromFloat(x float64) Price {
	if x == 0 {
		return New(0, 1)
	}

	d := decimal.NewFromFloat(x)
	majorPart := d.Floor()
	frac := d.Sub(majorPart).Mul(hundred).RoundBank(0)

	major := majorPart.IntPart()
	minor := frac.IntPart()

	// Banker's rounding of the fractional part can carry into the next
	// whole unit (e.g. 2.995 -> major=2, minor=100).
	if minor >= 100 {
		major++
		minor -= 100
	}
	if major < 0 {
		major = 0
	}
	if minor < 0 {
		minor = 0
	}

	return New(uint32(major), uint8(minor))
}

// ToFloat returns major + minor/100. Precision loss against the original
// input is accepted; this is for display only, never for ordering.
func (p Price) ToFloat() float32 {
	return float32(p.Major) + float32(p.Minor)/100
}

// Less reports whether p sorts before other under the total
// (major, minor) lexicographic ordering.
func (p Price) Less(other Price) bool {
	if p.Major != other.Major {
		return p.Major < other.Major
	}
	return p.Minor < other.Minor
}

// Compare returns -1, 0 or 1 as p is less than, equal to, or greater
// than other.
func (p Price) Compare(other Price) int {
	switch {
	case p.Less(other):
		return -1
	case other.Less(p):
		return 1
	default:
		return 0
	}
}

func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p.Major, p.Minor)
}
