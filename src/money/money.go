package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundCents rounds a monetary amount to two decimals. Every derived
// monetary field persisted on a position goes through this so that
// consumers see stable cent-precision values regardless of float math.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IsFinite reports whether v is a usable amount (not NaN/Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
