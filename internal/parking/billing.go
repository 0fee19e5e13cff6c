package parking

import (
	"time"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// Fare computes the amount owed for a stay between entryTime and exitTime at
// the given per-hour rate. Whole minutes are converted to hours with 2
// decimal places (half up), then multiplied by the rate and rounded again.
//
// A negative or zero elapsed duration (clock skew) is clamped to zero
// minutes, so the fare is never negative. Calling this with exitTime = now
// yields the "fare so far" for an active stay and matches an EXIT computed
// at the same instant.
func Fare(entryTime, exitTime time.Time, pricePerHour decimal.Decimal) decimal.Decimal {
	minutes := int64(exitTime.Sub(entryTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	hours := decimal.NewFromInt(minutes).DivRound(minutesPerHour, 2)
	return hours.Mul(pricePerHour).Round(2)
}
