package parking

import "github.com/shopspring/decimal"

// Occupancy tiers for dynamic pricing. Evaluated in order against the
// occupancy ratio measured before the arriving vehicle takes its spot.
var (
	multiplierLow    = decimal.RequireFromString("0.90")
	multiplierMedium = decimal.RequireFromString("1.10")
	multiplierHigh   = decimal.RequireFromString("1.25")
)

// DynamicPrice computes the per-hour rate for a sector at the moment a
// vehicle parks. The result is scaled to 2 decimal places, rounding half up,
// and is snapshotted onto the parking record for the whole stay.
func DynamicPrice(basePrice decimal.Decimal, occupiedSpots int64, maxCapacity int) decimal.Decimal {
	// A sector without capacity is always full.
	occupancyRate := 1.0
	if maxCapacity > 0 {
		occupancyRate = float64(occupiedSpots) / float64(maxCapacity)
	}

	var price decimal.Decimal
	switch {
	case occupancyRate < 0.25:
		price = basePrice.Mul(multiplierLow)
	case occupancyRate < 0.50:
		price = basePrice
	case occupancyRate < 0.75:
		price = basePrice.Mul(multiplierMedium)
	default:
		price = basePrice.Mul(multiplierHigh)
	}

	return price.Round(2)
}
