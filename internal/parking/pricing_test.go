package parking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDynamicPriceTiers(t *testing.T) {
	basePrice := decimal.RequireFromString("10.00")

	tests := []struct {
		name     string
		occupied int64
		capacity int
		want     string
	}{
		{"below a quarter gets a discount", 10, 100, "9.00"},
		{"quarter full pays the base price", 25, 100, "10.00"},
		{"thirty occupied of a hundred pays base price", 30, 100, "10.00"},
		{"half full pays a ten percent premium", 50, 100, "11.00"},
		{"three quarters full pays the top premium", 75, 100, "12.50"},
		{"eighty occupied of a hundred pays the top premium", 80, 100, "12.50"},
		{"empty sector gets the discount", 0, 100, "9.00"},
		{"zero capacity sector is treated as full", 0, 0, "12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DynamicPrice(basePrice, tt.occupied, tt.capacity)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestDynamicPriceRoundsHalfUp(t *testing.T) {
	// 10.05 * 1.10 = 11.055, which must round up to 11.06.
	price := DynamicPrice(decimal.RequireFromString("10.05"), 50, 100)
	assert.Equal(t, "11.06", price.StringFixed(2))
}
