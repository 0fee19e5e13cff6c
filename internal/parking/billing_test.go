package parking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFareTwoHours(t *testing.T) {
	entry := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	exit := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	fare := Fare(entry, exit, decimal.RequireFromString("15.00"))
	assert.Equal(t, "30.00", fare.StringFixed(2))
}

func TestFarePartialHourRoundsHalfUp(t *testing.T) {
	entry := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exit time.Time
		rate string
		want string
	}{
		{"ninety minutes", entry.Add(90 * time.Minute), "10.00", "15.00"},
		{"fifty minutes is 0.83 hours", entry.Add(50 * time.Minute), "10.00", "8.30"},
		{"ten minutes is 0.17 hours", entry.Add(10 * time.Minute), "10.00", "1.70"},
		{"partial minutes are ignored", entry.Add(59*time.Minute + 59*time.Second), "10.00", "9.80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fare := Fare(entry, tt.exit, decimal.RequireFromString(tt.rate))
			assert.Equal(t, tt.want, fare.StringFixed(2))
		})
	}
}

func TestFareClampsNegativeDuration(t *testing.T) {
	entry := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rate := decimal.RequireFromString("15.00")

	exitBefore := entry.Add(-30 * time.Minute)
	assert.True(t, Fare(entry, exitBefore, rate).IsZero())

	assert.True(t, Fare(entry, entry, rate).IsZero())
}

func TestFareIsDeterministicForSameInstant(t *testing.T) {
	entry := time.Date(2025, 1, 1, 8, 15, 0, 0, time.UTC)
	at := time.Date(2025, 1, 1, 11, 42, 30, 0, time.UTC)
	rate := decimal.RequireFromString("12.50")

	live := Fare(entry, at, rate)
	atExit := Fare(entry, at, rate)
	assert.True(t, live.Equal(atExit))
}
