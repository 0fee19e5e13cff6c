package parking

import (
	"context"
	"errors"
)

// OccupancyTracker is the single source of truth for spot exclusivity and
// sector capacity. It performs no pricing or billing; event handling and the
// query services delegate every occupancy decision here.
type OccupancyTracker struct {
	store Store
}

func NewOccupancyTracker(store Store) *OccupancyTracker {
	return &OccupancyTracker{store: store}
}

// IsOccupied reports whether the spot is taken. The occupied flag is a
// derived cache, so a clear flag is cross-checked against the ACTIVE record
// set before the spot is handed out.
func (t *OccupancyTracker) IsOccupied(ctx context.Context, spot *Spot) (bool, error) {
	if spot.Occupied {
		return true, nil
	}

	_, err := t.store.FindActiveRecordBySpot(ctx, spot.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveRecord) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// OccupiedCount returns the number of occupied spots in the sector.
func (t *OccupancyTracker) OccupiedCount(ctx context.Context, sectorID uint) (int64, error) {
	return t.store.CountOccupiedSpots(ctx, sectorID)
}

// MarkOccupied sets the spot's occupied flag.
func (t *OccupancyTracker) MarkOccupied(ctx context.Context, spot *Spot) error {
	spot.Occupied = true
	return t.store.SaveSpot(ctx, spot)
}

// MarkFree clears the spot's occupied flag.
func (t *OccupancyTracker) MarkFree(ctx context.Context, spot *Spot) error {
	spot.Occupied = false
	return t.store.SaveSpot(ctx, spot)
}
