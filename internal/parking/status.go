package parking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"parking-garage/internal/logging"
)

// PlateStatus is the live view of an active stay for one vehicle.
type PlateStatus struct {
	LicensePlate  string
	PriceUntilNow decimal.Decimal
	EntryTime     time.Time
	TimeParked    time.Duration
	Lat           float64
	Lng           float64
}

// SpotStatus is the live view of one spot. An unoccupied spot has every
// field beyond Occupied zeroed. Inconsistent marks a spot flagged occupied
// with no ACTIVE record behind it, which violates the occupancy invariant;
// the query reports it instead of failing.
type SpotStatus struct {
	Occupied      bool
	Inconsistent  bool
	LicensePlate  string
	PriceUntilNow decimal.Decimal
	EntryTime     *time.Time
	TimeParked    time.Duration
}

// Revenue is the summed fares of completed stays for one sector and day.
type Revenue struct {
	Amount    decimal.Decimal
	Currency  string
	Timestamp time.Time
}

// QueryService answers read-only projections over the live garage state. It
// reuses the billing calculator with the current time, so a "fare so far" is
// numerically identical to an EXIT computed at the same instant.
type QueryService struct {
	store Store
	clock Clock
}

func NewQueryService(store Store, clock Clock) *QueryService {
	return &QueryService{store: store, clock: clock}
}

// PlateStatus returns the active stay for the plate, or ErrNoActiveRecord.
func (s *QueryService) PlateStatus(ctx context.Context, licensePlate string) (*PlateStatus, error) {
	record, err := s.store.FindActiveRecordByPlate(ctx, licensePlate)
	if err != nil {
		return nil, err
	}

	spot, err := s.store.FindSpotByID(ctx, record.SpotID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &PlateStatus{
		LicensePlate:  record.VehiclePlate,
		PriceUntilNow: Fare(record.EntryTime, now, record.PricePerHour),
		EntryTime:     record.EntryTime,
		TimeParked:    now.Sub(record.EntryTime),
		Lat:           spot.Lat,
		Lng:           spot.Lng,
	}, nil
}

// SpotStatus returns the live state of the spot at the given coordinates, or
// ErrSpotNotFound when no spot exists there.
func (s *QueryService) SpotStatus(ctx context.Context, lat, lng float64) (*SpotStatus, error) {
	spot, err := s.store.FindSpotByCoordinates(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	status := &SpotStatus{
		Occupied:      spot.Occupied,
		PriceUntilNow: decimal.Zero,
	}
	if !spot.Occupied {
		return status, nil
	}

	record, err := s.store.FindActiveRecordBySpot(ctx, spot.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveRecord) {
			// Invariant breach: the occupied flag has no backing record.
			// Surface a marker so operators can spot it without an outage.
			logging.Error(ctx).
				Uint("spot_id", spot.ID).
				Msg("data inconsistency: spot flagged occupied without an active record")
			status.Inconsistent = true
			return status, nil
		}
		return nil, err
	}

	now := s.clock.Now()
	status.LicensePlate = record.VehiclePlate
	status.PriceUntilNow = Fare(record.EntryTime, now, record.PricePerHour)
	status.EntryTime = &record.EntryTime
	status.TimeParked = now.Sub(record.EntryTime)
	return status, nil
}

// SectorRevenue sums the final fares of COMPLETED stays whose exit time
// falls within the given calendar day. An unknown sector and a day with no
// completed stays both yield zero.
func (s *QueryService) SectorRevenue(ctx context.Context, sectorName string, date time.Time) (*Revenue, error) {
	revenue := &Revenue{
		Amount:    decimal.Zero,
		Currency:  "BRL",
		Timestamp: s.clock.Now(),
	}

	sector, err := s.store.FindSectorByName(ctx, sectorName)
	if err != nil {
		if errors.Is(err, ErrSectorNotFound) {
			return revenue, nil
		}
		return nil, err
	}

	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	total, err := s.store.SumCompletedFares(ctx, sector.ID, from, to)
	if err != nil {
		return nil, err
	}

	revenue.Amount = total.Round(2)
	return revenue, nil
}
