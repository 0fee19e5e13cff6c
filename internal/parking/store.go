package parking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the entity store the parking core reads and writes through.
// Lookups return the package's not-found sentinels when no row matches.
//
// WithTx runs fn against a transactional view of the store: every mutation
// made through the view is committed together, or rolled back when fn
// returns an error.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	FindVehicle(ctx context.Context, licensePlate string) (*Vehicle, error)
	SaveVehicle(ctx context.Context, vehicle *Vehicle) error

	CountSectors(ctx context.Context) (int64, error)
	FindSectorByID(ctx context.Context, id uint) (*Sector, error)
	FindSectorByName(ctx context.Context, name string) (*Sector, error)
	SaveSector(ctx context.Context, sector *Sector) error

	FindSpotByCoordinates(ctx context.Context, lat, lng float64) (*Spot, error)
	SaveSpot(ctx context.Context, spot *Spot) error
	CountOccupiedSpots(ctx context.Context, sectorID uint) (int64, error)

	FindActiveRecordByPlate(ctx context.Context, licensePlate string) (*ParkingRecord, error)
	FindActiveRecordBySpot(ctx context.Context, spotID uint) (*ParkingRecord, error)
	FindSpotByID(ctx context.Context, id uint) (*Spot, error)
	SaveRecord(ctx context.Context, record *ParkingRecord) error
	SumCompletedFares(ctx context.Context, sectorID uint, from, to time.Time) (decimal.Decimal, error)
}
