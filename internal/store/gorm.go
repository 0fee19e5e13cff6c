package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-garage/internal/parking"
)

// GormStore is the Postgres-backed entity store.
type GormStore struct {
	db *gorm.DB
}

// Connect opens the database, installs the OTel plugin and migrates the
// schema.
func Connect(databaseURL string, isDevelopment bool) (*GormStore, error) {
	logLevel := logger.Silent
	if isDevelopment {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to setup otel plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&parking.Vehicle{},
		&parking.Sector{},
		&parking.Spot{},
		&parking.ParkingRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) CheckHealth() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx parking.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStore{db: tx})
	})
}

func (s *GormStore) FindVehicle(ctx context.Context, licensePlate string) (*parking.Vehicle, error) {
	var vehicle parking.Vehicle
	err := s.db.WithContext(ctx).First(&vehicle, "license_plate = ?", licensePlate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (s *GormStore) SaveVehicle(ctx context.Context, vehicle *parking.Vehicle) error {
	return s.db.WithContext(ctx).Save(vehicle).Error
}

func (s *GormStore) CountSectors(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&parking.Sector{}).Count(&count).Error
	return count, err
}

func (s *GormStore) FindSectorByID(ctx context.Context, id uint) (*parking.Sector, error) {
	var sector parking.Sector
	err := s.db.WithContext(ctx).First(&sector, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrSectorNotFound
		}
		return nil, err
	}
	return &sector, nil
}

func (s *GormStore) FindSectorByName(ctx context.Context, name string) (*parking.Sector, error) {
	var sector parking.Sector
	err := s.db.WithContext(ctx).First(&sector, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrSectorNotFound
		}
		return nil, err
	}
	return &sector, nil
}

func (s *GormStore) SaveSector(ctx context.Context, sector *parking.Sector) error {
	return s.db.WithContext(ctx).Save(sector).Error
}

func (s *GormStore) FindSpotByCoordinates(ctx context.Context, lat, lng float64) (*parking.Spot, error) {
	var spot parking.Spot
	err := s.db.WithContext(ctx).First(&spot, "lat = ? AND lng = ?", lat, lng).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrSpotNotFound
		}
		return nil, err
	}
	return &spot, nil
}

func (s *GormStore) FindSpotByID(ctx context.Context, id uint) (*parking.Spot, error) {
	var spot parking.Spot
	err := s.db.WithContext(ctx).First(&spot, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrSpotNotFound
		}
		return nil, err
	}
	return &spot, nil
}

func (s *GormStore) SaveSpot(ctx context.Context, spot *parking.Spot) error {
	return s.db.WithContext(ctx).Save(spot).Error
}

func (s *GormStore) CountOccupiedSpots(ctx context.Context, sectorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&parking.Spot{}).
		Where("sector_id = ? AND occupied = ?", sectorID, true).
		Count(&count).Error
	return count, err
}

func (s *GormStore) FindActiveRecordByPlate(ctx context.Context, licensePlate string) (*parking.ParkingRecord, error) {
	var record parking.ParkingRecord
	err := s.db.WithContext(ctx).
		First(&record, "vehicle_plate = ? AND status = ?", licensePlate, parking.StatusActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrNoActiveRecord
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) FindActiveRecordBySpot(ctx context.Context, spotID uint) (*parking.ParkingRecord, error) {
	var record parking.ParkingRecord
	err := s.db.WithContext(ctx).
		First(&record, "spot_id = ? AND status = ?", spotID, parking.StatusActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, parking.ErrNoActiveRecord
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) SaveRecord(ctx context.Context, record *parking.ParkingRecord) error {
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *GormStore) SumCompletedFares(ctx context.Context, sectorID uint, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.WithContext(ctx).
		Model(&parking.ParkingRecord{}).
		Joins("JOIN spots ON spots.id = parking_records.spot_id").
		Where("spots.sector_id = ? AND parking_records.status = ?", sectorID, parking.StatusCompleted).
		Where("parking_records.exit_time >= ? AND parking_records.exit_time < ?", from, to).
		Select("COALESCE(SUM(parking_records.final_fare), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
