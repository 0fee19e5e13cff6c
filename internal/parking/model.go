package parking

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParkingStatus string

const (
	StatusActive    ParkingStatus = "ACTIVE"
	StatusCompleted ParkingStatus = "COMPLETED"
)

// Vehicle is identified solely by its license plate. It is created lazily on
// the first ENTRY event and never deleted.
type Vehicle struct {
	LicensePlate string    `gorm:"primaryKey;column:license_plate" json:"license_plate"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Sector is a named zone of the garage with its own base price and capacity.
// Sectors are created once at bootstrap and are immutable afterwards.
type Sector struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"uniqueIndex;not null" json:"name"`
	BasePrice            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"base_price"`
	MaxCapacity          int             `gorm:"not null" json:"max_capacity"`
	OpenHour             string          `gorm:"size:5" json:"open_hour"`
	CloseHour            string          `gorm:"size:5" json:"close_hour"`
	DurationLimitMinutes int             `json:"duration_limit_minutes"`
}

// Spot is a single physical parking position, located by coordinates.
// The Occupied flag is a derived cache: it must equal "an ACTIVE record
// references this spot".
type Spot struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	SectorID uint    `gorm:"not null;index" json:"sector_id"`
	Lat      float64 `gorm:"not null;uniqueIndex:idx_spot_coords" json:"lat"`
	Lng      float64 `gorm:"not null;uniqueIndex:idx_spot_coords" json:"lng"`
	Occupied bool    `gorm:"not null;default:false" json:"occupied"`
}

// ParkingRecord is one vehicle's stay, created on PARKED and completed on
// EXIT. PricePerHour is snapshotted at creation and never changes; FinalFare
// is set exactly once, at EXIT.
type ParkingRecord struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	VehiclePlate string           `gorm:"column:vehicle_plate;not null;index" json:"vehicle_plate"`
	SpotID       uint             `gorm:"not null;index" json:"spot_id"`
	EntryTime    time.Time        `gorm:"not null" json:"entry_time"`
	ExitTime     *time.Time       `json:"exit_time,omitempty"`
	Status       ParkingStatus    `gorm:"not null;index" json:"status"`
	PricePerHour decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"price_per_hour"`
	FinalFare    *decimal.Decimal `gorm:"type:numeric(10,2)" json:"final_fare,omitempty"`
}
