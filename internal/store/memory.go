package store

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"parking-garage/internal/parking"
)

// MemoryStore is an in-memory entity store used by tests and the
// -store memory mode. Transactions snapshot the maps and restore them when
// the callback fails, so a transaction's writes are all-or-nothing.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

type memoryData struct {
	vehicles map[string]parking.Vehicle
	sectors  map[uint]parking.Sector
	spots    map[uint]parking.Spot
	records  map[uint]parking.ParkingRecord

	nextSectorID uint
	nextSpotID   uint
	nextRecordID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			vehicles: make(map[string]parking.Vehicle),
			sectors:  make(map[uint]parking.Sector),
			spots:    make(map[uint]parking.Spot),
			records:  make(map[uint]parking.ParkingRecord),
		},
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (d *memoryData) snapshot() *memoryData {
	clone := &memoryData{
		vehicles:     make(map[string]parking.Vehicle, len(d.vehicles)),
		sectors:      make(map[uint]parking.Sector, len(d.sectors)),
		spots:        make(map[uint]parking.Spot, len(d.spots)),
		records:      make(map[uint]parking.ParkingRecord, len(d.records)),
		nextSectorID: d.nextSectorID,
		nextSpotID:   d.nextSpotID,
		nextRecordID: d.nextRecordID,
	}
	for k, v := range d.vehicles {
		clone.vehicles[k] = v
	}
	for k, v := range d.sectors {
		clone.sectors[k] = v
	}
	for k, v := range d.spots {
		clone.spots[k] = v
	}
	for k, v := range d.records {
		clone.records[k] = v
	}
	return clone
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx parking.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.data.snapshot()
	view := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(ctx, view); err != nil {
		*s.data = *backup
		return err
	}
	return nil
}

func (s *MemoryStore) FindVehicle(ctx context.Context, licensePlate string) (*parking.Vehicle, error) {
	defer s.lock()()
	vehicle, ok := s.data.vehicles[licensePlate]
	if !ok {
		return nil, parking.ErrVehicleNotFound
	}
	return &vehicle, nil
}

func (s *MemoryStore) SaveVehicle(ctx context.Context, vehicle *parking.Vehicle) error {
	defer s.lock()()
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now().UTC()
	}
	s.data.vehicles[vehicle.LicensePlate] = *vehicle
	return nil
}

func (s *MemoryStore) CountSectors(ctx context.Context) (int64, error) {
	defer s.lock()()
	return int64(len(s.data.sectors)), nil
}

func (s *MemoryStore) FindSectorByID(ctx context.Context, id uint) (*parking.Sector, error) {
	defer s.lock()()
	sector, ok := s.data.sectors[id]
	if !ok {
		return nil, parking.ErrSectorNotFound
	}
	return &sector, nil
}

func (s *MemoryStore) FindSectorByName(ctx context.Context, name string) (*parking.Sector, error) {
	defer s.lock()()
	for _, sector := range s.data.sectors {
		if sector.Name == name {
			found := sector
			return &found, nil
		}
	}
	return nil, parking.ErrSectorNotFound
}

func (s *MemoryStore) SaveSector(ctx context.Context, sector *parking.Sector) error {
	defer s.lock()()
	if sector.ID == 0 {
		s.data.nextSectorID++
		sector.ID = s.data.nextSectorID
	}
	s.data.sectors[sector.ID] = *sector
	return nil
}

func (s *MemoryStore) FindSpotByCoordinates(ctx context.Context, lat, lng float64) (*parking.Spot, error) {
	defer s.lock()()
	for _, spot := range s.data.spots {
		if spot.Lat == lat && spot.Lng == lng {
			found := spot
			return &found, nil
		}
	}
	return nil, parking.ErrSpotNotFound
}

func (s *MemoryStore) FindSpotByID(ctx context.Context, id uint) (*parking.Spot, error) {
	defer s.lock()()
	spot, ok := s.data.spots[id]
	if !ok {
		return nil, parking.ErrSpotNotFound
	}
	return &spot, nil
}

func (s *MemoryStore) SaveSpot(ctx context.Context, spot *parking.Spot) error {
	defer s.lock()()
	if spot.ID == 0 {
		s.data.nextSpotID++
		spot.ID = s.data.nextSpotID
	}
	s.data.spots[spot.ID] = *spot
	return nil
}

func (s *MemoryStore) CountOccupiedSpots(ctx context.Context, sectorID uint) (int64, error) {
	defer s.lock()()
	var count int64
	for _, spot := range s.data.spots {
		if spot.SectorID == sectorID && spot.Occupied {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) FindActiveRecordByPlate(ctx context.Context, licensePlate string) (*parking.ParkingRecord, error) {
	defer s.lock()()
	for _, record := range s.data.records {
		if record.VehiclePlate == licensePlate && record.Status == parking.StatusActive {
			found := record
			return &found, nil
		}
	}
	return nil, parking.ErrNoActiveRecord
}

func (s *MemoryStore) FindActiveRecordBySpot(ctx context.Context, spotID uint) (*parking.ParkingRecord, error) {
	defer s.lock()()
	for _, record := range s.data.records {
		if record.SpotID == spotID && record.Status == parking.StatusActive {
			found := record
			return &found, nil
		}
	}
	return nil, parking.ErrNoActiveRecord
}

func (s *MemoryStore) SaveRecord(ctx context.Context, record *parking.ParkingRecord) error {
	defer s.lock()()
	if record.ID == 0 {
		s.data.nextRecordID++
		record.ID = s.data.nextRecordID
	}
	s.data.records[record.ID] = *record
	return nil
}

func (s *MemoryStore) SumCompletedFares(ctx context.Context, sectorID uint, from, to time.Time) (decimal.Decimal, error) {
	defer s.lock()()
	total := decimal.Zero
	for _, record := range s.data.records {
		if record.Status != parking.StatusCompleted || record.ExitTime == nil || record.FinalFare == nil {
			continue
		}
		spot, ok := s.data.spots[record.SpotID]
		if !ok || spot.SectorID != sectorID {
			continue
		}
		exit := *record.ExitTime
		if exit.Before(from) || !exit.Before(to) {
			continue
		}
		total = total.Add(*record.FinalFare)
	}
	return total, nil
}
