package parking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parking-garage/internal/logging"
)

const (
	EventEntry  = "ENTRY"
	EventParked = "PARKED"
	EventExit   = "EXIT"
)

// WebhookEvent is the envelope the garage simulator posts for every vehicle
// movement. Only the fields relevant to the event type are set.
type WebhookEvent struct {
	EventType    string   `json:"event_type"`
	LicensePlate string   `json:"license_plate"`
	EntryTime    string   `json:"entry_time,omitempty"`
	ExitTime     string   `json:"exit_time,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
}

// EventService routes ENTRY/PARKED/EXIT events through admission control,
// pricing and billing. Each event runs as one transaction against the store;
// the check-then-act sequences are additionally serialized with in-process
// locks keyed by sector (PARKED) and by plate (ENTRY/EXIT).
type EventService struct {
	store Store
	clock Clock

	sectorLocks keyedMutex
	plateLocks  keyedMutex
}

func NewEventService(store Store, clock Clock) *EventService {
	return &EventService{store: store, clock: clock}
}

// ProcessEvent dispatches a webhook event by type. Unknown event types are
// logged and ignored, never fatal.
func (s *EventService) ProcessEvent(ctx context.Context, event WebhookEvent) error {
	logging.Info(ctx).Str("event_type", event.EventType).Msg("processing webhook event")

	switch event.EventType {
	case EventEntry:
		return s.handleEntry(ctx, event)
	case EventParked:
		return s.handleParked(ctx, event)
	case EventExit:
		return s.handleExit(ctx, event)
	default:
		logging.Warn(ctx).Str("event_type", event.EventType).Msg("unknown event type received")
		return nil
	}
}

// handleEntry registers the vehicle if it has never been seen. Processing the
// same plate twice is a no-op the second time.
func (s *EventService) handleEntry(ctx context.Context, event WebhookEvent) error {
	if event.LicensePlate == "" {
		return fmt.Errorf("%w: license_plate is required", ErrValidation)
	}

	unlock := s.plateLocks.Lock("plate:" + event.LicensePlate)
	defer unlock()

	_, err := s.store.FindVehicle(ctx, event.LicensePlate)
	if err == nil {
		logging.Debug(ctx).Str("license_plate", event.LicensePlate).Msg("vehicle already registered")
		return nil
	}
	if !errors.Is(err, ErrVehicleNotFound) {
		return err
	}

	if err := s.store.SaveVehicle(ctx, &Vehicle{LicensePlate: event.LicensePlate}); err != nil {
		return fmt.Errorf("registering vehicle %s: %w", event.LicensePlate, err)
	}

	logging.Info(ctx).Str("license_plate", event.LicensePlate).Msg("vehicle registered")
	return nil
}

// handleParked admits a vehicle into a spot: capacity and exclusivity are
// checked, the dynamic price is snapshotted and an ACTIVE record is created,
// all inside one transaction under the sector lock.
func (s *EventService) handleParked(ctx context.Context, event WebhookEvent) error {
	if event.LicensePlate == "" {
		return fmt.Errorf("%w: license_plate is required", ErrValidation)
	}
	if event.Lat == nil || event.Lng == nil {
		return fmt.Errorf("%w: lat and lng are required for PARKED", ErrValidation)
	}

	spot, err := s.store.FindSpotByCoordinates(ctx, *event.Lat, *event.Lng)
	if err != nil {
		return err
	}
	vehicle, err := s.store.FindVehicle(ctx, event.LicensePlate)
	if err != nil {
		return err
	}
	sector, err := s.store.FindSectorByID(ctx, spot.SectorID)
	if err != nil {
		return err
	}

	// The sector lock also serializes competing attempts on the same spot,
	// since a spot belongs to exactly one sector.
	unlock := s.sectorLocks.Lock(fmt.Sprintf("sector:%d", sector.ID))
	defer unlock()

	return s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		occupancy := NewOccupancyTracker(tx)

		// Re-read inside the transaction so the occupied flag is current.
		spot, err := tx.FindSpotByCoordinates(ctx, *event.Lat, *event.Lng)
		if err != nil {
			return err
		}

		occupiedSpots, err := occupancy.OccupiedCount(ctx, sector.ID)
		if err != nil {
			return err
		}
		if occupiedSpots >= int64(sector.MaxCapacity) {
			logging.Warn(ctx).
				Str("sector", sector.Name).
				Int("max_capacity", sector.MaxCapacity).
				Str("license_plate", event.LicensePlate).
				Msg("sector at maximum capacity, rejecting PARKED event")
			return ErrSectorFull
		}

		taken, err := occupancy.IsOccupied(ctx, spot)
		if err != nil {
			return err
		}
		if taken {
			logging.Warn(ctx).Uint("spot_id", spot.ID).Msg("attempt to park on occupied spot")
			return ErrSpotOccupied
		}

		pricePerHour := DynamicPrice(sector.BasePrice, occupiedSpots, sector.MaxCapacity)

		record := &ParkingRecord{
			VehiclePlate: vehicle.LicensePlate,
			SpotID:       spot.ID,
			EntryTime:    s.clock.Now(),
			Status:       StatusActive,
			PricePerHour: pricePerHour,
		}
		if err := tx.SaveRecord(ctx, record); err != nil {
			return fmt.Errorf("creating parking record: %w", err)
		}

		if err := occupancy.MarkOccupied(ctx, spot); err != nil {
			return fmt.Errorf("marking spot occupied: %w", err)
		}

		logging.Info(ctx).
			Str("license_plate", vehicle.LicensePlate).
			Uint("spot_id", spot.ID).
			Str("sector", sector.Name).
			Str("price_per_hour", pricePerHour.String()).
			Msg("vehicle parked")
		return nil
	})
}

// handleExit completes the plate's active stay: the final fare is computed
// from the frozen price snapshot and the spot is released.
func (s *EventService) handleExit(ctx context.Context, event WebhookEvent) error {
	if event.LicensePlate == "" {
		return fmt.Errorf("%w: license_plate is required", ErrValidation)
	}

	exitTime, err := parseEventTime(event.ExitTime)
	if err != nil {
		return fmt.Errorf("%w: exit_time %q is not a valid timestamp", ErrValidation, event.ExitTime)
	}

	unlock := s.plateLocks.Lock("plate:" + event.LicensePlate)
	defer unlock()

	return s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		record, err := tx.FindActiveRecordByPlate(ctx, event.LicensePlate)
		if err != nil {
			return err
		}

		finalFare := Fare(record.EntryTime, exitTime, record.PricePerHour)

		record.ExitTime = &exitTime
		record.FinalFare = &finalFare
		record.Status = StatusCompleted
		if err := tx.SaveRecord(ctx, record); err != nil {
			return fmt.Errorf("completing parking record: %w", err)
		}

		spot, err := tx.FindSpotByID(ctx, record.SpotID)
		if err != nil {
			return err
		}
		if err := NewOccupancyTracker(tx).MarkFree(ctx, spot); err != nil {
			return fmt.Errorf("releasing spot: %w", err)
		}

		logging.Info(ctx).
			Str("license_plate", event.LicensePlate).
			Str("final_fare", finalFare.String()).
			Uint("spot_id", spot.ID).
			Msg("vehicle exit recorded")
		return nil
	})
}

// parseEventTime accepts RFC 3339 timestamps with or without a zone offset,
// matching what the simulator sends.
func parseEventTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
