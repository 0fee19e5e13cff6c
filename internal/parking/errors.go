package parking

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrSpotNotFound    = errors.New("spot not found")
	ErrSectorNotFound  = errors.New("sector not found")
	ErrNoActiveRecord  = errors.New("no active parking record")

	ErrSpotOccupied = errors.New("spot already occupied")
	ErrSectorFull   = errors.New("sector at maximum capacity")

	ErrValidation = errors.New("invalid event payload")

	// ErrInconsistentSpot signals a spot flagged occupied with no ACTIVE
	// record referencing it. Queries surface it as a marker instead of
	// failing outright.
	ErrInconsistentSpot = errors.New("spot occupied without active record")
)

// IsNotFound reports whether err belongs to the not-found error class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVehicleNotFound) ||
		errors.Is(err, ErrSpotNotFound) ||
		errors.Is(err, ErrSectorNotFound) ||
		errors.Is(err, ErrNoActiveRecord)
}

// IsConflict reports whether err belongs to the occupancy/capacity
// conflict class.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSpotOccupied) || errors.Is(err, ErrSectorFull)
}
