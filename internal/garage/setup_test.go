package garage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"parking-garage/internal/garage"
	"parking-garage/internal/store"
)

type stubSource struct {
	cfg     *garage.Config
	err     error
	fetches int
}

func (s *stubSource) FetchConfig(ctx context.Context) (*garage.Config, error) {
	s.fetches++
	return s.cfg, s.err
}

func garageConfig() *garage.Config {
	return &garage.Config{
		Sectors: []garage.SectorConfig{
			{
				Name:        "A",
				BasePrice:   decimal.RequireFromString("10.00"),
				MaxCapacity: 100,
				OpenHour:    "08:00",
				CloseHour:   "22:00",
			},
			{
				Name:        "B",
				BasePrice:   decimal.RequireFromString("4.00"),
				MaxCapacity: 72,
				OpenHour:    "05:00",
				CloseHour:   "18:00",
			},
		},
		Spots: []garage.SpotConfig{
			{ID: 1, Sector: "A", Lat: -23.561684, Lng: -46.655981},
			{ID: 2, Sector: "A", Lat: -23.561685, Lng: -46.655982},
			{ID: 3, Sector: "B", Lat: -23.561686, Lng: -46.655983},
		},
	}
}

func TestInitializePersistsSectorsAndSpots(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	source := &stubSource{cfg: garageConfig()}

	require.NoError(t, garage.NewSetupService(s, source).Initialize(ctx))

	count, err := s.CountSectors(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	sectorA, err := s.FindSectorByName(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, "10.00", sectorA.BasePrice.StringFixed(2))
	require.Equal(t, 100, sectorA.MaxCapacity)
	require.Equal(t, "08:00", sectorA.OpenHour)

	spot, err := s.FindSpotByCoordinates(ctx, -23.561686, -46.655983)
	require.NoError(t, err)
	sectorB, err := s.FindSectorByName(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, sectorB.ID, spot.SectorID)
	require.False(t, spot.Occupied)
}

func TestInitializeIsNoOpWhenAlreadyBootstrapped(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	source := &stubSource{cfg: garageConfig()}
	setup := garage.NewSetupService(s, source)

	require.NoError(t, setup.Initialize(ctx))
	require.NoError(t, setup.Initialize(ctx))

	require.Equal(t, 1, source.fetches, "a populated store must not be re-fetched")

	count, err := s.CountSectors(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestInitializePropagatesFetchError(t *testing.T) {
	s := store.NewMemoryStore()
	source := &stubSource{err: errors.New("simulator unreachable")}

	err := garage.NewSetupService(s, source).Initialize(context.Background())
	require.Error(t, err)
}

func TestInitializeRejectsMalformedOperatingHours(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cfg := garageConfig()
	cfg.Sectors[1].OpenHour = "5am"
	source := &stubSource{cfg: cfg}

	err := garage.NewSetupService(s, source).Initialize(ctx)
	require.Error(t, err)

	// The failed bootstrap must not leave partial topology behind.
	count, countErr := s.CountSectors(ctx)
	require.NoError(t, countErr)
	require.Zero(t, count)
}
