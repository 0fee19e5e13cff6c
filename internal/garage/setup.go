package garage

import (
	"context"
	"fmt"
	"time"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

// SetupService bootstraps the garage topology once at startup. Sectors are
// saved first, then the spots referencing them; re-running against a
// populated store is a no-op.
type SetupService struct {
	store  parking.Store
	source ConfigSource
}

func NewSetupService(store parking.Store, source ConfigSource) *SetupService {
	return &SetupService{store: store, source: source}
}

func (s *SetupService) Initialize(ctx context.Context) error {
	count, err := s.store.CountSectors(ctx)
	if err != nil {
		return fmt.Errorf("checking existing garage: %w", err)
	}
	if count > 0 {
		logging.Warn(ctx).Msg("garage already initialized, skipping setup")
		return nil
	}

	logging.Info(ctx).Msg("starting garage setup")

	cfg, err := s.source.FetchConfig(ctx)
	if err != nil {
		return err
	}

	spotsBySector := make(map[string][]SpotConfig)
	for _, spot := range cfg.Spots {
		spotsBySector[spot.Sector] = append(spotsBySector[spot.Sector], spot)
	}

	return s.store.WithTx(ctx, func(ctx context.Context, tx parking.Store) error {
		for _, sectorCfg := range cfg.Sectors {
			sector, err := toSector(sectorCfg)
			if err != nil {
				return err
			}
			if err := tx.SaveSector(ctx, sector); err != nil {
				return fmt.Errorf("saving sector %s: %w", sector.Name, err)
			}

			for _, spotCfg := range spotsBySector[sectorCfg.Name] {
				spot := &parking.Spot{
					SectorID: sector.ID,
					Lat:      spotCfg.Lat,
					Lng:      spotCfg.Lng,
					Occupied: spotCfg.Occupied,
				}
				if err := tx.SaveSpot(ctx, spot); err != nil {
					return fmt.Errorf("saving spot for sector %s: %w", sector.Name, err)
				}
			}
		}

		logging.Info(ctx).
			Int("sectors", len(cfg.Sectors)).
			Int("spots", len(cfg.Spots)).
			Msg("garage setup completed")
		return nil
	})
}

func toSector(cfg SectorConfig) (*parking.Sector, error) {
	for _, hour := range []string{cfg.OpenHour, cfg.CloseHour} {
		if _, err := time.Parse("15:04", hour); err != nil {
			return nil, fmt.Errorf("sector %s: invalid operating hour %q", cfg.Name, hour)
		}
	}

	return &parking.Sector{
		Name:                 cfg.Name,
		BasePrice:            cfg.BasePrice,
		MaxCapacity:          cfg.MaxCapacity,
		OpenHour:             cfg.OpenHour,
		CloseHour:            cfg.CloseHour,
		DurationLimitMinutes: cfg.DurationLimitMinutes,
	}, nil
}
