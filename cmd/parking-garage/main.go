package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"parking-garage/internal/config"
	"parking-garage/internal/garage"
	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
	"parking-garage/internal/server"
	"parking-garage/internal/store"
	"parking-garage/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.OTelConfig.ServiceName, cfg.IsDevelopment())
	log := logging.Logger()

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("service exited with error")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryProvider, err := telemetry.NewProvider(cfg.OTelConfig.ServiceName, cfg.OTelConfig.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
		}
	}()

	entityStore, err := openStore(cfg)
	if err != nil {
		return err
	}

	setup := garage.NewSetupService(entityStore, garage.NewClient(cfg.SimulatorURL))
	if err := setup.Initialize(ctx); err != nil {
		return err
	}

	clock := parking.SystemClock()
	events, err := parking.NewInstrumentedEventService(parking.NewEventService(entityStore, clock), telemetryProvider)
	if err != nil {
		return err
	}
	queries := parking.NewQueryService(entityStore, clock)

	srv := server.NewServer(cfg.Port, events, queries, cfg.OTelConfig.ServiceName)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(cfg *config.Config) (parking.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		logging.Logger().Warn().Msg("using in-memory store, state will not survive restarts")
		return store.NewMemoryStore(), nil
	default:
		return store.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	}
}
