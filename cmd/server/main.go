// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/api"
	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/events"
	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/metrics"
	"github.com/tomtom215/sprout/internal/recommend"
	"github.com/tomtom215/sprout/internal/supervisor"
	"github.com/tomtom215/sprout/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().
		Str("backend", cfg.Database.Backend).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Sprout")

	if err := run(cfg, logger); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Server stopped")
}

// run wires every component, serves until SIGINT or SIGTERM, then closes
// the components the supervisor does not own.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, &cfg.Database, time.Now(), logging.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	engine, err := recommend.NewEngine(
		cfg.ToRecommendConfig(),
		store.backend,
		logger,
		recommend.WithObserver(metrics.RecommendObserver{}),
	)
	if err != nil {
		return err
	}

	wmLogger := events.NewLogger(logging.Component("events"))
	bus := events.NewBus(cfg.Events, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	publisher := events.NewPublisher(bus, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	invalidator := events.NewInvalidator(engine, logger)
	routerSvc, err := events.NewRouterService(bus, invalidator, cfg.Events.CloseTimeout, wmLogger)
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(api.Dependencies{
		Engine:    engine,
		Recorder:  store.backend,
		Publisher: publisher,
		Health:    store.backend,
		Timeout:   cfg.Server.HandlerTimeout,
		MaxLimit:  cfg.Recommend.Limits.MaxLimit,
		Logger:    logging.Component("api"),
	})
	if err != nil {
		return err
	}
	router := api.NewRouter(handler, api.MiddlewareConfigFrom(cfg.Server), logging.Component("http"))

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.Component("supervisor")), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		return err
	}
	addMaintenance(tree, cfg, engine, store)
	tree.AddMessagingService(routerSvc)
	tree.AddAPIService(services.NewHTTPServerService(func() services.HTTPServer {
		return services.NewHTTPServer(cfg.Server, router)
	}, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// addMaintenance registers the data-layer housekeeping jobs.
func addMaintenance(tree *supervisor.SupervisorTree, cfg *config.Config, engine *recommend.Engine, store *storeHandle) {
	interval := cfg.Supervisor.MaintenanceInterval

	if cfg.Recommend.ProfileCache.Enabled {
		tree.AddDataService(services.NewPeriodicService("profile-cache-sweep", interval, func(context.Context) error {
			if n := engine.PurgeExpiredProfiles(); n > 0 {
				logging.Debug().Int("purged", n).Msg("Expired profiles purged")
			}
			return nil
		}, logging.Component("maintenance")))
	}

	if store.db != nil {
		tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", interval, store.db.Checkpoint, logging.Component("maintenance")))
	}
}
