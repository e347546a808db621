// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/database"
	"github.com/tomtom215/sprout/internal/memstore"
)

// storeHandle is the opened store. db is nil for the memory backend.
type storeHandle struct {
	backend database.Backend
	db      *database.DB
}

// seedStore is a store that can also be seeded with demo data.
type seedStore interface {
	database.Backend
	database.Seeder
}

// openStore opens the configured backend, optionally seeds it, and wraps
// it in the circuit breaker when enabled. Seeding writes to the raw store
// so a slow first start cannot trip the breaker.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openStore(ctx context.Context, cfg *config.DatabaseConfig, now time.Time, logger zerolog.Logger) (*storeHandle, error) {
	var (
		raw seedStore
		db  *database.DB
	)

	switch cfg.Backend {
	case config.BackendMemory:
		raw = memstore.New()
		logger.Info().Msg("Using in-memory store")
	case config.BackendDuckDB, "":
		opened, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		raw, db = opened, opened
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.SeedDemoData {
		res, err := database.SeedDemo(ctx, raw, now)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		if !res.Skipped {
			logger.Info().
				Int("viewers", res.Viewers).
				Int("content", res.Content).
				Int("watch_events", res.WatchEvents).
				Int("quiz_outcomes", res.QuizOutcomes).
				Msg("Seeded demo data")
		}
	}

	h := &storeHandle{backend: raw, db: db}
	if cfg.Breaker.Enabled {
		h.backend = database.NewBreakerStore(raw, cfg.Backend, cfg.Breaker, logger)
	}
	return h, nil
}

// Close closes the database, if any.
func (h *storeHandle) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}
