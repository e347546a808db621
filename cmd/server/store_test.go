// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sprout/internal/config"
	"github.com/tomtom215/sprout/internal/database"
)

func TestOpenStore_Memory(t *testing.T) {
	tests := []struct {
		name        string
		seed        bool
		breaker     bool
		wantViewer  bool
		wantBreaker bool
	}{
		{"empty", false, false, false, false},
		{"seeded", true, false, true, false},
		{"seeded behind breaker", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.DatabaseConfig{
				Backend:      config.BackendMemory,
				SeedDemoData: tt.seed,
				Breaker: config.BreakerConfig{
					Enabled:             tt.breaker,
					MaxRequests:         1,
					Timeout:             time.Second,
					ConsecutiveFailures: 3,
				},
			}
			h, err := openStore(context.Background(), cfg, time.Now(), zerolog.Nop())
			if err != nil {
				t.Fatalf("openStore() error = %v", err)
			}
			defer func() { _ = h.Close() }()

			if h.db != nil {
				t.Error("memory backend should not open a database")
			}
			if _, ok := h.backend.(*database.BreakerStore); ok != tt.wantBreaker {
				t.Errorf("breaker wrapped = %v, want %v", ok, tt.wantBreaker)
			}

			_, err = h.backend.GetViewer(context.Background(), 1)
			if (err == nil) != tt.wantViewer {
				t.Errorf("GetViewer(1) error = %v, want viewer present = %v", err, tt.wantViewer)
			}
			if err := h.backend.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := &config.DatabaseConfig{Backend: "postgres"}
	if _, err := openStore(context.Background(), cfg, time.Now(), zerolog.Nop()); err == nil {
		t.Fatal("openStore() should reject an unknown backend")
	}
}

func TestStoreHandle_CloseWithoutDatabase(t *testing.T) {
	h := &storeHandle{}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
