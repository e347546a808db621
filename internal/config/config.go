// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	BackendDuckDB = "duckdb"
	BackendMemory = "memory"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Logging    LoggingConfig    `koanf:"logging"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Events     EventsConfig     `koanf:"events"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// HandlerTimeout bounds each API handler.
	HandlerTimeout time.Duration `koanf:"handler_timeout" validate:"gt=0"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and configures the store.
type DatabaseConfig struct {
	// Backend is duckdb or memory.
	Backend string `koanf:"backend" validate:"oneof=duckdb memory"`

	// Path is the DuckDB file; ":memory:" or "" opens an in-memory database.
	Path string `koanf:"path"`

	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads" validate:"min=0"`
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`

	// SeedDemoData inserts the demo catalog on startup when the store is empty.
	SeedDemoData bool `koanf:"seed_demo_data"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `koanf:"interval" validate:"min=0"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures" validate:"min=1"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds the tunable parts of the recommendation engine.
// Constants not listed here keep their engine defaults.
type RecommendConfig struct {
	// Seed seeds the candidate shuffle. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`

	Scoring      ScoringConfig      `koanf:"scoring"`
	Candidates   CandidatesConfig   `koanf:"candidates"`
	Profile      ProfileConfig      `koanf:"profile"`
	Diversity    DiversityConfig    `koanf:"diversity"`
	Limits       LimitsConfig       `koanf:"limits"`
	ProfileCache ProfileCacheConfig `koanf:"profile_cache"`
}

// ScoringConfig holds the scoring weights and multipliers.
type ScoringConfig struct {
	Weights         WeightsConfig `koanf:"weights"`
	SafetyBoost     float64       `koanf:"safety_boost" validate:"gte=1"`
	PopularityBoost float64       `koanf:"popularity_boost" validate:"gte=1"`
}

// WeightsConfig holds the five term weights. They must sum to 1.
type WeightsConfig struct {
	AgeMatch    float64 `koanf:"age_match" validate:"gte=0,lte=1"`
	ContentType float64 `koanf:"content_type" validate:"gte=0,lte=1"`
	Category    float64 `koanf:"category" validate:"gte=0,lte=1"`
	TimeOfDay   float64 `koanf:"time_of_day" validate:"gte=0,lte=1"`
	Educational float64 `koanf:"educational" validate:"gte=0,lte=1"`
}

// CandidatesConfig holds the candidate generation parameters.
type CandidatesConfig struct {
	MinSafety         float64       `koanf:"min_safety" validate:"gte=0,lte=100"`
	PoolSize          int           `koanf:"pool_size" validate:"min=1"`
	FetchLimit        int           `koanf:"fetch_limit" validate:"min=1"`
	RecentWatchWindow time.Duration `koanf:"recent_watch_window" validate:"min=0"`
}

// ProfileConfig holds the history windows.
type ProfileConfig struct {
	WatchHistoryLimit int           `koanf:"watch_history_limit" validate:"min=1"`
	QuizHistoryLimit  int           `koanf:"quiz_history_limit" validate:"min=1"`
	RecentWindow      time.Duration `koanf:"recent_window" validate:"gt=0"`
}

// DiversityConfig holds the saturation cap switches.
type DiversityConfig struct {
	RelaxFirstHalf bool `koanf:"relax_first_half"`
}

// LimitsConfig bounds the list length.
type LimitsConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"min=1"`
	MaxLimit     int `koanf:"max_limit" validate:"min=1"`
}

// ProfileCacheConfig configures the optional profile cache.
type ProfileCacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
	MaxEntries int           `koanf:"max_entries" validate:"min=1"`
}

// EventsConfig configures the in-process event bus.
type EventsConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64 `koanf:"output_buffer" validate:"min=0"`

	// CloseTimeout bounds router shutdown.
	CloseTimeout time.Duration `koanf:"close_timeout" validate:"gt=0"`
}

// SupervisorConfig configures the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// MaintenanceInterval paces the data-layer housekeeping: profile cache
	// expiry sweeps and DuckDB checkpoints.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval" validate:"gt=0"`
}
