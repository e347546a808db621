// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sprout/config.yaml",
	"/etc/sprout/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. Recommendation values
// mirror recommend.DefaultConfig.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			HandlerTimeout:    10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Database: DatabaseConfig{
			Backend:      BackendDuckDB,
			Path:         "/data/sprout.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = DuckDB default
			QueryTimeout: 5 * time.Second,
			SeedDemoData: false,
			Breaker: BreakerConfig{
				Enabled:             true,
				MaxRequests:         1,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Seed: 0,
			Scoring: ScoringConfig{
				Weights: WeightsConfig{
					AgeMatch:    0.30,
					ContentType: 0.25,
					Category:    0.20,
					TimeOfDay:   0.10,
					Educational: 0.15,
				},
				SafetyBoost:     1.10,
				PopularityBoost: 1.05,
			},
			Candidates: CandidatesConfig{
				MinSafety:         70,
				PoolSize:          200,
				FetchLimit:        1000,
				RecentWatchWindow: 7 * 24 * time.Hour,
			},
			Profile: ProfileConfig{
				WatchHistoryLimit: 100,
				QuizHistoryLimit:  50,
				RecentWindow:      14 * 24 * time.Hour,
			},
			Diversity: DiversityConfig{
				RelaxFirstHalf: true,
			},
			Limits: LimitsConfig{
				DefaultLimit: 20,
				MaxLimit:     100,
			},
			ProfileCache: ProfileCacheConfig{
				Enabled:    false,
				TTL:        5 * time.Minute,
				MaxEntries: 10000,
			},
		},
		Events: EventsConfig{
			OutputBuffer: 256,
			CloseTimeout: 10 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold:    5,
			FailureDecay:        30,
			FailureBackoff:      15 * time.Second,
			ShutdownTimeout:     10 * time.Second,
			MaintenanceInterval: 5 * time.Minute,
		},
	}
}

// Load reads configuration with the layered sources described in the
// package documentation and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"http_idle_timeout":   "server.idle_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"handler_timeout":     "server.handler_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Database
	"store_backend":                   "database.backend",
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_query_timeout":            "database.query_timeout",
	"seed_demo_data":                  "database.seed_demo_data",
	"store_breaker_enabled":           "database.breaker.enabled",
	"store_breaker_timeout":           "database.breaker.timeout",
	"store_breaker_failure_threshold": "database.breaker.consecutive_failures",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"recommend_seed":                      "recommend.seed",
	"recommend_min_safety":                "recommend.candidates.min_safety",
	"recommend_pool_size":                 "recommend.candidates.pool_size",
	"recommend_fetch_limit":               "recommend.candidates.fetch_limit",
	"recommend_recent_watch_window":       "recommend.candidates.recent_watch_window",
	"recommend_relax_first_half":          "recommend.diversity.relax_first_half",
	"recommend_default_limit":             "recommend.limits.default_limit",
	"recommend_max_limit":                 "recommend.limits.max_limit",
	"recommend_profile_cache_enabled":     "recommend.profile_cache.enabled",
	"recommend_profile_cache_ttl":         "recommend.profile_cache.ttl",
	"recommend_profile_cache_max_entries": "recommend.profile_cache.max_entries",

	// Events
	"events_output_buffer": "events.output_buffer",
	"events_close_timeout": "events.close_timeout",

	// Supervisor
	"supervisor_failure_threshold":    "supervisor.failure_threshold",
	"supervisor_failure_backoff":      "supervisor.failure_backoff",
	"supervisor_maintenance_interval": "supervisor.maintenance_interval",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_SEED -> recommend.seed
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
