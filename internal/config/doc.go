// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

// Package config loads the service configuration with koanf.
//
// Three layers are applied in order, each overriding the previous:
//
//  1. Built-in defaults (structs provider)
//  2. An optional YAML file: $CONFIG_PATH, else config.yaml or config.yml
//  3. Environment variables from an explicit mapping table
//
// Example environment overrides:
//
//	HTTP_PORT=8080
//	STORE_BACKEND=memory
//	DUCKDB_PATH=/data/sprout.duckdb
//	SEED_DEMO_DATA=true
//	RECOMMEND_SEED=42
//	RECOMMEND_PROFILE_CACHE_ENABLED=true
//	CORS_ORIGINS=https://a.example,https://b.example
//	LOG_LEVEL=debug
//
// Unknown environment variables are ignored.
package config
