// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates tables and indexes. Every statement is idempotent.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range append(tableQueries(), indexQueries()...) {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS viewers (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL DEFAULT '',
			age_band TINYINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS content (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL DEFAULT '',
			description VARCHAR NOT NULL DEFAULT '',
			thumbnail_path VARCHAR NOT NULL DEFAULT '',
			category VARCHAR NOT NULL DEFAULT '',
			content_type VARCHAR NOT NULL DEFAULT '',
			age_band TINYINT NOT NULL DEFAULT 0,
			safety_score DOUBLE NOT NULL DEFAULT 0,
			approved BOOLEAN NOT NULL DEFAULT false,
			view_count BIGINT NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE SEQUENCE IF NOT EXISTS watch_events_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS watch_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('watch_events_id_seq'),
			viewer_id BIGINT NOT NULL,
			content_id BIGINT NOT NULL,
			watched_at TIMESTAMP NOT NULL,
			watched_seconds INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT false
		)`,
		`CREATE SEQUENCE IF NOT EXISTS quiz_outcomes_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS quiz_outcomes (
			id BIGINT PRIMARY KEY DEFAULT nextval('quiz_outcomes_id_seq'),
			viewer_id BIGINT NOT NULL,
			question_id BIGINT NOT NULL,
			correct BOOLEAN NOT NULL,
			answered_at TIMESTAMP NOT NULL
		)`,
	}
}

// indexQueries covers the per-viewer history reads. content is small
// enough that eligibility is a scan.
func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_watch_events_viewer_time ON watch_events(viewer_id, watched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_outcomes_viewer_time ON quiz_outcomes(viewer_id, answered_at)`,
	}
}
