// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sprout/internal/recommend"
)

// AddViewer inserts or replaces a viewer.
func (db *DB) AddViewer(ctx context.Context, v recommend.Viewer) (err error) {
	defer func(start time.Time) { observe("add_viewer", start, err) }(time.Now())
	if v.ID <= 0 {
		return fmt.Errorf("viewer id must be positive, got %d", v.ID)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO viewers (id, name, age_band) VALUES (?, ?, ?)`,
		v.ID, v.Name, int(v.AgeBand))
	if err != nil {
		return fmt.Errorf("failed to insert viewer %d: %w", v.ID, err)
	}
	return nil
}

// AddContent inserts or replaces a catalog item.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (db *DB) AddContent(ctx context.Context, item recommend.ContentItem) (err error) {
	defer func(start time.Time) { observe("add_content", start, err) }(time.Now())
	if item.ID <= 0 {
		return fmt.Errorf("content id must be positive, got %d", item.ID)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO content (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, item.ThumbnailPath, item.Category,
		string(item.ContentType), int(item.AgeBand), item.SafetyScore, item.Approved,
		item.ViewCount, item.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to insert content %d: %w", item.ID, err)
	}
	return nil
}

// RecordWatch implements recommend.Recorder. The insert and the view count
// increment share one transaction.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func (db *DB) RecordWatch(ctx context.Context, ev recommend.WatchEvent) (stored recommend.WatchEvent, err error) {
	defer func(start time.Time) { observe("record_watch", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if ev.WatchedAt.IsZero() {
		ev.WatchedAt = time.Now()
	}
	ev.WatchedAt = ev.WatchedAt.UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return ev, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if err = viewerExists(ctx, tx, ev.ViewerID); err != nil {
		return ev, err
	}

	var contentType string
	err = tx.QueryRowContext(ctx,
		`SELECT category, content_type, duration_seconds FROM content WHERE id = ?`, ev.ContentID,
	).Scan(&ev.Category, &contentType, &ev.ContentDuration)
	if errors.Is(err, sql.ErrNoRows) {
		return ev, recommend.ErrContentNotFound
	}
	if err != nil {
		return ev, fmt.Errorf("failed to look up content %d: %w", ev.ContentID, err)
	}
	ev.ContentType = recommend.ContentType(contentType)

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO watch_events (viewer_id, content_id, watched_at, watched_seconds, completed)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ViewerID, ev.ContentID, ev.WatchedAt, ev.WatchedSeconds, ev.Completed); err != nil {
		return ev, fmt.Errorf("failed to insert watch event: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE content SET view_count = view_count + 1 WHERE id = ?`, ev.ContentID); err != nil {
		return ev, fmt.Errorf("failed to update view count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return ev, fmt.Errorf("failed to commit watch event: %w", err)
	}
	return ev, nil
}

// RecordQuiz implements recommend.Recorder.
//
//nolint:gocritic // hugeParam: outcome passed by value for immutability
func (db *DB) RecordQuiz(ctx context.Context, q recommend.QuizOutcome) (err error) {
	defer func(start time.Time) { observe("record_quiz", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if q.AnsweredAt.IsZero() {
		q.AnsweredAt = time.Now()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if err = viewerExists(ctx, tx, q.ViewerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO quiz_outcomes (viewer_id, question_id, correct, answered_at)
		VALUES (?, ?, ?, ?)`,
		q.ViewerID, q.QuestionID, q.Correct, q.AnsweredAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert quiz outcome: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quiz outcome: %w", err)
	}
	return nil
}

func viewerExists(ctx context.Context, tx *sql.Tx, viewerID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM viewers WHERE id = ?`, viewerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.ErrViewerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up viewer %d: %w", viewerID, err)
	}
	return nil
}
