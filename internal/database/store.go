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
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/sprout/internal/recommend"
)

const contentColumns = `id, title, description, thumbnail_path, category, content_type,
	age_band, safety_score, approved, view_count, duration_seconds`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetViewer implements recommend.Store.
func (db *DB) GetViewer(ctx context.Context, viewerID int64) (v *recommend.Viewer, err error) {
	defer func(start time.Time) { observe("get_viewer", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		viewer recommend.Viewer
		band   int
	)
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, name, age_band FROM viewers WHERE id = ?`, viewerID,
	).Scan(&viewer.ID, &viewer.Name, &band)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recommend.ErrViewerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get viewer %d: %w", viewerID, err)
	}
	viewer.AgeBand = recommend.AgeBand(band)
	return &viewer, nil
}

// RecentWatchEvents implements recommend.Store. Item attributes come from
// the catalog at read time.
func (db *DB) RecentWatchEvents(ctx context.Context, viewerID int64, limit int) (events []recommend.WatchEvent, err error) {
	defer func(start time.Time) { observe("recent_watch_events", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT w.viewer_id, w.content_id, w.watched_at, w.watched_seconds, w.completed,
		       COALESCE(c.category, ''), COALESCE(c.content_type, ''), COALESCE(c.duration_seconds, 0)
		FROM watch_events w
		LEFT JOIN content c ON c.id = w.content_id
		WHERE w.viewer_id = ?
		ORDER BY w.watched_at DESC, w.id DESC
		LIMIT ?`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			ev          recommend.WatchEvent
			contentType string
		)
		if err = rows.Scan(&ev.ViewerID, &ev.ContentID, &ev.WatchedAt, &ev.WatchedSeconds, &ev.Completed,
			&ev.Category, &contentType, &ev.ContentDuration); err != nil {
			return nil, fmt.Errorf("failed to scan watch event: %w", err)
		}
		ev.ContentType = recommend.ContentType(contentType)
		ev.WatchedAt = ev.WatchedAt.UTC()
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch events: %w", err)
	}
	return events, nil
}

// RecentQuizOutcomes implements recommend.Store.
func (db *DB) RecentQuizOutcomes(ctx context.Context, viewerID int64, limit int) (outcomes []recommend.QuizOutcome, err error) {
	defer func(start time.Time) { observe("recent_quiz_outcomes", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT viewer_id, question_id, correct, answered_at
		FROM quiz_outcomes
		WHERE viewer_id = ?
		ORDER BY answered_at DESC, id DESC
		LIMIT ?`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz outcomes: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var q recommend.QuizOutcome
		if err = rows.Scan(&q.ViewerID, &q.QuestionID, &q.Correct, &q.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz outcome: %w", err)
		}
		q.AnsweredAt = q.AnsweredAt.UTC()
		outcomes = append(outcomes, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz outcomes: %w", err)
	}
	return outcomes, nil
}

// WatchedSince implements recommend.Store.
func (db *DB) WatchedSince(ctx context.Context, viewerID int64, since time.Time) (ids []int64, err error) {
	defer func(start time.Time) { observe("watched_since", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT content_id
		FROM watch_events
		WHERE viewer_id = ? AND watched_at >= ?
		ORDER BY content_id`, viewerID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query watched content: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan content id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watched content: %w", err)
	}
	return ids, nil
}

// EligibleContent implements recommend.Store. Results are ordered by id;
// see buildEligibleQuery for how a limit samples.
//
//nolint:gocritic // hugeParam: query passed by value to match the interface
func (db *DB) EligibleContent(ctx context.Context, q recommend.CandidateQuery) (items []recommend.ContentItem, err error) {
	defer func(start time.Time) { observe("eligible_content", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query, args := buildEligibleQuery(q)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible content: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		item, scanErr := scanContent(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate eligible content: %w", err)
	}
	return items, nil
}

// buildEligibleQuery renders the eligibility filter as parameterized SQL.
// With a limit, the rows are ranked by a seeded hash of the id so the sample
// is drawn from every eligible row, then returned in id order.
//
//nolint:gocritic // hugeParam: query passed by value
func buildEligibleQuery(q recommend.CandidateQuery) (string, []any) {
	var where strings.Builder
	where.WriteString(" FROM content WHERE approved AND safety_score >= ?")
	args := []any{q.MinSafety}

	if q.AgeBand.IsSet() {
		where.WriteString(" AND (age_band = ? OR age_band = 0)")
		args = append(args, int(q.AgeBand))
	}
	if q.ContentType != recommend.ContentTypeUnset {
		where.WriteString(" AND content_type = ?")
		args = append(args, string(q.ContentType))
	}
	if q.ViewerID > 0 && !q.WatchedSince.IsZero() {
		where.WriteString(" AND id NOT IN (SELECT content_id FROM watch_events WHERE viewer_id = ? AND watched_at >= ?)")
		args = append(args, q.ViewerID, q.WatchedSince.UTC())
	}

	if q.Limit <= 0 {
		return "SELECT " + contentColumns + where.String() + " ORDER BY id", args
	}

	query := "SELECT " + contentColumns + " FROM (SELECT " + contentColumns + where.String() +
		" ORDER BY hash(CAST(id AS VARCHAR) || ?), id LIMIT ?) AS sampled ORDER BY id"
	args = append(args, strconv.FormatInt(q.Seed, 10), q.Limit)
	return query, args
}

// GetContent fetches one catalog item.
func (db *DB) GetContent(ctx context.Context, contentID int64) (item recommend.ContentItem, err error) {
	defer func(start time.Time) { observe("get_content", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, "SELECT "+contentColumns+" FROM content WHERE id = ?", contentID)
	item, err = scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.ContentItem{}, recommend.ErrContentNotFound
	}
	return item, err
}

func scanContent(row rowScanner) (recommend.ContentItem, error) {
	var (
		item        recommend.ContentItem
		contentType string
		band        int
	)
	err := row.Scan(&item.ID, &item.Title, &item.Description, &item.ThumbnailPath, &item.Category,
		&contentType, &band, &item.SafetyScore, &item.Approved, &item.ViewCount, &item.DurationSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("failed to scan content: %w", err)
	}
	item.ContentType = recommend.ContentType(contentType)
	item.AgeBand = recommend.AgeBand(band)
	return item, nil
}
