// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/recommend"
)

// WatchEventRequest is the body of POST .../watch-events.
type WatchEventRequest struct {
	ContentID      int64      `json:"content_id" validate:"required,gt=0"`
	WatchedSeconds int        `json:"watched_seconds" validate:"gte=0,lte=86400"`
	Completed      bool       `json:"completed"`
	WatchedAt      *time.Time `json:"watched_at"`
}

// QuizOutcomeRequest is the body of POST .../quiz-outcomes.
type QuizOutcomeRequest struct {
	QuestionID int64      `json:"question_id" validate:"required,gt=0"`
	Correct    bool       `json:"correct"`
	AnsweredAt *time.Time `json:"answered_at"`
}

// decodeBody reads a bounded JSON body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("request body must be a valid JSON object")
	}
	return nil
}

// timeOr returns *t in UTC, or now when t is nil or zero.
func timeOr(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now.UTC()
	}
	return t.UTC()
}

// RecordWatch handles POST /api/v1/viewers/{viewerID}/watch-events.
func (h *Handler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	viewerID, err := viewerIDParam(r)
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "viewerID"})
		return
	}

	var body WatchEventRequest
	if err := decodeBody(w, r, &body); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		writeValidation(rw, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	stored, err := h.recorder.RecordWatch(ctx, recommend.WatchEvent{
		ViewerID:       viewerID,
		ContentID:      body.ContentID,
		WatchedAt:      timeOr(body.WatchedAt, h.now()),
		WatchedSeconds: body.WatchedSeconds,
		Completed:      body.Completed,
	})
	if err != nil {
		h.writeStoreError(rw, r, "record_watch", err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishWatch(ctx, stored); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("viewer_id", viewerID).Msg("watch event stored but not published")
		}
	}
	rw.Created(stored)
}

// RecordQuiz handles POST /api/v1/viewers/{viewerID}/quiz-outcomes.
func (h *Handler) RecordQuiz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	viewerID, err := viewerIDParam(r)
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "viewerID"})
		return
	}

	var body QuizOutcomeRequest
	if err := decodeBody(w, r, &body); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		writeValidation(rw, apiErr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	outcome := recommend.QuizOutcome{
		ViewerID:   viewerID,
		QuestionID: body.QuestionID,
		Correct:    body.Correct,
		AnsweredAt: timeOr(body.AnsweredAt, h.now()),
	}
	if err := h.recorder.RecordQuiz(ctx, outcome); err != nil {
		h.writeStoreError(rw, r, "record_quiz", err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishQuiz(ctx, outcome); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("viewer_id", viewerID).Msg("quiz outcome stored but not published")
		}
	}
	rw.Created(outcome)
}
