// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicWatchRecorded = "watch.recorded"
	TopicQuizRecorded  = "quiz.recorded"
)

// Metadata keys set on every published message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataRequestID     = "request_id"
)

// WatchRecorded is the payload of a watch.recorded message.
type WatchRecorded struct {
	ViewerID       int64     `json:"viewer_id"`
	ContentID      int64     `json:"content_id"`
	WatchedAt      time.Time `json:"watched_at"`
	WatchedSeconds int       `json:"watched_seconds"`
	Completed      bool      `json:"completed"`
}

// QuizRecorded is the payload of a quiz.recorded message.
type QuizRecorded struct {
	ViewerID   int64     `json:"viewer_id"`
	QuestionID int64     `json:"question_id"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// viewerEnvelope decodes just the viewer id, which both payloads share.
type viewerEnvelope struct {
	ViewerID int64 `json:"viewer_id"`
}

func newMessage(payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), data), nil
}

// ViewerIDFromMessage extracts the viewer id from either payload type.
func ViewerIDFromMessage(msg *message.Message) (int64, error) {
	var env viewerEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return 0, fmt.Errorf("decode event payload: %w", err)
	}
	if env.ViewerID <= 0 {
		return 0, fmt.Errorf("event payload has invalid viewer_id %d", env.ViewerID)
	}
	return env.ViewerID, nil
}
