// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AgeBand is a viewer's declared age band or an item's target band.
// The zero value means unset ("general" audience).
type AgeBand int

// Age bands in ascending order. The ordinal distance between two bands
// drives the age-match scoring term.
const (
	AgeBandUnset AgeBand = iota
	AgeBandToddler
	AgeBandChild
	AgeBandTeen
)

var ageBandNames = map[AgeBand]string{
	AgeBandToddler: "toddler",
	AgeBandChild:   "child",
	AgeBandTeen:    "teen",
}

var ageBandLabels = map[AgeBand]string{
	AgeBandToddler: "3-6",
	AgeBandChild:   "7-12",
	AgeBandTeen:    "13-17",
}

// ParseAgeBand accepts either a band name ("child") or its range label ("7-12").
// An empty string parses to AgeBandUnset.
func ParseAgeBand(s string) (AgeBand, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "general" {
		return AgeBandUnset, nil
	}
	for band, name := range ageBandNames {
		if s == name || s == ageBandLabels[band] {
			return band, nil
		}
	}
	return AgeBandUnset, fmt.Errorf("unknown age band %q", s)
}

// String returns the band name.
func (b AgeBand) String() string {
	if name, ok := ageBandNames[b]; ok {
		return name
	}
	return ""
}

// Label returns the band's age range, e.g. "7-12".
func (b AgeBand) Label() string {
	return ageBandLabels[b]
}

// MarshalText encodes the band by name.
func (b AgeBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts anything ParseAgeBand does.
func (b *AgeBand) UnmarshalText(text []byte) error {
	v, err := ParseAgeBand(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// IsSet reports whether the band carries a declared value.
func (b AgeBand) IsSet() bool {
	_, ok := ageBandNames[b]
	return ok
}

// Distance returns the ordinal gap between two bands, or -1 when either is unset.
func Distance(a, b AgeBand) int {
	if !a.IsSet() || !b.IsSet() {
		return -1
	}
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

// ContentType tags an item with its broad kind. Empty means unset.
type ContentType string

// Known content types.
const (
	ContentTypeUnset         ContentType = ""
	ContentTypeEducational   ContentType = "educational"
	ContentTypeEntertainment ContentType = "entertainment"
	ContentTypeMusic         ContentType = "music"
	ContentTypeSports        ContentType = "sports"
	ContentTypeArts          ContentType = "arts"
)

// ParseContentType validates a content type. "arts_crafts" is accepted as arts.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(s))); ct {
	case ContentTypeUnset, ContentTypeEducational, ContentTypeEntertainment,
		ContentTypeMusic, ContentTypeSports, ContentTypeArts:
		return ct, nil
	case "arts_crafts":
		return ContentTypeArts, nil
	default:
		return ContentTypeUnset, fmt.Errorf("unknown content type %q", s)
	}
}

// Mode restricts the candidate pool to a content type.
type Mode string

// Recommendation modes.
const (
	ModeMixed         Mode = "mixed"
	ModeEducational   Mode = "educational"
	ModeEntertainment Mode = "entertainment"
)

// ParseMode validates a recommendation mode. An empty string selects ModeMixed.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeMixed, nil
	case ModeMixed, ModeEducational, ModeEntertainment:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ContentType returns the content type the mode restricts to,
// or ContentTypeUnset for ModeMixed.
func (m Mode) ContentType() ContentType {
	switch m {
	case ModeEducational:
		return ContentTypeEducational
	case ModeEntertainment:
		return ContentTypeEntertainment
	default:
		return ContentTypeUnset
	}
}

// Viewer is the account the recommendations are for. Read-only to the engine.
type Viewer struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	AgeBand AgeBand `json:"age_band"`
}

// ContentItem is an immutable snapshot of a catalog entry.
type ContentItem struct {
	// ID is the unique content identifier.
	ID int64 `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Description is the display description.
	Description string `json:"description,omitempty"`

	// ThumbnailPath is the path to the thumbnail image, if any.
	ThumbnailPath string `json:"thumbnail_path,omitempty"`

	// Category is the category name. Empty means uncategorized.
	Category string `json:"category,omitempty"`

	// ContentType is the content kind. Empty means unset.
	ContentType ContentType `json:"content_type,omitempty"`

	// AgeBand is the target audience. AgeBandUnset means general audience.
	AgeBand AgeBand `json:"age_band,omitempty"`

	// SafetyScore is the moderation score in [0, 100], produced externally.
	SafetyScore float64 `json:"safety_score"`

	// Approved is the moderation approval flag.
	Approved bool `json:"approved"`

	// ViewCount is the popularity counter.
	ViewCount int64 `json:"view_count"`

	// DurationSeconds is the running time.
	DurationSeconds int `json:"duration_seconds"`
}

// WatchEvent records one viewing session. The watched item's category,
// type and duration are denormalized onto the event by the store.
type WatchEvent struct {
	ViewerID        int64       `json:"viewer_id"`
	ContentID       int64       `json:"content_id"`
	WatchedAt       time.Time   `json:"watched_at"`
	WatchedSeconds  int         `json:"watched_seconds"`
	Completed       bool        `json:"completed"`
	Category        string      `json:"category,omitempty"`
	ContentType     ContentType `json:"content_type,omitempty"`
	ContentDuration int         `json:"content_duration"`
}

// QuizOutcome records one answered quiz question.
type QuizOutcome struct {
	ViewerID   int64     `json:"viewer_id"`
	QuestionID int64     `json:"question_id"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// BehaviorFlags are simple threshold signals derived from history.
type BehaviorFlags struct {
	PrefersShortForm     bool `json:"prefers_short_form"`
	EducationLeaning     bool `json:"education_leaning"`
	HighFrequencySameDay bool `json:"high_frequency_same_day"`
}

// Profile is the derived, ephemeral summary of a viewer's history.
// A degraded profile carries only ViewerID; every scoring term that
// reads it falls back to its neutral value.
type Profile struct {
	// ViewerID identifies the viewer this profile describes.
	ViewerID int64 `json:"viewer_id"`

	// AgeBand is the viewer's declared band at aggregation time.
	AgeBand AgeBand `json:"age_band,omitempty"`

	// Degraded is true when aggregation failed and the minimal profile was used.
	Degraded bool `json:"degraded"`

	// CategoryCounts holds watch counts for the most frequent categories.
	CategoryCounts map[string]int `json:"category_counts"`

	// ContentTypeCounts holds watch counts for the most frequent content types.
	ContentTypeCounts map[ContentType]int `json:"content_type_counts"`

	// CompletionRate is the mean per-event completion ratio.
	CompletionRate float64 `json:"completion_rate"`

	// TotalWatchHours sums watched time across the history window.
	TotalWatchHours float64 `json:"total_watch_hours"`

	// QuizAccuracy is correct/total over the quiz window, 0 if none.
	QuizAccuracy float64 `json:"quiz_accuracy"`

	// QuizCount is the number of quiz outcomes considered.
	QuizCount int `json:"quiz_count"`

	// PeakHours lists the most frequent viewing hours, most frequent first.
	PeakHours []int `json:"peak_hours"`

	// RecentInterests holds category counts within the recent window.
	RecentInterests map[string]int `json:"recent_interests"`

	// Flags are the behavioral threshold signals.
	Flags BehaviorFlags `json:"flags"`

	// EventCount is the number of watch events considered.
	EventCount int `json:"event_count"`
}

// MinimalProfile returns the neutral profile used when aggregation fails.
func MinimalProfile(viewerID int64) *Profile {
	return &Profile{
		ViewerID:          viewerID,
		Degraded:          true,
		CategoryCounts:    map[string]int{},
		ContentTypeCounts: map[ContentType]int{},
		RecentInterests:   map[string]int{},
	}
}

// ScoreBreakdown records every term of a score so results can be audited.
type ScoreBreakdown struct {
	AgeMatch    float64 `json:"age_match"`
	ContentType float64 `json:"content_type"`
	Category    float64 `json:"category"`
	TimeOfDay   float64 `json:"time_of_day"`
	Educational float64 `json:"educational"`
	Weighted    float64 `json:"weighted"`
	Multiplier  float64 `json:"multiplier"`
	Final       float64 `json:"final"`
}

// ScoredCandidate is a candidate with its score, valid within one call.
type ScoredCandidate struct {
	Item      ContentItem    `json:"item"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reason    string         `json:"reason,omitempty"`
}

// CandidateQuery describes the eligible-content fetch pushed to the store.
type CandidateQuery struct {
	// MinSafety is the inclusive safety-score floor.
	MinSafety float64

	// AgeBand restricts to items with this band or no band. Unset disables the filter.
	AgeBand AgeBand

	// ContentType restricts to one type. Unset disables the filter.
	ContentType ContentType

	// ViewerID and WatchedSince exclude items the viewer watched at or after
	// WatchedSince. Either left zero disables the exclusion.
	ViewerID     int64
	WatchedSince time.Time

	// Limit caps the number of rows returned. When more rows qualify, the
	// store returns a uniform sample keyed by Seed, so every eligible item
	// can be drawn. Zero returns every row.
	Limit int
	Seed  int64
}

// Store is the read side of the persistence collaborator.
// Implementations return ErrViewerNotFound from GetViewer for unknown ids.
type Store interface {
	// GetViewer fetches a viewer by id.
	GetViewer(ctx context.Context, viewerID int64) (*Viewer, error)

	// RecentWatchEvents returns up to limit events, newest first.
	RecentWatchEvents(ctx context.Context, viewerID int64, limit int) ([]WatchEvent, error)

	// RecentQuizOutcomes returns up to limit outcomes, newest first.
	RecentQuizOutcomes(ctx context.Context, viewerID int64, limit int) ([]QuizOutcome, error)

	// WatchedSince returns the ids of items the viewer watched at or after since.
	WatchedSince(ctx context.Context, viewerID int64, since time.Time) ([]int64, error)

	// EligibleContent returns approved items matching the query in id order.
	// The same query and seed return the same rows.
	EligibleContent(ctx context.Context, q CandidateQuery) ([]ContentItem, error)
}

// Recorder is the write side of the persistence collaborator.
type Recorder interface {
	// RecordWatch stores ev with its item attributes copied from the catalog
	// and returns the stored event.
	RecordWatch(ctx context.Context, ev WatchEvent) (WatchEvent, error)

	// RecordQuiz stores a quiz outcome.
	RecordQuiz(ctx context.Context, q QuizOutcome) error
}

// Reranker post-processes a score-ordered candidate list.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns up to k items chosen from items, which are sorted by score descending.
	Rerank(ctx context.Context, items []ScoredCandidate, k int) []ScoredCandidate
}

// Request is a recommendation request.
type Request struct {
	// ViewerID is the viewer to recommend for.
	ViewerID int64

	// Limit is the target list length.
	Limit int

	// Mode restricts the candidate content type.
	Mode Mode

	// RequestID is a unique identifier for tracing.
	RequestID string
}

// Recommendation is one entry of the final list.
type Recommendation struct {
	Item      ContentItem    `json:"item"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Response contains the ranked list and request metadata.
type Response struct {
	ViewerID int64            `json:"viewer_id"`
	Mode     Mode             `json:"mode"`
	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id"`
	CandidateCount  int       `json:"candidate_count"`
	ProfileDegraded bool      `json:"profile_degraded"`
	ViewerFound     bool      `json:"viewer_found"`
	LatencyMS       int64     `json:"latency_ms"`
	GeneratedAt     time.Time `json:"generated_at"`
}
