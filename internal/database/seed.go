// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sprout/internal/logging"
	"github.com/tomtom215/sprout/internal/recommend"
)

// Seeder is any store the demo data can be written to.
type Seeder interface {
	recommend.Recorder
	GetViewer(ctx context.Context, viewerID int64) (*recommend.Viewer, error)
	AddViewer(ctx context.Context, v recommend.Viewer) error
	AddContent(ctx context.Context, item recommend.ContentItem) error
}

// SeedResult counts what SeedDemo wrote.
type SeedResult struct {
	Viewers      int
	Content      int
	WatchEvents  int
	QuizOutcomes int
	Skipped      bool
}

type demoItem struct {
	title    string
	category string
	ct       recommend.ContentType
	band     recommend.AgeBand
	safety   float64
	approved bool
	views    int64
	minutes  int
}

var demoViewers = []recommend.Viewer{
	{ID: 1, Name: "Maya", AgeBand: recommend.AgeBandChild},
	{ID: 2, Name: "Leo", AgeBand: recommend.AgeBandToddler},
	{ID: 3, Name: "Sam", AgeBand: recommend.AgeBandTeen},
}

var demoCatalog = []demoItem{
	{"How Volcanoes Work", "science", recommend.ContentTypeEducational, recommend.AgeBandChild, 96, true, 1540, 8},
	{"The Water Cycle", "science", recommend.ContentTypeEducational, recommend.AgeBandChild, 94, true, 820, 6},
	{"Planets of Our Solar System", "space", recommend.ContentTypeEducational, recommend.AgeBandChild, 92, true, 2210, 12},
	{"Counting to Ten", "math", recommend.ContentTypeEducational, recommend.AgeBandToddler, 98, true, 3100, 4},
	{"Shapes Everywhere", "math", recommend.ContentTypeEducational, recommend.AgeBandToddler, 97, true, 640, 5},
	{"Fractions with Pizza", "math", recommend.ContentTypeEducational, recommend.AgeBandChild, 90, true, 410, 9},
	{"Intro to Algebra", "math", recommend.ContentTypeEducational, recommend.AgeBandTeen, 88, true, 980, 18},
	{"Cells and DNA", "science", recommend.ContentTypeEducational, recommend.AgeBandTeen, 85, true, 560, 22},
	{"Animal Homes", "animals", recommend.ContentTypeEducational, recommend.AgeBandUnset, 95, true, 1200, 7},
	{"Ocean Creatures", "animals", recommend.ContentTypeEducational, recommend.AgeBandChild, 93, true, 1750, 10},
	{"The Alphabet Song", "songs", recommend.ContentTypeMusic, recommend.AgeBandToddler, 99, true, 5400, 3},
	{"Rainy Day Rhythms", "songs", recommend.ContentTypeMusic, recommend.AgeBandChild, 91, true, 300, 4},
	{"Lullabies for Bedtime", "songs", recommend.ContentTypeMusic, recommend.AgeBandUnset, 97, true, 2600, 15},
	{"Beginner Guitar Chords", "instruments", recommend.ContentTypeMusic, recommend.AgeBandTeen, 84, true, 720, 14},
	{"Robot Friends Episode 1", "cartoons", recommend.ContentTypeEntertainment, recommend.AgeBandChild, 86, true, 4300, 11},
	{"Robot Friends Episode 2", "cartoons", recommend.ContentTypeEntertainment, recommend.AgeBandChild, 86, true, 3900, 11},
	{"Puppet Theater", "cartoons", recommend.ContentTypeEntertainment, recommend.AgeBandToddler, 95, true, 1100, 6},
	{"Magic Tricks Revealed", "magic", recommend.ContentTypeEntertainment, recommend.AgeBandTeen, 80, true, 890, 13},
	{"Funny Pets Compilation", "animals", recommend.ContentTypeEntertainment, recommend.AgeBandUnset, 78, true, 6200, 5},
	{"Backyard Soccer Skills", "soccer", recommend.ContentTypeSports, recommend.AgeBandChild, 89, true, 530, 9},
	{"Yoga for Kids", "fitness", recommend.ContentTypeSports, recommend.AgeBandChild, 96, true, 770, 12},
	{"Skateboarding Basics", "skating", recommend.ContentTypeSports, recommend.AgeBandTeen, 75, true, 1320, 10},
	{"Paper Airplanes", "crafts", recommend.ContentTypeArts, recommend.AgeBandChild, 94, true, 980, 7},
	{"Finger Painting Fun", "painting", recommend.ContentTypeArts, recommend.AgeBandToddler, 98, true, 450, 5},
	{"Drawing Comics", "drawing", recommend.ContentTypeArts, recommend.AgeBandTeen, 87, true, 610, 16},
	{"Clay Animals", "crafts", recommend.ContentTypeArts, recommend.AgeBandUnset, 92, true, 330, 8},
	{"Unreviewed Upload", "cartoons", recommend.ContentTypeEntertainment, recommend.AgeBandChild, 95, false, 0, 6},
	{"Extreme Stunts", "stunts", recommend.ContentTypeEntertainment, recommend.AgeBandTeen, 55, true, 8800, 9},
	{"Scary Stories", "stories", recommend.ContentTypeEntertainment, recommend.AgeBandTeen, 65, true, 2100, 20},
	{"Mystery Clip", "", recommend.ContentTypeUnset, recommend.AgeBandUnset, 82, true, 40, 2},
}

type demoWatch struct {
	viewerID  int64
	contentID int64
	ago       time.Duration
	fraction  float64
}

var demoWatches = []demoWatch{
	{1, 1, 30 * 24 * time.Hour, 1.0},
	{1, 2, 25 * 24 * time.Hour, 0.9},
	{1, 3, 20 * 24 * time.Hour, 1.0},
	{1, 10, 12 * 24 * time.Hour, 0.6},
	{1, 15, 10 * 24 * time.Hour, 1.0},
	{1, 1, 3 * 24 * time.Hour, 1.0},
	{1, 20, 2 * 24 * time.Hour, 0.4},
	{2, 4, 9 * 24 * time.Hour, 1.0},
	{2, 11, 8 * 24 * time.Hour, 1.0},
	{2, 11, 1 * 24 * time.Hour, 1.0},
	{2, 24, 5 * time.Hour, 0.7},
	{3, 7, 15 * 24 * time.Hour, 0.5},
	{3, 18, 6 * 24 * time.Hour, 1.0},
	{3, 22, 4 * 24 * time.Hour, 0.8},
}

// SeedDemo writes the demo catalog and history into s, with history
// timestamps relative to now. It does nothing when viewer 1 already exists.
func SeedDemo(ctx context.Context, s Seeder, now time.Time) (SeedResult, error) {
	var res SeedResult

	if _, err := s.GetViewer(ctx, demoViewers[0].ID); err == nil {
		res.Skipped = true
		logging.Info().Msg("Demo data already present, skipping seed")
		return res, nil
	} else if !errors.Is(err, recommend.ErrViewerNotFound) {
		return res, fmt.Errorf("failed to check for existing demo data: %w", err)
	}

	for _, v := range demoViewers {
		if err := s.AddViewer(ctx, v); err != nil {
			return res, fmt.Errorf("failed to seed viewer %d: %w", v.ID, err)
		}
		res.Viewers++
	}

	for i, d := range demoCatalog {
		id := int64(i + 1)
		item := recommend.ContentItem{
			ID:              id,
			Title:           d.title,
			Description:     fmt.Sprintf("%s for young viewers.", d.title),
			ThumbnailPath:   fmt.Sprintf("/thumbnails/%d.jpg", id),
			Category:        d.category,
			ContentType:     d.ct,
			AgeBand:         d.band,
			SafetyScore:     d.safety,
			Approved:        d.approved,
			ViewCount:       d.views,
			DurationSeconds: d.minutes * 60,
		}
		if err := s.AddContent(ctx, item); err != nil {
			return res, fmt.Errorf("failed to seed content %d: %w", id, err)
		}
		res.Content++
	}

	for _, w := range demoWatches {
		duration := demoCatalog[w.contentID-1].minutes * 60
		ev := recommend.WatchEvent{
			ViewerID:       w.viewerID,
			ContentID:      w.contentID,
			WatchedAt:      now.Add(-w.ago),
			WatchedSeconds: int(float64(duration) * w.fraction),
			Completed:      w.fraction >= 0.9,
		}
		if _, err := s.RecordWatch(ctx, ev); err != nil {
			return res, fmt.Errorf("failed to seed watch event: %w", err)
		}
		res.WatchEvents++
	}

	// Maya answers 7 of 10 correctly, Sam 9 of 10.
	for viewerID, correct := range map[int64]int{1: 7, 3: 9} {
		for q := 0; q < 10; q++ {
			outcome := recommend.QuizOutcome{
				ViewerID:   viewerID,
				QuestionID: int64(100*viewerID) + int64(q),
				Correct:    q < correct,
				AnsweredAt: now.Add(-time.Duration(q+1) * 24 * time.Hour),
			}
			if err := s.RecordQuiz(ctx, outcome); err != nil {
				return res, fmt.Errorf("failed to seed quiz outcome: %w", err)
			}
			res.QuizOutcomes++
		}
	}

	logging.Info().
		Int("viewers", res.Viewers).
		Int("content", res.Content).
		Int("watch_events", res.WatchEvents).
		Int("quiz_outcomes", res.QuizOutcomes).
		Msg("Demo data seeded")
	return res, nil
}
