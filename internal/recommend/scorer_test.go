// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func newTestScorer() *Scorer {
	return NewScorer(DefaultConfig().Scoring)
}

func TestScorer_NoHistoryTermsAreNeutral(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	it := item(1, "science", ContentTypeEducational, AgeBandChild, 80)

	b := s.Score(it, Viewer{ID: 1}, MinimalProfile(1), testNow)

	for name, v := range map[string]float64{
		"age":         b.AgeMatch,
		"type":        b.ContentType,
		"category":    b.Category,
		"educational": b.Educational,
	} {
		if v != 0.5 {
			t.Errorf("%s term = %f, want 0.5", name, v)
		}
	}
	// Educational content in the morning.
	if b.TimeOfDay != 1.0 {
		t.Errorf("time term = %f, want 1.0", b.TimeOfDay)
	}
	if !approxEqual(b.Final, 0.55) {
		t.Errorf("Final = %f, want 0.55", b.Final)
	}
}

func TestScorer_NilProfileIsMinimal(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	it := item(1, "science", ContentTypeEducational, AgeBandChild, 80)

	withNil := s.Score(it, Viewer{ID: 1}, nil, testNow)
	withMinimal := s.Score(it, Viewer{ID: 1}, MinimalProfile(1), testNow)
	if withNil != withMinimal {
		t.Errorf("nil profile = %+v, minimal = %+v", withNil, withMinimal)
	}
}

func TestScorer_AgeTerm(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	tests := []struct {
		viewer, item AgeBand
		want         float64
	}{
		{AgeBandChild, AgeBandChild, 1.0},
		{AgeBandChild, AgeBandTeen, 0.6},
		{AgeBandToddler, AgeBandChild, 0.6},
		{AgeBandToddler, AgeBandTeen, 0.0},
		{AgeBandUnset, AgeBandTeen, 0.5},
		{AgeBandChild, AgeBandUnset, 0.5},
	}

	for _, tt := range tests {
		it := item(1, "x", ContentTypeMusic, tt.item, 80)
		b := s.Score(it, Viewer{ID: 1, AgeBand: tt.viewer}, MinimalProfile(1), testNow)
		if b.AgeMatch != tt.want {
			t.Errorf("age(%v, %v) = %f, want %f", tt.viewer, tt.item, b.AgeMatch, tt.want)
		}
	}
}

func TestScorer_AgeGapOrdering(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	viewer := Viewer{ID: 1, AgeBand: AgeBandToddler}
	score := func(band AgeBand) float64 {
		return s.Score(item(1, "x", ContentTypeMusic, band, 80), viewer, MinimalProfile(1), testNow).Final
	}

	exact, adjacent, far := score(AgeBandToddler), score(AgeBandChild), score(AgeBandTeen)
	if exact <= adjacent || adjacent <= far {
		t.Errorf("scores not strictly ordered by age gap: %f, %f, %f", exact, adjacent, far)
	}
}

func TestScorer_Affinity(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	profile := &Profile{
		ViewerID:          1,
		CategoryCounts:    map[string]int{"science": 3, "animals": 1},
		ContentTypeCounts: map[ContentType]int{ContentTypeEducational: 4},
	}

	b := s.Score(item(1, "science", ContentTypeEducational, AgeBandUnset, 80), Viewer{ID: 1}, profile, testNow)
	if b.Category != 0.75 {
		t.Errorf("category term = %f, want 0.75", b.Category)
	}
	if b.ContentType != 1.0 {
		t.Errorf("type term = %f, want 1.0", b.ContentType)
	}

	b = s.Score(item(2, "sports", ContentTypeSports, AgeBandUnset, 80), Viewer{ID: 1}, profile, testNow)
	if b.Category != 0 || b.ContentType != 0 {
		t.Errorf("unseen buckets = %f/%f, want 0/0", b.Category, b.ContentType)
	}

	b = s.Score(item(3, "", ContentTypeUnset, AgeBandUnset, 80), Viewer{ID: 1}, profile, testNow)
	if b.Category != 0.5 || b.ContentType != 0.5 {
		t.Errorf("unset buckets = %f/%f, want 0.5/0.5", b.Category, b.ContentType)
	}
}

func TestScorer_TimeOfDay(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	at := func(hour int) time.Time { return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		ct   ContentType
		hour int
		want float64
	}{
		{"educational morning", ContentTypeEducational, 9, 1.0},
		{"arts morning", ContentTypeArts, 11, 1.0},
		{"sports morning", ContentTypeSports, 8, 0.3},
		{"sports afternoon", ContentTypeSports, 12, 1.0},
		{"music afternoon", ContentTypeMusic, 17, 0.3},
		{"music evening", ContentTypeMusic, 18, 1.0},
		{"educational evening", ContentTypeEducational, 23, 0.3},
		{"unset", ContentTypeUnset, 9, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Score(item(1, "x", tt.ct, AgeBandUnset, 80), Viewer{ID: 1}, MinimalProfile(1), at(tt.hour))
			if b.TimeOfDay != tt.want {
				t.Errorf("time term = %f, want %f", b.TimeOfDay, tt.want)
			}
		})
	}
}

func TestScorer_EducationalTerm(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	tests := []struct {
		name     string
		ct       ContentType
		accuracy float64
		count    int
		want     float64
	}{
		{"no quizzes", ContentTypeEducational, 0, 0, 0.5},
		{"high accuracy", ContentTypeEducational, 0.9, 10, 1.0},
		{"exactly 0.8 is mid", ContentTypeEducational, 0.8, 10, 0.8},
		{"mid accuracy", ContentTypeEducational, 0.7, 10, 0.8},
		{"exactly 0.6 is low", ContentTypeEducational, 0.6, 10, 0.9},
		{"low accuracy", ContentTypeEducational, 0.2, 10, 0.9},
		{"not educational", ContentTypeMusic, 0.9, 10, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MinimalProfile(1)
			p.QuizAccuracy = tt.accuracy
			p.QuizCount = tt.count
			b := s.Score(item(1, "x", tt.ct, AgeBandUnset, 80), Viewer{ID: 1}, p, testNow)
			if b.Educational != tt.want {
				t.Errorf("educational term = %f, want %f", b.Educational, tt.want)
			}
		})
	}
}

func TestScorer_Multipliers(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	tests := []struct {
		name       string
		safety     float64
		views      int64
		multiplier float64
	}{
		{"none", 90, 1000, 1.0},
		{"safety", 95, 10, 1.10},
		{"popularity", 80, 1001, 1.05},
		{"both", 95, 2000, 1.10 * 1.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := item(1, "science", ContentTypeEducational, AgeBandUnset, tt.safety)
			it.ViewCount = tt.views
			b := s.Score(it, Viewer{ID: 1}, MinimalProfile(1), testNow)
			if !approxEqual(b.Multiplier, tt.multiplier) {
				t.Errorf("Multiplier = %f, want %f", b.Multiplier, tt.multiplier)
			}
			if !approxEqual(b.Final, 0.55*tt.multiplier) {
				t.Errorf("Final = %f, want %f", b.Final, 0.55*tt.multiplier)
			}
		})
	}
}

func TestScorer_ClampsToOne(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	profile := &Profile{
		ViewerID:          1,
		CategoryCounts:    map[string]int{"science": 5},
		ContentTypeCounts: map[ContentType]int{ContentTypeEducational: 5},
		QuizAccuracy:      0.95,
		QuizCount:         20,
	}
	it := item(1, "science", ContentTypeEducational, AgeBandChild, 99)
	it.ViewCount = 50000

	b := s.Score(it, Viewer{ID: 1, AgeBand: AgeBandChild}, profile, testNow)
	if !approxEqual(b.Weighted, 1.0) {
		t.Errorf("Weighted = %f, want 1.0", b.Weighted)
	}
	if b.Final != 1.0 {
		t.Errorf("Final = %f, want clamp to 1.0", b.Final)
	}
}

func TestScorer_ScoreRange(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	bands := []AgeBand{AgeBandUnset, AgeBandToddler, AgeBandChild, AgeBandTeen}
	types := []ContentType{ContentTypeUnset, ContentTypeEducational, ContentTypeEntertainment, ContentTypeMusic, ContentTypeSports, ContentTypeArts}
	profiles := []*Profile{
		MinimalProfile(1),
		{
			ViewerID:          1,
			CategoryCounts:    map[string]int{"x": 1},
			ContentTypeCounts: map[ContentType]int{ContentTypeMusic: 3, ContentTypeEducational: 1},
			QuizAccuracy:      1,
			QuizCount:         3,
		},
	}

	for _, vb := range bands {
		for _, ib := range bands {
			for _, ct := range types {
				for _, p := range profiles {
					for hour := 0; hour < 24; hour += 5 {
						it := item(1, "x", ct, ib, 100)
						it.ViewCount = 1 << 20
						now := time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
						b := s.Score(it, Viewer{ID: 1, AgeBand: vb}, p, now)
						if b.Final < 0 || b.Final > 1 {
							t.Fatalf("score %f out of [0,1] for viewer=%v item=%v type=%q hour=%d", b.Final, vb, ib, ct, hour)
						}
					}
				}
			}
		}
	}
}
