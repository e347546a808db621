// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

package recommend

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func scored(id int64, category string, ct ContentType, score float64) ScoredCandidate {
	return ScoredCandidate{
		Item:  ContentItem{ID: id, Category: category, ContentType: ct},
		Score: score,
	}
}

func scoredIDs(items []ScoredCandidate) []int64 {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].Item.ID
	}
	return ids
}

func TestDiversitySelector_Caps(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	tests := []struct {
		k            int
		wantCategory int
		wantType     int
	}{
		{1, 2, 3},
		{10, 2, 3},
		{15, 3, 5},
		{20, 4, 6},
		{100, 20, 33},
	}

	for _, tt := range tests {
		c, ty := d.Caps(tt.k)
		if c != tt.wantCategory || ty != tt.wantType {
			t.Errorf("Caps(%d) = %d/%d, want %d/%d", tt.k, c, ty, tt.wantCategory, tt.wantType)
		}
	}
}

func TestDiversitySelector_ShortListReturnedWhole(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	items := []ScoredCandidate{
		scored(1, "math", ContentTypeEducational, 0.9),
		scored(2, "math", ContentTypeEducational, 0.8),
		scored(3, "math", ContentTypeEducational, 0.7),
		scored(4, "math", ContentTypeEducational, 0.6),
	}

	got := d.Rerank(context.Background(), items, 10)
	if !reflect.DeepEqual(scoredIDs(got), []int64{1, 2, 3, 4}) {
		t.Errorf("Rerank() = %v, want all four in order", scoredIDs(got))
	}
}

func TestDiversitySelector_EmptyAndZero(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	if got := d.Rerank(context.Background(), nil, 10); len(got) != 0 {
		t.Errorf("Rerank(nil) len = %d, want 0", len(got))
	}
	items := []ScoredCandidate{scored(1, "a", ContentTypeMusic, 1)}
	if got := d.Rerank(context.Background(), items, 0); len(got) != 0 {
		t.Errorf("Rerank(k=0) len = %d, want 0", len(got))
	}
}

// Twenty items of one category and type with L=10: the relaxed first
// half admits five, then both caps reject the rest.
func TestDiversitySelector_SingleCategoryStopsAtHalf(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	items := make([]ScoredCandidate, 20)
	for i := range items {
		items[i] = scored(int64(i+1), "math", ContentTypeEducational, 1-float64(i)/100)
	}

	got := d.Rerank(context.Background(), items, 10)
	want := []int64{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(scoredIDs(got), want) {
		t.Errorf("Rerank() = %v, want %v", scoredIDs(got), want)
	}
}

func TestDiversitySelector_StrictWithoutRelaxation(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Diversity
	cfg.RelaxFirstHalf = false
	d := NewDiversitySelector(cfg)

	items := make([]ScoredCandidate, 20)
	for i := range items {
		items[i] = scored(int64(i+1), "math", ContentTypeEducational, 1-float64(i)/100)
	}

	got := d.Rerank(context.Background(), items, 10)
	if !reflect.DeepEqual(scoredIDs(got), []int64{1, 2}) {
		t.Errorf("Rerank() = %v, want [1 2]", scoredIDs(got))
	}
}

func TestDiversitySelector_InterleavesCategories(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	var items []ScoredCandidate
	id := int64(1)
	// Top-scored block is all "math"; lower blocks bring other categories.
	for _, category := range []string{"math", "math", "math", "math", "math", "math", "art", "art", "space", "space", "songs", "songs", "sports", "sports"} {
		ct := ContentTypeEducational
		switch category {
		case "art":
			ct = ContentTypeArts
		case "songs":
			ct = ContentTypeMusic
		case "sports":
			ct = ContentTypeSports
		}
		items = append(items, scored(id, category, ct, 1-float64(id)/100))
		id++
	}

	got := d.Rerank(context.Background(), items, 10)
	counts := make(map[string]int)
	for i := range got {
		counts[got[i].Item.Category]++
	}

	// The relaxed prefix takes five math items; space is then rejected by
	// the educational type cap and the list fills from art, songs, sports.
	want := map[string]int{"math": 5, "art": 2, "songs": 2, "sports": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("category counts = %v, want %v", counts, want)
	}
}

// After the relaxed prefix, every admitted item must be under both caps.
func TestDiversitySelector_CapsHoldAfterRelaxedPrefix(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	types := []ContentType{ContentTypeEducational, ContentTypeEducational, ContentTypeMusic, ContentTypeEntertainment}
	categories := []string{"a", "a", "a", "b", "c", "", "d"}

	var items []ScoredCandidate
	for i := 0; i < 60; i++ {
		items = append(items, scored(int64(i), categories[i%len(categories)], types[(i/3)%len(types)], 1-float64(i)/1000))
	}

	for _, k := range []int{10, 15, 20, 30} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			got := d.Rerank(context.Background(), items, k)
			if len(got) > k {
				t.Fatalf("len = %d, want <= %d", len(got), k)
			}

			categoryCap, typeCap := d.Caps(k)
			catCounts := make(map[string]int)
			typeCounts := make(map[string]int)
			prevScore := 2.0
			for i := range got {
				if got[i].Score > prevScore {
					t.Errorf("position %d breaks score order", i)
				}
				prevScore = got[i].Score

				category, ct := bucketsOf(&got[i].Item)
				if i >= k/2 && (catCounts[category] >= categoryCap || typeCounts[ct] >= typeCap) {
					t.Errorf("position %d (%s/%s) admitted over cap", i, category, ct)
				}
				catCounts[category]++
				typeCounts[ct]++
			}
		})
	}
}

func TestDiversitySelector_DeterministicAndNonMutating(t *testing.T) {
	t.Parallel()

	d := NewDiversitySelector(DefaultConfig().Diversity)
	var items []ScoredCandidate
	for i := 0; i < 30; i++ {
		items = append(items, scored(int64(i), fmt.Sprintf("c%d", i%4), ContentTypeMusic, 1-float64(i)/100))
	}
	before := scoredIDs(items)

	first := d.Rerank(context.Background(), items, 10)
	second := d.Rerank(context.Background(), items, 10)
	if !reflect.DeepEqual(scoredIDs(first), scoredIDs(second)) {
		t.Error("same input produced different selections")
	}
	if !reflect.DeepEqual(before, scoredIDs(items)) {
		t.Error("Rerank() modified its input")
	}
}
