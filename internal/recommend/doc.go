// Sprout - Personalized Content Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sprout

// Package recommend implements the personalized content recommendation engine.
//
// # Architecture
//
// A request flows through five components:
//
//   - Aggregator: reduces watch events and quiz outcomes into a Profile
//   - CandidateGenerator: fetches the eligible pool and applies hard filters
//   - Scorer: weighted five-term relevance score with safety/popularity boosts
//   - DiversitySelector: greedy selection under category and type caps
//   - Explainer: one human-readable reason per selected item
//
// The Aggregator and CandidateGenerator run concurrently; the Scorer,
// DiversitySelector and Explainer run in sequence on their outputs.
//
// # Design Principles
//
//   - Deterministic: scoring and selection are pure; the shuffle uses an injectable seeded source
//   - Auditable: every score carries a ScoreBreakdown
//   - Degrading: profile failures fall back to a neutral profile, never an error
//   - Fail-fast: store failures surface as ErrStoreUnavailable without retry
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    ViewerID: viewerID,
//	    Limit:    20,
//	    Mode:     recommend.ModeEducational,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. The only shared mutable state is
// the shuffle source, guarded by a mutex, and the optional profile cache.
//
// Note: This package depends on no other internal package except cache.
// The Store interface allows integration with the database package without
// creating circular imports.
package recommend
