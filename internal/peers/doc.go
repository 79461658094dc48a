// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

// Package peers finds compatible peers by behavioral similarity.
//
// Each user is one Qdrant point. The point ID is a name-based UUID of the
// user ID, the vector is BehaviorVector of the user's mood analysis, and the
// payload carries user_id, display_name and interests. FindMatches runs a
// cosine nearest-neighbour query from the user's own vector and blends the
// similarity with interest overlap into a compatibility score.
package peers
