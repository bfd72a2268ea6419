// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package models

import (
	"time"

	"github.com/google/uuid"
)

// SwipeAction is a human accept/reject/defer decision on a recommended
// creator within a specific run.
type SwipeAction string

const (
	// SwipeLeft rejects the creator for this run.
	SwipeLeft SwipeAction = "left"
	// SwipeRight accepts the creator for this run.
	SwipeRight SwipeAction = "right"
	// SwipeMaybe defers the decision; neutral for feedback aggregation.
	SwipeMaybe SwipeAction = "maybe"
)

// ValidSwipeAction reports whether s names a known swipe action.
func ValidSwipeAction(s string) bool {
	switch SwipeAction(s) {
	case SwipeLeft, SwipeRight, SwipeMaybe:
		return true
	}
	return false
}

// Swipe records the latest decision for a (run, creator) pair. A repeat
// swipe on the same pair overwrites the prior decision; swipes on distinct
// runs for the same creator are independent observations.
type Swipe struct {
	RunID      uuid.UUID   `json:"run_id"`
	CreatorID  uuid.UUID   `json:"creator_id"`
	Action     SwipeAction `json:"action"`
	Note       string      `json:"note,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// FeedbackSignal aggregates a creator's latest swipe decisions across
// distinct prior runs.
type FeedbackSignal struct {
	CreatorID uuid.UUID `json:"creator_id"`
	Rights    int       `json:"rights"`
	Lefts     int       `json:"lefts"`
	Maybes    int       `json:"maybes"`
}
