// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package models defines the domain and API response types shared across
// the Tunescale core: campaigns, creators, classification and
// recommendation runs, swipes, and the standard API envelope.
//
// Ownership boundaries: Campaign and Creator rows are written by the
// ingestion collaborator; this core only mutates campaign genre fields.
// ClassificationRun, RecommendationRun, Recommendation, and Swipe are owned
// exclusively by this core and are append-only except for the
// run-completion transition.
package models
