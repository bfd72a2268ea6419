// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package errs defines the sentinel error taxonomy shared across the core.
//
// Callers wrap these with fmt.Errorf("...: %w", errs.ErrNotFound) and the
// API layer maps them to HTTP status codes with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a campaign, run, or creator is absent or out of
	// the caller's tenant scope. Always user-visible; never retried.
	ErrNotFound = errors.New("not found")

	// ErrRunAlreadyActive indicates a classification run is already running.
	// Callers should back off and retry later.
	ErrRunAlreadyActive = errors.New("classification run already active")

	// ErrInvalidInput indicates malformed filters, budget, or request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates the external resolver or generation exceeded its
	// deadline. Inside a batch this is recorded as a per-item failure.
	ErrTimeout = errors.New("operation timed out")

	// ErrInternal indicates a persistence or infrastructure failure. Logged
	// with context and surfaced as a generic failure to the caller.
	ErrInternal = errors.New("internal error")
)

// Invalid wraps ErrInvalidInput with a caller-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}
