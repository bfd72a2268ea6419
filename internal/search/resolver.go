// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package search implements the outbound external-search collaborator
// used to resolve campaign titles the heuristic classifier cannot place.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/errs"
	"github.com/tunescale/tunescale/internal/metrics"
)

// maxResponseBytes bounds how much of a resolver response is read.
const maxResponseBytes = 64 << 10

// HTTPResolver resolves titles against an external genre-resolution
// service over HTTP. Calls are rate limited and guarded by a circuit
// breaker so a degraded upstream fails fast instead of stalling batch
// classification.
type HTTPResolver struct {
	cfg     config.SearchConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	logger  zerolog.Logger
}

// resolveResponse is the upstream response shape.
type resolveResponse struct {
	Genre      string  `json:"genre"`
	Confidence float64 `json:"confidence,omitempty"`
}

// NewHTTPResolver builds a resolver from config. The HTTP client timeout
// is the overall per-call deadline; callers may impose shorter ones via
// context.
//
//nolint:gocritic // logger passed by value is fine for zerolog
func NewHTTPResolver(cfg config.SearchConfig, logger zerolog.Logger) *HTTPResolver {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:    "search-resolver",
		Timeout: cfg.BreakerOpenPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &HTTPResolver{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger.With().Str("component", "search").Logger(),
	}
}

// Resolve returns a best-effort genre label for the title, or "" when the
// search was inconclusive. Exceeding the deadline surfaces as
// errs.ErrTimeout.
func (r *HTTPResolver) Resolve(ctx context.Context, title string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", mapErr(err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	label, err := r.breaker.Execute(func() (string, error) {
		return r.doResolve(ctx, title)
	})
	if err != nil {
		metrics.SearchResolverCalls.WithLabelValues("error").Inc()
		return "", mapErr(err)
	}
	if label == "" {
		metrics.SearchResolverCalls.WithLabelValues("inconclusive").Inc()
	} else {
		metrics.SearchResolverCalls.WithLabelValues("resolved").Inc()
	}
	return label, nil
}

func (r *HTTPResolver) doResolve(ctx context.Context, title string) (string, error) {
	u, err := url.Parse(r.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("resolver url: %w", err)
	}
	q := u.Query()
	q.Set("q", title)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build resolver request: %w", err)
	}
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolver request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Upstream searched and found nothing; inconclusive, not an error.
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolver status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read resolver response: %w", err)
	}

	var parsed resolveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode resolver response: %w", err)
	}

	return parsed.Genre, nil
}

// mapErr translates transport and breaker errors into the core taxonomy.
func mapErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("search resolver: %w", errs.ErrTimeout)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("search resolver circuit open: %w", errs.ErrInternal)
	default:
		return err
	}
}
