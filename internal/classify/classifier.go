// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/models"
	"github.com/tunescale/tunescale/internal/taxonomy"
)

// Result is a heuristic classification outcome.
type Result struct {
	Genre      string
	Confidence models.Confidence
}

// Classifier scores taxonomy matches against a parsed entity and the raw
// title. It is immutable after construction and safe for concurrent use.
type Classifier struct {
	taxonomy *taxonomy.Store
	cfg      config.ClassifyConfig

	// wordRe holds a compiled whole-word matcher per keyword, keyed by the
	// lower-cased keyword. Built once to keep per-title cost down.
	wordRe map[string]*regexp.Regexp
}

// NewClassifier builds a classifier over the given taxonomy with the
// given scoring constants.
func NewClassifier(store *taxonomy.Store, cfg config.ClassifyConfig) *Classifier {
	c := &Classifier{
		taxonomy: store,
		cfg:      cfg,
		wordRe:   make(map[string]*regexp.Regexp),
	}

	compile := func(kw string) {
		if _, ok := c.wordRe[kw]; !ok {
			c.wordRe[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	for _, genre := range store.Genres() {
		for _, kw := range store.Keywords(genre) {
			compile(kw)
		}
	}
	for _, b := range store.Brands() {
		compile(b)
	}

	return c
}

// Classify assigns a genre and confidence to a campaign title, or returns
// false to signal that the caller should escalate to external resolution.
//
// Decision order:
//  1. Brand keyword anywhere in the noise-stripped title -> Brand, high.
//  2. Parsed entity exactly equals a taxonomy keyword -> that genre, high.
//  3. Accumulated keyword scores with the configured thresholds.
func (c *Classifier) Classify(title string) (Result, bool) {
	stripped := stripNoise(title)
	if stripped == "" {
		return Result{}, false
	}

	// Brand detection pre-empts genre detection.
	for _, brand := range c.taxonomy.Brands() {
		if c.wordRe[brand].MatchString(stripped) {
			return Result{Genre: taxonomy.GenreBrand, Confidence: models.ConfidenceHigh}, true
		}
	}

	entity, hasEntity := ParseEntity(title)
	if hasEntity {
		if genre, ok := c.taxonomy.GenreForKeyword(entity); ok {
			return Result{Genre: genre, Confidence: models.ConfidenceHigh}, true
		}
	}

	scores := c.scoreGenres(entity, stripped)
	return c.decide(scores)
}

// scoreGenres accumulates a per-genre score. An entity-substring keyword
// match carries the most weight; whole-title matches carry less, and
// short generic descriptors ("rock", "pop") least of all, so specific
// artist-name keywords dominate.
func (c *Classifier) scoreGenres(entity, stripped string) map[string]int {
	scores := make(map[string]int)
	entityLower := strings.ToLower(entity)

	for _, genre := range c.taxonomy.Genres() {
		for _, kw := range c.taxonomy.Keywords(genre) {
			if entityLower != "" && strings.Contains(entityLower, kw) {
				scores[genre] += c.cfg.EntityMatchWeight
				continue
			}
			if len(kw) < 3 {
				continue
			}
			if !c.wordRe[kw].MatchString(stripped) {
				continue
			}
			if isDescriptor(kw, c.cfg.DescriptorMaxLen) {
				scores[genre] += c.cfg.DescriptorMatchWeight
			} else {
				scores[genre] += c.cfg.PhraseMatchWeight
			}
		}
	}

	return scores
}

// isDescriptor reports whether a keyword is a short single-word genre
// descriptor rather than a specific name.
func isDescriptor(kw string, maxLen int) bool {
	return !strings.Contains(kw, " ") && len(kw) <= maxLen
}

// decide applies the threshold rules to the accumulated scores. A tie at
// the top or no signal at all returns false, escalating to the resolver.
func (c *Classifier) decide(scores map[string]int) (Result, bool) {
	if len(scores) == 0 {
		return Result{}, false
	}

	type genreScore struct {
		genre string
		score int
	}
	ranked := make([]genreScore, 0, len(scores))
	for g, s := range scores {
		ranked = append(ranked, genreScore{g, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].genre < ranked[j].genre
	})

	top := ranked[0]
	runnerUp := 0
	if len(ranked) > 1 {
		runnerUp = ranked[1].score
	}

	switch {
	case top.score >= c.cfg.HighThreshold && top.score > runnerUp:
		return Result{Genre: top.genre, Confidence: models.ConfidenceHigh}, true
	case top.score >= c.cfg.MediumThreshold && top.score > runnerUp:
		return Result{Genre: top.genre, Confidence: models.ConfidenceMedium}, true
	case top.score >= c.cfg.LowThreshold && runnerUp == 0:
		return Result{Genre: top.genre, Confidence: models.ConfidenceLow}, true
	default:
		return Result{}, false
	}
}
