// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package classify

import (
	"regexp"
	"strings"
)

// Entity length bounds after trimming. Candidates outside this range are
// rejected and the next rule is tried.
const (
	minEntityLen = 2
	maxEntityLen = 80
)

// noiseTokens are stripped as whole words before pattern matching:
// platform names and campaign/seeding/promo suffixes that never belong to
// an artist name.
var noiseTokens = []string{
	"tiktok", "instagram", "reels", "youtube", "shorts", "spotify",
	"snapchat", "triller", "facebook",
	"campaign", "seeding", "promo", "promotion", "boost", "push", "ugc",
}

var (
	noiseTokenRe = regexp.MustCompile(`(?i)\b(` + strings.Join(noiseTokens, "|") + `)\b`)

	// monthRe matches English month names and their abbreviations.
	monthRe = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b\.?`)

	// dateRangeRe matches numeric date ranges such as "3/14-4/2" or
	// "03.01 - 04.15".
	dateRangeRe = regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}\s*[-–—]\s*\d{1,2}[./]\d{1,2}\b`)

	// trailingYearRe matches a bare year (or year range) at the end of the
	// title.
	trailingYearRe = regexp.MustCompile(`\b(19|20)\d{2}(\s*[-–—]\s*(19|20)\d{2})?\s*$`)

	// sepDashRe splits "A - B" on a spaced dash, en-dash, or em-dash so
	// hyphenated names like "Jay-Z" survive intact.
	sepDashRe = regexp.MustCompile(`\s[-–—]\s`)

	// sepCollabRe matches a standalone case-insensitive "x" between two
	// segments ("A x B" collaborations).
	sepCollabRe = regexp.MustCompile(`(?i)\s+x\s+`)

	// quotedRe matches `A "B"`: an unquoted head followed by a quoted
	// second segment.
	quotedRe = regexp.MustCompile(`^([^"“”]+?)\s+["“][^"“”]+["”]`)

	// featRe removes "feat./ft./featuring ..." suffixes from a candidate.
	featRe = regexp.MustCompile(`(?i)\s*[\(\[]?\b(feat\.?|ft\.?|featuring)\b.*$`)

	// bracketRe removes any bracketed content from a candidate.
	bracketRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)

	// bareTitleRe accepts only letters, digits, space, and the handful of
	// punctuation that appears in artist names.
	bareTitleRe = regexp.MustCompile(`^[\p{L}\p{N} .'$&-]+$`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// ParseEntity extracts a candidate artist or entity name from a free-text
// campaign title. Rules are tried in precedence order: structurally
// specific separators first, then a bare-string fallback, so song titles
// are not mis-extracted as entity names. Returns false when no rule
// yields a candidate in the valid length range.
func ParseEntity(title string) (string, bool) {
	cleaned := stripNoise(title)
	if cleaned == "" {
		return "", false
	}

	// Rule: "A - B" dash separator.
	if loc := sepDashRe.FindStringIndex(cleaned); loc != nil {
		if entity, ok := cleanCandidate(cleaned[:loc[0]]); ok {
			return entity, true
		}
	}

	// Rule: "A | B" pipe separator.
	if idx := strings.Index(cleaned, "|"); idx >= 0 {
		if entity, ok := cleanCandidate(cleaned[:idx]); ok {
			return entity, true
		}
	}

	// Rule: `A "B"` quoted second segment.
	if m := quotedRe.FindStringSubmatch(cleaned); m != nil {
		if entity, ok := cleanCandidate(m[1]); ok {
			return entity, true
		}
	}

	// Rule: "A x B" collaboration separator.
	if loc := sepCollabRe.FindStringIndex(cleaned); loc != nil {
		if entity, ok := cleanCandidate(cleaned[:loc[0]]); ok {
			return entity, true
		}
	}

	// Fallback: a short clean title is taken as the entity itself.
	if len(strings.Fields(cleaned)) <= 4 && bareTitleRe.MatchString(cleaned) {
		if entity, ok := validEntity(cleaned); ok {
			return entity, true
		}
	}

	return "", false
}

// stripNoise removes platform names, campaign suffixes, month names, date
// ranges, and bare trailing years, then collapses whitespace.
func stripNoise(title string) string {
	s := dateRangeRe.ReplaceAllString(title, " ")
	s = trailingYearRe.ReplaceAllString(s, " ")
	s = monthRe.ReplaceAllString(s, " ")
	s = noiseTokenRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// cleanCandidate strips featuring suffixes and bracketed content from a
// separator-derived candidate, then validates its length.
func cleanCandidate(candidate string) (string, bool) {
	s := bracketRe.ReplaceAllString(candidate, " ")
	s = featRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	return validEntity(s)
}

// validEntity enforces the 2-80 character post-trim bound.
func validEntity(s string) (string, bool) {
	s = strings.Trim(s, ` -–—|"'`)
	s = strings.TrimSpace(s)
	if len(s) < minEntityLen || len(s) > maxEntityLen {
		return "", false
	}
	return s, true
}
