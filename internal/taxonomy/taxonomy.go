// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package taxonomy provides the static genre and brand keyword mappings
// used by the classifier. The store is built once at startup and is
// read-only at runtime.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// GenreOther is the catch-all bucket for campaigns the resolver labels as
// promotional or non-music content.
const GenreOther = "Other"

// GenreBrand is assigned when a brand keyword is detected in the title.
// Brand detection pre-empts genre detection.
const GenreBrand = "Brand"

// Store holds the genre and brand keyword mappings. All keywords are
// stored lower-cased; lookups are case-insensitive.
type Store struct {
	genres map[string][]string
	brands []string
	// keywordGenre indexes every keyword to its genre for exact-match
	// lookups.
	keywordGenre map[string]string
	genreNames   []string
}

// New builds a store from a genre->keywords mapping and a brand keyword
// list. Keywords are normalized to lower case and de-duplicated.
func New(genres map[string][]string, brands []string) *Store {
	s := &Store{
		genres:       make(map[string][]string, len(genres)),
		keywordGenre: make(map[string]string),
	}

	for genre, keywords := range genres {
		seen := make(map[string]struct{}, len(keywords))
		normalized := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			normalized = append(normalized, kw)
			// First genre to claim a keyword wins; collisions are a data
			// problem surfaced by tests, not runtime.
			if _, claimed := s.keywordGenre[kw]; !claimed {
				s.keywordGenre[kw] = genre
			}
		}
		s.genres[genre] = normalized
		s.genreNames = append(s.genreNames, genre)
	}
	sort.Strings(s.genreNames)

	for _, b := range brands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			s.brands = append(s.brands, b)
		}
	}

	return s
}

// Default returns the built-in taxonomy.
func Default() *Store {
	return New(defaultGenres, defaultBrands)
}

// LoadFile builds a store from a YAML file of the shape:
//
//	genres:
//	  Hip-Hop: [rap, drake]
//	brands: [nike, adidas]
func LoadFile(path string) (*Store, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load taxonomy file %s: %w", path, err)
	}

	var raw struct {
		Genres map[string][]string `koanf:"genres"`
		Brands []string            `koanf:"brands"`
	}
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taxonomy: %w", err)
	}
	if len(raw.Genres) == 0 {
		return nil, fmt.Errorf("taxonomy file %s defines no genres", path)
	}

	return New(raw.Genres, raw.Brands), nil
}

// Genres returns the genre labels in sorted order.
func (s *Store) Genres() []string {
	return s.genreNames
}

// Keywords returns the keyword list for a genre.
func (s *Store) Keywords(genre string) []string {
	return s.genres[genre]
}

// Brands returns the brand keyword list.
func (s *Store) Brands() []string {
	return s.brands
}

// GenreForKeyword returns the genre whose keyword list contains the given
// string exactly (case-insensitive).
func (s *Store) GenreForKeyword(keyword string) (string, bool) {
	genre, ok := s.keywordGenre[strings.ToLower(strings.TrimSpace(keyword))]
	return genre, ok
}
