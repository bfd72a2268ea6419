// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package taxonomy

// defaultGenres mixes short generic descriptors (down-weighted by the
// classifier) with specific artist-name keywords (full weight).
var defaultGenres = map[string][]string{
	"Hip-Hop": {
		"rap", "trap", "hip hop", "hip-hop", "drill",
		"drake", "travis scott", "kendrick lamar", "lil baby", "future",
		"21 savage", "migos", "j. cole", "metro boomin", "ice spice",
	},
	"Pop": {
		"pop", "hyperpop",
		"taylor swift", "ariana grande", "dua lipa", "olivia rodrigo",
		"justin bieber", "harry styles", "billie eilish", "sabrina carpenter",
	},
	"Rock": {
		"rock", "metal", "punk", "grunge", "emo",
		"metallica", "foo fighters", "nirvana", "arctic monkeys",
		"paramore", "bring me the horizon",
	},
	"EDM": {
		"edm", "house", "techno", "trance", "dnb",
		"calvin harris", "marshmello", "david guetta", "tiesto",
		"skrillex", "fred again",
	},
	"Country": {
		"country", "folk",
		"morgan wallen", "luke combs", "zach bryan", "chris stapleton",
		"lainey wilson",
	},
	"Latin": {
		"latin", "corrido",
		"bad bunny", "karol g", "j balvin", "peso pluma", "rauw alejandro",
		"reggaeton",
	},
	"R&B": {
		"r&b", "rnb", "soul",
		"sza", "the weeknd", "frank ocean", "summer walker", "brent faiyaz",
	},
	"Indie": {
		"indie", "lo-fi", "lofi",
		"bon iver", "mac demarco", "clairo", "boygenius",
	},
}

// defaultBrands lists brand keywords whose presence anywhere in a title
// classifies the campaign as a brand deal regardless of genre signal.
var defaultBrands = []string{
	"nike", "adidas", "puma", "new balance",
	"red bull", "redbull", "monster energy", "celsius",
	"samsung", "google pixel", "beats",
	"coca-cola", "pepsi", "mcdonald's", "chipotle", "dunkin",
	"fashion nova", "shein", "elf cosmetics", "rare beauty",
	"draftkings", "fanduel",
}
