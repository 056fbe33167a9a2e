package search

import (
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const (
	exactMatchBase     = 100
	exactLengthBonus   = 50
	tokenHitScore      = 10
	distanceQueryLimit = 30
	distanceSlack      = 10
	distanceCeiling    = 30
	// fuzzyScoreCeiling keeps token and distance matches below every
	// substring match, however many query tokens hit.
	fuzzyScoreCeiling = exactMatchBase - 1
)

var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Score rates how well a normalized query matches a normalized target.
// Both arguments must already be in normalized form.
//
// Scoring tiers:
//   - target contains query: 100 + min(50, rune length of query)
//   - otherwise 10 per query token contained in, or containing, some target
//     token, plus max(0, 30 - edit distance) between the first 30 query runes
//     and the first len+10 target runes, capped at 99
//
// A score of 0 means no match.
func Score(query, target string) int {
	if query == "" || target == "" {
		return 0
	}
	if strings.Contains(target, query) {
		n := utf8.RuneCountInString(query)
		if n > exactLengthBonus {
			n = exactLengthBonus
		}
		return exactMatchBase + n
	}

	score := tokenScore(query, target) + distanceScore(query, target)
	if score > fuzzyScoreCeiling {
		score = fuzzyScoreCeiling
	}
	return score
}

func tokenScore(query, target string) int {
	targetTokens := strings.Fields(target)
	score := 0
	for _, qt := range strings.Fields(query) {
		for _, tt := range targetTokens {
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				score += tokenHitScore
				break
			}
		}
	}
	return score
}

// distanceScore compares only a bounded prefix of both strings so the cost
// does not grow with message length. Long queries are under-scored past the
// first 30 runes; that is accepted as an approximation.
func distanceScore(query, target string) int {
	q := []rune(query)
	if len(q) > distanceQueryLimit {
		q = q[:distanceQueryLimit]
	}
	window := len(q) + distanceSlack
	t := make([]rune, 0, window)
	for _, r := range target {
		if len(t) == window {
			break
		}
		t = append(t, r)
	}

	dist := levenshtein.DistanceForStrings(q, t, unitCost)
	if dist >= distanceCeiling {
		return 0
	}
	return distanceCeiling - dist
}
