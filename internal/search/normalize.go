package search

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PositionMap correlates every rune of a normalized string with the index of
// the original rune whose decomposition produced it. Mapping is indexed like
// Normalized; several normalized runes can share an original index and some
// original runes (bare combining marks) produce none.
type PositionMap struct {
	Normalized []rune
	Mapping    []int
}

// String returns the normalized text.
func (pm PositionMap) String() string {
	return string(pm.Normalized)
}

var stripperPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	},
}

func stripMarks(s string) (string, error) {
	t := stripperPool.Get().(transform.Transformer)
	defer stripperPool.Put(t)
	out, _, err := transform.String(t, s)
	return out, err
}

// Normalize canonicalizes text for matching: canonical decomposition,
// combining marks removed, lowercased, whitespace runs collapsed to a single
// space and trimmed. It never fails; if the Unicode transform does, the text
// is only lowercased and collapsed.
func Normalize(s string) string {
	out, err := normalizeStrict(s)
	if err != nil {
		return fallbackNormalize(s)
	}
	return out
}

func normalizeStrict(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	stripped, err := stripMarks(s)
	if err != nil {
		return "", err
	}
	return collapseSpace(strings.ToLower(stripped)), nil
}

func fallbackNormalize(s string) string {
	return collapseSpace(strings.ToLower(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildPositionMap normalizes original rune by rune and records, for every
// produced rune, the index of the original rune it came from. Whitespace is
// not collapsed so positions stay one-to-one for ordinary text. It is meant
// for translating match positions back to the original and is not used for
// scoring.
func BuildPositionMap(original string) PositionMap {
	pm := PositionMap{
		Normalized: make([]rune, 0, len(original)),
		Mapping:    make([]int, 0, len(original)),
	}
	idx := 0
	for _, r := range original {
		for _, out := range foldRune(r) {
			pm.Normalized = append(pm.Normalized, out)
			pm.Mapping = append(pm.Mapping, idx)
		}
		idx++
	}
	return pm
}

// foldRune returns the decomposed, mark-free, lowercased form of one rune.
func foldRune(r rune) []rune {
	if r < 0x80 {
		return []rune{unicode.ToLower(r)}
	}
	if unicode.Is(unicode.Mn, r) {
		return nil
	}
	single := string(r)
	stripped, err := stripMarks(single)
	if err != nil {
		return []rune(strings.ToLower(single))
	}
	lowered := strings.ToLower(stripped)
	if lowered == stripped {
		return []rune(lowered)
	}
	// Some lowercase mappings introduce marks of their own (İ -> i̇).
	if again, err := stripMarks(lowered); err == nil {
		lowered = again
	}
	return []rune(lowered)
}
