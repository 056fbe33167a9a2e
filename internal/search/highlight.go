package search

import (
	"html"
	"slices"
	"strings"
)

const (
	highlightOpen  = "<strong>"
	highlightClose = "</strong>"
)

// Segment is a run of original text that is either inside or outside a match.
type Segment struct {
	Text  string
	Match bool
}

// FindRanges locates every occurrence of every query token inside original,
// comparing in normalized form and reporting rune ranges in original. The
// result is sorted and merged.
func FindRanges(original, query string) []Range {
	if original == "" {
		return nil
	}
	tokens := strings.Fields(Normalize(query))
	if len(tokens) == 0 {
		return nil
	}

	pm := BuildPositionMap(original)
	var ranges []Range
	for _, token := range tokens {
		needle := []rune(token)
		for start := 0; start+len(needle) <= len(pm.Normalized); {
			if !hasRunesAt(pm.Normalized, needle, start) {
				start++
				continue
			}
			end := start + len(needle)
			ranges = append(ranges, Range{
				Start: pm.Mapping[start],
				End:   pm.Mapping[end-1] + 1,
			})
			start = end
		}
	}
	slices.SortFunc(ranges, func(a, b Range) int { return a.Start - b.Start })
	return MergeRanges(ranges)
}

func hasRunesAt(haystack, needle []rune, at int) bool {
	for i, r := range needle {
		if haystack[at+i] != r {
			return false
		}
	}
	return true
}

// MergeRanges merges sorted ranges that overlap or touch.
func MergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	merged := make([]Range, 0, len(ranges))
	current := ranges[0]
	for _, next := range ranges[1:] {
		if next.Start <= current.End {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// Segments splits original along ranges. Ranges must be sorted and merged;
// out-of-bounds parts are clipped.
func Segments(original string, ranges []Range) []Segment {
	if original == "" {
		return nil
	}
	runesOrig := []rune(original)
	if len(ranges) == 0 {
		return []Segment{{Text: original}}
	}
	var out []Segment
	pos := 0
	for _, r := range ranges {
		start, end := clamp(r.Start, 0, len(runesOrig)), clamp(r.End, 0, len(runesOrig))
		if start < pos {
			start = pos
		}
		if start >= end {
			continue
		}
		if start > pos {
			out = append(out, Segment{Text: string(runesOrig[pos:start])})
		}
		out = append(out, Segment{Text: string(runesOrig[start:end]), Match: true})
		pos = end
	}
	if pos < len(runesOrig) {
		out = append(out, Segment{Text: string(runesOrig[pos:])})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RenderRanges escapes original as HTML and wraps every range in open and
// closeTag.
func RenderRanges(original string, ranges []Range, open, closeTag string) string {
	var b strings.Builder
	for _, seg := range Segments(original, ranges) {
		if seg.Match {
			b.WriteString(open)
			b.WriteString(html.EscapeString(seg.Text))
			b.WriteString(closeTag)
			continue
		}
		b.WriteString(html.EscapeString(seg.Text))
	}
	return b.String()
}

// RenderHighlighted returns original as escaped HTML with query matches
// wrapped in <strong> tags.
func RenderHighlighted(original, query string) string {
	return RenderRanges(original, FindRanges(original, query), highlightOpen, highlightClose)
}

// StripMarkup removes the highlight tags added by RenderHighlighted. The
// result is still HTML-escaped.
func StripMarkup(markup string) string {
	return strings.NewReplacer(highlightOpen, "", highlightClose, "").Replace(markup)
}

// Snippet returns at most limit runes of text. A limit of zero or less
// returns text unchanged.
func Snippet(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
