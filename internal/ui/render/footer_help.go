package render

import (
	"strings"

	statepkg "github.com/kk-code-lab/rchat/internal/state"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}

	segments := contextualHelpSegments(state)
	segments = append(segments, persistentHelpSegments(state)...)

	return segments
}

func contextualHelpSegments(state *statepkg.AppState) []string {
	if state.SearchActive {
		segments := []string{
			"type: search",
			"↵: search/jump",
			"Esc: clear/close",
			"↑↓: select",
		}
		if len(state.SearchResults) > 0 {
			segments = append(segments, "^N/^P: next/prev")
		}
		return segments
	}
	segments := []string{
		"↑↓/Pg: scroll",
		"/: search",
	}
	if len(state.SearchResults) > 0 {
		segments = append(segments, "n/N: next/prev match")
	}
	return append(segments, "p: perspective", "?: help")
}

func persistentHelpSegments(state *statepkg.AppState) []string {
	if state == nil || state.SearchActive {
		return nil
	}

	var segments []string
	if state.ClipboardAvailable && state.MarkedIndex >= 0 {
		segments = append(segments, "y: yank")
	}
	return append(segments, "q: quit")
}
