package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxChunkSize   = 10000
	maxBatchSize   = 100000
	maxMarginRows  = 10000
	maxJumpPadding = 100
)

// Validate clamps out-of-range values back to something usable and returns
// a description of every correction.
func (c *Config) Validate() []string {
	var warnings []string
	def := Default()

	clampInt := func(name string, v *int, lo, hi, fallback int) {
		switch {
		case *v < lo:
			warnings = append(warnings, fmt.Sprintf("%s %d is below %d, using %d", name, *v, lo, fallback))
			*v = fallback
		case hi > 0 && *v > hi:
			warnings = append(warnings, fmt.Sprintf("%s %d is above %d, using %d", name, *v, hi, hi))
			*v = hi
		}
	}
	clampDuration := func(name string, v *time.Duration, fallback time.Duration) {
		if *v < 0 {
			warnings = append(warnings, fmt.Sprintf("%s %s is negative, using %s", name, *v, fallback))
			*v = fallback
		}
	}

	clampInt("view.chunk_size", &c.View.ChunkSize, 1, maxChunkSize, def.View.ChunkSize)
	clampInt("view.margin_rows", &c.View.MarginRows, 0, maxMarginRows, def.View.MarginRows)
	clampInt("view.jump_padding", &c.View.JumpPadding, 0, maxJumpPadding, def.View.JumpPadding)
	clampDuration("view.highlight_duration", &c.View.HighlightDuration, def.View.HighlightDuration)

	clampInt("search.batch_size", &c.Search.BatchSize, 1, maxBatchSize, def.Search.BatchSize)
	clampInt("search.top_k", &c.Search.TopK, 1, 0, def.Search.TopK)
	clampInt("search.snippet_length", &c.Search.SnippetLength, 1, 0, def.Search.SnippetLength)
	clampInt("search.min_auto_runes", &c.Search.MinAutoRunes, 1, 0, def.Search.MinAutoRunes)
	clampDuration("search.debounce", &c.Search.Debounce, def.Search.Debounce)

	c.Display.Perspective = strings.TrimSpace(c.Display.Perspective)
	return warnings
}
