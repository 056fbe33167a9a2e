package config

import "time"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		View: ViewConfig{
			ChunkSize:         50,
			MarginRows:        40,
			JumpPadding:       3,
			HighlightDuration: 2200 * time.Millisecond,
		},
		Search: SearchConfig{
			BatchSize:     500,
			TopK:          50,
			SnippetLength: 240,
			Debounce:      300 * time.Millisecond,
			MinAutoRunes:  3,
		},
		Display: DisplayConfig{
			Timestamps: true,
			MyName:     false,
			TheirName:  true,
			Reactions:  true,
		},
	}
}
