package config

import "time"

// Config holds every tunable of the viewer.
type Config struct {
	View    ViewConfig    `toml:"view"`
	Search  SearchConfig  `toml:"search"`
	Display DisplayConfig `toml:"display"`

	// Warnings collects problems that were corrected rather than rejected.
	Warnings []string `toml:"-"`
}

// ViewConfig controls chunking and navigation.
type ViewConfig struct {
	ChunkSize         int           `toml:"chunk_size"`
	MarginRows        int           `toml:"margin_rows"`
	JumpPadding       int           `toml:"jump_padding"`
	HighlightDuration time.Duration `toml:"highlight_duration"`
}

// SearchConfig controls the scan and the result list.
type SearchConfig struct {
	BatchSize     int           `toml:"batch_size"`
	TopK          int           `toml:"top_k"`
	SnippetLength int           `toml:"snippet_length"`
	Debounce      time.Duration `toml:"debounce"`
	MinAutoRunes  int           `toml:"min_auto_runes"`
}

// DisplayConfig holds the message display toggles.
type DisplayConfig struct {
	Timestamps  bool   `toml:"timestamps"`
	MyName      bool   `toml:"my_name"`
	TheirName   bool   `toml:"their_name"`
	Reactions   bool   `toml:"reactions"`
	Perspective string `toml:"perspective"`
}
