package state

import (
	"time"

	"github.com/kk-code-lab/rchat/internal/config"
	"github.com/kk-code-lab/rchat/internal/search"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

type SearchStatus string

const (
	SearchStatusIdle      SearchStatus = ""
	SearchStatusSearching SearchStatus = "searching"
	SearchStatusComplete  SearchStatus = "complete"
)

const (
	// HeaderRows is the title and statistics area above the transcript.
	HeaderRows = 2
	// StatusRows is the status line at the bottom of the screen.
	StatusRows = 1
	// PanelResultRows is how many results the search panel shows at once.
	PanelResultRows = 8
	// panelRows adds the query input row to the result rows.
	panelRows = PanelResultRows + 1
)

// DisplayOptions are the per-message display toggles.
type DisplayOptions struct {
	Timestamps  bool
	MyName      bool
	TheirName   bool
	Reactions   bool
	Perspective string
}

// LayoutFactory builds the materializer used for the transcript window. It
// is called again whenever a new session is attached.
type LayoutFactory func(*AppState) virtual.Materializer

// AppState is the single source of truth
type AppState struct {
	Session *Session

	// Settings
	ChunkSize         int
	MarginRows        int
	JumpPadding       int
	HighlightDuration time.Duration
	BatchSize         int
	TopK              int
	SnippetLength     int
	MinAutoRunes      int
	SearchDebounce    time.Duration
	Display           DisplayOptions

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	// Search
	SearchActive     bool
	SearchQuery      string
	SearchCursorPos  int
	SearchResults    []search.Match // full ranked list
	SearchIndex      int            // selected result
	SearchScroll     int
	SearchInProgress bool
	SearchProgress   int
	SearchStatus     SearchStatus
	SearchID         int    // id of the current search, to drop stale callbacks
	ResultsQuery     string // query SearchResults belong to
	pendingQuery     string // query of SearchID
	LiveQuery        string // query highlighted inside the transcript
	debounceSeq      int

	// Record index build (reloads)
	IndexInProgress bool
	IndexProgress   int

	// Navigation markers, -1 when unset
	MarkedIndex    int
	TransientIndex int
	transientSeq   int

	// Status line
	HelpVisible        bool
	ClipboardAvailable bool
	LastYankTime       time.Time
	LastReloadTime     time.Time

	// Error state
	LastError error

	dispatchAction func(Action)
	scheduleAction func(time.Duration, Action)
	layoutFactory  LayoutFactory
}

// NewAppState returns an empty state configured from cfg.
func NewAppState(cfg config.Config) *AppState {
	return &AppState{
		ChunkSize:         cfg.View.ChunkSize,
		MarginRows:        cfg.View.MarginRows,
		JumpPadding:       cfg.View.JumpPadding,
		HighlightDuration: cfg.View.HighlightDuration,
		BatchSize:         cfg.Search.BatchSize,
		TopK:              cfg.Search.TopK,
		SnippetLength:     cfg.Search.SnippetLength,
		MinAutoRunes:      cfg.Search.MinAutoRunes,
		SearchDebounce:    cfg.Search.Debounce,
		Display: DisplayOptions{
			Timestamps:  cfg.Display.Timestamps,
			MyName:      cfg.Display.MyName,
			TheirName:   cfg.Display.TheirName,
			Reactions:   cfg.Display.Reactions,
			Perspective: cfg.Display.Perspective,
		},
		MarkedIndex:    -1,
		TransientIndex: -1,
	}
}

// SetDispatch exposes the reducer dispatch hook to other packages.
func (s *AppState) SetDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

// SetScheduler installs the hook used to deliver an action after a delay.
func (s *AppState) SetScheduler(fn func(time.Duration, Action)) {
	s.scheduleAction = fn
}

// SetLayoutFactory installs the materializer factory for new windows.
func (s *AppState) SetLayoutFactory(fn LayoutFactory) {
	s.layoutFactory = fn
}

func (s *AppState) dispatch(a Action) {
	if s.dispatchAction != nil {
		s.dispatchAction(a)
	}
}

func (s *AppState) schedule(d time.Duration, a Action) {
	if s.scheduleAction != nil {
		s.scheduleAction(d, a)
	}
}

// Thread returns the loaded transcript or nil.
func (s *AppState) Thread() *transcript.Thread {
	if s.Session == nil {
		return nil
	}
	return s.Session.Thread
}

// Window returns the transcript window or nil.
func (s *AppState) Window() *virtual.Window {
	if s.Session == nil {
		return nil
	}
	return s.Session.Window
}

// ViewportTop is the first screen row of the transcript area.
func (s *AppState) ViewportTop() int {
	return HeaderRows
}

// ViewportHeight is the number of transcript rows on screen.
func (s *AppState) ViewportHeight() int {
	h := s.ScreenHeight - HeaderRows - StatusRows
	if s.SearchActive {
		h -= panelRows
	}
	if h < 1 {
		if s.ScreenHeight <= 0 {
			return 0
		}
		return 1
	}
	return h
}

// PanelTop is the screen row of the search input when the panel is open.
func (s *AppState) PanelTop() int {
	return s.ViewportTop() + s.ViewportHeight()
}

// MarkedMessage returns the message under the persistent marker.
func (s *AppState) MarkedMessage() (transcript.Message, bool) {
	thread := s.Thread()
	if thread == nil {
		return transcript.Message{}, false
	}
	return thread.Message(s.MarkedIndex)
}

// IsMe reports whether sender is the selected perspective.
func (s *AppState) IsMe(sender string) bool {
	return s.Display.Perspective != "" && sender == s.Display.Perspective
}

type Match = search.Match
