package state

// Action is the base interface for all state mutations
type Action interface{}

// ===== SCROLL ACTIONS =====

type ScrollLinesAction struct {
	Delta int
}
type ScrollPageUpAction struct{}
type ScrollPageDownAction struct{}
type ScrollToStartAction struct{}
type ScrollToEndAction struct{}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type CyclePerspectiveAction struct{}

// DisplayToggle names one of the display switches.
type DisplayToggle int

const (
	ToggleTimestamps DisplayToggle = iota
	ToggleMyName
	ToggleTheirName
	ToggleReactions
)

type ToggleDisplayAction struct {
	Toggle DisplayToggle
}

// MouseClickAction is a primary button press at screen coordinates.
type MouseClickAction struct {
	X int
	Y int
}

type HelpToggleAction struct{}
type HelpHideAction struct{}

type YankMessageAction struct{}

// YankResultAction reports the outcome of a clipboard copy.
type YankResultAction struct {
	Err error
}

// ===== NAVIGATION ACTIONS =====

// JumpToAction scrolls to and marks the message with global index Index.
type JumpToAction struct {
	Index int
}

// JumpResultAction moves the result selection by Delta and jumps to it.
type JumpResultAction struct {
	Delta int
}

// TransientClearAction clears the transient marker set by jump Seq.
type TransientClearAction struct {
	Seq int
}

// ===== SEARCH ACTIONS =====

type SearchStartAction struct{}
type SearchCharAction struct {
	Char rune
}
type SearchBackspaceAction struct{}
type SearchDeleteWordAction struct{}
type SearchMoveCursorAction struct {
	Direction string // "left", "right", "home", "end"
}

// SearchSubmitAction runs the typed query, or jumps to the selected result
// when the results already belong to it.
type SearchSubmitAction struct{}

// SearchClearAction clears the query, or closes the panel when it is empty.
type SearchClearAction struct{}
type SearchNavigateAction struct {
	Direction string // "up" or "down"
}
type SearchSelectIndexAction struct {
	Index int
}

// SearchDebounceAction fires SearchDebounce after the last edit of the query.
type SearchDebounceAction struct {
	Seq int
}

type SearchProgressAction struct {
	ID      int
	Percent int
}

type SearchResultsAction struct {
	ID      int
	Results []Match
}

// ===== TRANSCRIPT ACTIONS =====

// IndexProgressAction reports record building progress during a reload.
type IndexProgressAction struct {
	Percent int
}

// SessionReadyAction replaces the session, or reports why it could not be
// built. On error the current session stays active.
type SessionReadyAction struct {
	Session *Session
	Err     error
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}

// SuspendAction hands the terminal back to the shell (Ctrl-Z).
type SuspendAction struct{}
