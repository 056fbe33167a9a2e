package state

import (
	"time"

	"github.com/kk-code-lab/rchat/internal/debuglog"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

// StateReducer applies actions to an AppState.
type StateReducer struct {
	now func() time.Time
}

func NewStateReducer() *StateReducer {
	return &StateReducer{now: time.Now}
}

// Reduce applies an action to state and returns new state. Like the rest of
// the state package it mutates in place; the event loop is the only caller.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== SCROLLING =====

	case ScrollLinesAction:
		state.scrollBy(a.Delta)
		return state, nil

	case ScrollPageUpAction:
		state.scrollBy(-state.pageSize())
		return state, nil

	case ScrollPageDownAction:
		state.scrollBy(state.pageSize())
		return state, nil

	case ScrollToStartAction:
		if w := state.Window(); w != nil {
			w.ScrollTo(0)
			w.Sync()
		}
		return state, nil

	case ScrollToEndAction:
		state.scrollToEnd()
		return state, nil

	// ===== VIEW =====

	case ResizeAction:
		widthChanged := a.Width != state.ScreenWidth
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		if w := state.Window(); w != nil {
			w.SetViewportHeight(state.ViewportHeight())
			if widthChanged {
				w.Invalidate()
				w.Rerender()
			}
			w.Sync()
		}
		state.updateSearchScroll()
		return state, nil

	case CyclePerspectiveAction:
		thread := state.Thread()
		if thread == nil {
			return state, nil
		}
		options := append([]string{""}, thread.Participants...)
		next := 0
		for i, name := range options {
			if name == state.Display.Perspective {
				next = (i + 1) % len(options)
				break
			}
		}
		state.Display.Perspective = options[next]
		state.rerender()
		return state, nil

	case ToggleDisplayAction:
		switch a.Toggle {
		case ToggleTimestamps:
			state.Display.Timestamps = !state.Display.Timestamps
		case ToggleMyName:
			state.Display.MyName = !state.Display.MyName
		case ToggleTheirName:
			state.Display.TheirName = !state.Display.TheirName
		case ToggleReactions:
			state.Display.Reactions = !state.Display.Reactions
		default:
			return state, nil
		}
		state.rerender()
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil

	case MouseClickAction:
		r.handleClick(state, a.X, a.Y)
		return state, nil

	case YankResultAction:
		if a.Err != nil {
			return state, a.Err
		}
		state.LastYankTime = r.now()
		return state, nil

	// ===== NAVIGATION =====

	case JumpToAction:
		state.JumpTo(a.Index)
		return state, nil

	case JumpResultAction:
		state.jumpResult(a.Delta)
		return state, nil

	case TransientClearAction:
		if a.Seq == state.transientSeq {
			state.TransientIndex = -1
		}
		return state, nil

	// ===== SEARCH =====

	case SearchStartAction:
		if !state.SearchActive {
			state.SearchActive = true
			state.SearchCursorPos = len([]rune(state.SearchQuery))
			state.resizeViewport()
		}
		return state, nil

	case SearchCharAction:
		if state.SearchActive {
			state.insertQueryRune(a.Char)
			state.queryEdited()
		}
		return state, nil

	case SearchBackspaceAction:
		if state.SearchActive && state.deleteQueryRuneBefore() {
			state.queryEdited()
		}
		return state, nil

	case SearchDeleteWordAction:
		if state.SearchActive && state.deleteQueryWordBefore() {
			state.queryEdited()
		}
		return state, nil

	case SearchMoveCursorAction:
		if state.SearchActive {
			state.moveQueryCursor(a.Direction)
		}
		return state, nil

	case SearchSubmitAction:
		if !state.SearchActive {
			return state, nil
		}
		query := state.CleanSearchQuery()
		if query == "" {
			return state, nil
		}
		if query == state.searchedQuery() {
			if !state.SearchInProgress {
				state.jumpToSelectedResult()
			}
			return state, nil
		}
		state.setLiveQuery(query)
		r.triggerSearch(state, query)
		return state, nil

	case SearchClearAction:
		if state.SearchQuery != "" {
			state.SearchQuery = ""
			state.SearchCursorPos = 0
			state.debounceSeq++
			state.clearSearchResults()
			state.setLiveQuery("")
			return state, nil
		}
		if state.SearchActive {
			state.SearchActive = false
			state.resizeViewport()
		}
		return state, nil

	case SearchNavigateAction:
		results := state.DisplayResults()
		if len(results) == 0 {
			return state, nil
		}
		if a.Direction == "up" && state.SearchIndex > 0 {
			state.SearchIndex--
		} else if a.Direction == "down" && state.SearchIndex < len(results)-1 {
			state.SearchIndex++
		}
		state.updateSearchScroll()
		return state, nil

	case SearchSelectIndexAction:
		results := state.DisplayResults()
		if len(results) == 0 {
			return state, nil
		}
		state.SearchIndex = clampIndex(a.Index, len(results))
		state.updateSearchScroll()
		return state, nil

	case SearchDebounceAction:
		if a.Seq != state.debounceSeq {
			return state, nil
		}
		r.applyDebouncedQuery(state)
		return state, nil

	case SearchProgressAction:
		if a.ID != state.SearchID || !state.SearchInProgress {
			return state, nil
		}
		state.SearchProgress = a.Percent
		return state, nil

	case SearchResultsAction:
		if a.ID != state.SearchID {
			debuglog.Logf(debuglog.TopicSearch, "dropping results of stale search %d (current %d)", a.ID, state.SearchID)
			return state, nil
		}
		state.SearchResults = a.Results
		state.SearchInProgress = false
		state.SearchProgress = 100
		state.SearchStatus = SearchStatusComplete
		state.ResultsQuery = state.pendingQuery
		state.SearchIndex = 0
		state.SearchScroll = 0
		return state, nil

	// ===== TRANSCRIPT =====

	case IndexProgressAction:
		state.IndexInProgress = a.Percent < 100
		state.IndexProgress = a.Percent
		return state, nil

	case SessionReadyAction:
		state.IndexInProgress = false
		if a.Err != nil {
			return state, a.Err
		}
		if a.Session == nil {
			return state, nil
		}
		r.replaceSession(state, a.Session)
		return state, nil
	}

	return state, nil
}

func (r *StateReducer) replaceSession(state *AppState, sess *Session) {
	anchor := -1
	hadSession := state.Session != nil
	if w := state.Window(); w != nil {
		anchor = w.IndexAtRow(0)
	}
	state.Session.retire()

	state.Session = sess
	if p := state.Display.Perspective; p != "" && !sess.Thread.HasParticipant(p) {
		state.Display.Perspective = ""
	}
	if state.MarkedIndex >= sess.Len() {
		state.MarkedIndex = -1
	}
	state.TransientIndex = -1
	state.attachWindow()
	if anchor >= 0 {
		state.scrollToIndex(anchor, 0)
	}
	if hadSession {
		state.LastReloadTime = r.now()
	}
	state.LastError = nil

	query := state.searchedQuery()
	state.clearSearchResults()
	if query != "" {
		r.triggerSearch(state, query)
	}
	debuglog.Logf(debuglog.TopicLoad, "session attached: %d messages, %d chunks", sess.Len(), sess.Window.ChunkCount())
}

func (s *AppState) attachWindow() {
	w := virtual.NewWindow(s.Session.Len(), s.ChunkSize, s.MarginRows, s.layout())
	w.SetViewportHeight(s.ViewportHeight())
	w.Sync()
	s.Session.Window = w
}

func (s *AppState) layout() virtual.Materializer {
	if s.layoutFactory != nil {
		return s.layoutFactory(s)
	}
	return PlainLayout(s)
}

func (s *AppState) rerender() {
	if w := s.Window(); w != nil {
		w.Rerender()
		w.Sync()
	}
}

func (s *AppState) resizeViewport() {
	if w := s.Window(); w != nil {
		w.SetViewportHeight(s.ViewportHeight())
		w.Sync()
	}
	s.updateSearchScroll()
}

func (s *AppState) pageSize() int {
	if h := s.ViewportHeight() - 1; h > 1 {
		return h
	}
	return 1
}

func (s *AppState) scrollBy(delta int) {
	if w := s.Window(); w != nil {
		w.ScrollBy(delta)
		w.Sync()
	}
}

// scrollToEnd repeats until the estimated heights near the end have been
// replaced by measured ones.
func (s *AppState) scrollToEnd() {
	w := s.Window()
	if w == nil {
		return
	}
	for i := 0; i < 4; i++ {
		w.ScrollToEnd()
		w.Sync()
		if w.ScrollTop() == w.MaxTop() {
			return
		}
	}
}

func (r *StateReducer) handleClick(state *AppState, x, y int) {
	if state.SearchActive {
		first := state.PanelTop() + 1
		if y >= first && y < first+PanelResultRows {
			idx := state.SearchScroll + y - first
			if idx < len(state.DisplayResults()) {
				state.SearchIndex = idx
				state.jumpToSelectedResult()
			}
			return
		}
	}
	row := y - state.ViewportTop()
	if row < 0 || row >= state.ViewportHeight() {
		return
	}
	if w := state.Window(); w != nil {
		if idx := w.IndexAtRow(row); idx >= 0 {
			state.MarkedIndex = idx
		}
	}
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
