package state

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kk-code-lab/rchat/internal/search"
)

// CleanSearchQuery returns the query without surrounding whitespace.
func (s *AppState) CleanSearchQuery() string {
	return strings.TrimSpace(s.SearchQuery)
}

func (s *AppState) searchedQuery() string {
	return s.pendingQuery
}

// DisplayResults returns the results shown in the panel.
func (s *AppState) DisplayResults() []Match {
	return search.TopK(s.SearchResults, s.TopK)
}

// SelectedResult returns the highlighted result in the panel.
func (s *AppState) SelectedResult() (Match, bool) {
	results := s.DisplayResults()
	if s.SearchIndex < 0 || s.SearchIndex >= len(results) {
		return Match{}, false
	}
	return results[s.SearchIndex], true
}

// SearchStatusLabel describes search or index progress for the status line.
func (s *AppState) SearchStatusLabel() string {
	switch {
	case s.IndexInProgress:
		return fmt.Sprintf("Indexing %d%%", s.IndexProgress)
	case s.SearchInProgress:
		return fmt.Sprintf("Searching %d%%", s.SearchProgress)
	case s.SearchStatus == SearchStatusComplete:
		if len(s.SearchResults) == 1 {
			return "Found 1 match"
		}
		return fmt.Sprintf("Found %d matches", len(s.SearchResults))
	}
	return ""
}

func (s *AppState) queryRunesAndCursor() ([]rune, int) {
	runes := []rune(s.SearchQuery)
	cursor := s.SearchCursorPos
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	return runes, cursor
}

func (s *AppState) insertQueryRune(ch rune) {
	runes, cursor := s.queryRunesAndCursor()
	buffer := make([]rune, 0, len(runes)+1)
	buffer = append(buffer, runes[:cursor]...)
	buffer = append(buffer, ch)
	buffer = append(buffer, runes[cursor:]...)
	s.SearchQuery = string(buffer)
	s.SearchCursorPos = cursor + 1
}

func (s *AppState) deleteQueryRuneBefore() bool {
	runes, cursor := s.queryRunesAndCursor()
	if cursor == 0 {
		return false
	}
	buffer := append([]rune{}, runes[:cursor-1]...)
	buffer = append(buffer, runes[cursor:]...)
	s.SearchQuery = string(buffer)
	s.SearchCursorPos = cursor - 1
	return true
}

func (s *AppState) deleteQueryWordBefore() bool {
	runes, cursor := s.queryRunesAndCursor()
	if cursor == 0 {
		return false
	}
	start := previousWordBoundary(runes, cursor)
	buffer := append([]rune{}, runes[:start]...)
	buffer = append(buffer, runes[cursor:]...)
	s.SearchQuery = string(buffer)
	s.SearchCursorPos = start
	return true
}

func (s *AppState) moveQueryCursor(direction string) {
	runes, cursor := s.queryRunesAndCursor()
	switch direction {
	case "left":
		if cursor > 0 {
			cursor--
		}
	case "right":
		if cursor < len(runes) {
			cursor++
		}
	case "home":
		cursor = 0
	case "end":
		cursor = len(runes)
	}
	s.SearchCursorPos = cursor
}

func isSearchWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func previousWordBoundary(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}

	i := pos - 1
	for i >= 0 && !isSearchWordChar(runes[i]) {
		i--
	}
	for i >= 0 && isSearchWordChar(runes[i]) {
		i--
	}
	return i + 1
}

// queryEdited restarts the debounce timer after every edit.
func (s *AppState) queryEdited() {
	s.debounceSeq++
	s.schedule(s.SearchDebounce, SearchDebounceAction{Seq: s.debounceSeq})
}

func (r *StateReducer) applyDebouncedQuery(state *AppState) {
	query := state.CleanSearchQuery()
	if query == "" {
		state.clearSearchResults()
		state.setLiveQuery("")
		return
	}
	if utf8.RuneCountInString(query) < state.MinAutoRunes {
		state.setLiveQuery("")
		return
	}
	state.setLiveQuery(query)
	if query != state.searchedQuery() {
		r.triggerSearch(state, query)
	}
}

// triggerSearch starts a scan for query on the session's searcher. Callbacks
// carry the search id and are dropped by the reducer once a newer search has
// started.
func (r *StateReducer) triggerSearch(state *AppState, query string) {
	state.SearchID++
	searchID := state.SearchID
	state.pendingQuery = query

	sess := state.Session
	if sess == nil || sess.Searcher == nil || strings.TrimSpace(query) == "" {
		state.SearchInProgress = false
		state.SearchStatus = SearchStatusIdle
		return
	}

	state.SearchInProgress = true
	state.SearchProgress = 0
	state.SearchStatus = SearchStatusSearching

	dispatch := state.dispatchAction
	if dispatch == nil {
		// No event loop to deliver to: scan on the caller's goroutine.
		results, err := sess.Searcher.Search(context.Background(), query, nil)
		if err == nil {
			r.Reduce(state, SearchResultsAction{ID: searchID, Results: results})
		}
		return
	}
	sess.Searcher.SearchAsync(query,
		func(_ int, percent int) {
			dispatch(SearchProgressAction{ID: searchID, Percent: percent})
		},
		func(_ int, results []Match) {
			dispatch(SearchResultsAction{ID: searchID, Results: results})
		},
	)
}

// clearSearchResults forgets results and invalidates any running search.
func (s *AppState) clearSearchResults() {
	s.SearchID++
	if s.Session != nil && s.Session.Searcher != nil {
		s.Session.Searcher.Supersede()
	}
	s.pendingQuery = ""
	s.ResultsQuery = ""
	s.SearchResults = nil
	s.SearchIndex = 0
	s.SearchScroll = 0
	s.SearchInProgress = false
	s.SearchProgress = 0
	s.SearchStatus = SearchStatusIdle
}

// setLiveQuery changes the query highlighted in the transcript and
// re-renders mounted chunks when it differs.
func (s *AppState) setLiveQuery(query string) {
	if s.LiveQuery == query {
		return
	}
	s.LiveQuery = query
	s.rerender()
}

func (s *AppState) updateSearchScroll() {
	visible := PanelResultRows
	results := s.DisplayResults()

	maxScroll := len(results) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.SearchScroll < 0 {
		s.SearchScroll = 0
	}
	if s.SearchScroll > maxScroll {
		s.SearchScroll = maxScroll
	}

	if s.SearchIndex < s.SearchScroll {
		s.SearchScroll = s.SearchIndex
	} else if s.SearchIndex >= s.SearchScroll+visible {
		s.SearchScroll = s.SearchIndex - visible + 1
	}
}

func (s *AppState) jumpToSelectedResult() {
	if result, ok := s.SelectedResult(); ok {
		s.JumpTo(result.Record.Index)
	}
}

// jumpResult jumps to the selected result, or to its neighbour when the
// selection is already marked.
func (s *AppState) jumpResult(delta int) {
	results := s.DisplayResults()
	if len(results) == 0 {
		return
	}
	idx := clampIndex(s.SearchIndex, len(results))
	if results[idx].Record.Index == s.MarkedIndex {
		idx = ((idx+delta)%len(results) + len(results)) % len(results)
	}
	s.SearchIndex = idx
	s.updateSearchScroll()
	s.JumpTo(results[idx].Record.Index)
}
