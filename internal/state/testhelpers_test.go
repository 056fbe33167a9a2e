package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/kk-code-lab/rchat/internal/config"
	"github.com/kk-code-lab/rchat/internal/transcript"
)

type scheduledAction struct {
	delay  time.Duration
	action Action
}

func makeThread(n int) *transcript.Thread {
	thread := &transcript.Thread{Title: "test", Participants: []string{"Ana", "Bob"}}
	for i := 0; i < n; i++ {
		sender := "Ana"
		if i%2 == 1 {
			sender = "Bob"
		}
		thread.Messages = append(thread.Messages, transcript.Message{
			Index:     i,
			Sender:    sender,
			Text:      fmt.Sprintf("message %d", i),
			Timestamp: int64(1700000000000 + i*1000),
		})
	}
	return thread
}

// newTestState returns an 80x24 state with thread attached through the
// reducer, a synchronous search path and captured timers.
func newTestState(t *testing.T, thread *transcript.Thread, tweak func(*AppState)) (*AppState, *StateReducer, *[]scheduledAction) {
	t.Helper()
	state := NewAppState(config.Default())
	state.MarginRows = 0
	if tweak != nil {
		tweak(state)
	}
	scheduled := &[]scheduledAction{}
	state.SetScheduler(func(d time.Duration, a Action) {
		*scheduled = append(*scheduled, scheduledAction{delay: d, action: a})
	})
	reducer := NewStateReducer()
	mustReduce(t, reducer, state, ResizeAction{Width: 80, Height: 24})
	mustReduce(t, reducer, state, SessionReadyAction{Session: NewSession(thread, 500, nil)})
	t.Cleanup(func() { state.Session.Searcher.Close() })
	return state, reducer, scheduled
}

func mustReduce(t *testing.T, r *StateReducer, state *AppState, action Action) {
	t.Helper()
	if _, err := r.Reduce(state, action); err != nil {
		t.Fatalf("Reduce(%T) returned error: %v", action, err)
	}
}

func typeQuery(t *testing.T, r *StateReducer, state *AppState, query string) {
	t.Helper()
	for _, ch := range query {
		mustReduce(t, r, state, SearchCharAction{Char: ch})
	}
}

func lastDebounce(t *testing.T, scheduled []scheduledAction) SearchDebounceAction {
	t.Helper()
	for i := len(scheduled) - 1; i >= 0; i-- {
		if a, ok := scheduled[i].action.(SearchDebounceAction); ok {
			return a
		}
	}
	t.Fatalf("no debounce action scheduled")
	return SearchDebounceAction{}
}
