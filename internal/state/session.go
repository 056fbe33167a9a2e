package state

import (
	"github.com/kk-code-lab/rchat/internal/search"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

// Session bundles everything derived from one loaded transcript. A new
// transcript always produces a new Session; nothing is merged across them.
type Session struct {
	Thread   *transcript.Thread
	Records  []search.Record
	Searcher *search.Searcher
	Stats    transcript.Stats
	Window   *virtual.Window
}

// NewSession builds the search records for thread. It does not attach a
// window; the reducer does that once the session reaches the state.
// onProgress may be nil.
func NewSession(thread *transcript.Thread, batchSize int, onProgress search.ProgressFunc) *Session {
	records := search.BuildRecords(thread.Messages, onProgress)
	return &Session{
		Thread:   thread,
		Records:  records,
		Searcher: search.NewSearcher(records, search.Scheduler{BatchSize: batchSize}),
		Stats:    transcript.ComputeStats(thread),
	}
}

// Len returns the number of messages.
func (s *Session) Len() int {
	if s == nil || s.Thread == nil {
		return 0
	}
	return s.Thread.Len()
}

// retire drops every pending callback of the session's searcher and shuts it
// down without blocking the caller.
func (s *Session) retire() {
	if s == nil || s.Searcher == nil {
		return
	}
	s.Searcher.Supersede()
	go s.Searcher.Close()
}
