package search

import (
	"context"
	"sync"
)

// Searcher owns the records of one transcript and the search generation.
// Every SearchAsync call supersedes the previous one; callbacks from a
// superseded search are dropped.
type Searcher struct {
	records   []Record
	scheduler Scheduler

	tokenMu sync.Mutex
	token   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSearcher returns a searcher over records. The slice is owned by the
// searcher from now on.
func NewSearcher(records []Record, scheduler Scheduler) *Searcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		records:   records,
		scheduler: scheduler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Generation returns the token of the most recent search.
func (s *Searcher) Generation() int {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.token
}

// IsCurrent reports whether token belongs to the most recent search.
func (s *Searcher) IsCurrent(token int) bool {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.token == token
}

// Supersede invalidates any running search without starting a new one and
// returns the new generation.
func (s *Searcher) Supersede() int {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	s.token++
	return s.token
}

// SearchAsync starts a scan for query on its own goroutine and returns its
// token. onProgress and onDone run on that goroutine and only while the
// token is still current; either may be nil.
func (s *Searcher) SearchAsync(query string, onProgress func(token, percent int), onDone func(token int, results []Match)) int {
	token := s.Supersede()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		progress := func(p int) {
			if onProgress != nil && s.IsCurrent(token) {
				onProgress(token, p)
			}
		}
		results, err := s.scheduler.Run(s.ctx, query, s.records, progress)
		if err != nil {
			return
		}
		if !s.IsCurrent(token) {
			return
		}
		if onDone != nil {
			onDone(token, results)
		}
	}()
	return token
}

// Search runs a scan synchronously on the caller's goroutine. It does not
// touch the generation.
func (s *Searcher) Search(ctx context.Context, query string, onProgress ProgressFunc) ([]Match, error) {
	return s.scheduler.Run(ctx, query, s.records, onProgress)
}

// Close stops running scans at their next batch boundary and waits for them.
func (s *Searcher) Close() {
	s.Supersede()
	s.cancel()
	s.wg.Wait()
}
