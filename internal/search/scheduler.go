package search

import (
	"context"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/kk-code-lab/rchat/internal/debuglog"
)

// DefaultBatchSize bounds how many records are scored between yields.
const DefaultBatchSize = 500

// Scheduler scores records in fixed-size batches, reporting progress after
// each batch and yielding before starting the next one.
type Scheduler struct {
	BatchSize int
	// Yield runs between batches. Defaults to runtime.Gosched.
	Yield func()
}

func (s Scheduler) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

// Run scans records for query and returns every match with a positive score,
// best first and by ascending message index on equal scores. An empty or
// whitespace-only query returns no results without scoring anything.
//
// ctx is checked between batches and is meant for shutdown only; superseded
// searches are expected to run to completion and have their output dropped
// by the caller.
func (s Scheduler) Run(ctx context.Context, query string, records []Record, onProgress ProgressFunc) ([]Match, error) {
	normalizedQuery := Normalize(query)
	if normalizedQuery == "" {
		return nil, nil
	}
	if len(records) == 0 {
		if onProgress != nil {
			onProgress(batchPercent(0, 0))
		}
		return nil, nil
	}

	yield := s.Yield
	if yield == nil {
		yield = runtime.Gosched
	}
	batch := s.batchSize()
	started := time.Now()

	var results []Match
	for i := 0; i < len(records); i += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := i + batch
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[i:end] {
			if score := Score(normalizedQuery, rec.Normalized); score > 0 {
				results = append(results, Match{Score: score, Record: rec})
			}
		}
		if onProgress != nil {
			onProgress(batchPercent(i+batch, len(records)))
		}
		yield()
	}

	slices.SortStableFunc(results, compareMatches)
	debuglog.Logf(debuglog.TopicSearch, "query=%q records=%d matches=%d took=%s", normalizedQuery, len(records), len(results), time.Since(started))
	return results, nil
}

func batchPercent(done, total int) int {
	if total <= 0 {
		return 100
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}

// TopK returns at most k leading matches. The input is not copied.
func TopK(matches []Match, k int) []Match {
	if k <= 0 || len(matches) <= k {
		return matches
	}
	return matches[:k]
}
