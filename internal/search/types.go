package search

// Record is the flattened, normalized search form of one message. Index ties
// it back to the message it was built from.
type Record struct {
	Index      int
	Normalized string
	Sender     string
	Timestamp  int64
}

// Match is a scored record.
type Match struct {
	Score  int
	Record Record
}

// Range is a half-open [Start, End) interval of rune indexes into an
// original, un-normalized string.
type Range struct {
	Start int
	End   int
}

// ProgressFunc receives completion percentages in the 0..100 range.
type ProgressFunc func(percent int)

func compareMatches(a, b Match) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	switch {
	case a.Record.Index < b.Record.Index:
		return -1
	case a.Record.Index > b.Record.Index:
		return 1
	default:
		return 0
	}
}
