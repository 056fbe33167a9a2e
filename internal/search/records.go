package search

import (
	"strings"

	"github.com/kk-code-lab/rchat/internal/debuglog"
	"github.com/kk-code-lab/rchat/internal/transcript"
)

// recordProgressStep is how many messages are flattened between progress
// reports while building records.
const recordProgressStep = 2000

// strictNormalize is swapped out in tests to exercise the fallback path.
var strictNormalize = normalizeStrict

// RecordText joins the searchable parts of a message: text, sender, every
// reaction glyph and actor, then every media reference.
func RecordText(m transcript.Message) string {
	parts := make([]string, 0, 2+2*len(m.Reactions)+len(m.Media))
	parts = append(parts, m.Text, m.Sender)
	for _, r := range m.Reactions {
		parts = append(parts, r.Glyph, r.Actor)
	}
	for _, media := range m.Media {
		if media.URI != "" {
			parts = append(parts, media.URI)
		}
	}
	return strings.Join(parts, " ")
}

// BuildRecords flattens every message into a search record. The returned
// slice is always freshly allocated and indexed like messages. onProgress may
// be nil.
func BuildRecords(messages []transcript.Message, onProgress ProgressFunc) []Record {
	records := make([]Record, len(messages))
	fallbacks := 0
	for i, m := range messages {
		text := RecordText(m)
		normalized, err := strictNormalize(text)
		if err != nil {
			// Only this message loses diacritic folding.
			fallbacks++
			normalized = fallbackNormalize(text)
			debuglog.Logf(debuglog.TopicSearch, "normalize fallback for message %d: %v", m.Index, err)
		}
		records[i] = Record{
			Index:      m.Index,
			Normalized: normalized,
			Sender:     m.Sender,
			Timestamp:  m.Timestamp,
		}
		if onProgress != nil && (i+1)%recordProgressStep == 0 {
			onProgress((i + 1) * 100 / len(messages))
		}
	}
	if onProgress != nil {
		onProgress(100)
	}
	debuglog.Logf(debuglog.TopicSearch, "built %d records (%d fallbacks)", len(records), fallbacks)
	return records
}
