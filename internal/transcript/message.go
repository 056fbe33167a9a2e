package transcript

import (
	"path"
	"strings"
	"time"
)

// UnknownSender is used when an export omits the sender of a message.
const UnknownSender = "Unknown"

// Media is a reference to an attachment as written in the export. The
// reference is kept verbatim; resolving it to a file is left to the caller.
type Media struct {
	URI string
}

// Name returns the last path element of the reference without query string.
func (m Media) Name() string {
	uri := m.URI
	if idx := strings.IndexByte(uri, '?'); idx >= 0 {
		uri = uri[:idx]
	}
	uri = strings.ReplaceAll(uri, "\\", "/")
	return path.Base(uri)
}

// Kind guesses the media kind from the file extension.
func (m Media) Kind() string {
	if strings.HasPrefix(m.URI, "data:") {
		switch {
		case strings.Contains(m.URI, "image/"):
			return "image"
		case strings.Contains(m.URI, "video/"):
			return "video"
		case strings.Contains(m.URI, "audio/"):
			return "audio"
		}
		return "unknown"
	}
	name := strings.ToLower(m.Name())
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return "unknown"
	}
	switch name[dot+1:] {
	case "jpg", "jpeg", "png", "gif", "webp":
		return "image"
	case "mp4", "webm", "ogg":
		return "video"
	case "mp3", "wav", "aac":
		return "audio"
	default:
		return "file"
	}
}

// Reaction is a single participant's reaction to a message.
type Reaction struct {
	Glyph string
	Actor string
}

// Message is one entry of a transcript. Index is the message's permanent
// position in transcript order and never changes once the thread is loaded.
type Message struct {
	Index     int
	Sender    string
	Text      string
	Timestamp int64 // milliseconds since the Unix epoch, 0 when unknown
	Media     []Media
	Reactions []Reaction
}

// Time converts the millisecond timestamp. The zero time is returned when
// the export carried no timestamp.
func (m Message) Time() time.Time {
	if m.Timestamp <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Timestamp)
}

// ReactionCount is an aggregated reaction glyph.
type ReactionCount struct {
	Glyph string
	Count int
}

// ReactionSummary groups reactions by glyph in first-seen order.
func (m Message) ReactionSummary() []ReactionCount {
	if len(m.Reactions) == 0 {
		return nil
	}
	var out []ReactionCount
	pos := make(map[string]int)
	for _, r := range m.Reactions {
		glyph := strings.TrimSpace(r.Glyph)
		if glyph == "" {
			continue
		}
		if idx, ok := pos[glyph]; ok {
			out[idx].Count++
			continue
		}
		pos[glyph] = len(out)
		out = append(out, ReactionCount{Glyph: glyph, Count: 1})
	}
	return out
}

// Thread is a loaded transcript.
type Thread struct {
	Title        string
	Participants []string
	Messages     []Message
	Source       string
}

// Len returns the number of messages.
func (t *Thread) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Messages)
}

// Message returns the message at index, or false when out of range.
func (t *Thread) Message(index int) (Message, bool) {
	if t == nil || index < 0 || index >= len(t.Messages) {
		return Message{}, false
	}
	return t.Messages[index], true
}

// HasParticipant reports whether name is one of the thread's participants.
func (t *Thread) HasParticipant(name string) bool {
	if t == nil {
		return false
	}
	for _, p := range t.Participants {
		if p == name {
			return true
		}
	}
	return false
}
