package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kk-code-lab/rchat/internal/debuglog"
)

var (
	// ErrUnsupportedFormat is returned for exports rchat cannot read, such as
	// the rendered HTML variant of the Messenger export.
	ErrUnsupportedFormat = errors.New("unsupported transcript format")
	// ErrEmptyTranscript is returned when a file holds no message list at all.
	ErrEmptyTranscript = errors.New("transcript has no messages field")
)

// Load reads and parses a transcript export from path.
func Load(path string) (*Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read transcript %s: %w", path, err)
	}
	thread, err := Parse(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("cannot parse transcript %s: %w", path, err)
	}
	thread.Source = path
	return thread, nil
}

// Parse decodes an export. name is only used for format sniffing and the
// fallback title.
func Parse(data []byte, name string) (*Thread, error) {
	data = normalizeContent(data)
	trimmed := bytes.TrimSpace(data)
	if looksLikeHTML(trimmed, name) {
		return nil, fmt.Errorf("%w: rendered HTML export", ErrUnsupportedFormat)
	}

	var raw rawExport
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if raw.Messages == nil {
		return nil, ErrEmptyTranscript
	}

	// Exports that carry thread_path list messages newest first and escape
	// every UTF-8 byte separately.
	legacy := raw.ThreadPath != ""
	fix := func(s string) string { return s }
	if legacy {
		fix = repairMojibake
	}

	thread := &Thread{
		Title: firstNonEmpty(fix(string(raw.ThreadName)), fix(string(raw.Title)), string(raw.ThreadPathCamel), string(raw.ThreadPath), strings.TrimSuffix(name, filepath.Ext(name)), "Untitled"),
	}

	messages := make([]Message, 0, len(raw.Messages))
	for _, rm := range raw.Messages {
		messages = append(messages, rm.toMessage(fix))
	}
	if legacy {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	for i := range messages {
		messages[i].Index = i
	}
	thread.Messages = messages

	seen := make(map[string]bool)
	for _, p := range raw.Participants {
		name := strings.TrimSpace(fix(p.Name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		thread.Participants = append(thread.Participants, name)
	}
	for _, m := range messages {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			thread.Participants = append(thread.Participants, m.Sender)
		}
	}

	debuglog.Logf(debuglog.TopicLoad, "parsed %s: %d messages, %d participants, legacy=%v", name, len(messages), len(thread.Participants), legacy)
	return thread, nil
}

func looksLikeHTML(trimmed []byte, name string) bool {
	if strings.HasSuffix(strings.ToLower(name), ".html") || strings.HasSuffix(strings.ToLower(name), ".htm") {
		return true
	}
	head := trimmed
	if len(head) > 64 {
		head = head[:64]
	}
	lower := bytes.ToLower(head)
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type rawExport struct {
	Participants    []rawParticipant `json:"participants"`
	Messages        []rawMessage     `json:"messages"`
	Title           lenientString    `json:"title"`
	ThreadName      lenientString    `json:"threadName"`
	ThreadPath      lenientString    `json:"thread_path"`
	ThreadPathCamel lenientString    `json:"threadPath"`
}

type rawParticipant struct {
	Name string
}

func (p *rawParticipant) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		return nil
	}
	var obj struct {
		Name lenientString `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	p.Name = string(obj.Name)
	return nil
}

type rawMedia struct {
	URI lenientString `json:"uri"`
}

type rawReaction struct {
	Reaction lenientString `json:"reaction"`
	Actor    lenientString `json:"actor"`
}

type rawMessage struct {
	SenderName      lenientString `json:"sender_name"`
	SenderNameCamel lenientString `json:"senderName"`
	Text            lenientString `json:"text"`
	Content         lenientString `json:"content"`
	TimestampMS     lenientInt    `json:"timestamp_ms"`
	Timestamp       lenientInt    `json:"timestamp"`
	Media           []rawMedia    `json:"media"`
	Photos          []rawMedia    `json:"photos"`
	Videos          []rawMedia    `json:"videos"`
	Audio           []rawMedia    `json:"audio"`
	AudioFiles      []rawMedia    `json:"audio_files"`
	Gifs            []rawMedia    `json:"gifs"`
	Files           []rawMedia    `json:"files"`
	Reactions       []rawReaction `json:"reactions"`
}

func (rm rawMessage) toMessage(fix func(string) string) Message {
	sender := firstNonEmpty(fix(string(rm.SenderNameCamel)), fix(string(rm.SenderName)), UnknownSender)
	text := string(rm.Text)
	if text == "" {
		text = string(rm.Content)
	}
	ts := int64(rm.Timestamp)
	if ts == 0 {
		ts = int64(rm.TimestampMS)
	}

	msg := Message{
		Sender:    sender,
		Text:      fix(text),
		Timestamp: ts,
	}
	for _, group := range [][]rawMedia{rm.Media, rm.Photos, rm.Videos, rm.Audio, rm.AudioFiles, rm.Gifs, rm.Files} {
		for _, item := range group {
			if uri := string(item.URI); uri != "" {
				msg.Media = append(msg.Media, Media{URI: fix(uri)})
			}
		}
	}
	for _, r := range rm.Reactions {
		msg.Reactions = append(msg.Reactions, Reaction{Glyph: fix(string(r.Reaction)), Actor: fix(string(r.Actor))})
	}
	return msg
}

// lenientString accepts any JSON value; non-strings decode to "".
type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = lenientString(v)
	return nil
}

// lenientInt accepts numbers and numeric strings; anything else decodes to 0.
type lenientInt int64

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		*n = 0
		return nil
	}
	if v, err := num.Int64(); err == nil {
		*n = lenientInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(num.String(), 64); err == nil {
		*n = lenientInt(int64(f))
		return nil
	}
	*n = 0
	return nil
}
