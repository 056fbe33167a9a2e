package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

func TestParseModernExport(t *testing.T) {
	data := []byte(`{
		"participants": ["Ana", {"name": "Bob"}],
		"threadName": "Trip planning",
		"messages": [
			{"senderName": "Ana", "text": "héllo there", "timestamp": 1700000000000,
			 "reactions": [{"reaction": "👍", "actor": "Bob"}]},
			{"senderName": "Bob", "text": 42, "timestamp": "1700000001000",
			 "photos": [{"uri": "photos/IMG_1.jpg"}], "media": [{"uri": ""}]}
		]
	}`)

	thread, err := Parse(data, "export.json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if thread.Title != "Trip planning" {
		t.Errorf("expected title %q, got %q", "Trip planning", thread.Title)
	}
	if len(thread.Participants) != 2 || thread.Participants[0] != "Ana" || thread.Participants[1] != "Bob" {
		t.Fatalf("unexpected participants %v", thread.Participants)
	}
	if thread.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", thread.Len())
	}

	first := thread.Messages[0]
	if first.Index != 0 || first.Text != "héllo there" || first.Timestamp != 1700000000000 {
		t.Errorf("unexpected first message %+v", first)
	}
	if len(first.Reactions) != 1 || first.Reactions[0].Actor != "Bob" {
		t.Errorf("expected one reaction by Bob, got %+v", first.Reactions)
	}

	second := thread.Messages[1]
	if second.Text != "" {
		t.Errorf("non-string text should degrade to empty, got %q", second.Text)
	}
	if second.Timestamp != 1700000001000 {
		t.Errorf("numeric string timestamp not parsed, got %d", second.Timestamp)
	}
	if len(second.Media) != 1 || second.Media[0].URI != "photos/IMG_1.jpg" {
		t.Errorf("expected single non-empty media reference, got %+v", second.Media)
	}
}

func TestParseLegacyExportRepairsEncodingAndReverses(t *testing.T) {
	// "é" is C3 A9 in UTF-8; legacy exports escape each byte separately.
	data := []byte(`{
		"participants": [{"name": "Ren\u00c3\u00a9"}],
		"thread_path": "inbox/rene_123",
		"title": "Ren\u00c3\u00a9",
		"messages": [
			{"sender_name": "Ren\u00c3\u00a9", "content": "second", "timestamp_ms": 2000},
			{"sender_name": "Ren\u00c3\u00a9", "content": "caf\u00c3\u00a9", "timestamp_ms": 1000}
		]
	}`)

	thread, err := Parse(data, "message_1.json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if thread.Title != "René" {
		t.Errorf("expected repaired title, got %q", thread.Title)
	}
	if thread.Messages[0].Text != "café" || thread.Messages[0].Index != 0 {
		t.Errorf("expected oldest message first with repaired text, got %+v", thread.Messages[0])
	}
	if thread.Messages[1].Text != "second" || thread.Messages[1].Index != 1 {
		t.Errorf("unexpected second message %+v", thread.Messages[1])
	}
	if thread.Messages[0].Sender != "René" {
		t.Errorf("expected repaired sender, got %q", thread.Messages[0].Sender)
	}
}

func TestParseRejectsHTMLExport(t *testing.T) {
	_, err := Parse([]byte("<!DOCTYPE html><html><body></body></html>"), "message_1.html")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseMissingMessages(t *testing.T) {
	_, err := Parse([]byte(`{"participants": []}`), "x.json")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestParseDerivesParticipantsAndUnknownSender(t *testing.T) {
	thread, err := Parse([]byte(`{"messages": [{"text": "hi"}, {"sender_name": "Zoe", "text": "yo"}]}`), "chat.json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if thread.Messages[0].Sender != UnknownSender {
		t.Errorf("expected unknown sender fallback, got %q", thread.Messages[0].Sender)
	}
	if len(thread.Participants) != 2 || thread.Participants[1] != "Zoe" {
		t.Errorf("expected participants derived from senders, got %v", thread.Participants)
	}
	if thread.Title != "chat" {
		t.Errorf("expected title from file name, got %q", thread.Title)
	}
}

func TestLoadUTF16File(t *testing.T) {
	payload := `{"messages": [{"senderName": "Ana", "text": "żółw"}]}`
	units := utf16.Encode([]rune(payload))
	buf := []byte{0xFF, 0xFE}
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	path := filepath.Join(t.TempDir(), "utf16.json")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	thread, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if thread.Source != path {
		t.Errorf("expected source %q, got %q", path, thread.Source)
	}
	if thread.Messages[0].Text != "żółw" {
		t.Errorf("expected decoded text, got %q", thread.Messages[0].Text)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestRepairMojibakeLeavesRealUnicodeAlone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"café", "café"}, // é alone is not valid UTF-8 once re-encoded
		{"żółw", "żółw"}, // runes above latin-1
		{"caf\u00c3\u00a9", "café"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := repairMojibake(tt.in); got != tt.want {
			t.Errorf("repairMojibake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComputeStats(t *testing.T) {
	thread := &Thread{Messages: []Message{
		{Sender: "Ana", Text: "one two three"},
		{Sender: "Bob", Text: "hi"},
		{Sender: "Ana", Text: "four"},
		{Sender: "Cy", Text: ""},
	}}
	stats := ComputeStats(thread)
	if stats.Total != 4 {
		t.Fatalf("expected total 4, got %d", stats.Total)
	}
	if stats.Participants[0].Name != "Ana" || stats.Participants[0].Count != 2 {
		t.Fatalf("expected Ana first with 2 messages, got %+v", stats.Participants[0])
	}
	if stats.Participants[0].Percent != 50 || stats.Participants[0].AvgWords != 2 {
		t.Errorf("unexpected Ana stats %+v", stats.Participants[0])
	}
	if stats.Participants[1].Name != "Bob" || stats.Participants[2].Name != "Cy" {
		t.Errorf("ties should sort by name, got %+v", stats.Participants)
	}
	if got := ComputeStats(&Thread{}); got.Total != 0 || got.Participants != nil {
		t.Errorf("empty thread should produce zero stats, got %+v", got)
	}
}

func TestMediaKindAndName(t *testing.T) {
	tests := []struct {
		uri  string
		name string
		kind string
	}{
		{"messages/inbox/photos/IMG_01.JPG?x=1", "IMG_01.JPG", "image"},
		{`C:\export\videos\clip.mp4`, "clip.mp4", "video"},
		{"audio/voice.aac", "voice.aac", "audio"},
		{"files/report.pdf", "report.pdf", "file"},
		{"data:image/png;base64,AAAA", "", "image"},
	}
	for _, tt := range tests {
		m := Media{URI: tt.uri}
		if tt.name != "" && m.Name() != tt.name {
			t.Errorf("Name(%q) = %q, want %q", tt.uri, m.Name(), tt.name)
		}
		if m.Kind() != tt.kind {
			t.Errorf("Kind(%q) = %q, want %q", tt.uri, m.Kind(), tt.kind)
		}
	}
}

func TestReactionSummary(t *testing.T) {
	msg := Message{Reactions: []Reaction{{Glyph: "👍", Actor: "a"}, {Glyph: "❤", Actor: "b"}, {Glyph: "👍", Actor: "c"}, {Glyph: " "}}}
	summary := msg.ReactionSummary()
	if len(summary) != 2 || summary[0].Glyph != "👍" || summary[0].Count != 2 || summary[1].Count != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
