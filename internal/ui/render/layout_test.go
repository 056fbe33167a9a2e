package render

import (
	"slices"
	"testing"

	"github.com/kk-code-lab/rchat/internal/config"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

func lineTexts(lines []virtual.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text())
	}
	return out
}

func TestWrapRuns(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"breaks on space", "hello brave new world", 11, []string{"hello brave", "new world"}},
		{"moves last word down", "ab cdefg", 5, []string{"ab", "cdefg"}},
		{"splits long word", "abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"keeps newlines", "a\nb", 5, []string{"a", "b"}},
		{"empty text", "", 5, []string{""}},
		{"sanitizes control runes", "a\x1bb", 5, []string{"a?b"}},
		{"carried word leaves room for a wide label", "a bcdef\u200b", 10, []string{"a", "bcdef", "⟪ZWSP⟫"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineTexts(wrapRuns([]virtual.Run{{Text: tt.text}}, tt.width))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("wrapRuns(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapRunsKeepsRunKinds(t *testing.T) {
	lines := wrapRuns([]virtual.Run{{Text: "he"}, {Text: "llo", Kind: virtual.RunMatch}, {Text: " you"}}, 20)
	if len(lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(lines))
	}
	want := []virtual.Run{{Text: "he"}, {Text: "llo", Kind: virtual.RunMatch}, {Text: " you"}}
	if !slices.Equal(lines[0].Runs, want) {
		t.Fatalf("unexpected runs %+v", lines[0].Runs)
	}
}

func TestAlignRight(t *testing.T) {
	lines := []virtual.Line{{Runs: []virtual.Run{{Text: "abc"}}}, {Runs: []virtual.Run{{Text: "你好"}}}}
	alignRight(lines, 10)
	if lines[0].Indent != 7 || lines[1].Indent != 6 {
		t.Fatalf("unexpected indents %d, %d", lines[0].Indent, lines[1].Indent)
	}
}

func newLayoutState(t *testing.T, thread *transcript.Thread) *statepkg.AppState {
	t.Helper()
	state := statepkg.NewAppState(config.Default())
	state.ScreenWidth = 40
	state.Session = statepkg.NewSession(thread, 500, nil)
	t.Cleanup(func() { state.Session.Searcher.Close() })
	return state
}

func TestMessageLayoutPerspectiveAndToggles(t *testing.T) {
	state := newLayoutState(t, makeThread(2))
	state.Display = statepkg.DisplayOptions{TheirName: true, Reactions: true, Perspective: "Ana"}

	blocks := NewMessageLayout(state).Materialize(0, 2)
	if len(blocks) != 2 || blocks[0].Index != 0 || blocks[1].Index != 1 {
		t.Fatalf("unexpected blocks %+v", blocks)
	}

	mine := blocks[0]
	if got := lineTexts(mine.Lines); !slices.Equal(got, []string{"message 0", ""}) {
		t.Fatalf("own message without name or time, got %q", got)
	}
	if want := 38 - len("message 0"); mine.Lines[0].Indent != want {
		t.Fatalf("own message should be right aligned with indent %d, got %d", want, mine.Lines[0].Indent)
	}

	theirs := blocks[1]
	if got := lineTexts(theirs.Lines); !slices.Equal(got, []string{"Bob", "message 1", ""}) {
		t.Fatalf("unexpected lines for other sender %q", got)
	}
	if theirs.Lines[0].Runs[0].Kind != virtual.RunSender || theirs.Lines[1].Indent != 0 {
		t.Fatalf("expected left aligned sender header, got %+v", theirs.Lines)
	}
}

func TestMessageLayoutLiveQueryHighlights(t *testing.T) {
	state := newLayoutState(t, makeThread(1))
	state.Display = statepkg.DisplayOptions{}
	state.LiveQuery = "MESSAGE"

	blocks := NewMessageLayout(state).Materialize(0, 1)
	runs := blocks[0].Lines[0].Runs
	want := []virtual.Run{{Text: "message", Kind: virtual.RunMatch}, {Text: " 0"}}
	if !slices.Equal(runs, want) {
		t.Fatalf("expected highlighted runs %+v, got %+v", want, runs)
	}
}

func TestMessageLayoutMediaAndReactions(t *testing.T) {
	thread := &transcript.Thread{Messages: []transcript.Message{{
		Sender: "Ana",
		Media:  []transcript.Media{{URI: "photos/cat.jpg"}},
		Reactions: []transcript.Reaction{
			{Glyph: "👍", Actor: "Bob"},
			{Glyph: "👍", Actor: "Cy"},
		},
	}, {
		Sender: "Bob",
	}}}
	for i := range thread.Messages {
		thread.Messages[i].Index = i
	}
	state := newLayoutState(t, thread)
	state.Display = statepkg.DisplayOptions{Reactions: true}

	blocks := NewMessageLayout(state).Materialize(0, 2)
	got := lineTexts(blocks[0].Lines)
	if !slices.Equal(got, []string{"[image: cat.jpg]", "👍 2", ""}) {
		t.Fatalf("unexpected media block %q", got)
	}
	if blocks[0].Lines[0].Runs[0].Kind != virtual.RunMedia || blocks[0].Lines[1].Runs[0].Kind != virtual.RunReaction {
		t.Fatalf("unexpected run kinds %+v", blocks[0].Lines)
	}
	if got := lineTexts(blocks[1].Lines); !slices.Equal(got, []string{"(no content)", ""}) {
		t.Fatalf("empty message should get a placeholder line, got %q", got)
	}

	state.Display.Reactions = false
	blocks = NewMessageLayout(state).Materialize(0, 1)
	if got := lineTexts(blocks[0].Lines); !slices.Equal(got, []string{"[image: cat.jpg]", ""}) {
		t.Fatalf("reactions should be hidden when toggled off, got %q", got)
	}
}

func TestMessageLayoutOutOfRange(t *testing.T) {
	state := newLayoutState(t, makeThread(3))
	if blocks := NewMessageLayout(state).Materialize(2, 10); len(blocks) != 1 || blocks[0].Index != 2 {
		t.Fatalf("expected materialize to stop at the end of the thread, got %+v", blocks)
	}
	if blocks := NewMessageLayout(state).Materialize(5, 3); blocks != nil {
		t.Fatalf("expected nil for an empty range, got %+v", blocks)
	}
}
