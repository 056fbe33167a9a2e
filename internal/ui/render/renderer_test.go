package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rchat/internal/config"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	"github.com/kk-code-lab/rchat/internal/transcript"
)

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

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	t.Cleanup(func() {
		screen.Fini()
	})
	screen.SetSize(80, 24)
	return screen
}

func newRenderState(t *testing.T, thread *transcript.Thread) (*statepkg.AppState, *statepkg.StateReducer) {
	t.Helper()
	state := statepkg.NewAppState(config.Default())
	state.SetLayoutFactory(NewMessageLayout)
	reducer := statepkg.NewStateReducer()
	reduce(t, reducer, state, statepkg.ResizeAction{Width: 80, Height: 24})
	reduce(t, reducer, state, statepkg.SessionReadyAction{Session: statepkg.NewSession(thread, 500, nil)})
	t.Cleanup(func() { state.Session.Searcher.Close() })
	return state, reducer
}

func reduce(t *testing.T, r *statepkg.StateReducer, state *statepkg.AppState, action statepkg.Action) {
	t.Helper()
	if _, err := r.Reduce(state, action); err != nil {
		t.Fatalf("Reduce(%T) returned error: %v", action, err)
	}
}

func screenRow(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return b.String()
}

func screenCell(screen tcell.SimulationScreen, x, y int) tcell.SimCell {
	cells, w, _ := screen.GetContents()
	return cells[y*w+x]
}

func findRow(screen tcell.SimulationScreen, from int, substr string) int {
	_, _, h := screen.GetContents()
	for y := from; y < h; y++ {
		if strings.Contains(screenRow(screen, y), substr) {
			return y
		}
	}
	return -1
}

func TestTruncateTextToWidth(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{
			name:   "fits without truncation",
			text:   "Trip planning",
			width:  20,
			expect: "Trip planning",
		},
		{
			name:   "adds ellipsis when needed",
			text:   "verylongname",
			width:  6,
			expect: "veryl…",
		},
		{
			name:   "only ellipsis when width too small",
			text:   "example",
			width:  1,
			expect: "…",
		},
		{
			name:   "multi-byte characters respected",
			text:   "你好世界",
			width:  5,
			expect: "你好…",
		},
		{
			name:   "returns empty when width is zero",
			text:   "anything",
			width:  0,
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := r.truncateTextToWidth(tt.text, tt.width)
			if actual != tt.expect {
				t.Fatalf("expected %q, got %q (width %d)", tt.expect, actual, tt.width)
			}
		})
	}
}

func TestMeasureTextWidth(t *testing.T) {
	r := NewRenderer(nil)

	if got := r.measureTextWidth("abc"); got != 3 {
		t.Fatalf("expected ASCII width 3, got %d", got)
	}

	if got := r.measureTextWidth("你好"); got != 4 {
		t.Fatalf("expected wide rune width 4, got %d", got)
	}
}

func TestRenderDrawsHeaderTranscriptAndStatus(t *testing.T) {
	screen := newTestScreen(t)
	state, _ := newRenderState(t, makeThread(3))

	NewRenderer(screen).Render(state)

	if row := screenRow(screen, 0); !strings.HasPrefix(row, "rchat test") || !strings.Contains(row, "3 messages") {
		t.Fatalf("unexpected header row %q", row)
	}
	if row := screenRow(screen, 1); !strings.Contains(row, "Ana 2 (67%") || !strings.Contains(row, "Bob 1 (33%") {
		t.Fatalf("expected participant stats, got %q", row)
	}
	if row := screenRow(screen, state.ViewportTop()); !strings.HasPrefix(row, "  Ana") {
		t.Fatalf("expected sender header in first transcript row, got %q", row)
	}
	if row := screenRow(screen, state.ViewportTop()+1); !strings.HasPrefix(row, "  message 0") {
		t.Fatalf("expected message text below the header, got %q", row)
	}
	if row := screenRow(screen, 23); !strings.Contains(row, "q: quit") {
		t.Fatalf("expected key hints in status line, got %q", row)
	}
}

func TestRenderMarksJumpTarget(t *testing.T) {
	screen := newTestScreen(t)
	state, reducer := newRenderState(t, makeThread(3))
	reduce(t, reducer, state, statepkg.JumpToAction{Index: 1})

	NewRenderer(screen).Render(state)

	y := findRow(screen, state.ViewportTop(), "Bob")
	if y < 0 {
		t.Fatalf("jump target not on screen")
	}
	cell := screenCell(screen, 0, y)
	if len(cell.Runes) == 0 || cell.Runes[0] != '▶' {
		t.Fatalf("expected marker in gutter of row %d, got %q", y, screenRow(screen, y))
	}
	_, bg, _ := cell.Style.Decompose()
	if bg != GetColorTheme().TransientBg {
		t.Fatalf("expected transient background on jump target, got %v", bg)
	}
}

func TestRenderSearchPanel(t *testing.T) {
	screen := newTestScreen(t)
	state, reducer := newRenderState(t, makeThread(3))
	reduce(t, reducer, state, statepkg.SearchStartAction{})
	for _, ch := range "message 1" {
		reduce(t, reducer, state, statepkg.SearchCharAction{Char: ch})
	}
	reduce(t, reducer, state, statepkg.SearchSubmitAction{})

	NewRenderer(screen).Render(state)

	panelTop := state.PanelTop()
	if row := screenRow(screen, panelTop); !strings.HasPrefix(row, "/ message 1") {
		t.Fatalf("expected query input at panel top, got %q", row)
	}
	first := screenRow(screen, panelTop+1)
	if !strings.HasPrefix(first, "▶") || !strings.Contains(first, "Bob") || !strings.Contains(first, "message 1") {
		t.Fatalf("expected best result selected first, got %q", first)
	}
	if row := screenRow(screen, 23); !strings.Contains(row, "Found") {
		t.Fatalf("expected result count in status line, got %q", row)
	}
}

func TestRenderEmptySearchPanelPlaceholder(t *testing.T) {
	screen := newTestScreen(t)
	state, reducer := newRenderState(t, makeThread(3))
	reduce(t, reducer, state, statepkg.SearchStartAction{})

	NewRenderer(screen).Render(state)

	if row := screenRow(screen, state.PanelTop()); !strings.Contains(row, "(type to search messages)") {
		t.Fatalf("expected placeholder in empty query input, got %q", row)
	}
}

func TestRenderStatusLineShowsError(t *testing.T) {
	screen := newTestScreen(t)
	state, _ := newRenderState(t, makeThread(3))
	state.LastError = errors.New("cannot read transcript")

	NewRenderer(screen).Render(state)

	if row := screenRow(screen, 23); !strings.HasPrefix(row, "error: cannot read transcript") {
		t.Fatalf("expected error in status line, got %q", row)
	}
}

func TestRenderStatusLineFlashesAfterYank(t *testing.T) {
	screen := newTestScreen(t)
	state, _ := newRenderState(t, makeThread(3))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state.LastYankTime = now.Add(-50 * time.Millisecond)

	r := NewRenderer(screen)
	r.now = func() time.Time { return now }
	r.Render(state)

	_, bg, _ := screenCell(screen, 0, 23).Style.Decompose()
	if bg != tcell.ColorGreen {
		t.Fatalf("expected flash background, got %v", bg)
	}

	r.now = func() time.Time { return now.Add(time.Second) }
	r.Render(state)
	if _, bg, _ := screenCell(screen, 0, 23).Style.Decompose(); bg == tcell.ColorGreen {
		t.Fatalf("flash should end after 100ms")
	}
}

func TestRenderReloadNotice(t *testing.T) {
	screen := newTestScreen(t)
	state, _ := newRenderState(t, makeThread(3))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state.LastReloadTime = now.Add(-2 * time.Second)

	r := NewRenderer(screen)
	r.now = func() time.Time { return now }
	r.Render(state)

	if row := screenRow(screen, 23); !strings.Contains(row, "reloaded 2s ago") {
		t.Fatalf("expected reload notice, got %q", row)
	}
}

func TestRenderHelpOverlay(t *testing.T) {
	screen := newTestScreen(t)
	state, reducer := newRenderState(t, makeThread(3))
	reduce(t, reducer, state, statepkg.HelpToggleAction{})

	NewRenderer(screen).Render(state)

	if row := screenRow(screen, 0); !strings.Contains(row, " Help ") {
		t.Fatalf("expected help title, got %q", row)
	}
	if findRow(screen, 0, "Cycle perspective") < 0 {
		t.Fatalf("expected key binding list in help overlay")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatMessageCount(1); got != "1 message" {
		t.Errorf("formatMessageCount(1) = %q", got)
	}
	if got := formatMessageCount(12500); got != "12.5k messages" {
		t.Errorf("formatMessageCount(12500) = %q", got)
	}
	if got := formatCompactNumber(2_000_000); got != "2M" {
		t.Errorf("formatCompactNumber(2e6) = %q", got)
	}
	if got := formatDurationShort(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("formatDurationShort(1.5s) = %q", got)
	}
	if got := formatDurationShort(250 * time.Millisecond); got != "250ms" {
		t.Errorf("formatDurationShort(250ms) = %q", got)
	}
}
