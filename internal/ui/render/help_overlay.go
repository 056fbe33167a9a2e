package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	textutil "github.com/kk-code-lab/rchat/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	onOff := func(on bool, what string) string {
		if on {
			return "Hide " + what
		}
		return "Show " + what
	}
	display := statepkg.DisplayOptions{}
	if state != nil {
		display = state.Display
	}

	sections := []helpOverlaySection{
		{
			title: "Scrolling",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ or k/j", desc: "Scroll one row"},
				{keys: "PgUp/PgDn/Space", desc: "Scroll one page"},
				{keys: "g/G Home/End", desc: "Jump to first / last message"},
				{keys: "mouse", desc: "Wheel scrolls, click marks a message"},
			},
		},
		{
			title: "Search",
			entries: []helpOverlayEntry{
				{keys: "/", desc: "Open search"},
				{keys: "↵", desc: "Run search, then jump to selected result"},
				{keys: "↑/↓", desc: "Select result"},
				{keys: "n / N", desc: "Jump to next / previous result"},
				{keys: "Esc", desc: "Clear query, then close search"},
			},
		},
		{
			title: "Display",
			entries: []helpOverlayEntry{
				{keys: "p", desc: "Cycle perspective"},
				{keys: "t", desc: onOff(display.Timestamps, "timestamps")},
				{keys: "m", desc: onOff(display.MyName, "my name")},
				{keys: "o", desc: onOff(display.TheirName, "their names")},
				{keys: "r", desc: onOff(display.Reactions, "reactions")},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "y", desc: "Yank marked message to clipboard"},
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "Ctrl+Z", desc: "Suspend to shell"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}

	return lines
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	return fmt.Sprintf("  %-16s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', nil, baseStyle)
		}
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	titleWidth := r.measureTextWidth(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	bodyStyle := baseStyle
	lines := buildHelpOverlayLines(state)
	row := 2
	maxRow := h - 1
	for _, line := range lines {
		if row >= maxRow {
			break
		}
		text := strings.TrimRight(line, " ")
		text = r.truncateTextToWidth(text, w-4)
		r.drawTextLine(2, row, w-4, text, bodyStyle)
		row++
	}

	footer := "? toggle · Esc/q close"
	if len(footer) > 0 && h > 0 {
		footerText := r.truncateTextToWidth(footer, w)
		r.drawTextLine(0, h-1, w, footerText, headerStyle)
	}
}
