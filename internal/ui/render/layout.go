package render

import (
	"fmt"
	"strings"

	searchpkg "github.com/kk-code-lab/rchat/internal/search"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	textutil "github.com/kk-code-lab/rchat/internal/textutil"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

const (
	// gutterWidth is the marker column plus one space before message text.
	gutterWidth     = 2
	minTextWidth    = 10
	timestampLayout = "2006-01-02 15:04"
)

// MessageLayout turns transcript messages into wrapped, styled lines for the
// transcript window. It reads width, display toggles, perspective and the
// live query from the state on every call, so re-rendering a chunk picks up
// the current settings.
type MessageLayout struct {
	state *statepkg.AppState
}

// NewMessageLayout is a state.LayoutFactory.
func NewMessageLayout(state *statepkg.AppState) virtual.Materializer {
	return &MessageLayout{state: state}
}

// Materialize renders messages [first, last).
func (l *MessageLayout) Materialize(first, last int) []virtual.Block {
	thread := l.state.Thread()
	if thread == nil || first >= last {
		return nil
	}
	width := l.textWidth()
	blocks := make([]virtual.Block, 0, last-first)
	for i := first; i < last; i++ {
		msg, ok := thread.Message(i)
		if !ok {
			break
		}
		blocks = append(blocks, l.messageBlock(msg, width))
	}
	return blocks
}

func (l *MessageLayout) textWidth() int {
	w := l.state.ScreenWidth - gutterWidth
	if w < minTextWidth {
		return minTextWidth
	}
	return w
}

func (l *MessageLayout) messageBlock(msg transcript.Message, width int) virtual.Block {
	opts := l.state.Display
	mine := l.state.IsMe(msg.Sender)

	var lines []virtual.Line
	if header := headerRuns(msg, opts, mine); len(header) > 0 {
		lines = append(lines, wrapRuns(header, width)...)
	}
	if msg.Text != "" {
		lines = append(lines, wrapRuns(textRuns(msg.Text, l.state.LiveQuery), width)...)
	}
	for _, media := range msg.Media {
		lines = append(lines, wrapRuns([]virtual.Run{{Text: mediaLabel(media), Kind: virtual.RunMedia}}, width)...)
	}
	if opts.Reactions {
		if summary := reactionText(msg); summary != "" {
			lines = append(lines, wrapRuns([]virtual.Run{{Text: summary, Kind: virtual.RunReaction}}, width)...)
		}
	}
	if msg.Text == "" && len(msg.Media) == 0 {
		lines = append(lines, virtual.Line{Runs: []virtual.Run{{Text: "(no content)", Kind: virtual.RunMeta}}})
	}
	if mine {
		alignRight(lines, width)
	}
	// Separator row between messages.
	lines = append(lines, virtual.Line{})
	return virtual.Block{Index: msg.Index, Lines: lines}
}

func headerRuns(msg transcript.Message, opts statepkg.DisplayOptions, mine bool) []virtual.Run {
	showName := opts.TheirName
	if mine {
		showName = opts.MyName
	}
	var runs []virtual.Run
	if showName {
		runs = append(runs, virtual.Run{Text: msg.Sender, Kind: virtual.RunSender})
	}
	if opts.Timestamps && msg.Timestamp > 0 {
		if len(runs) > 0 {
			runs = append(runs, virtual.Run{Text: "  "})
		}
		runs = append(runs, virtual.Run{Text: msg.Time().Format(timestampLayout), Kind: virtual.RunTimestamp})
	}
	return runs
}

// textRuns splits text into plain and matched runs for the live query.
func textRuns(text, query string) []virtual.Run {
	text = expandTabs(text)
	var ranges []searchpkg.Range
	if strings.TrimSpace(query) != "" {
		ranges = searchpkg.FindRanges(text, query)
	}
	segments := searchpkg.Segments(text, ranges)
	runs := make([]virtual.Run, 0, len(segments))
	for _, seg := range segments {
		kind := virtual.RunPlain
		if seg.Match {
			kind = virtual.RunMatch
		}
		runs = append(runs, virtual.Run{Text: seg.Text, Kind: kind})
	}
	return runs
}

func expandTabs(text string) string {
	if !strings.ContainsRune(text, '\t') {
		return text
	}
	paragraphs := strings.Split(text, "\n")
	for i, p := range paragraphs {
		paragraphs[i] = textutil.ExpandTabs(p, textutil.DefaultTabWidth)
	}
	return strings.Join(paragraphs, "\n")
}

func mediaLabel(media transcript.Media) string {
	name := media.Name()
	if name == "" || name == "." || name == "/" || strings.HasPrefix(media.URI, "data:") {
		return fmt.Sprintf("[%s]", media.Kind())
	}
	return fmt.Sprintf("[%s: %s]", media.Kind(), name)
}

func reactionText(msg transcript.Message) string {
	summary := msg.ReactionSummary()
	if len(summary) == 0 {
		return ""
	}
	parts := make([]string, 0, len(summary))
	for _, rc := range summary {
		parts = append(parts, fmt.Sprintf("%s %d", rc.Glyph, rc.Count))
	}
	return strings.Join(parts, "  ")
}

// cell is one sanitized rune of laid out text.
type cell struct {
	text    string
	kind    virtual.RunKind
	width   int
	space   bool
	newline bool
}

func splitCells(runs []virtual.Run) []cell {
	var cells []cell
	for _, run := range runs {
		for _, ru := range run.Text {
			if ru == '\n' {
				cells = append(cells, cell{newline: true})
				continue
			}
			text := textutil.SanitizeRune(ru)
			cells = append(cells, cell{
				text:  text,
				kind:  run.Kind,
				width: textutil.DisplayWidth(text),
				space: ru == ' ',
			})
		}
	}
	return cells
}

// wrapRuns breaks runs into lines no wider than width, preferring to break
// after a space. Explicit newlines always start a new line.
func wrapRuns(runs []virtual.Run, width int) []virtual.Line {
	if width < 1 {
		width = 1
	}
	var (
		lines     []virtual.Line
		cur       []cell
		curWidth  int
		lastSpace = -1
	)
	flush := func() {
		lines = append(lines, cellsToLine(cur))
		cur = nil
		curWidth = 0
		lastSpace = -1
	}

	for _, c := range splitCells(runs) {
		if c.newline {
			flush()
			continue
		}
		if curWidth+c.width > width && len(cur) > 0 {
			switch {
			case c.space:
				flush()
				continue
			case lastSpace > 0:
				rest := append([]cell(nil), cur[lastSpace+1:]...)
				cur = cur[:lastSpace]
				flush()
				cur = rest
				for _, rc := range rest {
					curWidth += rc.width
				}
				// Labelled formatting runes are wider than two cells.
				if curWidth+c.width > width {
					flush()
				}
			default:
				flush()
			}
		}
		if c.space {
			lastSpace = len(cur)
		}
		cur = append(cur, c)
		curWidth += c.width
	}
	if len(cur) > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

func cellsToLine(cells []cell) virtual.Line {
	var (
		runs []virtual.Run
		b    strings.Builder
		kind virtual.RunKind
	)
	for i, c := range cells {
		if i > 0 && c.kind != kind {
			runs = append(runs, virtual.Run{Text: b.String(), Kind: kind})
			b.Reset()
		}
		kind = c.kind
		b.WriteString(c.text)
	}
	if b.Len() > 0 {
		runs = append(runs, virtual.Run{Text: b.String(), Kind: kind})
	}
	return virtual.Line{Runs: runs}
}

// alignRight indents every line so it ends at width.
func alignRight(lines []virtual.Line, width int) {
	for i := range lines {
		w := textutil.DisplayWidth(lines[i].Text())
		if w < width {
			lines[i].Indent = width - w
		}
	}
}
