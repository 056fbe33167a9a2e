package render

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	searchpkg "github.com/kk-code-lab/rchat/internal/search"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	textutil "github.com/kk-code-lab/rchat/internal/textutil"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/virtual"
)

const resultTimeLayout = "2006-01-02 15:04"

// ReloadNoticeDuration is how long the status line mentions a reload.
const ReloadNoticeDuration = 5 * time.Second

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	now              func() time.Time
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
		now:    time.Now,
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()
	r.screen.HideCursor()

	w, h := r.screen.Size()

	if state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(state, w)
	r.drawTranscript(state, w)
	if state.SearchActive {
		r.drawSearchPanel(state, w)
	}
	r.drawStatusLine(state, w, h)

	r.screen.Show()
}

// drawHeader renders the title row and the participant statistics row.
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	r.fillRow(0, w, 0, headerStyle)
	r.fillRow(0, w, 1, headerStyle)

	endX := r.drawTextLine(0, 0, w, "rchat", headerStyle.Bold(true))
	thread := state.Thread()
	if thread == nil {
		if endX < w {
			r.drawTextLine(endX, 0, w-endX, " · loading…", headerStyle.Dim(true))
		}
		return
	}

	right := formatMessageCount(thread.Len())
	if p := state.Display.Perspective; p != "" {
		right = "as " + textutil.SanitizeTerminalText(p) + " · " + right
	}
	rightWidth := r.measureTextWidth(right)
	rightX := w - rightWidth
	if rightX <= endX+1 {
		rightX = w
	}

	if endX+1 < rightX {
		title := textutil.SanitizeTerminalText(thread.Title)
		title = r.truncateTextToWidth(title, rightX-endX-2)
		r.drawTextLine(endX+1, 0, rightX-endX-1, title, headerStyle)
	}
	if rightX < w {
		r.drawTextLine(rightX, 0, rightWidth, right, headerStyle.Dim(true))
	}

	summary := r.truncateTextToWidth(formatParticipantSummary(state.Session.Stats), w)
	r.drawTextLine(0, 1, w, summary, headerStyle.Dim(true))
}

// drawTranscript renders the visible rows of the transcript window.
func (r *Renderer) drawTranscript(state *statepkg.AppState, w int) {
	win := state.Window()
	if win == nil {
		return
	}
	top := state.ViewportTop()
	height := state.ViewportHeight()
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)

	for row, vl := range win.VisibleLines() {
		if row >= height {
			break
		}
		y := top + row
		if vl.Placeholder {
			r.drawStyledRune(0, y, w, '·', baseStyle.Foreground(r.theme.PlaceholderFg))
			continue
		}

		rowStyle := baseStyle
		if vl.Index >= 0 && vl.Index == state.TransientIndex {
			rowStyle = rowStyle.Background(r.theme.TransientBg)
			r.fillRow(0, w, y, rowStyle)
		}

		if vl.Index >= 0 && vl.Index == state.MarkedIndex && len(vl.Line.Runs) > 0 {
			marker := '│'
			if vl.First {
				marker = '▶'
			}
			r.drawStyledRune(0, y, w, marker, rowStyle.Foreground(r.theme.MarkerFg).Bold(true))
		}

		x := gutterWidth + vl.Line.Indent
		for _, run := range vl.Line.Runs {
			if x >= w {
				break
			}
			x = r.drawStyledStringClipped(x, y, w, run.Text, r.runStyle(state, rowStyle, run))
		}
	}
}

func (r *Renderer) runStyle(state *statepkg.AppState, base tcell.Style, run virtual.Run) tcell.Style {
	switch run.Kind {
	case virtual.RunMatch:
		return base.Background(r.theme.MatchBg).Foreground(r.theme.MatchFg)
	case virtual.RunSender:
		if state.IsMe(run.Text) {
			return base.Foreground(r.theme.MySenderFg).Bold(true)
		}
		return base.Foreground(r.theme.SenderFg).Bold(true)
	case virtual.RunTimestamp:
		return base.Foreground(r.theme.TimestampFg)
	case virtual.RunReaction:
		return base.Foreground(r.theme.ReactionFg)
	case virtual.RunMedia:
		return base.Foreground(r.theme.MediaFg)
	case virtual.RunMeta:
		return base.Foreground(r.theme.MetaFg).Italic(true)
	default:
		return base
	}
}

// drawSearchPanel renders the query input and the visible result rows.
func (r *Renderer) drawSearchPanel(state *statepkg.AppState, w int) {
	panelStyle := tcell.StyleDefault.Background(r.theme.PanelBg).Foreground(r.theme.PanelFg)
	y := state.PanelTop()
	r.drawQueryInput(state, w, y, panelStyle)
	r.drawSearchResults(state, w, y+1, panelStyle)
}

func (r *Renderer) drawQueryInput(state *statepkg.AppState, w, y int, headerStyle tcell.Style) {
	cursor := state.SearchCursorPos
	queryRunes := []rune(textutil.SanitizeTerminalText(state.SearchQuery))
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(queryRunes) {
		cursor = len(queryRunes)
	}

	highlightStyle := headerStyle.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
	placeholderStyle := headerStyle.Dim(true)

	x := 0
	maxX := w
	r.fillRow(0, w, y, headerStyle)

	for _, ru := range "/ " {
		x = r.drawStyledRune(x, y, maxX, ru, headerStyle)
	}

	if len(queryRunes) == 0 {
		if x < maxX {
			x = r.drawStyledRune(x, y, maxX, '█', highlightStyle)
		}
		for _, ru := range "(type to search messages)" {
			if x >= maxX {
				break
			}
			x = r.drawStyledRune(x, y, maxX, ru, placeholderStyle)
		}
		return
	}

	highlightIndex := -1
	if cursor < len(queryRunes) {
		highlightIndex = cursor
	}
	for idx, ru := range queryRunes {
		if x >= maxX {
			break
		}
		style := headerStyle
		if idx == highlightIndex {
			style = highlightStyle
		}
		x = r.drawStyledRune(x, y, maxX, ru, style)
	}
	if cursor == len(queryRunes) && x < maxX {
		r.drawStyledRune(x, y, maxX, '█', highlightStyle)
	}
}

func (r *Renderer) drawSearchResults(state *statepkg.AppState, w, startY int, baseStyle tcell.Style) {
	for y := startY; y < startY+statepkg.PanelResultRows; y++ {
		r.fillRow(0, w, y, baseStyle)
	}

	results := state.DisplayResults()
	if len(results) == 0 {
		if msg := emptyResultsMessage(state); msg != "" {
			r.drawTextLine(2, startY, w-2, msg, baseStyle.Dim(true))
		}
		return
	}
	thread := state.Thread()

	selectedIdx := state.SearchIndex
	if selectedIdx < 0 {
		selectedIdx = 0
	}
	if selectedIdx >= len(results) {
		selectedIdx = len(results) - 1
	}

	startIdx := state.SearchScroll
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + statepkg.PanelResultRows
	if endIdx > len(results) {
		endIdx = len(results)
	}

	displayY := startY
	for resultIdx := startIdx; resultIdx < endIdx; resultIdx++ {
		result := results[resultIdx]
		isSelected := resultIdx == selectedIdx

		rowStyle := baseStyle
		if isSelected {
			rowStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
			r.fillRow(0, w, displayY, rowStyle)
		}

		marker := ' '
		if isSelected {
			marker = '▶'
		}
		x := r.drawStyledRune(0, displayY, w, marker, rowStyle.Bold(isSelected))
		x = r.drawStyledRune(x, displayY, w, ' ', rowStyle)

		scoreText := fmt.Sprintf("%3d ", result.Score)
		x = r.drawStyledStringClipped(x, displayY, w, scoreText, r.scoreStyle(rowStyle, result.Score, isSelected))

		sender := r.truncateTextToWidth(textutil.SanitizeTerminalText(result.Record.Sender), 16)
		x = r.drawStyledStringClipped(x, displayY, w, sender, rowStyle.Bold(true))

		if result.Record.Timestamp > 0 {
			stamp := " " + time.UnixMilli(result.Record.Timestamp).Format(resultTimeLayout)
			x = r.drawStyledStringClipped(x, displayY, w, stamp, rowStyle.Dim(!isSelected))
		}
		x = r.drawStyledStringClipped(x, displayY, w, "  ", rowStyle)

		if msg, ok := thread.Message(result.Record.Index); ok {
			snippet := searchpkg.Snippet(msg.Text, state.SnippetLength)
			segments := searchpkg.Segments(snippet, searchpkg.FindRanges(snippet, state.ResultsQuery))
			matchStyle := rowStyle.Background(r.theme.MatchBg).Foreground(r.theme.MatchFg)
			if isSelected {
				matchStyle = rowStyle.Bold(true).Underline(true)
			}
			r.drawSegments(x, displayY, w, segments, rowStyle, matchStyle)
		}

		displayY++
	}
}

func emptyResultsMessage(state *statepkg.AppState) string {
	switch {
	case state.SearchInProgress:
		return "searching…"
	case state.SearchStatus == statepkg.SearchStatusComplete:
		return "no matches"
	default:
		return ""
	}
}

func (r *Renderer) scoreStyle(base tcell.Style, score int, selected bool) tcell.Style {
	if selected {
		return base.Bold(true)
	}
	switch {
	case score >= 100:
		return base.Foreground(tcell.ColorGreen).Bold(true)
	case score >= 60:
		return base.Foreground(tcell.ColorYellowGreen)
	case score >= 40:
		return base.Foreground(tcell.ColorYellow)
	default:
		return base.Foreground(tcell.ColorDarkGray)
	}
}

// drawStatusLine renders search progress, errors and key hints on the last row.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	if h <= 0 {
		return
	}
	normalStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	flashStyle := tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)

	// Check if we should flash (within 0.1 seconds of last yank)
	isFlashing := false
	if !state.LastYankTime.IsZero() {
		elapsed := r.now().Sub(state.LastYankTime)
		isFlashing = elapsed < 100*time.Millisecond
	}

	y := h - 1
	lineStyle := normalStyle
	if isFlashing {
		lineStyle = flashStyle
	}
	r.fillRow(0, w, y, lineStyle)

	x := 0
	if state.LastError != nil {
		errText := textutil.SanitizeTerminalText("error: " + state.LastError.Error())
		x = r.drawStyledStringClipped(x, y, w, errText+"  ", lineStyle.Foreground(r.theme.ErrorFg))
	}
	if label := r.statusLabel(state); label != "" {
		x = r.drawStyledStringClipped(x, y, w, label+"  ", lineStyle.Bold(true))
	}

	helpText := textutil.SanitizeTerminalText(buildFooterHelpText(state))
	if helpText == "" || x >= w {
		return
	}
	helpWidth := r.measureTextWidth(helpText)
	helpX := w - helpWidth
	if helpX < x {
		helpX = x
		helpText = r.truncateTextToWidth(helpText, w-x)
	}
	r.drawTextLine(helpX, y, w-helpX, helpText, lineStyle.Dim(true))
}

func (r *Renderer) statusLabel(state *statepkg.AppState) string {
	label := state.SearchStatusLabel()
	if !state.LastReloadTime.IsZero() {
		if age := r.now().Sub(state.LastReloadTime); age < ReloadNoticeDuration {
			notice := "reloaded " + formatDurationShort(age) + " ago"
			if label == "" {
				return notice
			}
			return label + " · " + notice
		}
	}
	return label
}

func formatParticipantSummary(stats transcript.Stats) string {
	if len(stats.Participants) == 0 {
		return ""
	}
	parts := make([]string, 0, len(stats.Participants))
	for _, p := range stats.Participants {
		parts = append(parts, fmt.Sprintf("%s %s (%.0f%%, %.1f words)",
			textutil.SanitizeTerminalText(p.Name), formatCompactNumber(p.Count), p.Percent, p.AvgWords))
	}
	return strings.Join(parts, " · ")
}
