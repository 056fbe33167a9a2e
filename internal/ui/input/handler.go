package input

import (
	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	emit  func(statepkg.Action)
	state *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler. emit is called on the event
// goroutine and must not block.
func NewInputHandler(emit func(statepkg.Action)) *InputHandler {
	return &InputHandler{
		emit: emit,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the user asked to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.emit(statepkg.ResizeAction{Width: w, Height: h})
		return true
	default:
		return true
	}
}

// processKeyEvent handles keyboard input
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	inSearch := ih.state != nil && ih.state.SearchActive
	helpVisible := ih.state != nil && ih.state.HelpVisible

	if ev.Key() == tcell.KeyCtrlC {
		ih.emit(statepkg.QuitAction{})
		return false
	}
	if ev.Key() == tcell.KeyCtrlZ {
		ih.emit(statepkg.SuspendAction{})
		return true
	}

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.emit(statepkg.HelpHideAction{})
		case tcell.KeyRune:
			r := ev.Rune()
			if r == '?' || r == 'q' || r == 'Q' {
				ih.emit(statepkg.HelpHideAction{})
			}
		}
		return true
	}

	if inSearch {
		ih.processSearchKey(ev)
		return true
	}
	return ih.processNormalKey(ev)
}

// processSearchKey edits the query and drives the result list.
func (ih *InputHandler) processSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.emit(statepkg.SearchClearAction{})
	case tcell.KeyEnter:
		ih.emit(statepkg.SearchSubmitAction{})
	case tcell.KeyUp:
		ih.emit(statepkg.SearchNavigateAction{Direction: "up"})
	case tcell.KeyDown:
		ih.emit(statepkg.SearchNavigateAction{Direction: "down"})
	case tcell.KeyCtrlN:
		ih.emit(statepkg.JumpResultAction{Delta: 1})
	case tcell.KeyCtrlP:
		ih.emit(statepkg.JumpResultAction{Delta: -1})
	case tcell.KeyLeft:
		ih.emit(statepkg.SearchMoveCursorAction{Direction: "left"})
	case tcell.KeyRight:
		ih.emit(statepkg.SearchMoveCursorAction{Direction: "right"})
	case tcell.KeyHome, tcell.KeyCtrlA:
		ih.emit(statepkg.SearchMoveCursorAction{Direction: "home"})
	case tcell.KeyEnd, tcell.KeyCtrlE:
		ih.emit(statepkg.SearchMoveCursorAction{Direction: "end"})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.emit(statepkg.SearchBackspaceAction{})
	case tcell.KeyCtrlW:
		ih.emit(statepkg.SearchDeleteWordAction{})
	case tcell.KeyPgUp:
		ih.emit(statepkg.ScrollPageUpAction{})
	case tcell.KeyPgDn:
		ih.emit(statepkg.ScrollPageDownAction{})
	case tcell.KeyRune:
		// Every printable rune is query input, including 'q'.
		ih.emit(statepkg.SearchCharAction{Char: ev.Rune()})
	}
}

// processNormalKey handles scrolling, toggles and the rest of the bindings
// available while the search panel is closed.
func (ih *InputHandler) processNormalKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if ih.state != nil && (ih.state.SearchQuery != "" || len(ih.state.SearchResults) > 0) {
			ih.emit(statepkg.SearchClearAction{})
		}
		return true
	case tcell.KeyUp:
		ih.emit(statepkg.ScrollLinesAction{Delta: -1})
		return true
	case tcell.KeyDown:
		ih.emit(statepkg.ScrollLinesAction{Delta: 1})
		return true
	case tcell.KeyPgUp:
		ih.emit(statepkg.ScrollPageUpAction{})
		return true
	case tcell.KeyPgDn:
		ih.emit(statepkg.ScrollPageDownAction{})
		return true
	case tcell.KeyHome:
		ih.emit(statepkg.ScrollToStartAction{})
		return true
	case tcell.KeyEnd:
		ih.emit(statepkg.ScrollToEndAction{})
		return true
	case tcell.KeyEnter:
		if ih.state != nil && len(ih.state.SearchResults) > 0 {
			ih.emit(statepkg.JumpResultAction{Delta: 0})
		}
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q', 'Q':
		ih.emit(statepkg.QuitAction{})
		return false
	case 'k':
		ih.emit(statepkg.ScrollLinesAction{Delta: -1})
	case 'j':
		ih.emit(statepkg.ScrollLinesAction{Delta: 1})
	case ' ':
		ih.emit(statepkg.ScrollPageDownAction{})
	case 'b':
		ih.emit(statepkg.ScrollPageUpAction{})
	case 'g':
		ih.emit(statepkg.ScrollToStartAction{})
	case 'G':
		ih.emit(statepkg.ScrollToEndAction{})
	case '/':
		ih.emit(statepkg.SearchStartAction{})
	case 'n':
		ih.emit(statepkg.JumpResultAction{Delta: 1})
	case 'N':
		ih.emit(statepkg.JumpResultAction{Delta: -1})
	case 'p':
		ih.emit(statepkg.CyclePerspectiveAction{})
	case 't':
		ih.emit(statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleTimestamps})
	case 'm':
		ih.emit(statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleMyName})
	case 'o':
		ih.emit(statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleTheirName})
	case 'r':
		ih.emit(statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleReactions})
	case 'y':
		if ih.state == nil || ih.state.ClipboardAvailable {
			ih.emit(statepkg.YankMessageAction{})
		}
	case '?':
		ih.emit(statepkg.HelpToggleAction{})
	}
	return true
}
