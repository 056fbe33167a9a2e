package input

import (
	"fmt"
	"testing"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
)

func processOne(t *testing.T, state *statepkg.AppState, ev tcell.Event) (statepkg.Action, bool) {
	t.Helper()
	actionChan := make(chan statepkg.Action, 4)
	handler := NewInputHandler(func(a statepkg.Action) { actionChan <- a })
	handler.SetState(state)

	keepRunning := handler.ProcessEvent(ev)

	select {
	case action := <-actionChan:
		return action, keepRunning
	default:
		return nil, keepRunning
	}
}

func TestNormalModeBindings(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want statepkg.Action
	}{
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), statepkg.ScrollLinesAction{Delta: -1}},
		{"j", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), statepkg.ScrollLinesAction{Delta: 1}},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), statepkg.ScrollPageDownAction{}},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), statepkg.ScrollPageDownAction{}},
		{"g", tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), statepkg.ScrollToStartAction{}},
		{"G", tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone), statepkg.ScrollToEndAction{}},
		{"end", tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), statepkg.ScrollToEndAction{}},
		{"slash", tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone), statepkg.SearchStartAction{}},
		{"n", tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone), statepkg.JumpResultAction{Delta: 1}},
		{"N", tcell.NewEventKey(tcell.KeyRune, 'N', tcell.ModNone), statepkg.JumpResultAction{Delta: -1}},
		{"p", tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), statepkg.CyclePerspectiveAction{}},
		{"t", tcell.NewEventKey(tcell.KeyRune, 't', tcell.ModNone), statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleTimestamps}},
		{"m", tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone), statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleMyName}},
		{"o", tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModNone), statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleTheirName}},
		{"r", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), statepkg.ToggleDisplayAction{Toggle: statepkg.ToggleReactions}},
		{"y", tcell.NewEventKey(tcell.KeyRune, 'y', tcell.ModNone), statepkg.YankMessageAction{}},
		{"question mark", tcell.NewEventKey(tcell.KeyRune, '?', tcell.ModNone), statepkg.HelpToggleAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &statepkg.AppState{ClipboardAvailable: true}
			action, keepRunning := processOne(t, state, tt.ev)
			if !keepRunning {
				t.Fatalf("expected handler to keep running")
			}
			if action != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, action)
			}
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	} {
		t.Run(fmt.Sprintf("%v", ev.Name()), func(t *testing.T) {
			action, keepRunning := processOne(t, &statepkg.AppState{}, ev)
			if keepRunning {
				t.Fatalf("expected quit to stop the handler")
			}
			if _, ok := action.(statepkg.QuitAction); !ok {
				t.Fatalf("Expected QuitAction, got %T", action)
			}
		})
	}
}

func TestSearchModeTreatsRunesAsQueryInput(t *testing.T) {
	state := &statepkg.AppState{SearchActive: true}

	for _, r := range "qnp/y" {
		action, keepRunning := processOne(t, state, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
		if !keepRunning {
			t.Fatalf("rune %q should not quit while searching", r)
		}
		if action != (statepkg.SearchCharAction{Char: r}) {
			t.Fatalf("expected SearchCharAction for %q, got %#v", r, action)
		}
	}
}

func TestSearchModeBindings(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want statepkg.Action
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), statepkg.SearchClearAction{}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), statepkg.SearchSubmitAction{}},
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), statepkg.SearchNavigateAction{Direction: "up"}},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), statepkg.SearchNavigateAction{Direction: "down"}},
		{"ctrl-n", tcell.NewEventKey(tcell.KeyCtrlN, 0, tcell.ModCtrl), statepkg.JumpResultAction{Delta: 1}},
		{"ctrl-p", tcell.NewEventKey(tcell.KeyCtrlP, 0, tcell.ModCtrl), statepkg.JumpResultAction{Delta: -1}},
		{"left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), statepkg.SearchMoveCursorAction{Direction: "left"}},
		{"ctrl-a", tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModCtrl), statepkg.SearchMoveCursorAction{Direction: "home"}},
		{"end", tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), statepkg.SearchMoveCursorAction{Direction: "end"}},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), statepkg.SearchBackspaceAction{}},
		{"ctrl-w", tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModCtrl), statepkg.SearchDeleteWordAction{}},
		{"page up scrolls transcript", tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), statepkg.ScrollPageUpAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, _ := processOne(t, &statepkg.AppState{SearchActive: true, SearchQuery: "foo"}, tt.ev)
			if action != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, action)
			}
		})
	}
}

func TestEscapeClearsResultsOutsideSearch(t *testing.T) {
	ev := tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)

	if action, _ := processOne(t, &statepkg.AppState{}, ev); action != nil {
		t.Fatalf("expected no action without results, got %T", action)
	}

	state := &statepkg.AppState{SearchResults: []statepkg.Match{{Score: 100}}}
	action, _ := processOne(t, state, ev)
	if _, ok := action.(statepkg.SearchClearAction); !ok {
		t.Fatalf("Expected SearchClearAction, got %T", action)
	}
}

func TestEnterJumpsToSelectedResultOutsideSearch(t *testing.T) {
	state := &statepkg.AppState{SearchResults: []statepkg.Match{{Score: 100}}}
	action, _ := processOne(t, state, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if action != (statepkg.JumpResultAction{Delta: 0}) {
		t.Fatalf("expected JumpResultAction{0}, got %#v", action)
	}
}

func TestYankRequiresClipboard(t *testing.T) {
	action, _ := processOne(t, &statepkg.AppState{ClipboardAvailable: false}, tcell.NewEventKey(tcell.KeyRune, 'y', tcell.ModNone))
	if action != nil {
		t.Fatalf("expected no yank without clipboard, got %T", action)
	}
}

func TestEscapeHidesHelpBeforeOtherModes(t *testing.T) {
	state := &statepkg.AppState{
		HelpVisible:  true,
		SearchActive: true,
	}

	action, _ := processOne(t, state, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if _, ok := action.(statepkg.HelpHideAction); !ok {
		t.Fatalf("Expected HelpHideAction, got %T", action)
	}
}

func TestQClosesHelpWithoutQuitting(t *testing.T) {
	state := &statepkg.AppState{HelpVisible: true}

	action, keepRunning := processOne(t, state, tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if !keepRunning {
		t.Fatalf("q should only close help")
	}
	if _, ok := action.(statepkg.HelpHideAction); !ok {
		t.Fatalf("Expected HelpHideAction, got %T", action)
	}

	action, _ = processOne(t, state, tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone))
	if action != nil {
		t.Fatalf("other keys should be swallowed while help is visible, got %T", action)
	}
}

func TestCtrlZSuspendsInEveryMode(t *testing.T) {
	ev := tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl)
	for _, state := range []*statepkg.AppState{{}, {SearchActive: true}, {HelpVisible: true}} {
		action, keepRunning := processOne(t, state, ev)
		if !keepRunning {
			t.Fatalf("suspend should keep the handler running")
		}
		if _, ok := action.(statepkg.SuspendAction); !ok {
			t.Fatalf("Expected SuspendAction, got %T", action)
		}
	}
}

func TestResizeEmitsResizeAction(t *testing.T) {
	action, _ := processOne(t, &statepkg.AppState{}, tcell.NewEventResize(100, 30))
	if action != (statepkg.ResizeAction{Width: 100, Height: 30}) {
		t.Fatalf("expected ResizeAction{100, 30}, got %#v", action)
	}
}
