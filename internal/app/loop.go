package app

import (
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rchat/internal/debuglog"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	"github.com/kk-code-lab/rchat/internal/transcript"
	"github.com/kk-code-lab/rchat/internal/ui/input"
	renderui "github.com/kk-code-lab/rchat/internal/ui/render"
)

const (
	// wheelStep is how many rows one wheel notch scrolls.
	wheelStep       = 3
	yankFlashFor    = 100 * time.Millisecond
	watchDebounce   = 200 * time.Millisecond
	actionQueueSize = 64
)

// redrawAction only asks the loop for a frame, e.g. when a status notice
// expires.
type redrawAction struct{}

func NewApplication(thread *transcript.Thread, opts Options) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	// Parse mouse sequences so clicks and the wheel don't leak as key events.
	screen.EnableMouse()

	app := newApplication(screen, opts)
	if opts.Watch && opts.Path != "" {
		watcher, err := newTranscriptWatcher(opts.Path, watchDebounce, app.reloadTranscript)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.watcher = watcher
	}
	if thread != nil {
		go app.loadThread(thread)
	}
	return app, nil
}

// newApplication wires state, reducer, renderer and input around an
// initialized screen. The first session arrives through loadThread.
func newApplication(screen tcell.Screen, opts Options) *Application {
	clipboardCmd, clipboardAvail := detectClipboard()

	state := statepkg.NewAppState(opts.Config)
	state.ClipboardAvailable = clipboardAvail

	actionCh := make(chan statepkg.Action, actionQueueSize)

	app := &Application{
		screen:         screen,
		state:          state,
		reducer:        statepkg.NewStateReducer(),
		renderer:       renderui.NewRenderer(screen),
		actionCh:       actionCh,
		done:           make(chan struct{}),
		clipboardCmd:   clipboardCmd,
		clipboardAvail: clipboardAvail,
		path:           opts.Path,
		batchSize:      opts.Config.Search.BatchSize,
	}

	// Input runs on the loop goroutine, the only reader of actionCh, so its
	// sends must not block.
	app.input = input.NewInputHandler(app.dispatch)
	app.input.SetState(state)
	state.SetDispatch(app.dispatch)
	state.SetScheduler(app.schedule)
	state.SetLayoutFactory(renderui.NewMessageLayout)

	w, h := screen.Size()
	app.reduce(statepkg.ResizeAction{Width: w, Height: h})
	return app
}

// loadThread builds the search records for thread, reporting index progress
// to the loop, then hands the finished session over. It runs off the loop
// goroutine and never overlaps a reload.
func (app *Application) loadThread(thread *transcript.Thread) {
	app.reloadMu.Lock()
	defer app.reloadMu.Unlock()
	app.buildSession(thread)
}

func (app *Application) buildSession(thread *transcript.Thread) {
	select {
	case <-app.done:
		return
	default:
	}

	app.dispatch(statepkg.IndexProgressAction{Percent: 0})
	sess := statepkg.NewSession(thread, app.batchSize, func(percent int) {
		app.dispatch(statepkg.IndexProgressAction{Percent: percent})
	})

	select {
	case <-app.done:
		sess.Searcher.Close()
		return
	default:
	}
	debuglog.Logf(debuglog.TopicLoad, "indexed %d messages", sess.Len())
	app.dispatch(statepkg.SessionReadyAction{Session: sess})
}

// dispatch queues an action from any goroutine. It never blocks the caller
// and gives up once the application is closed.
func (app *Application) dispatch(action statepkg.Action) {
	select {
	case app.actionCh <- action:
	case <-app.done:
	default:
		go func() {
			select {
			case app.actionCh <- action:
			case <-app.done:
			}
		}()
	}
}

func (app *Application) schedule(d time.Duration, action statepkg.Action) {
	time.AfterFunc(d, func() { app.dispatch(action) })
}

func (app *Application) Run() {
	defer app.screen.Fini()

	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-app.done:
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	const animationInterval = 50 * time.Millisecond
	var animationTimer *time.Timer
	var animationCh <-chan time.Time

	startAnimation := func() {
		if animationTimer == nil {
			animationTimer = time.NewTimer(animationInterval)
		} else {
			if !animationTimer.Stop() {
				select {
				case <-animationTimer.C:
				default:
				}
			}
			animationTimer.Reset(animationInterval)
		}
		animationCh = animationTimer.C
	}

	stopAnimation := func() {
		if animationTimer == nil {
			return
		}
		if !animationTimer.Stop() {
			select {
			case <-animationTimer.C:
			default:
			}
		}
		animationCh = nil
	}

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		if app.shouldAnimate() {
			startAnimation()
		} else {
			stopAnimation()
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case <-animationCh:
			renderPending = true
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}

	stopAnimation()
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey, *tcell.EventResize:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventMouse:
		app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

// handleMouse maps primary clicks to result jumps or message marks and the
// wheel to scrolling. Motion with the button held reports Button1 again, so
// only the press itself counts as a click.
func (app *Application) handleMouse(ev *tcell.EventMouse) {
	if app.state == nil || app.state.HelpVisible {
		return
	}
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0
	defer func() { app.buttonDown = pressed }()

	switch {
	case buttons&tcell.WheelUp != 0:
		app.dispatch(statepkg.ScrollLinesAction{Delta: -wheelStep})
	case buttons&tcell.WheelDown != 0:
		app.dispatch(statepkg.ScrollLinesAction{Delta: wheelStep})
	case pressed && !app.buttonDown:
		x, y := ev.Position()
		app.dispatch(statepkg.MouseClickAction{X: x, Y: y})
	}
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) shouldAnimate() bool {
	if app.state == nil || app.state.LastYankTime.IsZero() {
		return false
	}
	return time.Since(app.state.LastYankTime) < yankFlashFor
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	case redrawAction:
		return true
	}

	return app.handleAppAction(action)
}

func (app *Application) handleAppAction(action statepkg.Action) bool {
	switch a := action.(type) {
	case statepkg.YankMessageAction:
		return app.handleClipboard()
	case statepkg.SessionReadyAction:
		reloaded := a.Err == nil && a.Session != nil && app.state.Session != nil
		app.reduce(action)
		if reloaded {
			app.schedule(renderui.ReloadNoticeDuration, redrawAction{})
		}
		return true
	}

	app.reduce(action)
	return true
}

func (app *Application) reduce(action statepkg.Action) {
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
		debuglog.Logf(debuglog.TopicLoad, "action %T failed: %v", action, err)
	}
}
