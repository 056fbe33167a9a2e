package app

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/rchat/internal/config"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	inputui "github.com/kk-code-lab/rchat/internal/ui/input"
	renderui "github.com/kk-code-lab/rchat/internal/ui/render"
)

// Options configures one viewer run.
type Options struct {
	Config config.Config
	// Path is the transcript file; it is re-read on change when Watch is set.
	Path  string
	Watch bool
}

// Application represents the running app.
type Application struct {
	screen         tcell.Screen
	state          *statepkg.AppState
	reducer        *statepkg.StateReducer
	renderer       *renderui.Renderer
	input          *inputui.InputHandler
	actionCh       chan statepkg.Action
	done           chan struct{}
	shouldQuit     bool
	clipboardCmd   []string
	clipboardAvail bool
	buttonDown     bool

	path      string
	batchSize int
	watcher   *transcriptWatcher
	reloadMu  sync.Mutex
	closeOnce sync.Once
}

// Close stops the watcher and the active searcher and releases the screen.
func (app *Application) Close() error {
	var err error
	app.closeOnce.Do(func() {
		close(app.done)
		if app.watcher != nil {
			err = app.watcher.Close()
		}
		if sess := app.state.Session; sess != nil && sess.Searcher != nil {
			sess.Searcher.Close()
		}
		app.screen.Fini()
	})
	return err
}

// State exposes the current state, mainly for tests and the exit summary.
func (app *Application) State() *statepkg.AppState {
	return app.state
}
