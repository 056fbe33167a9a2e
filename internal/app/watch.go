package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kk-code-lab/rchat/internal/debuglog"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	"github.com/kk-code-lab/rchat/internal/transcript"
)

// transcriptWatcher calls onChange once a burst of writes to one file has
// settled. It watches the parent directory so editors that save by renaming
// a temporary file over the original are still noticed.
type transcriptWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func newTranscriptWatcher(path string, debounce time.Duration, onChange func()) (*transcriptWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	tw := &transcriptWatcher{
		path:     abs,
		watcher:  watcher,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	tw.wg.Add(1)
	go tw.processEvents()
	debuglog.Logf(debuglog.TopicWatch, "watching %s", abs)
	return tw, nil
}

func (tw *transcriptWatcher) processEvents() {
	defer tw.wg.Done()
	for {
		select {
		case <-tw.done:
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debuglog.Logf(debuglog.TopicWatch, "%s %s", event.Op, event.Name)
				tw.schedule()
			}

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			debuglog.Logf(debuglog.TopicWatch, "watch error: %v", err)
		}
	}
}

func (tw *transcriptWatcher) schedule() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.closed {
		return
	}
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.debounce, tw.onChange)
}

// Close stops watching. A reload that already started runs to completion.
func (tw *transcriptWatcher) Close() error {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return nil
	}
	tw.closed = true
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.mu.Unlock()

	close(tw.done)
	err := tw.watcher.Close()
	tw.wg.Wait()
	return err
}

// reloadTranscript re-reads the transcript and hands a fresh session to the
// loop. It runs off the loop goroutine; reloads never overlap.
func (app *Application) reloadTranscript() {
	app.reloadMu.Lock()
	defer app.reloadMu.Unlock()

	select {
	case <-app.done:
		return
	default:
	}

	thread, err := transcript.Load(app.path)
	if err != nil {
		debuglog.Logf(debuglog.TopicWatch, "reload failed: %v", err)
		app.dispatch(statepkg.SessionReadyAction{Err: fmt.Errorf("reload %s: %w", app.path, err)})
		return
	}
	debuglog.Logf(debuglog.TopicWatch, "reloading %s: %d messages", app.path, thread.Len())
	app.buildSession(thread)
}
