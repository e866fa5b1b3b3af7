// Package watch re-runs the apply step when a reply file changes on
// disk, and filters workspace walks for context selection.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer coalesces rapid triggers into one callback after a quiet
// window. Editors write a saved file several times in a burst; the
// apply must run once, on the settled content.
type Debouncer struct {
	window time.Duration
	fire   func()

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(window time.Duration, fire func()) *Debouncer {
	return &Debouncer{window: window, fire: fire}
}

// Trigger restarts the quiet window. The callback fires once the window
// elapses with no further triggers.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
		return
	}
	d.timer.Reset(d.window)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

// ReplyWatcher watches a single reply file and invokes onChange after
// each settled edit. The parent directory is watched rather than the
// file itself: most editors save by writing a temp file and renaming it
// over the original, which silently detaches a direct file watch.
type ReplyWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
}

// NewReplyWatcher prepares a watcher for the reply file at path. A
// non-positive debounce falls back to 500ms.
func NewReplyWatcher(path string, debounce time.Duration, onChange func()) (*ReplyWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &ReplyWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *ReplyWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck // nothing to do about a close failure here

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	debouncer := NewDebouncer(w.debounce, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
