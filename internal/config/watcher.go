package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the reloaded config after the watched file
// settles following an edit.
type ChangeCallback func(cfg *Config)

// Watcher reloads the config file when it changes on disk and hands the
// result to a callback. A running `taskd serve` uses it to pick up a changed
// recurrence cadence (sweep_cron) without a restart; other settings in the
// reloaded file are not applied to the running server.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	callback ChangeCallback
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
}

// NewWatcher watches the config file at path and invokes callback with the
// reloaded Config after each settled edit. Parse errors from a reload are
// dropped rather than delivered, since the config that produced them is
// already running and shouldn't be replaced by a broken one.
func NewWatcher(path string, callback ChangeCallback) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		path:     path,
		callback: callback,
		debounce: 300 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for file changes. It returns immediately; events
// are handled on a background goroutine until Stop is called.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
}

// Stop ends the watch.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		return
	}
	if w.callback != nil {
		w.callback(cfg)
	}
}
