package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked with the freshly parsed configuration after the
// watched file changes. Intervals and alert thresholds take effect on the
// next tick of whatever consumes them.
type ReloadFunc func(cfg *Config)

// Watcher hot-reloads the configuration file
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	callbacks []ReloadFunc
	mu        sync.Mutex
	cancel    context.CancelFunc
}

// NewWatcher creates a watcher for the given config file path
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path}
}

// OnReload registers a callback for config changes
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start begins watching. The containing directory is watched rather than
// the file itself so that editors doing atomic rename-replace still
// trigger a reload.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = watcher

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	return nil
}

// Stop stops watching
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				// Half-written file mid-save; the next event retries
				continue
			}
			w.mu.Lock()
			callbacks := append([]ReloadFunc(nil), w.callbacks...)
			w.mu.Unlock()
			for _, fn := range callbacks {
				fn(cfg)
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
