package vocabulary

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for further writes before
// reloading, so that editors saving multiple files trigger one reload.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the vocabulary set when YAML files in the data directory
// change. Daemon mode uses it so vocabulary updates do not require a
// restart; one-shot runs never construct one.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// onReload receives the freshly loaded set. Load errors are logged and
	// the previous set stays in effect.
	onReload func(*Set)

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher over dir. onReload is invoked with each
// successfully reloaded Set.
func NewWatcher(dir string, logger *slog.Logger, onReload func(*Set)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		debounce: defaultDebounce,
		watcher:  fsw,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Start begins watching. It returns after registering the watch; event
// processing runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents(ctx)
	w.logger.Info("Vocabulary watcher started", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("Vocabulary file changed", "file", event.Name, "op", event.Op.String())
			w.pendingMu.Lock()
			if !w.pending {
				w.pending = true
				timer.Reset(w.debounce)
			}
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Vocabulary watcher error", "error", err)

		case <-timer.C:
			w.pendingMu.Lock()
			w.pending = false
			w.pendingMu.Unlock()
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	set, err := LoadDir(w.dir)
	if err != nil {
		w.logger.Error("Vocabulary reload failed, keeping previous set", "dir", w.dir, "error", err)
		return
	}
	w.logger.Info("Vocabularies reloaded", "dir", w.dir)
	w.onReload(set)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
