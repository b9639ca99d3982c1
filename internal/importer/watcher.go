package importer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/livesearch"
)

// DefaultSettle is how long a file must stay unchanged before it is imported.
const DefaultSettle = 400 * time.Millisecond

// Watcher imports matching files dropped into its directories. Editors and
// copies produce bursts of write events, so each path is debounced.
type Watcher struct {
	dirs       []string
	extensions []string
	onFile     func(path string)
	settle     time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	debounce *livesearch.Debouncer
	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets a logger for watcher events.
func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSettle sets the per-file debounce window.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// NewWatcher watches dirs (created if missing) and calls onFile for each
// settled file whose extension is in extensions (empty means DefaultExtensions).
func NewWatcher(dirs, extensions []string, onFile func(path string), opts ...WatcherOption) *Watcher {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	w := &Watcher{
		dirs:       dirs,
		extensions: extensions,
		onFile:     onFile,
		settle:     DefaultSettle,
		logger:     zap.NewNop(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debounce = livesearch.NewDebouncer(w.settle)
	return w
}

// WatchImports wires a Watcher to an Importer, logging each result.
func WatchImports(ctx context.Context, imp *Importer, dirs, extensions []string, opts ...WatcherOption) *Watcher {
	var w *Watcher
	w = NewWatcher(dirs, extensions, func(path string) {
		res, err := imp.ImportFile(ctx, path)
		if err != nil {
			w.logger.Warn("import failed", zap.String("path", path), zap.Error(err))
			return
		}
		for _, rowErr := range res.Errors {
			w.logger.Warn("import row rejected", zap.String("path", path), zap.Int("row", rowErr.Row), zap.String("error", rowErr.Err))
		}
	}, opts...)
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			_ = fsw.Close()
			return err
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	w.fsw = fsw
	w.logger.Debug("import watcher starting", zap.Strings("dirs", w.dirs), zap.Strings("extensions", w.extensions))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("import watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.debounce.Cancel(path)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if !w.matches(path) {
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		w.logger.Debug("import watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
		w.debounce.Trigger(path, func() { w.onFile(path) })
	}
}

func (w *Watcher) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if "."+strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// SyncExisting imports files already present in the watched directories.
func (w *Watcher) SyncExisting() {
	for _, dir := range w.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if w.matches(path) {
				w.onFile(path)
			}
			return nil
		})
	}
}

// Stop stops watching and drops pending imports.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()
	w.debounce.Stop()
	if fsw != nil {
		_ = fsw.Close()
	}
	w.stopOnce.Do(func() { close(w.done) })
}
