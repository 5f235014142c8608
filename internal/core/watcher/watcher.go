// Package watcher re-runs checks when source files under a project change.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"layerguard/internal/core/config"
	"layerguard/internal/core/errors"
	"layerguard/internal/engine/parser"
	"layerguard/internal/shared/observability"
	"layerguard/internal/shared/util"
)

const DefaultDebounce = 300 * time.Millisecond

// Filter decides which paths are watched. *walker.Walker satisfies it, so the
// watcher ignores exactly what a check ignores.
type Filter interface {
	SkipDir(name string) bool
	Excluded(rel string) bool
}

// Watcher collects file events under root and, once the tree has been quiet
// for the debounce interval, calls onChange with the root-relative paths that
// changed. Callbacks never overlap.
type Watcher struct {
	root      string
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	filter    Filter
	// configNames trigger a flush even though they are not source files.
	configNames map[string]bool
	onChange    func([]string)
	callbackMu  sync.Mutex
	logger      *slog.Logger

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
}

func NewWatcher(root string, debounce time.Duration, filter Filter, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New(errors.CodeValidationError, "watcher needs a change callback")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "resolve watch root"), errors.CtxPath, root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create file watcher")
	}

	names := make(map[string]bool, len(config.CandidateFiles))
	for _, name := range config.CandidateFiles {
		names[name] = true
	}
	return &Watcher{
		root:        absRoot,
		fsWatcher:   fsw,
		debounce:    debounce,
		filter:      filter,
		configNames: names,
		onChange:    onChange,
		logger:      slog.Default(),
		pending:     make(map[string]time.Time),
	}, nil
}

// SetLogger routes watcher diagnostics, e.g. to the UI log file.
func (w *Watcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Watch registers every non-excluded directory under the root and starts the
// event loop.
func (w *Watcher) Watch() error {
	if err := w.watchRecursive(w.root); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "watch project"), errors.CtxPath, w.root)
	}
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Has(fsnotify.Create) {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		if rel, ok := w.rel(path); ok {
			paths = append(paths, rel)
		}
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := util.RelSlash(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	if w.filter == nil {
		return false
	}
	if w.filter.SkipDir(filepath.Base(path)) {
		return true
	}
	rel, ok := w.rel(path)
	return ok && w.filter.Excluded(rel)
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)
	if w.configNames[base] && filepath.Dir(path) == w.root {
		return false
	}
	if !parser.IsSourceFile(base) {
		return true
	}
	if w.filter == nil {
		return false
	}
	rel, ok := w.rel(path)
	return !ok || w.filter.Excluded(rel)
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
