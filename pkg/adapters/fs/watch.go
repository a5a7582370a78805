package fs

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alexmglover/Deep/pkg/core"
)

// DefaultDebounce is how long the watcher coalesces bursts of writes to the
// same document before emitting one event.
const DefaultDebounce = 50 * time.Millisecond

// Watch implements core.Watchable. Events are emitted for vault documents
// whose relative path matches pattern ("" or "*" match everything, "**"
// patterns are supported). The channel is closed when ctx is done.
func (s *Source) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}
	events := make(chan core.Event)
	w := newWatchWorker(s, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	source   *Source
	pattern  string
	events   chan<- core.Event
	watcher  *fsnotify.Watcher
	debounce time.Duration
	cancel   context.CancelFunc
}

func newWatchWorker(s *Source, pattern string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("vault-watcher"),
		source:     s,
		pattern:    pattern,
		events:     events,
		debounce:   DefaultDebounce,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.source.recursiveAdd(watcher); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.source.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           w.pattern,
		}
	})
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.source.logger()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.source.setWatcherActive(false)
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := make(map[string]core.Event)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if e, ok := w.translate(event); ok {
				if prev, seen := pending[e.ID]; seen && prev.Type == core.EventCreate && e.Type == core.EventModify {
					e.Type = core.EventCreate
				}
				pending[e.ID] = e
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			w.source.reportError(wErr)

		case <-ticker.C:
			if !w.flush(ctx, pending) {
				return nil
			}
		}
	}
}

// flush emits pending events ordered by time and id. It reports false when
// ctx ended first.
func (w *watchWorker) flush(ctx context.Context, pending map[string]core.Event) bool {
	if len(pending) == 0 {
		return true
	}
	batch := slices.SortedFunc(maps.Values(pending), func(a, b core.Event) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), strings.Compare(a.ID, b.ID))
	})
	clear(pending)
	for _, e := range batch {
		select {
		case w.events <- e:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// translate maps a raw filesystem event onto a document event. Directories
// created under the vault are added to the watch list.
func (w *watchWorker) translate(event fsnotify.Event) (core.Event, bool) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.source.addTree(w.watcher, event.Name); err != nil {
				w.source.reportError(err)
			}
			return core.Event{}, false
		}
	}

	rel, err := filepath.Rel(w.source.Path, event.Name)
	if err != nil {
		return core.Event{}, false
	}
	rel = filepath.ToSlash(rel)
	if hidden(rel) || sectionOf(rel) == "" {
		return core.Event{}, false
	}
	if _, ok := w.source.serializers[filepath.Ext(rel)]; !ok {
		return core.Event{}, false
	}
	if w.pattern != "" && w.pattern != "*" {
		if ok, _ := doublestar.Match(w.pattern, rel); !ok {
			return core.Event{}, false
		}
	}

	var typ core.EventType
	switch {
	case event.Has(fsnotify.Create):
		typ = core.EventCreate
	case event.Has(fsnotify.Write):
		typ = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.EventDelete
	default:
		return core.Event{}, false
	}
	if typ == core.EventDelete {
		w.source.cache.Delete(rel)
	}
	return core.Event{
		Type:      typ,
		ID:        strings.TrimSuffix(rel, filepath.Ext(rel)),
		Timestamp: time.Now().Unix(),
	}, true
}

func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func (s *Source) recursiveAdd(watcher *fsnotify.Watcher) error {
	return s.addTree(watcher, s.Path)
}

func (s *Source) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.Path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
