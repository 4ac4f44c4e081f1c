package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"canvas/internal/cache"
	"canvas/internal/service"
	"canvas/internal/storage"
)

// docWatcher watches the documents directory for record changes made
// outside the loader (sync clients, a second app instance left open,
// manual edits) and keeps the cache honest: a changed record is
// invalidated so the next load re-reads it, and the UI is told the
// document list should refresh. The loader's own saves echo through
// here as well; that only costs one extra read on the next load.
type docWatcher struct {
	ctx     context.Context
	watcher *fsnotify.Watcher
	docs    *cache.DocumentCache
	emitter service.EventEmitter
	log     *zap.Logger

	// Coalesces bursts of filesystem events into one refresh signal.
	refresh func(func())
	stopCh  chan struct{}
}

func newDocWatcher(
	ctx context.Context,
	store *storage.DocumentStore,
	docs *cache.DocumentCache,
	emitter service.EventEmitter,
	log *zap.Logger,
) (*docWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(store.Dir()); err != nil {
		watcher.Close()
		return nil, err
	}
	return &docWatcher{
		ctx:     ctx,
		watcher: watcher,
		docs:    docs,
		emitter: emitter,
		log:     log,
		refresh: debounce.New(500 * time.Millisecond),
	}, nil
}

// Start begins the event loop. Should be called once on app startup.
func (w *docWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.loop()
}

// Stop terminates the event loop.
func (w *docWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
	}
	w.watcher.Close()
}

func (w *docWatcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("document watcher error", zap.Error(err))
		}
	}
}

func (w *docWatcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, storage.RecordExt) {
		return
	}
	id := strings.TrimSuffix(name, storage.RecordExt)

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.docs.Invalidate(id)
	}
	w.refresh(func() {
		w.emitter.Emit(w.ctx, service.EventDocumentsRefresh, nil)
	})
}
