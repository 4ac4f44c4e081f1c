package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"canvas/internal/cache"
	"canvas/internal/domain"
	"canvas/internal/service"
	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// App — wiring and the public operation surface
// ─────────────────────────────────────────────────────────────

// Config carries everything App needs at startup. Zero values get
// sensible defaults in Startup.
type Config struct {
	// DataDir is the application-private root. Documents live under
	// DataDir/documents, snapshots under DataDir/backups, settings in
	// DataDir/canvas.db.
	DataDir string

	// SearchDebounce overrides the search settle delay. Zero means
	// service.DefaultSearchDebounce.
	SearchDebounce time.Duration

	// BackupSchedule is a cron expression. Empty means daily.
	// "off" disables scheduled backups.
	BackupSchedule string

	Logger *zap.Logger
}

// App owns the subsystem's components and exposes the operation surface
// the presentation layer consumes. It implements service.EventEmitter
// by fanning every event out to registered observers, so the set of
// events is a typed contract instead of ambient notification names.
type App struct {
	ctx context.Context
	cfg Config
	log *zap.Logger

	db      *storage.DB
	store   *storage.DocumentStore
	folders *storage.FolderStore

	docCache   *cache.DocumentCache
	imageCache *cache.ImageCache

	documents  *service.DocumentService
	search     *service.SearchService
	folderSvc  *service.FolderService
	backups    *service.BackupService
	backupsOff bool

	watcher *docWatcher

	subsMu sync.Mutex
	subs   []func(event string, data any)
}

// New creates an App. Call Startup before use.
func New(cfg Config) *App {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{log: log}
	a.configure(cfg)
	return a
}

func (a *App) configure(cfg Config) {
	if cfg.DataDir == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "canvas")
	}
	a.cfg = cfg
}

// Startup opens storage and constructs every service. The caches are
// built here and injected; nothing in the subsystem reaches for global
// state.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx
	cfg := a.cfg

	db, err := storage.New(filepath.Join(cfg.DataDir, "canvas.db"))
	if err != nil {
		return err
	}
	a.db = db

	store, err := storage.NewDocumentStore(filepath.Join(cfg.DataDir, "documents"))
	if err != nil {
		db.Close()
		return err
	}
	a.store = store

	settings := storage.NewSettingsStore(db)
	a.folders = storage.NewFolderStore(settings)

	a.docCache = cache.NewDocumentCache()
	a.imageCache = cache.NewImageCache()

	a.documents = service.NewDocumentService(store, a.docCache, a.imageCache, a, a.log)
	a.search = service.NewSearchService(store, a.docCache, a, a.log, cfg.SearchDebounce)
	a.folderSvc = service.NewFolderService(a.folders, a, a.log)

	a.backupsOff = cfg.BackupSchedule == "off"
	a.backups = service.NewBackupService(store, filepath.Join(cfg.DataDir, "backups"), 7, a.log)
	if !a.backupsOff {
		if err := a.backups.Start(cfg.BackupSchedule); err != nil {
			a.log.Warn("backups disabled", zap.Error(err))
		}
	}

	watcher, err := newDocWatcher(ctx, store, a.docCache, a, a.log)
	if err != nil {
		a.log.Warn("document watcher unavailable", zap.Error(err))
	} else {
		a.watcher = watcher
		a.watcher.Start()
	}

	return nil
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.search != nil {
		a.search.Stop()
	}
	if a.backups != nil {
		a.backups.Stop(ctx)
	}
	if a.db != nil {
		a.db.Close()
	}
}

// ── Eventing ───────────────────────────────────────────────

// Subscribe registers an observer for every subsystem event. Events are
// fire-and-forget; observers must not block.
func (a *App) Subscribe(fn func(event string, data any)) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	a.subs = append(a.subs, fn)
}

// Emit implements service.EventEmitter.
func (a *App) Emit(_ context.Context, event string, data any) {
	a.subsMu.Lock()
	subs := make([]func(string, any), len(a.subs))
	copy(subs, a.subs)
	a.subsMu.Unlock()

	for _, fn := range subs {
		fn(event, data)
	}
}

// ── Documents ──────────────────────────────────────────────

func (a *App) LoadDocument(id string) (*domain.Document, error) {
	return a.documents.LoadDocument(a.ctx, id)
}

func (a *App) CreateDocument(title string) (*domain.Document, error) {
	return a.documents.CreateDocument(a.ctx, title)
}

func (a *App) SaveDocument(doc *domain.Document) error {
	return a.documents.SaveDocument(a.ctx, doc)
}

func (a *App) DeleteDocument(id string) error {
	return a.documents.DeleteDocument(a.ctx, id)
}

func (a *App) ListDocuments() ([]*domain.Document, error) {
	return a.documents.ListDocuments(a.ctx)
}

// ── Search ─────────────────────────────────────────────────

// Search schedules a debounced scan; results arrive as an
// EventSearchResults emission. A newer query cancels the previous scan.
func (a *App) Search(query string) {
	a.search.Search(query)
}

// ── Folders ────────────────────────────────────────────────

func (a *App) ListFolders() ([]domain.Folder, error) {
	return a.folderSvc.ListFolders()
}

func (a *App) AddFolder(name string, parentID *string) (*domain.Folder, error) {
	return a.folderSvc.AddFolder(a.ctx, name, parentID)
}

func (a *App) RenameFolder(id, name string) error {
	return a.folderSvc.RenameFolder(a.ctx, id, name)
}

func (a *App) AddDocumentToFolder(folderID, documentID string) error {
	return a.folderSvc.AddDocument(a.ctx, folderID, documentID)
}

func (a *App) RemoveDocumentFromFolder(folderID, documentID string) error {
	return a.folderSvc.RemoveDocument(a.ctx, folderID, documentID)
}

func (a *App) DeleteFolder(id string) error {
	return a.folderSvc.DeleteFolder(a.ctx, id)
}

// ── Backups ────────────────────────────────────────────────

// BackupNow takes an immediate snapshot, returning its directory.
func (a *App) BackupNow() (string, error) {
	return a.backups.RunNow()
}
