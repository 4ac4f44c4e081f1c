package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"canvas/internal/cache"
	"canvas/internal/domain"
	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Document Service — load/save/delete orchestration
// ─────────────────────────────────────────────────────────────

// DocumentService is the only component that performs a disk read for a
// document id outside of store-internal enumeration. A load runs:
// cache check → store read → header-image preload → cache populate →
// return, with the preload strictly ordered before the document is
// handed back, so an expanded header never appears before its image is
// resident.
type DocumentService struct {
	store   *storage.DocumentStore
	docs    *cache.DocumentCache
	images  *cache.ImageCache
	emitter EventEmitter
	log     *zap.Logger

	// Collapses concurrent loads of the same id into one store read
	// and one image decode.
	loads singleflight.Group
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	store *storage.DocumentStore,
	docs *cache.DocumentCache,
	images *cache.ImageCache,
	emitter EventEmitter,
	log *zap.Logger,
) *DocumentService {
	return &DocumentService{
		store:   store,
		docs:    docs,
		images:  images,
		emitter: emitter,
		log:     log,
	}
}

// LoadDocument returns the document for id, reading from disk only on a
// cache miss. Propagates ErrNotFound/ErrCorrupt; never populates any
// cache on failure.
func (s *DocumentService) LoadDocument(ctx context.Context, id string) (*domain.Document, error) {
	if doc, ok := s.docs.Get(id); ok {
		// Resident document may still need its header image (e.g. the
		// flag flipped since the last load). Cheap when already cached.
		s.preloadHeaderImage(doc)
		s.emitter.Emit(ctx, EventDocumentLoaded, doc.ID)
		return doc, nil
	}

	v, err, _ := s.loads.Do(id, func() (any, error) {
		doc, err := s.store.Read(id)
		if err != nil {
			return nil, err
		}
		s.preloadHeaderImage(doc)
		s.docs.Put(id, doc)
		return doc, nil
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("document load failed",
				zap.String("documentID", id),
				zap.Error(err))
		}
		return nil, err
	}

	doc := v.(*domain.Document)
	s.emitter.Emit(ctx, EventDocumentLoaded, doc.ID)
	return doc, nil
}

// CreateDocument mints a new document, persists it, and makes it
// resident.
func (s *DocumentService) CreateDocument(ctx context.Context, title string) (*domain.Document, error) {
	now := time.Now()
	doc := &domain.Document{
		ID:            uuid.New().String(),
		SchemaVersion: domain.CurrentSchemaVersion,
		Title:         title,
		Elements: []domain.Element{
			{Type: domain.ElementTypeText, Content: "", Placeholder: "Start writing..."},
		},
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.store.Write(doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.docs.Put(doc.ID, doc)
	s.emitter.Emit(ctx, EventDocumentSaved, doc.ID)
	return doc, nil
}

// SaveDocument refreshes the modified timestamp, overwrites the record
// for doc.ID, and updates the cache so a subsequent load returns
// exactly what was saved.
func (s *DocumentService) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("save document: empty id")
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.ModifiedAt = now

	if err := s.store.Write(doc); err != nil {
		s.log.Error("document save failed",
			zap.String("documentID", doc.ID),
			zap.Error(err))
		return err
	}
	s.docs.Put(doc.ID, doc)
	s.emitter.Emit(ctx, EventDocumentSaved, doc.ID)
	return nil
}

// DeleteDocument removes the record, its asset directory, and every
// cache entry keyed by the id. Idempotent.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if err := s.store.DeleteAssets(id); err != nil {
		// Record is gone; a leftover asset dir is not worth failing over.
		s.log.Warn("asset cleanup failed",
			zap.String("documentID", id),
			zap.Error(err))
	}
	s.docs.Invalidate(id)
	s.images.InvalidateDocument(id)
	s.emitter.Emit(ctx, EventDocumentDeleted, id)
	return nil
}

// ListDocuments loads every document in the store, for the
// "all documents" context. Corrupt records are skipped, not fatal.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]*domain.Document, error) {
	ids, err := s.store.EnumerateIDs()
	if err != nil {
		return nil, err
	}
	docs := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.LoadDocument(ctx, id)
		if err != nil {
			s.log.Warn("skipping unreadable document",
				zap.String("documentID", id),
				zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	s.emitter.Emit(ctx, EventDocumentsRefresh, len(docs))
	return docs, nil
}

// preloadHeaderImage makes the header image resident before the
// document is published. Only documents presented with an expanded
// header need it. Failure is absorbed: the document loads without its
// image rather than not at all.
func (s *DocumentService) preloadHeaderImage(doc *domain.Document) {
	if !doc.IsHeaderExpanded {
		return
	}
	el := doc.HeaderImageElement()
	if el == nil {
		return
	}

	key := cache.CompositeImageKey(doc.ID, el.Content)
	if _, ok := s.images.Get(key); ok {
		return
	}

	img, err := decodeImageFile(s.store.ImagePath(doc.ID, el.Content))
	if err != nil {
		s.log.Warn("header image unavailable",
			zap.String("documentID", doc.ID),
			zap.String("filename", el.Content),
			zap.Error(err))
		return
	}
	s.images.Put(key, img)
	s.images.Put(el.Content, img)
}
