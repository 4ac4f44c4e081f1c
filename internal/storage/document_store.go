package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"canvas/internal/domain"
)

// DocumentStore persists documents as one record file per id under an
// application-owned directory. It never touches the in-memory caches;
// cache population and invalidation belong to the services layer.
type DocumentStore struct {
	dir string
}

// NewDocumentStore opens (or creates) the documents directory.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Dir returns the documents root directory.
func (s *DocumentStore) Dir() string {
	return s.dir
}

func (s *DocumentStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+RecordExt)
}

// ImagePath returns the asset path for a document's image file.
// Assets live in a per-document directory: <dir>/<id>/Images/<filename>.
func (s *DocumentStore) ImagePath(documentID, filename string) string {
	return filepath.Join(s.dir, documentID, imagesDirName, filename)
}

// Write serializes doc and replaces its record atomically, so a reader
// never observes a half-written record. Overwrites any prior record for
// the same id.
func (s *DocumentStore) Write(doc *domain.Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create documents directory: %w", err)
	}
	if err := atomic.WriteFile(s.recordPath(doc.ID), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write record %s: %w", doc.ID, err)
	}
	return nil
}

// Read loads and decodes the record for id.
// Returns ErrNotFound if no record exists, ErrCorrupt if decode fails.
func (s *DocumentStore) Read(id string) (*domain.Document, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read record %s: %w", id, err)
	}
	return DecodeDocument(data)
}

// EnumerateIDs lists every record id currently on disk. Order is
// unspecified; callers must not depend on it.
func (s *DocumentStore) EnumerateIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list documents directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), RecordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), RecordExt))
	}
	return ids, nil
}

// Delete removes the record for id. A no-op if it is already absent.
func (s *DocumentStore) Delete(id string) error {
	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// DeleteAssets removes the per-document asset directory (header images).
func (s *DocumentStore) DeleteAssets(id string) error {
	if id == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
		return fmt.Errorf("delete assets %s: %w", id, err)
	}
	return nil
}
