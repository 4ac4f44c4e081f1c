package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"canvas/internal/domain"
	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Folder Service — hierarchical index over documents
// ─────────────────────────────────────────────────────────────

// FolderService maintains the folder forest. Folders reference
// documents by id only; no folder operation ever touches the document
// store. Every mutation is load-modify-save against the settings-backed
// FolderStore, followed by a folders-updated event.
type FolderService struct {
	store   *storage.FolderStore
	emitter EventEmitter
	log     *zap.Logger
}

// NewFolderService creates a FolderService.
func NewFolderService(store *storage.FolderStore, emitter EventEmitter, log *zap.Logger) *FolderService {
	return &FolderService{store: store, emitter: emitter, log: log}
}

// ListFolders returns the whole forest.
func (s *FolderService) ListFolders() ([]domain.Folder, error) {
	return s.store.Load()
}

// AddFolder creates a folder under parentID, or at the root when
// parentID is nil. A parentID that does not resolve fails with
// ErrFolderNotFound; there is no silent fallback to root.
func (s *FolderService) AddFolder(ctx context.Context, name string, parentID *string) (*domain.Folder, error) {
	folders, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	if parentID != nil && indexOf(folders, *parentID) < 0 {
		return nil, fmt.Errorf("%w: parent %s", storage.ErrFolderNotFound, *parentID)
	}

	folder := domain.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}
	folders = append(folders, folder)

	if parentID != nil {
		i := indexOf(folders, *parentID)
		folders[i].SubfolderIDs = append(folders[i].SubfolderIDs, folder.ID)
	}

	if err := s.store.Save(folders); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventFoldersUpdated, folder.ID)
	return &folder, nil
}

// RenameFolder changes a folder's display name.
func (s *FolderService) RenameFolder(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(f *domain.Folder) {
		f.Name = name
	})
}

// AddDocument records documentID as a member of the folder. Membership
// is a set: adding twice is a no-op.
func (s *FolderService) AddDocument(ctx context.Context, folderID, documentID string) error {
	return s.mutate(ctx, folderID, func(f *domain.Folder) {
		if !f.HasDocument(documentID) {
			f.DocumentIDs = append(f.DocumentIDs, documentID)
		}
	})
}

// RemoveDocument drops documentID from the folder's membership set.
// The document itself is untouched.
func (s *FolderService) RemoveDocument(ctx context.Context, folderID, documentID string) error {
	return s.mutate(ctx, folderID, func(f *domain.Folder) {
		kept := f.DocumentIDs[:0]
		for _, id := range f.DocumentIDs {
			if id != documentID {
				kept = append(kept, id)
			}
		}
		f.DocumentIDs = kept
	})
}

// DeleteFolder removes the folder and its whole subfolder subtree.
// Member document-id sets are discarded; the documents they reference
// stay loadable.
func (s *FolderService) DeleteFolder(ctx context.Context, id string) error {
	folders, err := s.store.Load()
	if err != nil {
		return err
	}
	if indexOf(folders, id) < 0 {
		return fmt.Errorf("%w: %s", storage.ErrFolderNotFound, id)
	}

	doomed := subtreeIDs(folders, id)

	kept := folders[:0]
	for _, f := range folders {
		if doomed[f.ID] {
			continue
		}
		// Detach dangling child references.
		children := f.SubfolderIDs[:0]
		for _, cid := range f.SubfolderIDs {
			if !doomed[cid] {
				children = append(children, cid)
			}
		}
		f.SubfolderIDs = children
		kept = append(kept, f)
	}

	if err := s.store.Save(kept); err != nil {
		return err
	}
	s.log.Info("folder deleted",
		zap.String("folderID", id),
		zap.Int("removedNodes", len(doomed)))
	s.emitter.Emit(ctx, EventFoldersUpdated, id)
	return nil
}

// mutate applies fn to one folder and saves the forest.
func (s *FolderService) mutate(ctx context.Context, id string, fn func(*domain.Folder)) error {
	folders, err := s.store.Load()
	if err != nil {
		return err
	}
	i := indexOf(folders, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storage.ErrFolderNotFound, id)
	}
	fn(&folders[i])
	if err := s.store.Save(folders); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventFoldersUpdated, id)
	return nil
}

func indexOf(folders []domain.Folder, id string) int {
	for i := range folders {
		if folders[i].ID == id {
			return i
		}
	}
	return -1
}

// subtreeIDs collects id and every transitive descendant.
func subtreeIDs(folders []domain.Folder, id string) map[string]bool {
	children := make(map[string][]string, len(folders))
	for _, f := range folders {
		children[f.ID] = f.SubfolderIDs
	}

	doomed := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, cid := range children[next] {
			if !doomed[cid] {
				doomed[cid] = true
				queue = append(queue, cid)
			}
		}
	}
	return doomed
}
