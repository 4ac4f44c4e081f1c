package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"canvas/internal/cache"
	"canvas/internal/domain"
	"canvas/internal/service"
	"canvas/internal/storage"
)

func newFolderService(t *testing.T) (*service.FolderService, *service.MockEmitter) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "canvas.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := storage.NewFolderStore(storage.NewSettingsStore(db))
	emitter := &service.MockEmitter{}
	return service.NewFolderService(store, emitter, zap.NewNop()), emitter
}

func findFolder(folders []domain.Folder, id string) *domain.Folder {
	for i := range folders {
		if folders[i].ID == id {
			return &folders[i]
		}
	}
	return nil
}

func TestFolderService_AddRootAndChild(t *testing.T) {
	svc, emitter := newFolderService(t)
	ctx := context.Background()

	root, err := svc.AddFolder(ctx, "Sermons", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsRoot() {
		t.Error("expected a root folder")
	}

	child, err := svc.AddFolder(ctx, "Easter", &root.ID)
	if err != nil {
		t.Fatal(err)
	}

	folders, err := svc.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	gotRoot := findFolder(folders, root.ID)
	if gotRoot == nil || len(gotRoot.SubfolderIDs) != 1 || gotRoot.SubfolderIDs[0] != child.ID {
		t.Errorf("expected child registered under root, got %+v", gotRoot)
	}
	gotChild := findFolder(folders, child.ID)
	if gotChild == nil || gotChild.ParentID == nil || *gotChild.ParentID != root.ID {
		t.Errorf("expected child's parent id set, got %+v", gotChild)
	}

	events := emitter.Recorded()
	if len(events) == 0 || events[len(events)-1].Event != service.EventFoldersUpdated {
		t.Error("expected folders:updated emissions")
	}
}

func TestFolderService_AddFolderUnknownParentFails(t *testing.T) {
	svc, _ := newFolderService(t)

	ghost := "no-such-folder"
	_, err := svc.AddFolder(context.Background(), "Orphan", &ghost)
	if !errors.Is(err, storage.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}

	// No silent root-level fallback.
	folders, err := svc.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 0 {
		t.Errorf("expected no folder created, got %+v", folders)
	}
}

func TestFolderService_DocumentMembershipIsASet(t *testing.T) {
	svc, _ := newFolderService(t)
	ctx := context.Background()

	folder, err := svc.AddFolder(ctx, "Sermons", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.AddDocument(ctx, folder.ID, "doc-1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddDocument(ctx, folder.ID, "doc-1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddDocument(ctx, folder.ID, "doc-2"); err != nil {
		t.Fatal(err)
	}

	folders, _ := svc.ListFolders()
	got := findFolder(folders, folder.ID)
	if len(got.DocumentIDs) != 2 {
		t.Errorf("expected set semantics, got %v", got.DocumentIDs)
	}

	if err := svc.RemoveDocument(ctx, folder.ID, "doc-1"); err != nil {
		t.Fatal(err)
	}
	folders, _ = svc.ListFolders()
	got = findFolder(folders, folder.ID)
	if len(got.DocumentIDs) != 1 || got.DocumentIDs[0] != "doc-2" {
		t.Errorf("expected only doc-2 left, got %v", got.DocumentIDs)
	}
}

func TestFolderService_MutateUnknownFolderFails(t *testing.T) {
	svc, _ := newFolderService(t)
	ctx := context.Background()

	if err := svc.AddDocument(ctx, "ghost", "doc-1"); !errors.Is(err, storage.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
	if err := svc.RenameFolder(ctx, "ghost", "x"); !errors.Is(err, storage.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
	if err := svc.DeleteFolder(ctx, "ghost"); !errors.Is(err, storage.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestFolderService_DeleteFolderRemovesSubtreeOnly(t *testing.T) {
	svc, _ := newFolderService(t)
	ctx := context.Background()

	root, _ := svc.AddFolder(ctx, "Root", nil)
	doomed, _ := svc.AddFolder(ctx, "Doomed", &root.ID)
	grandchild, _ := svc.AddFolder(ctx, "Grandchild", &doomed.ID)
	sibling, _ := svc.AddFolder(ctx, "Sibling", &root.ID)

	if err := svc.DeleteFolder(ctx, doomed.ID); err != nil {
		t.Fatal(err)
	}

	folders, err := svc.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if findFolder(folders, doomed.ID) != nil || findFolder(folders, grandchild.ID) != nil {
		t.Error("expected the whole subtree removed")
	}
	if findFolder(folders, root.ID) == nil || findFolder(folders, sibling.ID) == nil {
		t.Error("expected root and sibling to survive")
	}

	gotRoot := findFolder(folders, root.ID)
	for _, cid := range gotRoot.SubfolderIDs {
		if cid == doomed.ID {
			t.Error("expected dangling child reference detached from root")
		}
	}
}

func TestFolderService_DeleteFolderLeavesDocumentsLoadable(t *testing.T) {
	svc, _ := newFolderService(t)
	ctx := context.Background()

	// Documents live in their own store; the folder only references them.
	docStore, err := storage.NewDocumentStore(filepath.Join(t.TempDir(), "documents"))
	if err != nil {
		t.Fatal(err)
	}
	docSvc := service.NewDocumentService(
		docStore, cache.NewDocumentCache(), cache.NewImageCache(),
		&service.MockEmitter{}, zap.NewNop(),
	)
	doc, err := docSvc.CreateDocument(ctx, "Keep Me")
	if err != nil {
		t.Fatal(err)
	}

	folder, _ := svc.AddFolder(ctx, "Doomed", nil)
	if err := svc.AddDocument(ctx, folder.ID, doc.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatal(err)
	}

	got, err := docSvc.LoadDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("document must survive folder deletion: %v", err)
	}
	if got.Title != "Keep Me" {
		t.Errorf("unexpected document %+v", got)
	}
}
