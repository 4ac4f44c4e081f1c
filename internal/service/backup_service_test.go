package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"canvas/internal/domain"
	"canvas/internal/service"
	"canvas/internal/storage"
)

func newBackupFixture(t *testing.T, keep int) (*service.BackupService, *storage.DocumentStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewDocumentStore(filepath.Join(root, "documents"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	backupDir := filepath.Join(root, "backups")
	svc := service.NewBackupService(store, backupDir, keep, zap.NewNop())
	return svc, store, backupDir
}

func TestBackupService_RunNowCopiesRecords(t *testing.T) {
	svc, store, _ := newBackupFixture(t, 7)

	for _, id := range []string{"doc-1", "doc-2"} {
		if err := store.Write(&domain.Document{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}

	dest, err := svc.RunNow()
	if err != nil {
		t.Fatal(err)
	}
	if dest == "" {
		t.Fatal("expected a snapshot directory")
	}

	for _, id := range []string{"doc-1", "doc-2"} {
		data, err := os.ReadFile(filepath.Join(dest, id+storage.RecordExt))
		if err != nil {
			t.Fatalf("record %s missing from snapshot: %v", id, err)
		}
		original, err := os.ReadFile(filepath.Join(store.Dir(), id+storage.RecordExt))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != string(original) {
			t.Errorf("snapshot of %s differs from the live record", id)
		}
	}
}

func TestBackupService_SnapshotSkipsAssetDirectories(t *testing.T) {
	svc, store, _ := newBackupFixture(t, 7)

	if err := store.Write(&domain.Document{ID: "doc-1", Title: "x"}); err != nil {
		t.Fatal(err)
	}
	assetDir := filepath.Dir(store.ImagePath("doc-1", "banner.png"))
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		t.Fatal(err)
	}

	dest, err := svc.RunNow()
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc-1"+storage.RecordExt {
		t.Errorf("expected the record only, got %v", entries)
	}
}

func TestBackupService_PruneKeepsNewest(t *testing.T) {
	svc, store, backupDir := newBackupFixture(t, 2)

	if err := store.Write(&domain.Document{ID: "doc-1", Title: "x"}); err != nil {
		t.Fatal(err)
	}

	// Fake older snapshots; names sort chronologically.
	for _, name := range []string{"20200101-000000", "20200102-000000", "20200103-000000"} {
		if err := os.MkdirAll(filepath.Join(backupDir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	dest, err := svc.RunNow()
	if err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 retained snapshots, got %d", len(entries))
	}
	names := []string{entries[0].Name(), entries[1].Name()}
	if names[0] != "20200103-000000" && names[1] != "20200103-000000" {
		t.Errorf("expected newest fake snapshot retained, got %v", names)
	}
	kept := filepath.Base(dest)
	if names[0] != kept && names[1] != kept {
		t.Errorf("expected the fresh snapshot retained, got %v", names)
	}
}
