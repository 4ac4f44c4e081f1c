package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Backup Service — scheduled snapshots of the document corpus
// ─────────────────────────────────────────────────────────────

// DefaultBackupSchedule runs one snapshot per day.
const DefaultBackupSchedule = "@daily"

const backupTimestampLayout = "20060102-150405"

// BackupService periodically copies every record file into a
// timestamped snapshot directory and prunes old snapshots. Snapshots
// cover records only; per-document asset directories are skipped
// (images are replaceable, records are not).
type BackupService struct {
	store *storage.DocumentStore
	dir   string // snapshots root
	keep  int    // snapshots retained after prune
	log   *zap.Logger

	sched   *cron.Cron
	running runGuard
}

// NewBackupService creates a BackupService writing snapshots under dir,
// keeping the newest keep snapshots.
func NewBackupService(store *storage.DocumentStore, dir string, keep int, log *zap.Logger) *BackupService {
	if keep <= 0 {
		keep = 7
	}
	return &BackupService{store: store, dir: dir, keep: keep, log: log}
}

// Start schedules snapshots with a cron expression. An empty schedule
// uses DefaultBackupSchedule.
func (s *BackupService) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultBackupSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.RunNow(); err != nil {
			s.log.Error("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	s.sched = c
	s.log.Info("backups scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop tears down the scheduler and waits for an in-flight snapshot.
func (s *BackupService) Stop(ctx context.Context) {
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
	s.running.WaitAll(ctx)
}

// RunNow takes one snapshot immediately and returns its directory.
// A snapshot already in progress is not doubled up; RunNow returns ""
// without error.
func (s *BackupService) RunNow() (string, error) {
	if !s.running.TryLock("backup") {
		return "", nil
	}
	defer s.running.Unlock("backup")

	ids, err := s.store.EnumerateIDs()
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, time.Now().Format(backupTimestampLayout))
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	copied := 0
	for _, id := range ids {
		name := id + storage.RecordExt
		if err := copyFile(filepath.Join(s.store.Dir(), name), filepath.Join(dest, name)); err != nil {
			s.log.Warn("snapshot skipped a record",
				zap.String("documentID", id),
				zap.Error(err))
			continue
		}
		copied++
	}

	if err := s.prune(); err != nil {
		s.log.Warn("snapshot prune failed", zap.Error(err))
	}

	s.log.Info("snapshot complete",
		zap.String("dir", dest),
		zap.Int("records", copied))
	return dest, nil
}

// prune removes the oldest snapshots beyond the retention count.
// Snapshot directory names sort chronologically by construction.
func (s *BackupService) prune() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	var snapshots []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			snapshots = append(snapshots, e.Name())
		}
	}
	if len(snapshots) <= s.keep {
		return nil
	}
	sort.Strings(snapshots)
	for _, name := range snapshots[:len(snapshots)-s.keep] {
		if err := os.RemoveAll(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
