// Package worker runs background maintenance alongside the HTTP server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hyperengineering/slate/internal/metrics"
	"github.com/hyperengineering/slate/internal/store"
)

// BackupStore defines the store operations needed by the backup worker.
type BackupStore interface {
	Backup(ctx context.Context, dir string) (string, error)
}

// BackupWorker writes periodic copies of the database into a directory and
// keeps only the newest few.
type BackupWorker struct {
	store    BackupStore
	dir      string
	interval time.Duration
	keep     int
}

// NewBackupWorker creates a worker that backs up into dir every interval,
// retaining keep files.
func NewBackupWorker(s BackupStore, dir string, interval time.Duration, keep int) *BackupWorker {
	if keep < 1 {
		keep = 1
	}
	return &BackupWorker{
		store:    s,
		dir:      dir,
		interval: interval,
		keep:     keep,
	}
}

// Run starts the worker loop. Backs up immediately on start, then on each
// interval. Blocks until ctx is cancelled.
func (w *BackupWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "backup",
		"interval", w.interval.String(),
		"dir", w.dir,
		"keep", w.keep,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.backup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "backup",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.backup(ctx)
		}
	}
}

func (w *BackupWorker) backup(ctx context.Context) {
	start := time.Now()
	path, err := w.store.Backup(ctx, w.dir)
	if err != nil {
		// Shutdown mid-backup is not a failure.
		if ctx.Err() != nil {
			return
		}
		metrics.RecordBackup(err)
		slog.Warn("backup failed",
			"component", "worker",
			"action", "backup_failed",
			"error", err,
		)
		return
	}
	metrics.RecordBackup(nil)

	removed, err := Prune(w.dir, w.keep)
	if err != nil {
		slog.Warn("backup prune failed",
			"component", "worker",
			"action", "prune_failed",
			"error", err,
		)
	}

	slog.Info("backup completed",
		"component", "worker",
		"action", "backup_done",
		"path", path,
		"pruned", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Prune deletes all but the newest keep backup files in dir and returns how
// many were removed. Backup names embed a sortable timestamp, so name order
// is age order. Files that do not look like backups are left alone.
func Prune(dir string, keep int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, store.BackupPrefix) && strings.HasSuffix(name, store.BackupExt) {
			names = append(names, name)
		}
	}
	if len(names) <= keep {
		return 0, nil
	}
	sort.Strings(names)

	removed := 0
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}
