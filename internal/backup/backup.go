// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package backup snapshots and restores the live settings file.
//
// Backups sit next to the live file as <name>.<UTC timestamp>.bak, so the
// directory listing alone is the backup index. Only names that match that
// pattern exactly count as backups; stray temporary files are ignored.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/fsutil"
	"github.com/ManuGH/e33config/internal/ini"
	"github.com/ManuGH/e33config/internal/log"
)

const (
	// TimestampLayout is the UTC timestamp embedded in backup names.
	TimestampLayout = "20060102T150405.000000000Z"
	suffix          = ".bak"
)

// Record describes one backup file.
type Record struct {
	Path         string              `json:"path"`
	Distribution distro.Distribution `json:"distribution"`
	CreatedAt    time.Time           `json:"createdAt"`
	Size         int64               `json:"size"`
}

// Name is the backup's file name.
func (r Record) Name() string { return filepath.Base(r.Path) }

// Manager creates, lists and restores backups.
type Manager struct {
	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a backup manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the backup file name for live file base at t.
func Name(base string, t time.Time) string {
	return base + "." + t.UTC().Format(TimestampLayout) + suffix
}

// parseName extracts the timestamp from a backup name of live file base.
func parseName(base, name string) (time.Time, bool) {
	prefix := base + "."
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	if len(stamp) != len(TimestampLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(TimestampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create copies the current content of the live file at path into a new
// backup. It fails with cfgerr.ErrSourceNotFound when path does not exist.
func (m *Manager) Create(ctx context.Context, d distro.Distribution, path string) (Record, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- resolved settings path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, cfgerr.New(cfgerr.ErrSourceNotFound, "backup", path, "no settings file to back up", err)
		}
		return Record{}, fmt.Errorf("read %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dir, base := filepath.Split(path)
	ts := m.now().UTC()
	target := filepath.Join(dir, Name(base, ts))
	for {
		exists, err := fsutil.Exists(target)
		if err != nil {
			return Record{}, fmt.Errorf("stat %s: %w", target, err)
		}
		if !exists {
			break
		}
		ts = ts.Add(time.Microsecond)
		target = filepath.Join(dir, Name(base, ts))
	}

	if err := fsutil.WriteFileAtomic(target, data, fsutil.DefaultFilePerm); err != nil {
		return Record{}, fmt.Errorf("write backup %s: %w", target, err)
	}

	rec := Record{Path: target, Distribution: d, CreatedAt: ts, Size: int64(len(data))}
	logger := log.WithComponentFromContext(ctx, "backup")
	logger.Info().
		Str(log.FieldEvent, "backup.created").
		Str(log.FieldDistribution, d.String()).
		Str(log.FieldPath, path).
		Str(log.FieldBackup, target).
		Int64("size", rec.Size).
		Msg("backup created")
	return rec, nil
}

// List returns the backups of the live file at path, newest first.
func (m *Manager) List(d distro.Distribution, path string) ([]Record, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list backups in %s: %w", dir, err)
	}

	var out []Record
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ts, ok := parseName(base, e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Record{
			Path:         filepath.Join(dir, e.Name()),
			Distribution: d,
			CreatedAt:    ts,
			Size:         info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Latest returns the most recent backup of path or cfgerr.ErrSourceNotFound.
func (m *Manager) Latest(d distro.Distribution, path string) (Record, error) {
	records, err := m.List(d, path)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, cfgerr.New(cfgerr.ErrSourceNotFound, "restore", path, "no backups exist", nil)
	}
	return records[0], nil
}

// RestoreOptions tunes Restore.
type RestoreOptions struct {
	// Write puts the restored bytes in place. Defaults to an atomic write
	// of the live file.
	Write func(data []byte) error
}

// RestoreResult reports what Restore did.
type RestoreResult struct {
	Restored Record
	// Previous is the backup of the content that was replaced. Its Path is
	// empty when there was no live file.
	Previous Record
}

// Restore replaces the live file at path with the content of rec. The
// current content is backed up first. The backup must be one of path's
// backups and must parse as a settings document; otherwise Restore fails
// with cfgerr.ErrBackupIntegrity and leaves the live file untouched.
func (m *Manager) Restore(ctx context.Context, rec Record, path string, opts RestoreOptions) (RestoreResult, error) {
	res := RestoreResult{Restored: rec}

	dir, base := filepath.Split(path)
	if _, ok := parseName(base, filepath.Base(rec.Path)); !ok || filepath.Clean(filepath.Dir(rec.Path)) != filepath.Clean(dir) {
		return res, cfgerr.New(cfgerr.ErrBackupIntegrity, "restore", rec.Path, "not a backup of "+path, nil)
	}
	if _, err := fsutil.ConfineAbsPath(dir, absPath(rec.Path)); err != nil {
		return res, cfgerr.New(cfgerr.ErrBackupIntegrity, "restore", rec.Path, "backup resolves outside the settings directory", err)
	}

	if err := fsutil.IsRegularFile(rec.Path); err != nil {
		return res, cfgerr.New(cfgerr.ErrBackupIntegrity, "restore", rec.Path, "backup is not a regular file", err)
	}
	data, err := os.ReadFile(rec.Path) // #nosec G304 -- confined to the settings directory above
	if err != nil {
		return res, cfgerr.New(cfgerr.ErrBackupIntegrity, "restore", rec.Path, "backup is unreadable", err)
	}
	if _, err := ini.Parse(data); err != nil {
		return res, cfgerr.New(cfgerr.ErrBackupIntegrity, "restore", rec.Path, "backup is not a valid settings file", err)
	}

	prev, err := m.Create(ctx, rec.Distribution, path)
	switch {
	case err == nil:
		res.Previous = prev
	case errors.Is(err, cfgerr.ErrSourceNotFound):
	default:
		return res, fmt.Errorf("back up current settings before restore: %w", err)
	}

	write := opts.Write
	if write == nil {
		write = func(b []byte) error { return fsutil.WriteFileAtomic(path, b, fsutil.DefaultFilePerm) }
	}
	if err := write(data); err != nil {
		return res, fmt.Errorf("restore %s from %s: %w", path, rec.Path, err)
	}

	logger := log.WithComponentFromContext(ctx, "backup")
	logger.Info().
		Str(log.FieldEvent, "backup.restored").
		Str(log.FieldDistribution, rec.Distribution.String()).
		Str(log.FieldPath, path).
		Str(log.FieldBackup, rec.Path).
		Msg("backup restored")
	return res, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
