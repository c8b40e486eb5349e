// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package manager is the entry point callers use to manage Engine.ini.
//
// Every operation runs as one transaction: resolve the path, load or
// initialise the document, mutate it, back up the prior content when asked,
// write the result atomically and report. No state is kept between calls
// apart from the files themselves.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/e33config/internal/backup"
	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/fsutil"
	"github.com/ManuGH/e33config/internal/ini"
	"github.com/ManuGH/e33config/internal/log"
	"github.com/ManuGH/e33config/internal/metrics"
	"github.com/ManuGH/e33config/internal/platform/paths"
	"github.com/ManuGH/e33config/internal/preset"
)

// Options wires a Manager.
type Options struct {
	Resolver *paths.Resolver // required
	Catalog  *preset.Catalog // defaults to preset.Default()
	Backups  *backup.Manager // defaults to backup.NewManager()
	Metrics  *metrics.Recorder
	// Newline terminates lines of newly created files. Defaults to "\r\n"
	// on Windows and "\n" elsewhere.
	Newline string
}

// Manager implements the settings operations.
type Manager struct {
	resolver *paths.Resolver
	catalog  *preset.Catalog
	backups  *backup.Manager
	metrics  *metrics.Recorder
	newline  string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Manager.
func New(opts Options) (*Manager, error) {
	if opts.Resolver == nil {
		return nil, errors.New("manager: resolver is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = preset.Default()
	}
	if opts.Backups == nil {
		opts.Backups = backup.NewManager()
	}
	if opts.Newline == "" {
		opts.Newline = "\n"
		if runtime.GOOS == "windows" {
			opts.Newline = "\r\n"
		}
	}
	return &Manager{
		resolver: opts.Resolver,
		catalog:  opts.Catalog,
		backups:  opts.Backups,
		metrics:  opts.Metrics,
		newline:  opts.Newline,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// begin tags ctx with a fresh operation id and returns the operation logger
// and a finish func that records the outcome.
func (m *Manager) begin(ctx context.Context, op string, d distro.Distribution) (context.Context, zerolog.Logger, func(error)) {
	started := time.Now()
	ctx = log.ContextWithOperationID(ctx, uuid.NewString())
	ctx = log.ContextWithOperation(ctx, op)

	logger := log.WithComponentFromContext(ctx, "manager")
	if d != "" {
		logger = logger.With().Str(log.FieldDistribution, d.String()).Logger()
	}
	ctx = logger.WithContext(ctx)

	return ctx, logger, func(err error) {
		m.metrics.ObserveOperation(op, started, err)
		if err != nil {
			logger.Warn().Err(err).Str("code", cfgerr.Code(err)).Msg("operation failed")
			return
		}
		logger.Debug().Dur("duration", time.Since(started)).Msg("operation completed")
	}
}

// lock serialises operations on one settings file within this process.
func (m *Manager) lock(path string) func() {
	m.mu.Lock()
	l, ok := m.locks[path]
	if !ok {
		l = &sync.Mutex{}
		m.locks[path] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// load reads and parses the settings file. A missing file yields an empty
// document and exists=false.
func (m *Manager) load(path string) (doc *ini.Document, exists bool, err error) {
	data, err := os.ReadFile(path) // #nosec G304 -- resolved settings path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ini.NewDocument(m.newline), false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err = ini.Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return doc, true, nil
}

// unlockForWrite enforces the read-only flag. With force the flag is cleared
// and wasReadOnly tells the caller to put it back when appropriate.
func (m *Manager) unlockForWrite(op, path string, exists, force bool) (wasReadOnly bool, err error) {
	if !exists {
		return false, nil
	}
	ro, err := fsutil.IsReadOnly(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !ro {
		return false, nil
	}
	if !force {
		return true, cfgerr.New(cfgerr.ErrReadOnlyViolation, op, path, "use --force to override", nil)
	}
	if err := fsutil.SetReadOnly(path, false); err != nil {
		return true, fmt.Errorf("clear read-only flag: %w", err)
	}
	return true, nil
}

// writeBytes stores data through the resolution's placement strategy.
func (m *Manager) writeBytes(ctx context.Context, res paths.Resolution, data []byte) error {
	staged, err := res.Placement.Stage()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(staged, data, fsutil.DefaultFilePerm); err != nil {
		return err
	}
	if err := res.Placement.Commit(); err != nil {
		return err
	}
	log.FromContext(ctx).Info().
		Str(log.FieldEvent, "settings.written").
		Str(log.FieldPath, res.Path).
		Str(log.FieldPlacement, string(res.Placement.Strategy())).
		Int("bytes", len(data)).
		Msg("settings written")
	return nil
}

func (m *Manager) backup(ctx context.Context, d distro.Distribution, path string) (*backup.Record, error) {
	rec, err := m.backups.Create(ctx, d, path)
	if err != nil {
		return nil, err
	}
	m.metrics.BackupCreated(d.String())
	return &rec, nil
}

func (m *Manager) setReadOnly(ctx context.Context, d distro.Distribution, path string, readOnly bool) error {
	if err := fsutil.SetReadOnly(path, readOnly); err != nil {
		return fmt.Errorf("set read-only flag on %s: %w", path, err)
	}
	m.metrics.SetReadOnly(d.String(), readOnly)
	log.FromContext(ctx).Info().
		Str(log.FieldEvent, "readonly.changed").
		Str(log.FieldPath, path).
		Bool("read_only", readOnly).
		Msg("read-only flag changed")
	return nil
}
