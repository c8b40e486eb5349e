// Package watch reports external modifications of the settings file, such as
// the game rewriting Engine.ini on exit.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ManuGH/e33config/internal/log"
)

// Change is one filesystem event on the watched file.
type Change struct {
	Path string    `json:"path"`
	Op   string    `json:"op"` // create|write|remove|rename|chmod
	Time time.Time `json:"time"`
}

// Handler receives changes in order. It runs on the watch goroutine.
type Handler func(Change)

// Watch calls handler for every change of the file at path until ctx is
// done. The parent directory is watched so that atomic replacement (a
// rename onto path) and re-creation are seen; events for other names in the
// directory, including temporary files, are ignored.
func Watch(ctx context.Context, path string, handler Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	logger := log.WithComponentFromContext(ctx, "watch")
	logger.Debug().Str(log.FieldPath, path).Msg("watching settings file")

	target := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			for _, op := range opNames(event.Op) {
				c := Change{Path: path, Op: op, Time: time.Now()}
				logger.Info().
					Str(log.FieldEvent, "watch.change").
					Str(log.FieldPath, path).
					Str("change", op).
					Msg("settings file changed")
				handler(c)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

func opNames(op fsnotify.Op) []string {
	var out []string
	for _, o := range []struct {
		op   fsnotify.Op
		name string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, "chmod"},
	} {
		if op.Has(o.op) {
			out = append(out, o.name)
		}
	}
	return out
}
