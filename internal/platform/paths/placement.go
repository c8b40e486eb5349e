package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/fsutil"
	"github.com/ManuGH/e33config/internal/log"
)

// Strategy names how new settings content reaches its final location.
type Strategy string

const (
	// StrategyDirect writes straight to the final location.
	StrategyDirect Strategy = "direct"
	// StrategyStaged writes into a working directory first; Commit then
	// relocates the staged file onto the final location.
	StrategyStaged Strategy = "staged"
)

// Placement is the resolve/stage/commit contract every strategy implements.
//
// Callers write new content to the path returned by Stage and then call
// Commit. For direct placement Stage returns the final path and Commit does
// nothing.
type Placement interface {
	Strategy() Strategy
	// Resolve returns the final settings file location.
	Resolve() string
	// Stage returns the path new content must be written to.
	Stage() (string, error)
	// Commit moves staged content into place.
	Commit() error
}

// DirectPlacement writes in place.
type DirectPlacement struct {
	target string
}

func (p DirectPlacement) Strategy() Strategy     { return StrategyDirect }
func (p DirectPlacement) Resolve() string        { return p.target }
func (p DirectPlacement) Stage() (string, error) { return p.target, nil }
func (p DirectPlacement) Commit() error          { return nil }

// StagedPlacement writes into a private working directory and relocates the
// result on Commit.
type StagedPlacement struct {
	target string
	dir    string
}

func (p StagedPlacement) Strategy() Strategy { return StrategyStaged }
func (p StagedPlacement) Resolve() string    { return p.target }

// Stage prepares the working directory and returns the staged file path.
func (p StagedPlacement) Stage() (string, error) {
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return "", fmt.Errorf("create staging directory %s: %w", p.dir, err)
	}
	return p.stagedPath(), nil
}

// Commit atomically replaces the target with the staged file and removes the
// staged copy.
func (p StagedPlacement) Commit() error {
	staged := p.stagedPath()
	data, err := os.ReadFile(staged)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfgerr.New(cfgerr.ErrSourceNotFound, "commit", staged, "nothing staged", err)
		}
		return fmt.Errorf("read staged file %s: %w", staged, err)
	}
	if err := fsutil.WriteFileAtomic(p.target, data, fsutil.DefaultFilePerm); err != nil {
		return fmt.Errorf("commit staged file to %s: %w", p.target, err)
	}
	if err := os.Remove(staged); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.L().Warn().Err(err).Str(log.FieldStagedPath, staged).Msg("could not remove staged file")
	}
	log.L().Debug().
		Str(log.FieldEvent, "paths.staged_commit").
		Str(log.FieldStagedPath, staged).
		Str(log.FieldPath, p.target).
		Msg("committed staged settings file")
	return nil
}

func (p StagedPlacement) stagedPath() string {
	return filepath.Join(p.dir, filepath.Base(p.target))
}
