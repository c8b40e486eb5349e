// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command e33config manages Engine.ini for Clair Obscur: Expedition 33 on
// Steam and Game Pass installs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/log"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitReadOnly = 3
	exitNotFound = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if werr := a.flushMetrics(); werr != nil {
		logger := log.WithComponent("cli")
		logger.Warn().Err(werr).Msg("metrics textfile not written")
	}
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "e33config: %v\n", err)
	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintln(stderr, "Run 'e33config --help' for usage.")
	}
	return code
}

// usageError marks a malformed command line.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue),
		strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "required flag"):
		return exitUsage
	case errors.Is(err, cfgerr.ErrReadOnlyViolation):
		return exitReadOnly
	case errors.Is(err, cfgerr.ErrPathNotFound),
		errors.Is(err, cfgerr.ErrSourceNotFound),
		errors.Is(err, cfgerr.ErrUnknownPreset):
		return exitNotFound
	default:
		return exitError
	}
}
