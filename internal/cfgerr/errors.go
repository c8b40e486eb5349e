// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cfgerr defines the error kinds surfaced by the settings engine.
//
// Every failure that a caller may want to branch on is tagged with one of the
// sentinel kinds below. Use errors.Is(err, cfgerr.ErrReadOnlyViolation)
// instead of string matching.
package cfgerr

import (
	"errors"
	"strings"
)

var (
	ErrPathNotFound        = errors.New("game installation not found")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMalformedDocument   = errors.New("malformed settings document")
	ErrUnknownPreset       = errors.New("unknown preset")
	ErrInvalidSetting      = errors.New("invalid setting")
	ErrSourceNotFound      = errors.New("settings file not found")
	ErrReadOnlyViolation   = errors.New("settings file is read-only")
	ErrBackupIntegrity     = errors.New("backup unreadable or corrupted")
)

// Error is the rich error type wrapping a sentinel kind with context.
type Error struct {
	Kind   error  // one of the Err* sentinels
	Op     string // operation that failed, e.g. "custom" or "backup.create"
	Path   string // file or directory involved, if any
	Detail string // human-readable hint
	Err    error  // lower-level cause
}

// New builds an *Error. cause may be nil.
func New(kind error, op, path, detail string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Detail: detail, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("error")
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf returns the sentinel kind carried by err, or nil.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

var kinds = []error{
	ErrPathNotFound,
	ErrUnsupportedPlatform,
	ErrMalformedDocument,
	ErrUnknownPreset,
	ErrInvalidSetting,
	ErrSourceNotFound,
	ErrReadOnlyViolation,
	ErrBackupIntegrity,
}

var codes = map[error]string{
	ErrPathNotFound:        "path_not_found",
	ErrUnsupportedPlatform: "unsupported_platform",
	ErrMalformedDocument:   "malformed_document",
	ErrUnknownPreset:       "unknown_preset",
	ErrInvalidSetting:      "invalid_setting",
	ErrSourceNotFound:      "source_not_found",
	ErrReadOnlyViolation:   "read_only_violation",
	ErrBackupIntegrity:     "backup_integrity",
}

// Code returns a stable snake_case identifier for err's kind: "ok" for nil,
// "internal" for errors without a kind. Used for metric labels and machine
// readable output.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	if c, ok := codes[KindOf(err)]; ok {
		return c
	}
	return "internal"
}
