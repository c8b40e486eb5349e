// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds the small filesystem primitives the settings engine is
// built on: durable atomic replacement and the owner write bit.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultFilePerm is used for files that do not exist yet.
const DefaultFilePerm os.FileMode = 0o644

// ownerWrite is the permission bit the read-only flag maps to.
const ownerWrite os.FileMode = 0o200

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsReadOnly reports whether the owner write bit of path is cleared.
func IsReadOnly(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().Perm()&ownerWrite == 0, nil
}

// SetReadOnly clears (readOnly=true) or sets the owner write bit, leaving the
// other permission bits untouched.
func SetReadOnly(path string, readOnly bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if readOnly {
		mode &^= ownerWrite
	} else {
		mode |= ownerWrite
	}
	if mode == info.Mode().Perm() {
		return nil
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// WriteFileAtomic replaces path with data. The content is written to a
// temporary file in the same directory, synced and renamed over path, so
// readers observe either the old or the new content, never a partial file.
// An existing file keeps its permissions; a new file gets perm.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultFilePerm
	}
	return writeFileAtomic(path, data, perm)
}
