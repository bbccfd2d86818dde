// Package fsio is a thin filesystem adapter. Every operation acquires the
// matching read or write lock for its target path from the shared
// locking.PathLocks for the duration of the call, so concurrent threads of
// the same process never observe a half-written file. The guarantee is
// strictly in-process; nothing here protects against other processes.
package fsio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound reports that the requested file does not exist. It is a
// distinct result, not an I/O failure.
var ErrNotFound = errors.New("file not found")

// Locker is the lock surface fsio needs; satisfied by locking.PathLocks.
type Locker interface {
	AcquireRead(path string)
	ReleaseRead(path string)
	AcquireWrite(path string)
	ReleaseWrite(path string)
}

// FS wraps lock-guarded file and directory primitives.
type FS struct {
	locks Locker
}

// New returns an FS guarded by locks.
func New(locks Locker) *FS {
	return &FS{locks: locks}
}

// WriteFile writes data to path, creating or truncating the file. When
// mkdirs is true missing parent directories are created; otherwise a
// missing parent is an error.
func (f *FS) WriteFile(path string, data []byte, mkdirs bool) error {
	f.locks.AcquireWrite(path)
	defer f.locks.ReleaseWrite(path)
	dir := filepath.Dir(path)
	if mkdirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	} else if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("parent directory missing for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadFile returns the content of path, or ErrNotFound when it does not
// exist.
func (f *FS) ReadFile(path string) ([]byte, error) {
	f.locks.AcquireRead(path)
	defer f.locks.ReleaseRead(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// RemoveFile deletes path. Removing a file that is already absent is a
// no-op, not an error.
func (f *FS) RemoveFile(path string) error {
	f.locks.AcquireWrite(path)
	defer f.locks.ReleaseWrite(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates the directory at path along with any missing parents.
func (f *FS) MkdirAll(path string) error {
	f.locks.AcquireWrite(path)
	defer f.locks.ReleaseWrite(path)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// RemoveAll recursively deletes the directory tree rooted at path.
func (f *FS) RemoveAll(path string) error {
	f.locks.AcquireWrite(path)
	defer f.locks.ReleaseWrite(path)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// ListDir returns the names of the entries in the directory at path. A
// missing directory yields an empty list.
func (f *FS) ListDir(path string) ([]string, error) {
	f.locks.AcquireRead(path)
	defer f.locks.ReleaseRead(path)
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ListSubdirs returns the names of the directory entries in path that are
// themselves directories. A missing directory yields an empty list.
func (f *FS) ListSubdirs(path string) ([]string, error) {
	f.locks.AcquireRead(path)
	defer f.locks.ReleaseRead(path)
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Exists reports whether path refers to an existing file or directory.
func (f *FS) Exists(path string) bool {
	f.locks.AcquireRead(path)
	defer f.locks.ReleaseRead(path)
	_, err := os.Stat(path)
	return err == nil
}
