// Package store implements the storage hierarchy: one directory per user,
// per database, and per table, and one JSON file per record. All path
// segments derived from user-supplied names go through pathsafe before
// touching the filesystem, and all file access goes through the
// lock-guarded fsio adapter.
package store

import (
	"errors"
	"path/filepath"

	"github.com/dirdb/dirdb/internal/fsio"
	"github.com/dirdb/dirdb/internal/pathsafe"
	"github.com/dirdb/dirdb/jsonval"
)

const (
	// MetadataFile is the reserved filename for database and table
	// metadata; it is excluded from every record enumeration.
	MetadataFile = "metadata.json"
	// RecordExt is the filename extension of record files.
	RecordExt = ".json"
	// RecordIndent is the pretty-print width used for record files.
	RecordIndent = 2
)

var (
	// ErrTableNotFound reports that a table directory does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrRecordNotFound reports that a record file does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrCorruptRecord reports a record file whose content does not parse.
	// A record that fails to parse is corruption, not a missing record.
	ErrCorruptRecord = errors.New("corrupt record")
)

// Store addresses the directory hierarchy under a base directory.
type Store struct {
	baseDir string
	fs      *fsio.FS
}

// New returns a Store rooted at baseDir, using fs for all file access.
func New(baseDir string, fs *fsio.FS) *Store {
	return &Store{baseDir: baseDir, fs: fs}
}

// BaseDir returns the root data directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// FS exposes the underlying filesystem adapter.
func (s *Store) FS() *fsio.FS {
	return s.fs
}

// UserPath returns <base>/<sanitized user id>.
func (s *Store) UserPath(userID string) string {
	return filepath.Join(s.baseDir, pathsafe.SanitizeID(userID))
}

// DatabasePath returns <base>/<user>/<sanitized db name>.
func (s *Store) DatabasePath(userID, dbName string) string {
	return filepath.Join(s.UserPath(userID), pathsafe.SanitizeID(dbName))
}

// TablePath returns <base>/<user>/<db>/<sanitized table name>.
func (s *Store) TablePath(userID, dbName, tableName string) string {
	return filepath.Join(s.DatabasePath(userID, dbName), pathsafe.SanitizeID(tableName))
}

// RecordPath returns <base>/<user>/<db>/<table>/<sanitized id>.json.
func (s *Store) RecordPath(userID, dbName, tableName, recordID string) string {
	return filepath.Join(s.TablePath(userID, dbName, tableName), pathsafe.SanitizeID(recordID)+RecordExt)
}

// CreateUser creates the user's directory.
func (s *Store) CreateUser(userID string) error {
	return s.fs.MkdirAll(s.UserPath(userID))
}

// DeleteUser removes the user's directory tree.
func (s *Store) DeleteUser(userID string) error {
	return s.fs.RemoveAll(s.UserPath(userID))
}

// CreateDatabase creates the database directory along with an initial
// metadata file listing no tables.
func (s *Store) CreateDatabase(userID, dbName string) error {
	if err := s.fs.MkdirAll(s.DatabasePath(userID, dbName)); err != nil {
		return err
	}
	meta := jsonval.Object()
	meta.Set("name", jsonval.String(dbName))
	meta.Set("tables", jsonval.Array())
	path := filepath.Join(s.DatabasePath(userID, dbName), MetadataFile)
	return s.fs.WriteFile(path, jsonval.Write(meta, 0), false)
}

// DeleteDatabase removes the database directory tree.
func (s *Store) DeleteDatabase(userID, dbName string) error {
	return s.fs.RemoveAll(s.DatabasePath(userID, dbName))
}

// UserExists reports whether the user's directory exists.
func (s *Store) UserExists(userID string) bool {
	return s.fs.Exists(s.UserPath(userID))
}

// DatabaseExists reports whether the database directory exists.
func (s *Store) DatabaseExists(userID, dbName string) bool {
	return s.fs.Exists(s.DatabasePath(userID, dbName))
}

// TableExists reports whether the table directory exists.
func (s *Store) TableExists(userID, dbName, tableName string) bool {
	return s.fs.Exists(s.TablePath(userID, dbName, tableName))
}
