package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/internal/fsio"
	"github.com/dirdb/dirdb/jsonval"
)

// Database is the handle for one database directory: it manages the table
// subdirectories and the database metadata file.
type Database struct {
	store  *Store
	userID string
	name   string
	path   string
}

// OpenDatabase returns a handle for the database, creating its directory
// if it does not exist yet.
func (s *Store) OpenDatabase(userID, dbName string) (*Database, error) {
	d := &Database{
		store:  s,
		userID: userID,
		name:   dbName,
		path:   s.DatabasePath(userID, dbName),
	}
	if err := s.fs.MkdirAll(d.path); err != nil {
		return nil, err
	}
	return d, nil
}

// Name returns the database name as given, before sanitization.
func (d *Database) Name() string {
	return d.name
}

// Path returns the database directory.
func (d *Database) Path() string {
	return d.path
}

// Metadata loads the database metadata file. When the file is absent a
// default {"name": ..., "tables": []} value is returned, never an error.
func (d *Database) Metadata() (*jsonval.Value, error) {
	data, err := d.store.fs.ReadFile(filepath.Join(d.path, MetadataFile))
	if errors.Is(err, fsio.ErrNotFound) {
		meta := jsonval.Object()
		meta.Set("name", jsonval.String(d.name))
		meta.Set("tables", jsonval.Array())
		return meta, nil
	}
	if err != nil {
		return nil, err
	}
	meta, err := jsonval.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("database metadata for %s: %w", d.name, err)
	}
	return meta, nil
}

// SetMetadata writes the database metadata file.
func (d *Database) SetMetadata(meta *jsonval.Value) error {
	return d.store.fs.WriteFile(filepath.Join(d.path, MetadataFile), jsonval.Write(meta, 0), false)
}

// CreateTable creates the table subdirectory and writes its metadata, then
// records the table name in the database metadata's tables list.
func (d *Database) CreateTable(tbl entity.Table) (*Table, error) {
	t, err := d.OpenTable(tbl.Name)
	if err != nil {
		return nil, err
	}
	if err := t.writeMetadata(tbl); err != nil {
		return nil, err
	}
	if err := d.addTableToMetadata(tbl.Name); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTable recursively removes the table directory and drops the name
// from the database metadata.
func (d *Database) DeleteTable(tableName string) error {
	if err := d.store.fs.RemoveAll(d.store.TablePath(d.userID, d.name, tableName)); err != nil {
		return err
	}
	return d.removeTableFromMetadata(tableName)
}

// OpenTable returns a handle for the named table, creating its directory
// if needed.
func (d *Database) OpenTable(tableName string) (*Table, error) {
	return openTable(d.store, d.userID, d.name, tableName)
}

// ListTables returns the names of the table directories in this database.
func (d *Database) ListTables() ([]string, error) {
	return d.store.fs.ListSubdirs(d.path)
}

// Len reports the table count according to the database metadata.
func (d *Database) Len() int {
	meta, err := d.Metadata()
	if err != nil {
		return 0
	}
	tables := meta.Get("tables")
	if tables == nil {
		return 0
	}
	return tables.Len()
}

func (d *Database) addTableToMetadata(tableName string) error {
	meta, err := d.Metadata()
	if err != nil {
		return err
	}
	tables := meta.Get("tables")
	if tables == nil || tables.Kind() != jsonval.KindArray {
		tables = jsonval.Array()
		meta.Set("tables", tables)
	}
	for _, item := range tables.Items() {
		if item.StrVal() == tableName {
			return d.SetMetadata(meta)
		}
	}
	tables.Append(jsonval.String(tableName))
	return d.SetMetadata(meta)
}

func (d *Database) removeTableFromMetadata(tableName string) error {
	meta, err := d.Metadata()
	if err != nil {
		return err
	}
	tables := meta.Get("tables")
	if tables == nil {
		return nil
	}
	kept := jsonval.Array()
	for _, item := range tables.Items() {
		if item.StrVal() != tableName {
			kept.Append(item)
		}
	}
	meta.Set("tables", kept)
	return d.SetMetadata(meta)
}
