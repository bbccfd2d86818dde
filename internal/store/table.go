package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/internal/fsio"
	"github.com/dirdb/dirdb/jsonval"
)

// Table is the handle for one table directory: it manages the record files
// and the table metadata file.
type Table struct {
	store  *Store
	userID string
	dbName string
	name   string
	path   string
}

func openTable(s *Store, userID, dbName, tableName string) (*Table, error) {
	t := &Table{
		store:  s,
		userID: userID,
		dbName: dbName,
		name:   tableName,
		path:   s.TablePath(userID, dbName, tableName),
	}
	if err := s.fs.MkdirAll(t.path); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the table name as given, before sanitization.
func (t *Table) Name() string {
	return t.name
}

// Path returns the table directory.
func (t *Table) Path() string {
	return t.path
}

// Metadata loads the table metadata file, defaulting to
// {"name": ..., "indexes": {}} when the file is absent.
func (t *Table) Metadata() (*jsonval.Value, error) {
	data, err := t.store.fs.ReadFile(filepath.Join(t.path, MetadataFile))
	if errors.Is(err, fsio.ErrNotFound) {
		meta := jsonval.Object()
		meta.Set("name", jsonval.String(t.name))
		meta.Set("indexes", jsonval.Object())
		return meta, nil
	}
	if err != nil {
		return nil, err
	}
	meta, err := jsonval.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("table metadata for %s: %w", t.name, err)
	}
	return meta, nil
}

// SetMetadata writes the table metadata file.
func (t *Table) SetMetadata(meta *jsonval.Value) error {
	return t.store.fs.WriteFile(filepath.Join(t.path, MetadataFile), jsonval.Write(meta, 0), false)
}

// writeMetadata records the declared shape of the table:
// {"name": ..., "keys": [...]|null}.
func (t *Table) writeMetadata(tbl entity.Table) error {
	meta := jsonval.Object()
	meta.Set("name", jsonval.String(tbl.Name))
	if tbl.Keys == nil {
		meta.Set("keys", jsonval.Null())
	} else {
		keys := jsonval.Array()
		for _, k := range tbl.Keys {
			keys.Append(jsonval.String(k))
		}
		meta.Set("keys", keys)
	}
	return t.SetMetadata(meta)
}

// recordPath returns the file path for a record id.
func (t *Table) recordPath(recordID string) string {
	return t.store.RecordPath(t.userID, t.dbName, t.name, recordID)
}

// SaveRecord writes the record's data object, creating or overwriting its
// file. Record files are pretty-printed for readability on disk.
func (t *Table) SaveRecord(rec *entity.Record) error {
	return t.store.fs.WriteFile(t.recordPath(rec.ID), jsonval.Write(rec.Data, RecordIndent), true)
}

// LoadRecord reads one record. A missing file is ErrRecordNotFound; a file
// that exists but does not parse is ErrCorruptRecord.
func (t *Table) LoadRecord(recordID string) (*entity.Record, error) {
	data, err := t.store.fs.ReadFile(t.recordPath(recordID))
	if errors.Is(err, fsio.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, t.name, recordID)
	}
	if err != nil {
		return nil, err
	}
	val, err := jsonval.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorruptRecord, t.name, recordID, err)
	}
	return entity.NewRecord(recordID, val), nil
}

// DeleteRecord removes the record file; deleting an absent record is a
// no-op.
func (t *Table) DeleteRecord(recordID string) error {
	return t.store.fs.RemoveFile(t.recordPath(recordID))
}

// RecordExists reports whether the record file exists.
func (t *Table) RecordExists(recordID string) bool {
	return t.store.fs.Exists(t.recordPath(recordID))
}

// ListRecords returns every record id in the table, sorted: all .json
// filenames except the metadata file, extension stripped.
func (t *Table) ListRecords() ([]string, error) {
	entries, err := t.store.fs.ListDir(t.path)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, name := range entries {
		if name == MetadataFile || !strings.HasSuffix(name, RecordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, RecordExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadAllRecords loads the table's full record set keyed by id.
func (t *Table) LoadAllRecords() (map[string]*entity.Record, error) {
	ids, err := t.ListRecords()
	if err != nil {
		return nil, err
	}
	records := make(map[string]*entity.Record, len(ids))
	for _, id := range ids {
		rec, err := t.LoadRecord(id)
		if err != nil {
			return nil, err
		}
		records[id] = rec
	}
	return records, nil
}

// Len reports the number of records in the table.
func (t *Table) Len() int {
	ids, err := t.ListRecords()
	if err != nil {
		return 0
	}
	return len(ids)
}
