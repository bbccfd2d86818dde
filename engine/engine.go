// Package engine is the front door of dirdb: a façade over the storage
// hierarchy and the pure query operations, plus a chainable query builder.
// External surfaces (REST, CLI, tool-calling layers) talk to this package
// and never to internal/ directly.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/internal/fsio"
	"github.com/dirdb/dirdb/internal/locking"
	"github.com/dirdb/dirdb/internal/query"
	"github.com/dirdb/dirdb/internal/store"
	"github.com/dirdb/dirdb/jsonval"
)

// Options configures an Engine. Zero fields fall back to defaults.
type Options struct {
	// BaseDir is the root data directory. Defaults to "./data".
	BaseDir string
	// User scopes every operation. Defaults to "default".
	User string
	// Database scopes every operation. Defaults to "default".
	Database string
	// Locks is the shared lock registry. Engines over the same BaseDir
	// must share one. A fresh registry is created when nil.
	Locks *locking.PathLocks
}

// Engine executes all operations against one user's database.
type Engine struct {
	store    *store.Store
	user     string
	database string
}

// New opens (creating if needed) the user and database the engine
// operates on.
func New(opts Options) (*Engine, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = "./data"
	}
	if opts.User == "" {
		opts.User = "default"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Locks == nil {
		opts.Locks = locking.NewPathLocks()
	}
	s := store.New(opts.BaseDir, fsio.New(opts.Locks))
	if err := s.CreateUser(opts.User); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !s.DatabaseExists(opts.User, opts.Database) {
		if err := s.CreateDatabase(opts.User, opts.Database); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}
	return &Engine{store: s, user: opts.User, database: opts.Database}, nil
}

// User returns the user the engine is scoped to.
func (e *Engine) User() string {
	return e.user
}

// Database returns the database the engine is scoped to.
func (e *Engine) Database() string {
	return e.database
}

func (e *Engine) db() (*store.Database, error) {
	return e.store.OpenDatabase(e.user, e.database)
}

// table opens a table handle, creating the directory lazily. ok is false
// when the table does not exist yet.
func (e *Engine) table(name string) (*store.Table, bool, error) {
	if !e.store.TableExists(e.user, e.database, name) {
		return nil, false, nil
	}
	d, err := e.db()
	if err != nil {
		return nil, false, err
	}
	t, err := d.OpenTable(name)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// ensureTable opens a table handle, creating the table with empty
// metadata when it does not exist.
func (e *Engine) ensureTable(name string) (*store.Table, error) {
	d, err := e.db()
	if err != nil {
		return nil, err
	}
	if e.store.TableExists(e.user, e.database, name) {
		return d.OpenTable(name)
	}
	return d.CreateTable(entity.Table{Name: name})
}

// CreateTable creates a table, writing its metadata file. Keys are
// recorded as descriptive metadata only.
func (e *Engine) CreateTable(name string, keys ...string) error {
	d, err := e.db()
	if err != nil {
		return err
	}
	_, err = d.CreateTable(entity.Table{Name: name, Keys: keys})
	return err
}

// DropTable removes a table and all its records. Dropping an absent
// table is a no-op.
func (e *Engine) DropTable(name string) error {
	if !e.store.TableExists(e.user, e.database, name) {
		return nil
	}
	d, err := e.db()
	if err != nil {
		return err
	}
	return d.DeleteTable(name)
}

// ListTables returns the table names in the database, sorted.
func (e *Engine) ListTables() ([]string, error) {
	d, err := e.db()
	if err != nil {
		return nil, err
	}
	return d.ListTables()
}

// Insert writes a record, creating the table on first use. An existing
// record with the same id is overwritten.
func (e *Engine) Insert(table, id string, data *jsonval.Value) error {
	t, err := e.ensureTable(table)
	if err != nil {
		return err
	}
	return t.SaveRecord(entity.NewRecord(id, data))
}

// FindByID loads one record. A missing table or record yields (nil, nil);
// only I/O failures and corrupt files are errors.
func (e *Engine) FindByID(table, id string) (*entity.Record, error) {
	t, ok, err := e.table(table)
	if err != nil || !ok {
		return nil, err
	}
	rec, err := t.LoadRecord(id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil
	}
	return rec, err
}

// FindAll loads every record in the table, sorted by id. A missing table
// yields an empty result.
func (e *Engine) FindAll(table string) ([]*entity.Record, error) {
	t, ok, err := e.table(table)
	if err != nil || !ok {
		return nil, err
	}
	return loadSorted(t)
}

// Update merges the top-level fields of updates into an existing record
// and reports whether the record existed.
func (e *Engine) Update(table, id string, updates *jsonval.Value) (bool, error) {
	t, ok, err := e.table(table)
	if err != nil || !ok {
		return false, err
	}
	rec, err := t.LoadRecord(id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, key := range updates.Keys() {
		rec.Data.Set(key, updates.Get(key).Clone())
	}
	if err := t.SaveRecord(rec); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a record and reports whether it existed.
func (e *Engine) Delete(table, id string) (bool, error) {
	t, ok, err := e.table(table)
	if err != nil || !ok {
		return false, err
	}
	if !t.RecordExists(id) {
		return false, nil
	}
	if err := t.DeleteRecord(id); err != nil {
		return false, err
	}
	return true, nil
}

// Filter returns the records whose field satisfies op against value.
func (e *Engine) Filter(table, field string, value *jsonval.Value, op query.Op) ([]*entity.Record, error) {
	recs, err := e.FindAll(table)
	if err != nil {
		return nil, err
	}
	return query.FilterByField(recs, field, value, op)
}

// Project returns one object per record holding only the named fields,
// re-nested along their dot paths.
func (e *Engine) Project(table string, fields []string) ([]*jsonval.Value, error) {
	recs, err := e.FindAll(table)
	if err != nil {
		return nil, err
	}
	return query.Project(recs, fields), nil
}

// GroupBy partitions the table by field and returns one object per group:
// {"count": n} plus one "<op>_<field>" entry per requested aggregation.
// Each group's object key is the compact JSON encoding of its field value
// (`"Boston"`, `42`, `null`), so buckets of different kinds never collide
// and every record stays represented. Keys appear in first-occurrence
// order; a missing or null group field lands under the key `null`.
func (e *Engine) GroupBy(table, field string, aggregations map[string]string) (*jsonval.Value, error) {
	recs, err := e.FindAll(table)
	if err != nil {
		return nil, err
	}
	out := jsonval.Object()
	for _, g := range query.GroupBy(recs, field) {
		summary := jsonval.Object()
		summary.Set("count", jsonval.Int(int64(len(g.Records))))
		fields := make([]string, 0, len(aggregations))
		for f := range aggregations {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			op := aggregations[f]
			v, err := query.Aggregate(g.Records, f, op)
			if err != nil {
				return nil, err
			}
			summary.Set(op+"_"+f, v)
		}
		out.Set(g.Key.String(), summary)
	}
	return out, nil
}

// Sort returns the table's records ordered by field. limit <= 0 means
// no limit.
func (e *Engine) Sort(table, field string, ascending bool, limit int) ([]*entity.Record, error) {
	recs, err := e.FindAll(table)
	if err != nil {
		return nil, err
	}
	recs = query.Sort(recs, field, ascending)
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

// Join inner-joins two tables on leftField == rightField. Each row is a
// flat object carrying both sides' fields, optionally key-prefixed.
func (e *Engine) Join(leftTable, rightTable, leftField, rightField string, opts query.JoinOptions) ([]*jsonval.Value, error) {
	left, right, err := e.joinSides(leftTable, rightTable)
	if err != nil {
		return nil, err
	}
	return query.InnerJoin(left, right, leftField, rightField, opts), nil
}

// LeftJoin is Join plus one row per unmatched left record.
func (e *Engine) LeftJoin(leftTable, rightTable, leftField, rightField string, opts query.JoinOptions) ([]*jsonval.Value, error) {
	left, right, err := e.joinSides(leftTable, rightTable)
	if err != nil {
		return nil, err
	}
	return query.LeftJoin(left, right, leftField, rightField, opts), nil
}

func (e *Engine) joinSides(leftTable, rightTable string) ([]*entity.Record, []*entity.Record, error) {
	left, err := e.FindAll(leftTable)
	if err != nil {
		return nil, nil, err
	}
	right, err := e.FindAll(rightTable)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// ImportJSONFile loads a JSON file into a table and returns the number of
// records written. The file holds either a single object or an array of
// objects. A record's id comes from its "id" field when present,
// otherwise from its 1-based position.
func (e *Engine) ImportJSONFile(table, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}
	root, err := jsonval.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse import file: %w", err)
	}
	var items []*jsonval.Value
	switch root.Kind() {
	case jsonval.KindObject:
		items = []*jsonval.Value{root}
	case jsonval.KindArray:
		items = root.Items()
	default:
		return 0, fmt.Errorf("import file must hold an object or an array, got %s", root.Kind())
	}
	for i, item := range items {
		if item.Kind() != jsonval.KindObject {
			return i, fmt.Errorf("import element %d is not an object", i)
		}
		id := recordID(item, i)
		if err := e.Insert(table, id, item); err != nil {
			return i, err
		}
	}
	slog.Info("Imported records", "table", table, "count", len(items))
	return len(items), nil
}

// recordID picks the storage id for an imported object.
func recordID(item *jsonval.Value, index int) string {
	if id := item.Get("id"); !id.IsNull() {
		if id.Kind() == jsonval.KindString {
			return id.StrVal()
		}
		return id.String()
	}
	return strconv.Itoa(index + 1)
}

// ExportJSONFile writes the whole table to path as a JSON array, each
// element the record's data with its id injected under "id".
func (e *Engine) ExportJSONFile(table, path string, indent int) error {
	recs, err := e.FindAll(table)
	if err != nil {
		return err
	}
	arr := jsonval.Array()
	for _, rec := range recs {
		data := rec.Data.Clone()
		if !data.Has("id") {
			data.Set("id", jsonval.String(rec.ID))
		}
		arr.Append(data)
	}
	out := jsonval.Write(arr, indent)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	slog.Info("Exported records", "table", table, "count", len(recs), "path", path)
	return nil
}

// loadSorted loads every record of a table in id order.
func loadSorted(t *store.Table) ([]*entity.Record, error) {
	ids, err := t.ListRecords()
	if err != nil {
		return nil, err
	}
	recs := make([]*entity.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := t.LoadRecord(id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
