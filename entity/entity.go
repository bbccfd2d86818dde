// Package entity defines the core data model: a User owns Databases, a
// Database holds Tables, and a Table holds Records. Each level maps to one
// directory on disk; a Record maps to one JSON file.
package entity

import "github.com/dirdb/dirdb/jsonval"

// User is the root of the storage hierarchy.
type User struct {
	ID   string `json:"id" jsonschema:"description=Unique user identifier"`
	Name string `json:"name" jsonschema:"description=Display name"`
}

// Database is a named collection of tables owned by a user.
type Database struct {
	Name string `json:"name" jsonschema:"description=Database name"`
}

// Index describes a declared index over table fields. Indexes are
// descriptive metadata only: the query path never consults them.
type Index struct {
	Name   string   `json:"name" jsonschema:"description=Index name"`
	Fields []string `json:"fields" jsonschema:"description=Indexed field names"`
}

// Table describes a record collection and its declared metadata.
type Table struct {
	Name    string           `json:"name" jsonschema:"description=Table name"`
	Indexes map[string]Index `json:"indexes,omitempty" jsonschema:"description=Declared indexes by name"`
	Keys    []string         `json:"keys,omitempty" jsonschema:"description=Key field names"`
}

// Record is one document: the id lives in the filename, the data in the
// file content.
type Record struct {
	ID   string
	Data *jsonval.Value
}

// NewRecord builds a record over an object value. A nil data value is
// replaced with an empty object so every record serializes to valid JSON.
func NewRecord(id string, data *jsonval.Value) *Record {
	if data == nil {
		data = jsonval.Object()
	}
	return &Record{ID: id, Data: data}
}

// Field resolves a dot-notation path against the record's data.
func (r *Record) Field(path string) *jsonval.Value {
	if r == nil {
		return nil
	}
	return r.Data.Path(path)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	return &Record{ID: r.ID, Data: r.Data.Clone()}
}
