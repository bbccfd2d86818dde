package engine

import (
	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/internal/query"
	"github.com/dirdb/dirdb/jsonval"
)

// Query is a chainable, immutable query over one table. Non-terminal
// methods return a derived builder; the underlying records are only read
// when a terminal runs. A query over a nonexistent table yields empty
// results, never an error.
type Query struct {
	e       *Engine
	tbl     string
	filters []filterClause
	sortKey string
	sortAsc bool
	sorted  bool
	limit   int
	skip    int
	err     error
}

type filterClause struct {
	field string
	value *jsonval.Value
	op    query.Op
}

// Table starts a chainable query over the named table.
func (e *Engine) Table(name string) *Query {
	return &Query{e: e, tbl: name, limit: -1}
}

// clone copies the builder so each step derives a fresh one.
func (q *Query) clone() *Query {
	c := *q
	c.filters = make([]filterClause, len(q.filters), len(q.filters)+1)
	copy(c.filters, q.filters)
	return &c
}

// FilterBy adds a field comparison. An unknown operator surfaces when a
// terminal runs.
func (q *Query) FilterBy(field string, value *jsonval.Value, op query.Op) *Query {
	c := q.clone()
	if c.err == nil {
		if _, err := query.ParseOp(string(op)); err != nil {
			c.err = err
			return c
		}
	}
	c.filters = append(c.filters, filterClause{field: field, value: value, op: op})
	return c
}

// Where is FilterBy with the equality operator.
func (q *Query) Where(field string, value *jsonval.Value) *Query {
	return q.FilterBy(field, value, query.OpEq)
}

// Sort orders the results by field. Ascending unless asc[0] is false.
func (q *Query) Sort(field string, asc ...bool) *Query {
	c := q.clone()
	c.sortKey = field
	c.sortAsc = len(asc) == 0 || asc[0]
	c.sorted = true
	return c
}

// OrderBy is an alias for Sort.
func (q *Query) OrderBy(field string, asc ...bool) *Query {
	return q.Sort(field, asc...)
}

// Limit caps the number of results.
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	c.limit = n
	return c
}

// Skip drops the first n results.
func (q *Query) Skip(n int) *Query {
	c := q.clone()
	c.skip = n
	return c
}

// run executes the accumulated pipeline.
func (q *Query) run() ([]*entity.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	recs, err := q.e.FindAll(q.tbl)
	if err != nil {
		return nil, err
	}
	for _, f := range q.filters {
		recs, err = query.FilterByField(recs, f.field, f.value, f.op)
		if err != nil {
			return nil, err
		}
	}
	if q.sorted {
		recs = query.Sort(recs, q.sortKey, q.sortAsc)
	}
	if q.skip > 0 || q.limit >= 0 {
		limit := q.limit
		if limit < 0 {
			limit = len(recs)
		}
		recs = query.Limit(recs, limit, q.skip)
	}
	return recs, nil
}

// All returns every record matching the chain.
func (q *Query) All() ([]*entity.Record, error) {
	return q.run()
}

// First returns the first matching record, or nil when nothing matches.
func (q *Query) First() (*entity.Record, error) {
	recs, err := q.run()
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// Last returns the last matching record, or nil when nothing matches.
func (q *Query) Last() (*entity.Record, error) {
	recs, err := q.run()
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[len(recs)-1], nil
}

// Count returns the number of matching records.
func (q *Query) Count() (int, error) {
	recs, err := q.run()
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Select projects the matching records down to the named dot-path fields.
func (q *Query) Select(fields ...string) ([]*jsonval.Value, error) {
	recs, err := q.run()
	if err != nil {
		return nil, err
	}
	return query.Project(recs, fields), nil
}

// ToMaps returns each matching record's data with its id injected.
func (q *Query) ToMaps() ([]*jsonval.Value, error) {
	recs, err := q.run()
	if err != nil {
		return nil, err
	}
	out := make([]*jsonval.Value, len(recs))
	for i, rec := range recs {
		data := rec.Data.Clone()
		if !data.Has("id") {
			data.Set("id", jsonval.String(rec.ID))
		}
		out[i] = data
	}
	return out, nil
}

// GroupBy partitions the matching records by field.
func (q *Query) GroupBy(field string) ([]query.Group, error) {
	recs, err := q.run()
	if err != nil {
		return nil, err
	}
	return query.GroupBy(recs, field), nil
}
