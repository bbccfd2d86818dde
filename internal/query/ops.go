// Package query implements the pure operations of the query engine:
// filtering, projection, grouping, aggregation, sorting, limiting, and
// hash joins. Every function works over in-memory record lists and never
// touches storage.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/jsonval"
)

var (
	// ErrBadOperator reports an unrecognized filter operator.
	ErrBadOperator = errors.New("unsupported filter operator")
	// ErrBadAggregate reports an unrecognized aggregation operation.
	ErrBadAggregate = errors.New("unsupported aggregation operation")
)

// Op is a filter comparison operator.
type Op string

const (
	// OpEq matches values comparing equal.
	OpEq Op = "eq"
	// OpNe matches values comparing unequal, including missing ones.
	OpNe Op = "ne"
	// OpGt matches values comparing greater.
	OpGt Op = "gt"
	// OpGte matches values comparing greater or equal.
	OpGte Op = "gte"
	// OpLt matches values comparing less.
	OpLt Op = "lt"
	// OpLte matches values comparing less or equal.
	OpLte Op = "lte"
	// OpContains matches when the string form of the field value contains
	// the string form of the filter value.
	OpContains Op = "contains"
)

// ParseOp validates an operator name.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains:
		return Op(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadOperator, s)
}

// Filter returns the records satisfying pred, in input order.
func Filter(records []*entity.Record, pred func(*entity.Record) bool) []*entity.Record {
	out := make([]*entity.Record, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByField filters on a (possibly dot-nested) field. A record whose
// field is missing matches only under ne. A field explicitly stored as
// null compares like any other value: it equals a null filter value and
// differs from everything else.
func FilterByField(records []*entity.Record, field string, value *jsonval.Value, op Op) ([]*entity.Record, error) {
	if _, err := ParseOp(string(op)); err != nil {
		return nil, err
	}
	return Filter(records, func(r *entity.Record) bool {
		return Matches(r.Field(field), value, op)
	}), nil
}

// Matches applies one comparison. The caller validates op.
func Matches(fieldValue, filterValue *jsonval.Value, op Op) bool {
	if fieldValue == nil {
		return op == OpNe
	}
	if fieldValue.IsNull() {
		// An explicit null equals a null filter value and nothing else;
		// ordering against null never matches.
		switch op {
		case OpEq:
			return filterValue.IsNull()
		case OpNe:
			return !filterValue.IsNull()
		case OpContains:
			return containsString(fieldValue, filterValue)
		}
		return false
	}
	switch op {
	case OpEq:
		return jsonval.Compare(fieldValue, filterValue) == 0
	case OpNe:
		return jsonval.Compare(fieldValue, filterValue) != 0
	case OpGt:
		return jsonval.Compare(fieldValue, filterValue) > 0
	case OpGte:
		return jsonval.Compare(fieldValue, filterValue) >= 0
	case OpLt:
		return jsonval.Compare(fieldValue, filterValue) < 0
	case OpLte:
		return jsonval.Compare(fieldValue, filterValue) <= 0
	case OpContains:
		return containsString(fieldValue, filterValue)
	}
	return false
}

func containsString(fieldValue, filterValue *jsonval.Value) bool {
	return strings.Contains(stringForm(fieldValue), stringForm(filterValue))
}

// stringForm is the substring-matching view of a value: the raw text for
// strings, the compact JSON encoding for everything else.
func stringForm(v *jsonval.Value) string {
	if v != nil && v.Kind() == jsonval.KindString {
		return v.StrVal()
	}
	return v.String()
}

// Project builds, per record, a new nested object holding only the
// requested dot-paths, re-nested at the depth they were addressed.
// A requested path the record does not have projects as null.
func Project(records []*entity.Record, fields []string) []*jsonval.Value {
	out := make([]*jsonval.Value, 0, len(records))
	for _, r := range records {
		obj := jsonval.Object()
		for _, field := range fields {
			v := r.Field(field)
			if v == nil {
				v = jsonval.Null()
			}
			obj.SetPath(field, v)
		}
		out = append(out, obj)
	}
	return out
}

// Group is one group-by bucket: the shared field value and the records
// carrying it.
type Group struct {
	Key     *jsonval.Value
	Records []*entity.Record
}

// GroupBy partitions records by the (possibly nested) field value. Every
// input record lands in exactly one bucket; records missing the field
// share the null bucket. Buckets appear in order of first occurrence.
func GroupBy(records []*entity.Record, field string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		key := r.Field(field)
		if key == nil {
			key = jsonval.Null()
		}
		canon := key.String()
		i, ok := index[canon]
		if !ok {
			i = len(groups)
			index[canon] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Aggregate reduces a field across records. count returns the record
// count regardless of the field; sum, avg, min, and max operate over the
// non-null values of the field and return null when no such value exists.
func Aggregate(records []*entity.Record, field, op string) (*jsonval.Value, error) {
	if op == "count" {
		return jsonval.Int(int64(len(records))), nil
	}
	switch op {
	case "sum", "avg", "min", "max":
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadAggregate, op)
	}

	var values []*jsonval.Value
	for _, r := range records {
		if v := r.Field(field); !v.IsNull() {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return jsonval.Null(), nil
	}

	switch op {
	case "min", "max":
		best := values[0]
		for _, v := range values[1:] {
			c := jsonval.Compare(v, best)
			if (op == "min" && c < 0) || (op == "max" && c > 0) {
				best = v
			}
		}
		return best, nil
	default: // sum, avg
		var sum float64
		allInt := true
		for _, v := range values {
			n, ok := v.Num()
			if !ok {
				return nil, fmt.Errorf("%w: non-numeric value for %s", ErrBadAggregate, op)
			}
			if v.Kind() != jsonval.KindInt {
				allInt = false
			}
			sum += n
		}
		if op == "avg" {
			return jsonval.Float(sum / float64(len(values))), nil
		}
		if allInt {
			return jsonval.Int(int64(sum)), nil
		}
		return jsonval.Float(sum), nil
	}
}

// Sort returns a stably sorted copy of records by the field value.
// Records whose field is missing or null sort after all present values in
// both directions.
func Sort(records []*entity.Record, field string, ascending bool) []*entity.Record {
	out := make([]*entity.Record, len(records))
	copy(out, records)
	slices.SortStableFunc(out, func(a, b *entity.Record) int {
		va, vb := a.Field(field), b.Field(field)
		an, bn := va.IsNull(), vb.IsNull()
		if an || bn {
			switch {
			case an && bn:
				return 0
			case an:
				return 1
			default:
				return -1
			}
		}
		c := jsonval.Compare(va, vb)
		if !ascending {
			return -c
		}
		return c
	})
	return out
}

// Limit slices [offset, offset+count), clamped to the record list.
func Limit(records []*entity.Record, count, offset int) []*entity.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) || count <= 0 {
		return nil
	}
	end := offset + count
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
