package query

import (
	"strconv"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/jsonval"
)

// JoinOptions controls how the two sides of a join are flattened into one
// row object. With empty prefixes the right side's keys overwrite clashing
// left keys.
type JoinOptions struct {
	LeftPrefix  string
	RightPrefix string
}

// InnerJoin hash-joins two record lists: one row per (left, right) pair
// whose join fields compare equal. Left records whose field is missing or
// null never match.
func InnerJoin(left, right []*entity.Record, leftField, rightField string, opts JoinOptions) []*jsonval.Value {
	return join(left, right, leftField, rightField, opts, false)
}

// LeftJoin is InnerJoin plus one row per unmatched left record, carrying
// no right-side keys.
func LeftJoin(left, right []*entity.Record, leftField, rightField string, opts JoinOptions) []*jsonval.Value {
	return join(left, right, leftField, rightField, opts, true)
}

func join(left, right []*entity.Record, leftField, rightField string, opts JoinOptions, keepUnmatched bool) []*jsonval.Value {
	lookup := make(map[string][]*entity.Record)
	for _, r := range right {
		v := r.Field(rightField)
		if v.IsNull() {
			continue
		}
		k := joinKey(v)
		lookup[k] = append(lookup[k], r)
	}

	var rows []*jsonval.Value
	for _, l := range left {
		v := l.Field(leftField)
		var matches []*entity.Record
		if !v.IsNull() {
			matches = lookup[joinKey(v)]
		}
		if len(matches) == 0 {
			if keepUnmatched {
				rows = append(rows, mergeRows(l, nil, opts))
			}
			continue
		}
		for _, r := range matches {
			rows = append(rows, mergeRows(l, r, opts))
		}
	}
	return rows
}

// joinKey is the hash key for a join field value. Numbers are normalized
// so an integer 1 on one side matches a 1.0 on the other.
func joinKey(v *jsonval.Value) string {
	if n, ok := v.Num(); ok {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return v.String()
}

// mergeRows flattens the two sides into one object, prefixing each side's
// keys when a prefix is configured.
func mergeRows(left, right *entity.Record, opts JoinOptions) *jsonval.Value {
	row := jsonval.Object()
	copyFields(row, left.Data, opts.LeftPrefix)
	if right != nil {
		copyFields(row, right.Data, opts.RightPrefix)
	}
	return row
}

func copyFields(dst, src *jsonval.Value, prefix string) {
	for _, key := range src.Keys() {
		dst.Set(prefix+key, src.Get(key).Clone())
	}
}
