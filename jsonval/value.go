// Package jsonval implements the document value model and its JSON codec.
// The codec is written from scratch: encoding/json is never used. Objects
// preserve key insertion order and numbers keep their integer/floating
// distinction, so any value produced by Parse serializes back to a
// structurally identical value.
package jsonval

import (
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNull is the JSON null literal.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindInt is a number without a fraction or exponent.
	KindInt
	// KindFloat is a number with a fraction or exponent.
	KindFloat
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is an ordered map of string keys to values.
	KindObject
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// Value is a tagged union over the JSON value variants.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []*Value
	obj  *orderedmap.OrderedMap[string, *Value]
}

// Null returns the null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, b: b}
}

// Int returns an integer value.
func Int(i int64) *Value {
	return &Value{kind: KindInt, i: i}
}

// Float returns a floating-point value.
func Float(f float64) *Value {
	return &Value{kind: KindFloat, f: f}
}

// String returns a string value.
func String(s string) *Value {
	return &Value{kind: KindString, s: s}
}

// Array returns an array value holding items in order.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, arr: items}
}

// Object returns an empty object value.
func Object() *Value {
	return &Value{kind: KindObject, obj: orderedmap.New[string, *Value]()}
}

// Kind returns which variant v holds. A nil *Value reports KindNull,
// matching IsNull, so missing-field lookups flow through the accessors
// without a nil check at every call site.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null. A nil *Value counts as null, which is
// what the query operations want for a missing field.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// BoolVal returns the boolean payload (false for other kinds).
func (v *Value) BoolVal() bool {
	return v != nil && v.kind == KindBool && v.b
}

// IntVal returns the integer payload (0 for other kinds).
func (v *Value) IntVal() int64 {
	if v != nil && v.kind == KindInt {
		return v.i
	}
	return 0
}

// FloatVal returns the float payload (0 for other kinds).
func (v *Value) FloatVal() float64 {
	if v != nil && v.kind == KindFloat {
		return v.f
	}
	return 0
}

// Num returns the numeric payload of an int or float value as a float64,
// and whether v is numeric at all.
func (v *Value) Num() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// StrVal returns the string payload (empty for other kinds).
func (v *Value) StrVal() string {
	if v != nil && v.kind == KindString {
		return v.s
	}
	return ""
}

// Items returns the array elements, or nil for non-arrays.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Append adds items to an array value.
func (v *Value) Append(items ...*Value) {
	if v.kind == KindArray {
		v.arr = append(v.arr, items...)
	}
}

// Len returns the element count of an array or object, 0 otherwise.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// Get returns the value for key in an object, or nil when absent or when v
// is not an object.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	val, ok := v.obj.Get(key)
	if !ok {
		return nil
	}
	return val
}

// Has reports whether an object value contains key.
func (v *Value) Has(key string) bool {
	if v == nil || v.kind != KindObject {
		return false
	}
	_, ok := v.obj.Get(key)
	return ok
}

// Set stores val under key in an object, preserving insertion order for
// new keys and position for existing ones.
func (v *Value) Set(key string, val *Value) {
	if v.kind == KindObject {
		v.obj.Set(key, val)
	}
}

// Delete removes key from an object.
func (v *Value) Delete(key string) {
	if v.kind == KindObject {
		v.obj.Delete(key)
	}
}

// Keys returns an object's keys in insertion order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for p := v.obj.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Path resolves a dot-notation path (e.g. "specs.color") against an object
// value. A missing segment, or a segment applied to a non-object, yields
// nil: logically "no value".
func (v *Value) Path(path string) *Value {
	if v == nil {
		return nil
	}
	if !strings.Contains(path, ".") {
		return v.Get(path)
	}
	cur := v
	for _, part := range strings.Split(path, ".") {
		cur = cur.Get(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// SetPath stores val at a dot-notation path, creating intermediate objects
// as needed, so a projection of "specs.color" re-nests at the same depth.
func (v *Value) SetPath(path string, val *Value) {
	if v.kind != KindObject {
		return
	}
	parts := strings.Split(path, ".")
	cur := v
	for _, part := range parts[:len(parts)-1] {
		next := cur.Get(part)
		if next == nil || next.kind != KindObject {
			next = Object()
			cur.Set(part, next)
		}
		cur = next
	}
	cur.Set(parts[len(parts)-1], val)
}

// Equal reports structural equality: same kind, same payload, same key
// order for objects and element order for arrays. Int and float values are
// never equal to each other even when numerically identical.
func (v *Value) Equal(o *Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		op := o.obj.Oldest()
		for p := v.obj.Oldest(); p != nil; p = p.Next() {
			if op == nil || p.Key != op.Key || !p.Value.Equal(op.Value) {
				return false
			}
			op = op.Next()
		}
		return true
	}
	return true
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindArray:
		items := make([]*Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Array(items...)
	case KindObject:
		c := Object()
		for p := v.obj.Oldest(); p != nil; p = p.Next() {
			c.Set(p.Key, p.Value.Clone())
		}
		return c
	default:
		c := *v
		return &c
	}
}

// String returns the compact JSON encoding of v. It doubles as the
// canonical form for group-by keys and substring matching.
func (v *Value) String() string {
	if v == nil {
		return "null"
	}
	return string(Write(v, 0))
}

// Compare orders two values: null first, then by numeric value for
// int/float pairs, lexicographically for strings, false before true for
// booleans, and by compact encoding across mismatched kinds.
func Compare(a, b *Value) int {
	an, bn := a.IsNull(), b.IsNull()
	if an || bn {
		switch {
		case an && bn:
			return 0
		case an:
			return -1
		default:
			return 1
		}
	}
	if af, ok := a.Num(); ok {
		if bf, ok := b.Num(); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.s, b.s)
	}
	if a.kind == KindBool && b.kind == KindBool {
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(a.String(), b.String())
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatFloat keeps a marker of floatness in the output so the round trip
// preserves the int/float distinction: 1.0 serializes as "1.0", not "1".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
