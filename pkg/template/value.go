package template

import (
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a tagged variant representing one node of a template context tree.
// It replaces dynamic property access with a safe recursive accessor: looking
// up a path that does not exist yields Null, never a panic.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps a slice of values.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map wraps a map of values.
func Map(m map[string]Value) Value {
	if m == nil {
		m = make(map[string]Value)
	}
	return Value{kind: KindMap, m: m}
}

// ValueOf converts an arbitrary Go value into a Value tree. Strings, booleans,
// all numeric types, slices, and maps with string keys are supported; anything
// else is stringified via fmt semantics of its reflect value, or Null for nil.
func ValueOf(v any) Value {
	if v == nil {
		return Null()
	}
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return List(items...)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = ValueOf(e)
		}
		return List(items...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = ValueOf(e)
		}
		return Map(m)
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, s := range t {
			m[k] = String(s)
		}
		return Map(m)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range rv.Len() {
			items[i] = ValueOf(rv.Index(i).Interface())
		}
		return List(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]Value, rv.Len())
			for _, k := range rv.MapKeys() {
				m[k.String()] = ValueOf(rv.MapIndex(k).Interface())
			}
			return Map(m)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return ValueOf(rv.Elem().Interface())
	}
	return Null()
}

// Kind returns the kind tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Truthy reports whether the value is considered true in conditions.
// Null, empty strings, zero numbers, false, and empty collections are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.b
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return len(v.m) > 0
	default:
		return false
	}
}

// Items returns the list elements, or nil for non-list values.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Lookup resolves a dotted path against the value tree. Missing segments
// resolve to Null rather than an error.
func (v Value) Lookup(path string) Value {
	if path == "" {
		return v
	}
	cur := v
	for seg := range strings.SplitSeq(path, ".") {
		if cur.kind != KindMap {
			return Null()
		}
		next, ok := cur.m[seg]
		if !ok {
			return Null()
		}
		cur = next
	}
	return cur
}

// Text renders the value as a plain string: numbers drop insignificant
// trailing zeros, lists join their elements with commas, maps and null render
// empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Text()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Float returns the numeric interpretation of the value and whether one
// exists. Numeric strings parse; everything else does not.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// With returns a copy of the map value with an extra binding. Non-map values
// are promoted to a map so loop metadata can always be attached.
func (v Value) With(key string, val Value) Value {
	m := make(map[string]Value, len(v.m)+1)
	for k, e := range v.m {
		m[k] = e
	}
	m[key] = val
	return Map(m)
}
