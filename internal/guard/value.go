package guard

import (
	"fmt"
	"strconv"
)

// Kind is the bind-type tag of a Value. It determines how the value
// is passed to the executor and how it is tagged in debug log entries.
type Kind int

// Supported value kinds.
const (
	KindText Kind = iota
	KindInt
	KindFloat
)

// Value is a tagged scalar bound to a statement placeholder.
//
// Values are constructed at the call boundary with Int, Float, Text,
// or ValueOf; the tag is explicit so the core never probes runtime
// types during binding.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Int returns an integer-tagged value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Float returns a float-tagged value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Text returns a text-tagged value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// ValueOf converts an untyped caller value (e.g. decoded JSON) into a
// tagged Value. Integers map to KindInt, floats to KindFloat, and
// everything else falls back to KindText, the most permissive tag:
// falling back to text never silently coerces a value in a way that
// could change comparison semantics.
//
// Booleans render as "1"/"0", matching the integer storage convention
// used for flags; nil renders as the empty string.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Text("")
	case bool:
		if t {
			return Text("1")
		}
		return Text("0")
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return Text(t)
	default:
		return Text(fmt.Sprint(v))
	}
}

// Kind returns the bind-type tag.
func (v Value) Kind() Kind {
	return v.kind
}

// Arg returns the value as a driver argument.
func (v Value) Arg() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}

// Literal returns the value rendered as text, used when substituting
// placeholders in log entries.
func (v Value) Literal() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

// Field is an ordered column/value pair supplied to insert and update
// operations. The order of a []Field determines the placeholder order
// of the generated SQL.
type Field struct {
	Column string
	Value  Value
}

// Values converts a slice of untyped scalars into tagged values,
// preserving order.
func Values(in []any) []Value {
	if len(in) == 0 {
		return nil
	}
	out := make([]Value, len(in))
	for i, v := range in {
		out[i] = ValueOf(v)
	}
	return out
}
