// Package codec converts between string-encoded stored values and their
// typed representations, and validates raw input against property types.
package codec

import (
	"encoding/json"
	"time"
)

// Value represents a typed property value. The zero Value is null.
type Value struct {
	value interface{}
}

// Internal wrappers distinguishing the time-based and reference kinds.
type dateValue struct{ t time.Time }
type datetimeValue struct{ t time.Time }
type timeValue struct{ t time.Time }
type refValue struct{ s string }

// Null creates a null Value.
func Null() Value {
	return Value{}
}

// String creates a string Value.
func String(s string) Value {
	return Value{value: s}
}

// Number creates a number Value.
func Number(n float64) Value {
	return Value{value: n}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{value: b}
}

// Date creates a date Value.
func Date(t time.Time) Value {
	return Value{value: dateValue{t}}
}

// Datetime creates a datetime Value.
func Datetime(t time.Time) Value {
	return Value{value: datetimeValue{t}}
}

// TimeOfDay creates a time-of-day Value.
func TimeOfDay(t time.Time) Value {
	return Value{value: timeValue{t}}
}

// Ref creates an entity-reference Value holding an instance id.
func Ref(id string) Value {
	return Value{value: refValue{id}}
}

// List creates a list Value.
func List(items []Value) Value {
	return Value{value: items}
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.value == nil
}

// AsString returns the value as a string, if possible.
func (v Value) AsString() (string, bool) {
	switch x := v.value.(type) {
	case string:
		return x, true
	case refValue:
		return x.s, true
	}
	return "", false
}

// AsNumber returns the value as a number, if possible.
func (v Value) AsNumber() (float64, bool) {
	if n, ok := v.value.(float64); ok {
		return n, true
	}
	return 0, false
}

// AsBool returns the value as a boolean, if possible.
func (v Value) AsBool() (bool, bool) {
	if b, ok := v.value.(bool); ok {
		return b, true
	}
	return false, false
}

// AsTime returns the underlying time for date, datetime, and time-of-day
// values.
func (v Value) AsTime() (time.Time, bool) {
	switch x := v.value.(type) {
	case dateValue:
		return x.t, true
	case datetimeValue:
		return x.t, true
	case timeValue:
		return x.t, true
	}
	return time.Time{}, false
}

// AsList returns the value as a list, if possible.
func (v Value) AsList() ([]Value, bool) {
	if items, ok := v.value.([]Value); ok {
		return items, true
	}
	return nil, false
}

// IsRef returns true if this is an entity-reference value.
func (v Value) IsRef() bool {
	_, ok := v.value.(refValue)
	return ok
}

// Raw returns the underlying raw value with wrappers unwound, suitable for
// JSON output.
func (v Value) Raw() interface{} {
	switch x := v.value.(type) {
	case dateValue:
		return x.t.Format("2006-01-02")
	case datetimeValue:
		return x.t.Format("2006-01-02T15:04:05")
	case timeValue:
		return x.t.Format("15:04:05")
	case refValue:
		return x.s
	case []Value:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = item.Raw()
		}
		return out
	default:
		return x
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}
