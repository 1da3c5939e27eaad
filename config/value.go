// Package config provides the configuration model shared by document
// trees, directives and templates: an ordered mapping from dotted keys
// to typed values with per-value origin tracking, typed decoding and
// encoding, and fallback chaining.
//
// The surface syntax producing these values is parsed by the hocon
// package; this package is purely the resolved model and its API.
package config

import (
	"strconv"
	"strings"
)

// Kind classifies a configuration value.
type Kind uint8

const (
	// KindNull is the explicit null value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindLong is a 64-bit integer.
	KindLong
	// KindDouble is a 64-bit float.
	KindDouble
	// KindString is a string.
	KindString
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is an ordered mapping of keys to values.
	KindObject
	// KindAST is an opaque AST element attached by a markup parser.
	KindAST
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindLong:
		return "Long"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindAST:
		return "AST"
	default:
		return "Unknown"
	}
}

// Value is a single configuration value. Values are immutable after
// construction; the zero value is null with an unknown origin.
type Value struct {
	kind      Kind
	boolVal   bool
	longVal   int64
	doubleVal float64
	stringVal string
	arrayVal  []Value
	objectVal *Object
	astVal    any
	origin    Origin
}

// NullValue creates an explicit null.
func NullValue() Value {
	return Value{kind: KindNull}
}

// BoolValue creates a boolean value.
func BoolValue(v bool) Value {
	return Value{kind: KindBool, boolVal: v}
}

// LongValue creates an integer value.
func LongValue(v int64) Value {
	return Value{kind: KindLong, longVal: v}
}

// DoubleValue creates a float value.
func DoubleValue(v float64) Value {
	return Value{kind: KindDouble, doubleVal: v}
}

// StringValue creates a string value.
func StringValue(v string) Value {
	return Value{kind: KindString, stringVal: v}
}

// ArrayValue creates an array value over a defensive copy of elems.
func ArrayValue(elems []Value) Value {
	copied := make([]Value, len(elems))
	copy(copied, elems)

	return Value{kind: KindArray, arrayVal: copied}
}

// ObjectValue creates an object value.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}

	return Value{kind: KindObject, objectVal: obj}
}

// ASTValue wraps a parsed AST element as a configuration value. The
// payload is opaque to this package; the ast package provides the
// typed accessors.
func ASTValue(element any) Value {
	return Value{kind: KindAST, astVal: element}
}

// Kind returns the value's classification.
func (v Value) Kind() Kind {
	return v.kind
}

// Origin returns where the value was defined.
func (v Value) Origin() Origin {
	return v.origin
}

// WithOrigin returns a copy of the value carrying the given origin.
// Origins on nested object and array members are left untouched.
func (v Value) WithOrigin(origin Origin) Value {
	v.origin = origin

	return v
}

// IsNull reports whether the value is the explicit null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload and whether the kind matches.
func (v Value) AsBool() (bool, bool) {
	return v.boolVal, v.kind == KindBool
}

// AsLong returns the integer payload and whether the kind matches.
func (v Value) AsLong() (int64, bool) {
	return v.longVal, v.kind == KindLong
}

// AsDouble returns the float payload; a Long converts losslessly.
func (v Value) AsDouble() (float64, bool) {
	if v.kind == KindLong {
		return float64(v.longVal), true
	}

	return v.doubleVal, v.kind == KindDouble
}

// AsString returns the string payload and whether the kind matches.
func (v Value) AsString() (string, bool) {
	return v.stringVal, v.kind == KindString
}

// AsArray returns a copy of the array payload and whether the kind
// matches.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arrayVal))
	copy(out, v.arrayVal)

	return out, true
}

// AsObject returns the object payload and whether the kind matches.
func (v Value) AsObject() (*Object, bool) {
	return v.objectVal, v.kind == KindObject
}

// AsAST returns the AST payload and whether the kind matches.
func (v Value) AsAST() (any, bool) {
	return v.astVal, v.kind == KindAST
}

// Render produces the HOCON-compatible textual form of the value.
// AST values render as an empty string; they have no surface syntax.
func (v Value) Render() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindLong:
		return strconv.FormatInt(v.longVal, 10)
	case KindDouble:
		return strconv.FormatFloat(v.doubleVal, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.stringVal)
	case KindArray:
		parts := make([]string, len(v.arrayVal))
		for i, e := range v.arrayVal {
			parts[i] = e.Render()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, 0, len(v.objectVal.keys))
		for _, k := range v.objectVal.keys {
			member := v.objectVal.values[k]
			parts = append(
				parts,
				strconv.Quote(k)+" = "+member.Render(),
			)
		}

		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}

// Equal performs deep structural comparison, ignoring origins.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindLong:
		return v.longVal == other.longVal
	case KindDouble:
		return v.doubleVal == other.doubleVal
	case KindString:
		return v.stringVal == other.stringVal
	case KindArray:
		if len(v.arrayVal) != len(other.arrayVal) {
			return false
		}
		for i := range v.arrayVal {
			if !v.arrayVal[i].Equal(other.arrayVal[i]) {
				return false
			}
		}

		return true
	case KindObject:
		return v.objectVal.Equal(other.objectVal)
	case KindAST:
		return v.astVal == other.astVal
	default:
		return false
	}
}

// merge combines two values under the configuration merge rules:
// objects merge recursively, everything else is replaced by the later
// value. The origin of the result is the origin of the overriding
// side.
func merge(earlier, later Value) Value {
	if earlier.kind == KindObject && later.kind == KindObject {
		merged := earlier.objectVal.Merge(later.objectVal)
		result := ObjectValue(merged)
		result.origin = later.origin

		return result
	}

	return later
}
