package config

import (
	"strconv"

	"github.com/connerohnesorge/weft/vpath"
)

// Decoder converts a configuration value into a typed Go value.
type Decoder[T any] struct {
	decode func(Value) (T, error)
}

// NewDecoder wraps a decode function.
func NewDecoder[T any](decode func(Value) (T, error)) Decoder[T] {
	return Decoder[T]{decode: decode}
}

// Decode applies the decoder.
func (d Decoder[T]) Decode(v Value) (T, error) {
	return d.decode(v)
}

// FlatMapDecoder derives a decoder by post-processing another
// decoder's result with a fallible conversion.
func FlatMapDecoder[A, B any](d Decoder[A], f func(A) (B, error)) Decoder[B] {
	return NewDecoder(func(v Value) (B, error) {
		var zero B
		a, err := d.decode(v)
		if err != nil {
			return zero, err
		}

		return f(a)
	})
}

// Encoder converts a typed Go value into a configuration value.
type Encoder[T any] struct {
	encode func(T) Value
}

// NewEncoder wraps an encode function.
func NewEncoder[T any](encode func(T) Value) Encoder[T] {
	return Encoder[T]{encode: encode}
}

// Encode applies the encoder.
func (e Encoder[T]) Encode(v T) Value {
	return e.encode(v)
}

// ContramapEncoder derives an encoder by pre-processing the input
// with a conversion.
func ContramapEncoder[A, B any](e Encoder[A], f func(B) A) Encoder[B] {
	return NewEncoder(func(v B) Value {
		return e.encode(f(v))
	})
}

// Codec pairs a decoder and encoder for one type.
type Codec[T any] struct {
	Decoder Decoder[T]
	Encoder Encoder[T]
}

// String returns the decoder for string values. Scalars of other
// kinds convert to their textual rendering, matching the permissive
// string access of the configuration surface language.
func String() Decoder[string] {
	return NewDecoder(func(v Value) (string, error) {
		switch v.Kind() {
		case KindString:
			s, _ := v.AsString()

			return s, nil
		case KindBool:
			b, _ := v.AsBool()

			return strconv.FormatBool(b), nil
		case KindLong:
			n, _ := v.AsLong()

			return strconv.FormatInt(n, 10), nil
		case KindDouble:
			f, _ := v.AsDouble()

			return strconv.FormatFloat(f, 'g', -1, 64), nil
		default:
			return "", &DecodeError{Expected: "String", Actual: v.Kind()}
		}
	})
}

// Int returns the decoder for int values.
func Int() Decoder[int] {
	return FlatMapDecoder(Int64(), func(n int64) (int, error) {
		return int(n), nil
	})
}

// Int64 returns the decoder for 64-bit integer values. Strings
// containing integer literals decode too.
func Int64() Decoder[int64] {
	return NewDecoder(func(v Value) (int64, error) {
		if n, ok := v.AsLong(); ok {
			return n, nil
		}
		if s, ok := v.AsString(); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}

		return 0, &DecodeError{Expected: "Long", Actual: v.Kind()}
	})
}

// Float returns the decoder for float values; integers widen.
func Float() Decoder[float64] {
	return NewDecoder(func(v Value) (float64, error) {
		if f, ok := v.AsDouble(); ok {
			return f, nil
		}
		if s, ok := v.AsString(); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, nil
			}
		}

		return 0, &DecodeError{Expected: "Double", Actual: v.Kind()}
	})
}

// Bool returns the decoder for boolean values. The strings "true",
// "false", "on", "off", "yes" and "no" decode too.
func Bool() Decoder[bool] {
	return NewDecoder(func(v Value) (bool, error) {
		if b, ok := v.AsBool(); ok {
			return b, nil
		}
		if s, ok := v.AsString(); ok {
			switch s {
			case "true", "on", "yes":
				return true, nil
			case "false", "off", "no":
				return false, nil
			}
		}

		return false, &DecodeError{Expected: "Bool", Actual: v.Kind()}
	})
}

// Path returns the decoder for virtual paths. Relative paths resolve
// against the parent directory of the value's origin, so a path
// configured in /docs/dir.conf as "images/x.png" addresses
// /docs/images/x.png.
func Path() Decoder[vpath.Path] {
	return NewDecoder(func(v Value) (vpath.Path, error) {
		s, ok := v.AsString()
		if !ok {
			return vpath.Path{}, &DecodeError{
				Expected: "Path",
				Actual:   v.Kind(),
			}
		}
		p := vpath.Parse(s)
		if p.IsAbsolute() {
			return p, nil
		}

		return v.Origin().Path.Parent().Resolve(p), nil
	})
}

// Seq returns the decoder for arrays with homogeneous element type.
func Seq[T any](elem Decoder[T]) Decoder[[]T] {
	return NewDecoder(func(v Value) ([]T, error) {
		arr, ok := v.AsArray()
		if !ok {
			return nil, &DecodeError{Expected: "Array", Actual: v.Kind()}
		}
		out := make([]T, 0, len(arr))
		for _, e := range arr {
			decoded, err := elem.Decode(e)
			if err != nil {
				return nil, err
			}
			out = append(out, decoded)
		}

		return out, nil
	})
}

// MapOf returns the decoder for objects with homogeneous member type.
func MapOf[T any](elem Decoder[T]) Decoder[map[string]T] {
	return NewDecoder(func(v Value) (map[string]T, error) {
		obj, ok := v.AsObject()
		if !ok {
			return nil, &DecodeError{Expected: "Object", Actual: v.Kind()}
		}
		out := make(map[string]T, obj.Len())
		for _, key := range obj.Keys() {
			member, _ := obj.Get(key)
			decoded, err := elem.Decode(member)
			if err != nil {
				return nil, withKey(key, err)
			}
			out[key] = decoded
		}

		return out, nil
	})
}

// StringEncoder encodes strings.
func StringEncoder() Encoder[string] {
	return NewEncoder(StringValue)
}

// IntEncoder encodes ints.
func IntEncoder() Encoder[int] {
	return NewEncoder(func(v int) Value {
		return LongValue(int64(v))
	})
}

// Int64Encoder encodes 64-bit integers.
func Int64Encoder() Encoder[int64] {
	return NewEncoder(LongValue)
}

// FloatEncoder encodes floats.
func FloatEncoder() Encoder[float64] {
	return NewEncoder(DoubleValue)
}

// BoolEncoder encodes booleans.
func BoolEncoder() Encoder[bool] {
	return NewEncoder(BoolValue)
}

// PathEncoder encodes virtual paths.
func PathEncoder() Encoder[vpath.Path] {
	return NewEncoder(func(p vpath.Path) Value {
		return StringValue(p.String())
	})
}

// SeqEncoder encodes slices with homogeneous element type.
func SeqEncoder[T any](elem Encoder[T]) Encoder[[]T] {
	return NewEncoder(func(vs []T) Value {
		out := make([]Value, len(vs))
		for i, v := range vs {
			out[i] = elem.Encode(v)
		}

		return ArrayValue(out)
	})
}

// StringCodec pairs the built-in string decoder and encoder.
func StringCodec() Codec[string] {
	return Codec[string]{Decoder: String(), Encoder: StringEncoder()}
}

// IntCodec pairs the built-in int decoder and encoder.
func IntCodec() Codec[int] {
	return Codec[int]{Decoder: Int(), Encoder: IntEncoder()}
}

// BoolCodec pairs the built-in bool decoder and encoder.
func BoolCodec() Codec[bool] {
	return Codec[bool]{Decoder: Bool(), Encoder: BoolEncoder()}
}
