package config

import "strings"

// Config is a resolved, immutable configuration: an object tree plus
// an optional fallback chain consulted when a key is absent.
type Config struct {
	root     *Object
	fallback *Config
	origin   Origin
}

// Empty returns a configuration with no values and no fallback.
func Empty() Config {
	return Config{root: NewObject()}
}

// NewConfig wraps an object tree as a configuration.
func NewConfig(root *Object, origin Origin) Config {
	if root == nil {
		root = NewObject()
	}

	return Config{root: root, origin: origin}
}

// Origin returns the origin of the configuration as a whole.
func (c Config) Origin() Origin {
	return c.origin
}

// WithFallback returns a copy of the configuration that consults
// fallback for keys absent from this configuration. An existing
// fallback chain is extended at its end, so closer configurations
// keep precedence.
func (c Config) WithFallback(fallback Config) Config {
	if c.fallback != nil {
		extended := c.fallback.WithFallback(fallback)
		c.fallback = &extended

		return c
	}
	c.fallback = &fallback

	return c
}

// SplitKey splits a dotted key into its path segments.
func SplitKey(key string) []string {
	return strings.Split(key, ".")
}

// Lookup returns the raw value stored under a dotted key, consulting
// the fallback chain. Object values found both locally and in a
// fallback are merged with the local side winning. The zero Config
// behaves like an empty one.
func (c Config) Lookup(key string) (Value, bool) {
	path := SplitKey(key)
	var (
		local   Value
		localOK bool
	)
	if c.root != nil {
		local, localOK = c.root.getPath(path)
	}
	if localOK && local.Kind() != KindObject {
		return local, true
	}
	if c.fallback != nil {
		if behind, ok := c.fallback.Lookup(key); ok {
			if localOK {
				return merge(behind, local), true
			}

			return behind, true
		}
	}

	return local, localOK
}

// HasKey reports whether a dotted key is present, in this
// configuration or its fallback chain.
func (c Config) HasKey(key string) bool {
	_, ok := c.Lookup(key)

	return ok
}

// Get returns the raw value for a required key.
func (c Config) Get(key string) (Value, error) {
	v, ok := c.Lookup(key)
	if !ok {
		return Value{}, &NotFoundError{Key: key}
	}

	return v, nil
}

// WithValue returns a copy of the configuration with a value set
// under the dotted key. The original is not modified.
func (c Config) WithValue(key string, value Value) Config {
	root := deepCopyObject(c.root)
	root.setPath(SplitKey(key), value)
	c.root = root

	return c
}

// Root returns the underlying object tree. Callers must treat it as
// read-only.
func (c Config) Root() *Object {
	if c.root == nil {
		return NewObject()
	}

	return c.root
}

// deepCopyObject copies an object tree so that setPath cannot mutate
// objects shared with the original configuration.
func deepCopyObject(o *Object) *Object {
	copied := NewObject()
	if o == nil {
		return copied
	}
	for _, key := range o.keys {
		v := o.values[key]
		if child, ok := v.AsObject(); ok {
			nested := ObjectValue(deepCopyObject(child))
			copied.Set(key, nested.WithOrigin(v.Origin()))

			continue
		}
		copied.Set(key, v)
	}

	return copied
}

// Decode decodes a required key with the given decoder.
func Decode[T any](c Config, key string, dec Decoder[T]) (T, error) {
	var zero T
	v, ok := c.Lookup(key)
	if !ok {
		return zero, &NotFoundError{Key: key}
	}
	out, err := dec.Decode(v)
	if err != nil {
		return zero, withKey(key, err)
	}

	return out, nil
}

// DecodeOpt decodes an optional key; an absent key yields (zero,
// false, nil).
func DecodeOpt[T any](c Config, key string, dec Decoder[T]) (T, bool, error) {
	var zero T
	v, ok := c.Lookup(key)
	if !ok {
		return zero, false, nil
	}
	out, err := dec.Decode(v)
	if err != nil {
		return zero, false, withKey(key, err)
	}

	return out, true, nil
}

// DecodeOr decodes an optional key, substituting fallback when the
// key is absent.
func DecodeOr[T any](c Config, key string, dec Decoder[T], fallback T) (T, error) {
	out, ok, err := DecodeOpt(c, key, dec)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}

	return out, nil
}

// GetString decodes a required string key.
func (c Config) GetString(key string) (string, error) {
	return Decode(c, key, String())
}

// GetInt decodes a required integer key.
func (c Config) GetInt(key string) (int, error) {
	return Decode(c, key, Int())
}

// GetBool decodes a required boolean key.
func (c Config) GetBool(key string) (bool, error) {
	return Decode(c, key, Bool())
}
