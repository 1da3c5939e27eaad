// Package parse provides the parser combinator core used by every
// surface syntax in this module: the markup block and span grammars,
// the directive invocation parser and the configuration language.
//
// A Parser is an immutable value wrapping a pure function from an
// input Context to a Result. Combinators compose parsers into new
// parsers; nothing in this package mutates shared state, so parser
// values may be built once and shared freely.
package parse

import (
	"strings"

	"github.com/connerohnesorge/weft/vpath"
)

// Context is an immutable handle over a source string. Advancing
// produces a new value; the underlying source is shared.
type Context struct {
	source string
	offset int
	path   vpath.Path
	nest   int
}

// NewContext creates a context positioned at the start of source.
func NewContext(source string) Context {
	return Context{source: source}
}

// NewContextAt creates a context for source carrying the virtual path
// of its origin document.
func NewContextAt(source string, path vpath.Path) Context {
	return Context{source: source, path: path}
}

// Source returns the complete underlying source string.
func (c Context) Source() string {
	return c.source
}

// Offset returns the current byte offset into the source.
func (c Context) Offset() int {
	return c.offset
}

// Path returns the virtual path of the document being parsed.
func (c Context) Path() vpath.Path {
	return c.path
}

// NestLevel returns the recursion depth of nested parser invocations.
func (c Context) NestLevel() int {
	return c.nest
}

// Nest returns a copy of the context with the nest level increased.
func (c Context) Nest() Context {
	c.nest++

	return c
}

// AtEnd reports whether the offset has reached the end of the source.
func (c Context) AtEnd() bool {
	return c.offset >= len(c.source)
}

// Remaining returns the number of unconsumed bytes.
func (c Context) Remaining() int {
	return len(c.source) - c.offset
}

// Input returns the unconsumed tail of the source.
func (c Context) Input() string {
	return c.source[c.offset:]
}

// Char returns the byte at the current offset. It must not be called
// at the end of input.
func (c Context) Char() byte {
	return c.source[c.offset]
}

// CharAt returns the byte at the given relative offset and true, or
// zero and false when out of bounds.
func (c Context) CharAt(relative int) (byte, bool) {
	idx := c.offset + relative
	if idx < 0 || idx >= len(c.source) {
		return 0, false
	}

	return c.source[idx], true
}

// Consume returns a copy of the context advanced by n bytes. The
// offset is clamped to the source length.
func (c Context) Consume(n int) Context {
	c.offset += n
	if c.offset > len(c.source) {
		c.offset = len(c.source)
	}

	return c
}

// Capture returns the slice of source between the receiver and a later
// context over the same source.
func (c Context) Capture(until Context) string {
	if until.offset < c.offset {
		return ""
	}

	return c.source[c.offset:until.offset]
}

// Position computes the 1-based line and column of the current offset.
func (c Context) Position() Position {
	return positionAt(c.source, c.offset)
}

// Fragment captures the current location for later error reporting.
func (c Context) Fragment() Fragment {
	return Fragment{
		Path:   c.path,
		Offset: c.offset,
		source: c.source,
	}
}

// Position is a human-readable location inside a source string.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, in bytes
}

func positionAt(source string, offset int) Position {
	if offset > len(source) {
		offset = len(source)
	}
	line := strings.Count(source[:offset], "\n") + 1
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1

	return Position{Line: line, Column: offset - lineStart + 1}
}

// Fragment is a captured source location. It retains the full source
// so that error messages can show the offending line.
type Fragment struct {
	Path   vpath.Path
	Offset int
	source string
}

// Position computes the line and column of the fragment.
func (f Fragment) Position() Position {
	return positionAt(f.source, f.Offset)
}

// Line returns the complete source line containing the fragment.
func (f Fragment) Line() string {
	start := strings.LastIndexByte(f.source[:f.Offset], '\n') + 1
	end := strings.IndexByte(f.source[f.Offset:], '\n')
	if end < 0 {
		return f.source[start:]
	}

	return f.source[start : f.Offset+end]
}
