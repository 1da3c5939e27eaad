// Package directive provides the declarative framework for named
// tags callable from block, span, template and link positions. A
// directive declares its inputs — attributes, body, separators,
// cursor access — and an assemble function producing the target AST
// node; the runtime parses the invocation, validates the declared
// parts with error accumulation and applies the assemble function.
package directive

import (
	"fmt"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
)

// Converter converts an attribute value to its typed form. The
// built-in converters cover strings, ints and bools; user converters
// return an error message for rejected values.
type Converter func(config.Value) (any, error)

// AsString converts an attribute to a string.
func AsString(v config.Value) (any, error) {
	s, err := config.String().Decode(v)

	return s, err
}

// AsInt converts an attribute to an int.
func AsInt(v config.Value) (any, error) {
	n, err := config.Int().Decode(v)

	return n, err
}

// AsBool converts an attribute to a bool.
func AsBool(v config.Value) (any, error) {
	b, err := config.Bool().Decode(v)

	return b, err
}

// PartKind classifies directive part declarations.
type PartKind uint8

const (
	// AttributePart is a named or positional attribute.
	AttributePart PartKind = iota
	// BodyPart requests the directive body parsed as host content.
	BodyPart
	// SeparatedBodyPart requests a body split by separator
	// directives.
	SeparatedBodyPart
	// AllAttributesPart requests the whole attribute object.
	AllAttributesPart
	// CursorPart requests the document cursor, deferring assembly to
	// the Resolve rewrite phase.
	CursorPart
	// ParserPart requests the recursive parser handle.
	ParserPart
)

// Part is one declared input of a directive.
type Part struct {
	Kind       PartKind
	Name       string // named attribute
	Index      int    // positional attribute, -1 for named
	Required   bool
	Convert    Converter
	Separators []Separator
}

// Attr declares a required named attribute.
func Attr(name string, convert Converter) Part {
	return Part{
		Kind:     AttributePart,
		Name:     name,
		Index:    -1,
		Required: true,
		Convert:  convert,
	}
}

// OptAttr declares an optional named attribute.
func OptAttr(name string, convert Converter) Part {
	p := Attr(name, convert)
	p.Required = false

	return p
}

// Pos declares a required positional attribute.
func Pos(index int, convert Converter) Part {
	return Part{
		Kind:     AttributePart,
		Index:    index,
		Required: true,
		Convert:  convert,
	}
}

// OptPos declares an optional positional attribute.
func OptPos(index int, convert Converter) Part {
	p := Pos(index, convert)
	p.Required = false

	return p
}

// Body declares a required body parsed as child content of the host
// language.
func Body() Part {
	return Part{Kind: BodyPart, Index: -1, Required: true}
}

// OptBody declares an optional body.
func OptBody() Part {
	return Part{Kind: BodyPart, Index: -1}
}

// Separator declares one separator directive usable inside a
// separated body, with occurrence bounds. A Max of zero means
// unbounded.
type Separator struct {
	Name string
	Min  int
	Max  int
}

// SeparatedBody declares a body split by the given separator
// directives.
func SeparatedBody(separators ...Separator) Part {
	return Part{
		Kind:       SeparatedBodyPart,
		Index:      -1,
		Required:   true,
		Separators: separators,
	}
}

// AllAttrs declares access to the whole attribute object as a Config.
func AllAttrs() Part {
	return Part{Kind: AllAttributesPart, Index: -1}
}

// Cursor declares access to the document cursor. Assembly is then
// deferred to the Resolve rewrite phase.
func Cursor() Part {
	return Part{Kind: CursorPart, Index: -1}
}

// Parser declares access to the recursive parser handle.
func Parser() Part {
	return Part{Kind: ParserPart, Index: -1}
}

// SeparatedPart is one child segment of a separated body, tagged with
// the separator that introduced it.
type SeparatedPart struct {
	Name    string
	Content []ast.Block
}

// Multipart is the result of a separated body: the main body before
// the first separator plus the tagged child segments.
type Multipart struct {
	Main     []ast.Block
	Children []SeparatedPart
}

// ChildrenNamed returns the contents of all children with the given
// separator name.
func (m Multipart) ChildrenNamed(name string) [][]ast.Block {
	var out [][]ast.Block
	for _, c := range m.Children {
		if c.Name == name {
			out = append(out, c.Content)
		}
	}

	return out
}

// BlockDirective is a directive usable in block position.
type BlockDirective struct {
	Name     string
	Parts    []Part
	Assemble func(*Invocation) (ast.Block, error)
}

// SpanDirective is a directive usable in span position.
type SpanDirective struct {
	Name     string
	Parts    []Part
	Assemble func(*Invocation) (ast.Span, error)
}

// TemplateDirective is a directive usable inside templates.
type TemplateDirective struct {
	Name     string
	Parts    []Part
	Assemble func(*Invocation) (ast.TemplateSpan, error)
}

// LinkDirective is the link variant: it receives the link target
// text and produces a span, typically a SpanLink.
type LinkDirective struct {
	Name     string
	Assemble func(cursor *ast.DocumentCursor, target string) (ast.Span, error)
}

// DirectiveError is the composite failure of one directive
// invocation. Messages accumulate; the invocation never
// short-circuits on the first invalid part.
type DirectiveError struct {
	Name     string
	Messages []string
}

func (e *DirectiveError) Error() string {
	msg := "One or more errors processing directive '" + e.Name + "': "
	for i, m := range e.Messages {
		if i > 0 {
			msg += ", "
		}
		msg += m
	}

	return msg
}

// separatorTooFew renders the separator enforcement failures.
func separatorTooFew(name string, min, actual int) string {
	return fmt.Sprintf(
		"too few occurrences of separator directive '%s': expected min: %d, actual: %d",
		name, min, actual,
	)
}

func separatorTooMany(name string, max, actual int) string {
	return fmt.Sprintf(
		"too many occurrences of separator directive '%s': expected max: %d, actual: %d",
		name, max, actual,
	)
}

// orphanedSeparatorMessage is the error for a separator used outside
// any parent directive.
func orphanedSeparatorMessage(name string) string {
	return "Orphaned separator directive with name '" + name + "'"
}
