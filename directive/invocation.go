package directive

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/markup"
	"github.com/connerohnesorge/weft/parse"
)

// Invocation is the validated input of one directive call, handed to
// the assemble function. Typed accessors return zero values for
// absent optional parts; the runtime has already rejected invalid or
// missing required parts before assembly runs.
type Invocation struct {
	Name   string
	Source string
	At     parse.Fragment

	// Cursor is set when the declaration requested cursor access; it
	// is nil during parsing and populated during the Resolve phase.
	Cursor *ast.DocumentCursor

	// Rec is set when the declaration requested the recursive parser
	// handle.
	Rec *markup.RecursiveParsers

	attributes config.Config
	positional []config.Value
	named      map[string]any
	byIndex    map[int]any
	body       []ast.Block
	spanBody   []ast.Span
	multipart  Multipart
}

// AllAttributes returns the whole attribute object.
func (inv *Invocation) AllAttributes() config.Config {
	return inv.attributes
}

// String returns a named string attribute.
func (inv *Invocation) String(name string) string {
	s, _ := inv.named[name].(string)

	return s
}

// Int returns a named int attribute.
func (inv *Invocation) Int(name string) int {
	n, _ := inv.named[name].(int)

	return n
}

// Bool returns a named bool attribute.
func (inv *Invocation) Bool(name string) bool {
	b, _ := inv.named[name].(bool)

	return b
}

// Has reports whether a named attribute was supplied.
func (inv *Invocation) Has(name string) bool {
	_, ok := inv.named[name]

	return ok
}

// Value returns the converted value of a named attribute.
func (inv *Invocation) Value(name string) (any, bool) {
	v, ok := inv.named[name]

	return v, ok
}

// StringAt returns a positional string attribute.
func (inv *Invocation) StringAt(index int) string {
	s, _ := inv.byIndex[index].(string)

	return s
}

// IntAt returns a positional int attribute.
func (inv *Invocation) IntAt(index int) int {
	n, _ := inv.byIndex[index].(int)

	return n
}

// ValueAt returns the converted value of a positional attribute.
func (inv *Invocation) ValueAt(index int) (any, bool) {
	v, ok := inv.byIndex[index]

	return v, ok
}

// Body returns the parsed block body.
func (inv *Invocation) Body() []ast.Block {
	return inv.body
}

// SpanBody returns the parsed inline body of a span directive.
func (inv *Invocation) SpanBody() []ast.Span {
	return inv.spanBody
}

// Separated returns the multipart body of a separated-body
// directive.
func (inv *Invocation) Separated() Multipart {
	return inv.multipart
}

// validate checks all declared parts against the parsed invocation,
// converting attributes and accumulating every failure.
func (inv *Invocation) validate(parts []Part, rawBody *rawBody) []string {
	var messages []string
	inv.named = make(map[string]any)
	inv.byIndex = make(map[int]any)

	for _, part := range parts {
		switch part.Kind {
		case AttributePart:
			messages = append(
				messages,
				inv.validateAttribute(part)...)
		case BodyPart:
			if part.Required && rawBody == nil {
				messages = append(messages, "missing required body")
			}
		case SeparatedBodyPart:
			if rawBody == nil {
				messages = append(messages, "missing required body")
			}
		case AllAttributesPart, CursorPart, ParserPart:
			// Nothing to validate; the runtime populates these.
		}
	}

	return messages
}

func (inv *Invocation) validateAttribute(part Part) []string {
	value, present := inv.lookupAttribute(part)
	if !present {
		if !part.Required {
			return nil
		}

		return []string{"missing required attribute " + attrLabel(part)}
	}
	convert := part.Convert
	if convert == nil {
		convert = AsString
	}
	converted, err := convert(value)
	if err != nil {
		return []string{
			"invalid attribute " + attrLabel(part) + ": " + err.Error(),
		}
	}
	if part.Name != "" {
		inv.named[part.Name] = converted
	} else {
		inv.byIndex[part.Index] = converted
	}

	return nil
}

func (inv *Invocation) lookupAttribute(part Part) (config.Value, bool) {
	if part.Name != "" {
		return inv.attributes.Lookup(part.Name)
	}
	if part.Index >= 0 && part.Index < len(inv.positional) {
		return inv.positional[part.Index], true
	}

	return config.Value{}, false
}

func attrLabel(part Part) string {
	if part.Name != "" {
		return "'" + part.Name + "'"
	}

	return "at position " + itoa(part.Index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}

// rawBody is the unparsed body text of an invocation.
type rawBody struct {
	text string
}

// partsNeed reports which inputs the declaration requests.
func partsNeed(parts []Part, kind PartKind) bool {
	for _, p := range parts {
		if p.Kind == kind {
			return true
		}
	}

	return false
}

// separatorsOf returns the separator declarations of a separated
// body, if any.
func separatorsOf(parts []Part) []Separator {
	for _, p := range parts {
		if p.Kind == SeparatedBodyPart {
			return p.Separators
		}
	}

	return nil
}
