package hocon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/parse"
)

// forbiddenUnquoted are the characters that terminate an unquoted
// string, per the HOCON specification.
const forbiddenUnquoted = "$\"{}[]:=,+#`^?!@*&\\"

// Parse parses configuration source into an unresolved tree. The
// input may be a bare field list or wrapped in a single root object.
func Parse(input string) (*Unresolved, error) {
	p := &parser{ctx: parse.NewContext(input)}
	p.skipIgnorable(true)
	wrapped := !p.ctx.AtEnd() && p.ctx.Char() == '{'
	if wrapped {
		p.ctx = p.ctx.Consume(1)
	}
	fields, err := p.objectBody(!wrapped)
	if err != nil {
		return nil, err
	}
	if wrapped {
		p.ctx = p.ctx.Consume(1) // the closing '}'
	}
	p.skipIgnorable(true)
	if !p.ctx.AtEnd() {
		return nil, p.errorf("unexpected character %q", p.ctx.Char())
	}

	return &Unresolved{root: objectExpr{fields: fields}}, nil
}

// parser holds the cursor state of a single Parse call. The grammar
// leans on the parse kit for its lexemes and drives sequencing
// directly, which keeps error reporting precise.
type parser struct {
	ctx parse.Context
}

func (p *parser) errorf(format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return &ParseError{Message: msg, Position: p.ctx.Position()}
}

// skipIgnorable consumes whitespace and comments; newlines only when
// requested.
func (p *parser) skipIgnorable(newlines bool) {
	for !p.ctx.AtEnd() {
		c := p.ctx.Char()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.ctx = p.ctx.Consume(1)
		case newlines && c == '\n':
			p.ctx = p.ctx.Consume(1)
		case c == '#':
			p.skipLine()
		case c == '/' && p.peekAt(1) == '/':
			p.skipLine()
		default:
			return
		}
	}
}

// skipLine consumes a comment up to but not including the newline, so
// the newline stays available as a field separator.
func (p *parser) skipLine() {
	r := parse.AnyWhile(func(c byte) bool { return c != '\n' }).
		Parse(p.ctx)
	p.ctx = r.Next()
}

func (p *parser) peekAt(n int) byte {
	c, ok := p.ctx.CharAt(n)
	if !ok {
		return 0
	}

	return c
}

// objectBody parses fields until '}' (or end of input at top level).
func (p *parser) objectBody(topLevel bool) ([]field, error) {
	var fields []field
	for {
		p.skipIgnorable(true)
		p.skipSeparators()
		p.skipIgnorable(true)
		if p.ctx.AtEnd() {
			if topLevel {
				return fields, nil
			}

			return nil, p.errorf("unterminated object")
		}
		if p.ctx.Char() == '}' {
			if topLevel {
				return nil, p.errorf("unexpected '}'")
			}

			return fields, nil
		}
		f, err := p.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if err := p.expectFieldEnd(topLevel); err != nil {
			return nil, err
		}
	}
}

// skipSeparators consumes commas acting as field separators.
func (p *parser) skipSeparators() {
	for !p.ctx.AtEnd() && p.ctx.Char() == ',' {
		p.ctx = p.ctx.Consume(1)
		p.skipIgnorable(true)
	}
}

// expectFieldEnd requires a newline, comma, closing brace or end of
// input after a field.
func (p *parser) expectFieldEnd(topLevel bool) error {
	p.skipIgnorable(false)
	if p.ctx.AtEnd() {
		return nil
	}
	switch p.ctx.Char() {
	case '\n', ',':
		p.ctx = p.ctx.Consume(1)

		return nil
	case '}':
		if topLevel {
			return p.errorf("unexpected '}'")
		}

		return nil
	default:
		return p.errorf(
			"expected end of field, found %q", p.ctx.Char(),
		)
	}
}

// field parses one key path plus its value.
func (p *parser) field() (field, error) {
	path, err := p.keyPath()
	if err != nil {
		return field{}, err
	}
	p.skipIgnorable(false)
	if p.ctx.AtEnd() {
		return field{}, p.errorf("expected value for key %q", strings.Join(path, "."))
	}

	switch {
	case p.ctx.Char() == '{':
		value, err := p.value()
		if err != nil {
			return field{}, err
		}

		return field{path: path, value: value}, nil
	case p.ctx.Char() == '+' && p.peekAt(1) == '=':
		p.ctx = p.ctx.Consume(2)
		value, err := p.value()
		if err != nil {
			return field{}, err
		}

		return field{path: path, value: value, selfAdd: true}, nil
	case p.ctx.Char() == ':' || p.ctx.Char() == '=':
		p.ctx = p.ctx.Consume(1)
		value, err := p.value()
		if err != nil {
			return field{}, err
		}

		return field{path: path, value: value}, nil
	default:
		return field{}, p.errorf(
			"expected ':', '=' or '{' after key %q",
			strings.Join(path, "."),
		)
	}
}

// keyPath parses a dotted key: unquoted segments may themselves
// contain dots (expressing nesting); quoted segments never nest.
func (p *parser) keyPath() ([]string, error) {
	var path []string
	for {
		p.skipIgnorable(false)
		if p.ctx.AtEnd() {
			return nil, p.errorf("expected key")
		}
		if p.ctx.Char() == '"' {
			seg, err := p.quotedString()
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
		} else {
			r := parse.SomeWhile(isUnquotedKeyChar).Parse(p.ctx)
			if !r.IsSuccess() {
				return nil, p.errorf(
					"illegal character %q in key", p.ctx.Char(),
				)
			}
			p.ctx = r.Next()
			path = append(path, strings.TrimSpace(r.Value()))
		}
		if !p.ctx.AtEnd() && p.ctx.Char() == '.' {
			p.ctx = p.ctx.Consume(1)

			continue
		}

		return path, nil
	}
}

func isUnquotedKeyChar(c byte) bool {
	return c != '.' && c != ' ' && c != '\t' && c != '\n' && c != '\r' &&
		!strings.ContainsRune(forbiddenUnquoted, rune(c)) &&
		c != '/'
}

// value parses one value expression including same-line
// concatenation of adjacent parts.
func (p *parser) value() (expr, error) {
	p.skipIgnorable(false)
	first, err := p.valuePart()
	if err != nil {
		return nil, err
	}
	parts := []concatPart{{value: first}}
	for {
		wsStart := p.ctx
		ws := parse.WS().Parse(p.ctx)
		p.ctx = ws.Next()
		if p.ctx.AtEnd() || !p.startsValue() {
			p.ctx = wsStart

			return collapseConcat(parts), nil
		}
		part, err := p.valuePart()
		if err != nil {
			return nil, err
		}
		parts = append(parts, concatPart{ws: ws.Value(), value: part})
	}
}

// startsValue reports whether the current character can begin another
// concatenated value part.
func (p *parser) startsValue() bool {
	switch c := p.ctx.Char(); c {
	case '\n', ',', '}', ']', '#', '=', ':', '+':
		return false
	case '/':
		return p.peekAt(1) != '/'
	default:
		return true
	}
}

func collapseConcat(parts []concatPart) expr {
	if len(parts) == 1 {
		return parts[0].value
	}

	return concatExpr{parts: parts}
}

// valuePart parses a single non-concatenated value.
func (p *parser) valuePart() (expr, error) {
	switch c := p.ctx.Char(); {
	case c == '{':
		p.ctx = p.ctx.Consume(1)
		fields, err := p.objectBody(false)
		if err != nil {
			return nil, err
		}
		p.ctx = p.ctx.Consume(1) // closing brace

		return objectExpr{fields: fields}, nil
	case c == '[':
		return p.array()
	case c == '"':
		if p.peekAt(1) == '"' && p.peekAt(2) == '"' {
			return p.tripleQuoted()
		}
		s, err := p.quotedString()
		if err != nil {
			return nil, err
		}

		return litExpr{value: config.StringValue(s)}, nil
	case c == '$':
		return p.substitution()
	default:
		return p.unquoted()
	}
}

// array parses '[' values ']' with comma or newline separators.
func (p *parser) array() (expr, error) {
	p.ctx = p.ctx.Consume(1)
	var elems []expr
	for {
		p.skipIgnorable(true)
		p.skipSeparators()
		p.skipIgnorable(true)
		if p.ctx.AtEnd() {
			return nil, p.errorf("unterminated array")
		}
		if p.ctx.Char() == ']' {
			p.ctx = p.ctx.Consume(1)

			return arrayExpr{elems: elems}, nil
		}
		elem, err := p.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

// quotedString parses a double-quoted string with escape sequences.
func (p *parser) quotedString() (string, error) {
	start := p.ctx
	p.ctx = p.ctx.Consume(1)
	var sb strings.Builder
	for {
		if p.ctx.AtEnd() || p.ctx.Char() == '\n' {
			p.ctx = start

			return "", p.errorf("unclosed quoted string")
		}
		c := p.ctx.Char()
		if c == '"' {
			p.ctx = p.ctx.Consume(1)

			return sb.String(), nil
		}
		if c != '\\' {
			sb.WriteByte(c)
			p.ctx = p.ctx.Consume(1)

			continue
		}
		esc := p.peekAt(1)
		switch esc {
		case '"', '\\', '/':
			sb.WriteByte(esc)
			p.ctx = p.ctx.Consume(2)
		case 'b':
			sb.WriteByte('\b')
			p.ctx = p.ctx.Consume(2)
		case 'f':
			sb.WriteByte('\f')
			p.ctx = p.ctx.Consume(2)
		case 'n':
			sb.WriteByte('\n')
			p.ctx = p.ctx.Consume(2)
		case 'r':
			sb.WriteByte('\r')
			p.ctx = p.ctx.Consume(2)
		case 't':
			sb.WriteByte('\t')
			p.ctx = p.ctx.Consume(2)
		case 'u':
			hex := parse.CharsBetween(parse.IsHex, 4, 4).
				Parse(p.ctx.Consume(2))
			if !hex.IsSuccess() {
				return "", p.errorf("invalid unicode escape")
			}
			code, _ := strconv.ParseUint(hex.Value(), 16, 32)
			sb.WriteRune(rune(code))
			p.ctx = hex.Next()
		default:
			return "", p.errorf("invalid escape sequence \\%c", esc)
		}
	}
}

// tripleQuoted parses a """…""" multi-line string without escape
// processing.
func (p *parser) tripleQuoted() (expr, error) {
	body := parse.KeepRight(
		parse.Literal(`"""`),
		parse.DelimitedBy(`"""`).Parser(),
	)
	r := body.Parse(p.ctx)
	if !r.IsSuccess() {
		return nil, p.errorf("unclosed multi-line string")
	}
	p.ctx = r.Next()

	return litExpr{value: config.StringValue(r.Value())}, nil
}

// substitution parses ${path} or ${?path}.
func (p *parser) substitution() (expr, error) {
	if p.peekAt(1) != '{' {
		return nil, p.errorf("invalid substitution syntax")
	}
	p.ctx = p.ctx.Consume(2)
	optional := false
	if !p.ctx.AtEnd() && p.ctx.Char() == '?' {
		optional = true
		p.ctx = p.ctx.Consume(1)
	}
	path := parse.DelimitedBy("}").FailOn('\n').NonEmpty().Parser().
		Parse(p.ctx)
	if !path.IsSuccess() {
		return nil, p.errorf("invalid substitution syntax")
	}
	p.ctx = path.Next()

	return substExpr{
		path:     strings.TrimSpace(path.Value()),
		optional: optional,
	}, nil
}

// unquoted parses an unquoted token and classifies it as number,
// boolean, null or string. A single '/' is legal inside the token;
// '//' starts a comment and terminates it.
func (p *parser) unquoted() (expr, error) {
	src := p.ctx.Source()
	end := p.ctx.Offset()
	for end < len(src) {
		c := src[end]
		if c == '/' {
			if end+1 < len(src) && src[end+1] == '/' {
				break
			}
			end++

			continue
		}
		if !isUnquotedChar(c) {
			break
		}
		end++
	}
	if end == p.ctx.Offset() {
		return nil, p.errorf(
			"illegal character %q in unquoted string", p.ctx.Char(),
		)
	}
	token := src[p.ctx.Offset():end]
	p.ctx = p.ctx.Consume(end - p.ctx.Offset())

	switch token {
	case "true", "on", "yes":
		return litExpr{value: config.BoolValue(true)}, nil
	case "false", "off", "no":
		return litExpr{value: config.BoolValue(false)}, nil
	case "null":
		return litExpr{value: config.NullValue()}, nil
	}
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return litExpr{value: config.LongValue(n)}, nil
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return litExpr{value: config.DoubleValue(f)}, nil
	}

	return litExpr{value: config.StringValue(token)}, nil
}

func isUnquotedChar(c byte) bool {
	return c != ' ' && c != '\t' && c != '\n' && c != '\r' &&
		!strings.ContainsRune(forbiddenUnquoted, rune(c))
}
