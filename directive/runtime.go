package directive

import (
	"strconv"
	"strings"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/hocon"
	"github.com/connerohnesorge/weft/markup"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/vpath"
)

// defaultFence terminates directive bodies unless the invocation
// declares a custom fence after the opening.
const defaultFence = "@:@"

// invocationHeader is the parsed marker line of a directive call:
// name, positional arguments, attribute object and optional custom
// fence.
type invocationHeader struct {
	name       string
	positional []config.Value
	attributes config.Config
	fence      string
	attrErr    error
}

// blockInvocationParser parses @:name(...) { ... } body @:@ block
// invocations including the whole body when the declaration requests
// one.
func (r *Registry) blockInvocationParser(
	rec *markup.RecursiveParsers,
) parse.Parser[ast.Block] {
	return parse.New(func(ctx parse.Context) parse.Result[ast.Block] {
		header, next, ok := r.parseHeader(ctx, true)
		if !ok {
			return parse.Fail[ast.Block](
				ctx, parse.Fixed("expected directive"),
			)
		}

		if r.separators[header.name] {
			rest := parse.RestOfLine().Parse(next)

			return parse.Success[ast.Block](ast.InvalidBlock{
				Message: orphanedSeparatorMessage(header.name),
				Source:  ctx.Capture(rest.Next()),
				At:      ctx.Fragment(),
			}, rest.Next())
		}

		decl, known := r.blocks[header.name]
		if !known {
			rest := parse.RestOfLine().Parse(next)
			err := &DirectiveError{
				Name: header.name,
				Messages: []string{
					"no block directive registered with name '" +
						header.name + "'",
				},
			}

			return parse.Success[ast.Block](ast.InvalidBlock{
				Message: err.Error(),
				Source:  ctx.Capture(rest.Next()),
				At:      ctx.Fragment(),
			}, rest.Next())
		}

		// Consume the remainder of the marker line.
		lineEnd := parse.RestOfLine().Parse(next)
		next = lineEnd.Next()

		var body *rawBody
		if partsNeed(decl.Parts, BodyPart) ||
			partsNeed(decl.Parts, SeparatedBodyPart) {
			body, next = scanBody(next, header.fence)
		}
		source := strings.TrimRight(ctx.Capture(next), "\n")

		inv := &Invocation{
			Name:       header.name,
			Source:     source,
			At:         ctx.Fragment(),
			Rec:        nil,
			attributes: header.attributes,
			positional: header.positional,
		}
		if partsNeed(decl.Parts, ParserPart) {
			inv.Rec = rec
		}

		messages := inv.validate(decl.Parts, body)
		if header.attrErr != nil {
			messages = append(messages, header.attrErr.Error())
		}
		if body != nil {
			messages = append(
				messages,
				splitBody(inv, decl.Parts, body, rec)...)
		}
		if len(messages) > 0 {
			err := &DirectiveError{
				Name:     header.name,
				Messages: messages,
			}

			return parse.Success[ast.Block](ast.InvalidBlock{
				Message: err.Error(),
				Source:  source,
				At:      ctx.Fragment(),
			}, next)
		}

		if partsNeed(decl.Parts, CursorPart) {
			return parse.Success[ast.Block](ast.ExtensionBlock{
				Name: deferredNodeName,
				Payload: &deferredBlock{
					inv:      inv,
					assemble: decl.Assemble,
				},
			}, next)
		}

		block, err := decl.Assemble(inv)
		if err != nil {
			derr := &DirectiveError{
				Name:     header.name,
				Messages: []string{err.Error()},
			}

			return parse.Success[ast.Block](ast.InvalidBlock{
				Message: derr.Error(),
				Source:  source,
				At:      ctx.Fragment(),
			}, next)
		}

		return parse.Success(block, next)
	})
}

// scanBody reads lines until one whose trimmed content equals the
// fence. A missing fence ends the body at the end of input.
func scanBody(ctx parse.Context, fence string) (*rawBody, parse.Context) {
	var lines []string
	current := ctx
	for !current.AtEnd() {
		r := parse.RestOfLine().Parse(current)
		if strings.TrimSpace(r.Value()) == fence {
			return &rawBody{
				text: strings.Join(lines, "\n"),
			}, r.Next()
		}
		lines = append(lines, r.Value())
		current = r.Next()
	}

	return &rawBody{text: strings.Join(lines, "\n")}, current
}

// splitBody parses the raw body into the invocation: either as one
// block sequence or split at separator markers, with occurrence
// bounds enforced.
func splitBody(
	inv *Invocation,
	parts []Part,
	body *rawBody,
	rec *markup.RecursiveParsers,
) []string {
	separators := separatorsOf(parts)
	if separators == nil {
		inv.body = rec.ParseBlocks(body.text)

		return nil
	}

	declared := make(map[string]Separator, len(separators))
	for _, sep := range separators {
		declared[sep.Name] = sep
	}

	segments := []SeparatedPart{{Name: ""}}
	var current []string
	flush := func(name string) {
		segments[len(segments)-1].Content = rec.ParseBlocks(
			strings.Join(current, "\n"),
		)
		current = nil
		if name != "" {
			segments = append(segments, SeparatedPart{Name: name})
		}
	}
	for _, line := range strings.Split(body.text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@:") {
			name := trimmed[2:]
			if _, ok := declared[name]; ok {
				flush(name)

				continue
			}
		}
		current = append(current, line)
	}
	flush("")

	inv.multipart = Multipart{
		Main:     segments[0].Content,
		Children: segments[1:],
	}

	var messages []string
	for _, sep := range separators {
		actual := len(inv.multipart.ChildrenNamed(sep.Name))
		if actual < sep.Min {
			messages = append(
				messages,
				separatorTooFew(sep.Name, sep.Min, actual),
			)
		}
		if sep.Max > 0 && actual > sep.Max {
			messages = append(
				messages,
				separatorTooMany(sep.Name, sep.Max, actual),
			)
		}
	}

	return messages
}

// parseHeader parses "@:name", the optional (…) positional list, the
// optional { … } attribute object and — for block invocations — the
// optional custom fence.
func (r *Registry) parseHeader(
	ctx parse.Context,
	allowFence bool,
) (invocationHeader, parse.Context, bool) {
	marker := parse.KeepRight(
		parse.Literal("@:"),
		parse.SomeWhile(isNameChar),
	).Parse(ctx)
	if !marker.IsSuccess() {
		return invocationHeader{}, ctx, false
	}
	header := invocationHeader{
		name:       marker.Value(),
		fence:      defaultFence,
		attributes: config.Empty(),
	}
	next := marker.Next()

	if !next.AtEnd() && next.Char() == '(' {
		args := parse.KeepRight(
			parse.Literal("("),
			parse.DelimitedBy(")").FailOn('\n').Parser(),
		).Parse(next)
		if !args.IsSuccess() {
			return invocationHeader{}, ctx, false
		}
		header.positional = parsePositional(args.Value())
		next = args.Next()
	}

	// Whitespace before the attribute object belongs to the
	// invocation only when the object actually follows.
	ws := parse.WS().Parse(next)
	if afterWS := ws.Next(); !afterWS.AtEnd() && afterWS.Char() == '{' {
		attrSrc, after, ok := scanBraced(afterWS)
		if !ok {
			return invocationHeader{}, ctx, false
		}
		header.attributes, header.attrErr = parseAttributes(
			attrSrc, ctx.Path(),
		)
		next = after
	}

	if allowFence {
		// An optional custom fence may follow on the marker line.
		ws = parse.WS().Parse(next)
		fence := parse.SomeWhile(func(c byte) bool {
			return c != ' ' && c != '\t' && c != '\n'
		}).Parse(ws.Next())
		if fence.IsSuccess() {
			header.fence = fence.Value()
			next = fence.Next()
		}
	}

	return header, next, true
}

func isNameChar(c byte) bool {
	return parse.IsAlphaNum(c) || c == '-' || c == '_'
}

// parsePositional splits the positional argument list at top-level
// commas and classifies each entry as a scalar value.
func parsePositional(src string) []config.Value {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	var out []config.Value
	for _, raw := range strings.Split(src, ",") {
		out = append(out, classifyScalar(strings.TrimSpace(raw)))
	}

	return out
}

func classifyScalar(token string) config.Value {
	if len(token) >= 2 && token[0] == '"' &&
		token[len(token)-1] == '"' {
		return config.StringValue(token[1 : len(token)-1])
	}
	switch token {
	case "true":
		return config.BoolValue(true)
	case "false":
		return config.BoolValue(false)
	case "null":
		return config.NullValue()
	}
	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		return config.LongValue(n)
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return config.DoubleValue(f)
	}

	return config.StringValue(token)
}

// scanBraced returns the source between the brace at the current
// position and its matching closing brace, tolerating nested braces
// and quoted strings.
func scanBraced(ctx parse.Context) (string, parse.Context, bool) {
	src := ctx.Source()
	depth := 0
	inQuote := false
	for pos := ctx.Offset(); pos < len(src); pos++ {
		c := src[pos]
		switch {
		case inQuote:
			if c == '\\' {
				pos++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return src[ctx.Offset()+1 : pos],
					ctx.Consume(pos - ctx.Offset() + 1),
					true
			}
		}
	}

	return "", ctx, false
}

// parseAttributes parses the attribute object with the configuration
// parser, attaching directive-scope origins.
func parseAttributes(
	src string,
	path vpath.Path,
) (config.Config, error) {
	unresolved, err := hocon.Parse(src)
	if err != nil {
		return config.Empty(), err
	}

	return unresolved.Resolve(nil, config.Origin{
		Scope: config.DirectiveScope,
		Path:  path,
	})
}

// deferredNodeName tags extension nodes carrying deferred directive
// invocations.
const deferredNodeName = "directive.deferred"

// deferredBlock is the resolver payload emitted for block directives
// that requested cursor access; assembly runs during the Resolve
// phase.
type deferredBlock struct {
	inv      *Invocation
	assemble func(*Invocation) (ast.Block, error)
}

// RunsIn reports whether the resolver participates in the phase.
func (*deferredBlock) RunsIn(p ast.Phase) bool {
	return p == ast.PhaseResolve
}

// UnresolvedMessage is the error shown when the resolver survives all
// of its phases.
func (d *deferredBlock) UnresolvedMessage() string {
	return "unresolved directive '" + d.inv.Name + "'"
}

// ResolveBlock assembles the directive with cursor access.
func (d *deferredBlock) ResolveBlock(cursor *ast.DocumentCursor) ast.Block {
	inv := *d.inv

	inv.Cursor = cursor
	block, err := d.assemble(&inv)
	if err != nil {
		derr := &DirectiveError{
			Name:     d.inv.Name,
			Messages: []string{err.Error()},
		}

		return ast.InvalidBlock{
			Message: derr.Error(),
			Source:  d.inv.Source,
			At:      d.inv.At,
		}
	}

	return block
}

// deferredSpan is the span counterpart of deferredBlock.
type deferredSpan struct {
	inv      *Invocation
	assemble func(*Invocation) (ast.Span, error)
}

// RunsIn reports whether the resolver participates in the phase.
func (*deferredSpan) RunsIn(p ast.Phase) bool {
	return p == ast.PhaseResolve
}

// UnresolvedMessage is the error shown when the resolver survives all
// of its phases.
func (d *deferredSpan) UnresolvedMessage() string {
	return "unresolved directive '" + d.inv.Name + "'"
}

// ResolveSpan assembles the directive with cursor access.
func (d *deferredSpan) ResolveSpan(cursor *ast.DocumentCursor) ast.Span {
	inv := *d.inv

	inv.Cursor = cursor
	span, err := d.assemble(&inv)
	if err != nil {
		derr := &DirectiveError{
			Name:     d.inv.Name,
			Messages: []string{err.Error()},
		}

		return ast.InvalidSpan{
			Message: derr.Error(),
			Source:  d.inv.Source,
			At:      d.inv.At,
		}
	}

	return span
}
