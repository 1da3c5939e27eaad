package markup

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/parse"
)

// ContextReferenceParser parses a ${key} or ${?key} template context
// reference.
func ContextReferenceParser() parse.Prefixed[ast.TemplateSpan] {
	p := parse.New(func(ctx parse.Context) parse.Result[ast.TemplateSpan] {
		r := parse.KeepRight(
			parse.Literal("${"),
			parse.Seq(
				parse.Opt(parse.Literal("?")),
				parse.DelimitedBy("}").FailOn('\n').NonEmpty().Parser(),
			),
		).Parse(ctx)
		if !r.IsSuccess() {
			return parse.FailWith[ast.TemplateSpan](r.Failure())
		}

		return parse.Success[ast.TemplateSpan](
			ast.TemplateContextReference{
				Key:      r.Value().Second,
				Optional: r.Value().First.IsDefined(),
			},
			r.Next(),
		)
	})

	return parse.NewPrefixed(parse.NewCharSet('$'), p)
}

// parseTemplateRoot scans template source into literal text, context
// references and bundle-contributed template constructs.
func (e *Engine) parseTemplateRoot(source string) ast.TemplateRoot {
	ctx := parse.NewContext(source)
	var parts []ast.TemplateSpan
	textStart := 0

	flush := func(until int) {
		if until > textStart {
			parts = append(parts, ast.TemplateString{
				Text: source[textStart:until],
			})
		}
	}

	for !ctx.AtEnd() {
		matched := false
		for _, p := range e.templateTable[ctx.Char()] {
			r := p.Parse(ctx)
			if r.IsSuccess() && r.Next().Offset() > ctx.Offset() {
				flush(ctx.Offset())
				parts = append(parts, r.Value())
				ctx = r.Next()
				textStart = ctx.Offset()
				matched = true

				break
			}
		}
		if !matched {
			ctx = ctx.Consume(1)
		}
	}
	flush(len(source))

	return ast.TemplateRoot{Parts: parts}
}
