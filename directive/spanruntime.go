package directive

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/markup"
	"github.com/connerohnesorge/weft/parse"
)

// spanInvocationParser parses @:name(...) { ... } body @:@ span
// invocations, covering span directives and the link variant.
func (r *Registry) spanInvocationParser(
	rec *markup.RecursiveParsers,
) parse.Parser[ast.Span] {
	return parse.New(func(ctx parse.Context) parse.Result[ast.Span] {
		header, next, ok := r.parseHeader(ctx, false)
		if !ok {
			return parse.Fail[ast.Span](
				ctx, parse.Fixed("expected directive"),
			)
		}

		if r.separators[header.name] {
			return parse.Success[ast.Span](ast.InvalidSpan{
				Message: orphanedSeparatorMessage(header.name),
				Source:  ctx.Capture(next),
				At:      ctx.Fragment(),
			}, next)
		}

		if link, isLink := r.links[header.name]; isLink {
			return r.linkInvocation(ctx, next, header, link)
		}

		decl, known := r.spans[header.name]
		if !known {
			err := &DirectiveError{
				Name: header.name,
				Messages: []string{
					"no span directive registered with name '" +
						header.name + "'",
				},
			}

			return parse.Success[ast.Span](ast.InvalidSpan{
				Message: err.Error(),
				Source:  ctx.Capture(next),
				At:      ctx.Fragment(),
			}, next)
		}

		var body *rawBody
		if partsNeed(decl.Parts, BodyPart) {
			inline := parse.KeepRight(
				parse.WS(),
				parse.DelimitedBy(defaultFence).FailOn('\n').Parser(),
			).Parse(next)
			if inline.IsSuccess() {
				body = &rawBody{text: inline.Value()}
				next = inline.Next()
			}
		}
		source := ctx.Capture(next)

		inv := &Invocation{
			Name:       header.name,
			Source:     source,
			At:         ctx.Fragment(),
			attributes: header.attributes,
			positional: header.positional,
		}
		if partsNeed(decl.Parts, ParserPart) {
			inv.Rec = rec
		}
		if body != nil {
			inv.spanBody = rec.ParseSpans(body.text)
		}

		messages := inv.validate(decl.Parts, body)
		if header.attrErr != nil {
			messages = append(messages, header.attrErr.Error())
		}
		if len(messages) > 0 {
			err := &DirectiveError{
				Name:     header.name,
				Messages: messages,
			}

			return parse.Success[ast.Span](ast.InvalidSpan{
				Message: err.Error(),
				Source:  source,
				At:      ctx.Fragment(),
			}, next)
		}

		if partsNeed(decl.Parts, CursorPart) {
			return parse.Success[ast.Span](ast.ExtensionSpan{
				Name: deferredNodeName,
				Payload: &deferredSpan{
					inv:      inv,
					assemble: decl.Assemble,
				},
			}, next)
		}

		span, err := decl.Assemble(inv)
		if err != nil {
			derr := &DirectiveError{
				Name:     header.name,
				Messages: []string{err.Error()},
			}

			return parse.Success[ast.Span](ast.InvalidSpan{
				Message: derr.Error(),
				Source:  source,
				At:      ctx.Fragment(),
			}, next)
		}

		return parse.Success(span, next)
	})
}

// linkInvocation handles the link variant: the first positional
// argument is the target; resolution is deferred because link
// directives receive the cursor.
func (r *Registry) linkInvocation(
	ctx, next parse.Context,
	header invocationHeader,
	link *LinkDirective,
) parse.Result[ast.Span] {
	if len(header.positional) == 0 {
		err := &DirectiveError{
			Name:     header.name,
			Messages: []string{"missing link target"},
		}

		return parse.Success[ast.Span](ast.InvalidSpan{
			Message: err.Error(),
			Source:  ctx.Capture(next),
			At:      ctx.Fragment(),
		}, next)
	}
	target, _ := config.String().Decode(header.positional[0])

	inv := &Invocation{
		Name:   header.name,
		Source: ctx.Capture(next),
		At:     ctx.Fragment(),
	}

	return parse.Success[ast.Span](ast.ExtensionSpan{
		Name: deferredNodeName,
		Payload: &deferredSpan{
			inv: inv,
			assemble: func(in *Invocation) (ast.Span, error) {
				return link.Assemble(in.Cursor, target)
			},
		},
	}, next)
}

// templateInvocationParser parses directive calls in template
// position.
func (r *Registry) templateInvocationParser(
	rec *markup.RecursiveParsers,
) parse.Parser[ast.TemplateSpan] {
	return parse.New(func(ctx parse.Context) parse.Result[ast.TemplateSpan] {
		header, next, ok := r.parseHeader(ctx, false)
		if !ok {
			return parse.Fail[ast.TemplateSpan](
				ctx, parse.Fixed("expected directive"),
			)
		}

		decl, known := r.templates[header.name]
		if !known {
			err := &DirectiveError{
				Name: header.name,
				Messages: []string{
					"no template directive registered with name '" +
						header.name + "'",
				},
			}

			return parse.Success[ast.TemplateSpan](ast.TemplateElement{
				Element: ast.InvalidSpan{
					Message: err.Error(),
					Source:  ctx.Capture(next),
					At:      ctx.Fragment(),
				},
			}, next)
		}

		inv := &Invocation{
			Name:       header.name,
			Source:     ctx.Capture(next),
			At:         ctx.Fragment(),
			attributes: header.attributes,
			positional: header.positional,
		}
		if partsNeed(decl.Parts, ParserPart) {
			inv.Rec = rec
		}

		messages := inv.validate(decl.Parts, nil)
		if header.attrErr != nil {
			messages = append(messages, header.attrErr.Error())
		}
		if len(messages) > 0 {
			err := &DirectiveError{
				Name:     header.name,
				Messages: messages,
			}

			return parse.Success[ast.TemplateSpan](ast.TemplateElement{
				Element: ast.InvalidSpan{
					Message: err.Error(),
					Source:  inv.Source,
					At:      ctx.Fragment(),
				},
			}, next)
		}

		if partsNeed(decl.Parts, CursorPart) {
			return parse.Success[ast.TemplateSpan](ast.TemplateElement{
				Element: ast.ExtensionSpan{
					Name: deferredNodeName,
					Payload: &deferredSpan{
						inv: inv,
						assemble: func(in *Invocation) (ast.Span, error) {
							part, err := decl.Assemble(in)
							if err != nil {
								return nil, err
							}

							return templateSpanToSpan(part), nil
						},
					},
				},
			}, next)
		}

		part, err := decl.Assemble(inv)
		if err != nil {
			derr := &DirectiveError{
				Name:     header.name,
				Messages: []string{err.Error()},
			}

			return parse.Success[ast.TemplateSpan](ast.TemplateElement{
				Element: ast.InvalidSpan{
					Message: derr.Error(),
					Source:  inv.Source,
					At:      ctx.Fragment(),
				},
			}, next)
		}

		return parse.Success(part, next)
	})
}

// templateSpanToSpan converts an assembled template part into a span
// for deferred resolution inside a template element.
func templateSpanToSpan(part ast.TemplateSpan) ast.Span {
	switch p := part.(type) {
	case ast.TemplateString:
		return ast.Text{Content: p.Text}
	case ast.TemplateElement:
		if s, ok := p.Element.(ast.Span); ok {
			return s
		}
	}

	return ast.Text{}
}
