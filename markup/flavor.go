package markup

import (
	"strings"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/rewrite"
)

// Flavor returns the built-in host language bundle: a compact
// markdown-style grammar that exercises the whole extension
// machinery. Production flavors register through the same surface.
func Flavor() ExtensionBundle {
	return ExtensionBundle{
		Description: "built-in markup flavor",
		BlockParsers: []BlockParserBuilder{
			headerParser(),
			codeFenceParser(),
			quotedBlockParser(),
			bulletListParser(),
			orderedListParser(),
			linkDefinitionParser(),
		},
		SpanParsers: []SpanParserBuilder{
			strongParser(),
			emphasisParser(),
			literalParser(),
			linkParser(),
			contextRefSpanParser(),
		},
		RootHooks: RootHooks{
			PostProcessBlocks: func(blocks []ast.Block) []ast.Block {
				return BuildSections(PropagateLiteralMarkers(blocks))
			},
		},
		RewriteRules: []rewrite.RuleBuilder{{
			Phase: ast.PhaseResolve,
			Build: func(*ast.DocumentCursor) rewrite.Rules {
				return rewrite.Rules{
					Blocks: []rewrite.BlockRule{MergeTextRule},
				}
			},
		}},
		UseInStrict: true,
	}
}

// MergeTextRule joins adjacent plain text spans inside paragraphs and
// headers. It runs in the Resolve phase so that resolved references
// merge into their surrounding text.
func MergeTextRule(block ast.Block) (ast.Block, rewrite.Action) {
	switch n := block.(type) {
	case ast.Paragraph:
		if merged, changed := mergeTexts(n.Content); changed {
			n.Content = merged

			return n, rewrite.ActionReplace
		}
	case ast.Header:
		if merged, changed := mergeTexts(n.Content); changed {
			n.Content = merged

			return n, rewrite.ActionReplace
		}
	}

	return block, rewrite.ActionKeep
}

func mergeTexts(spans []ast.Span) ([]ast.Span, bool) {
	var out []ast.Span
	changed := false
	for _, s := range spans {
		t, isText := s.(ast.Text)
		if !isText || len(out) == 0 {
			out = append(out, s)

			continue
		}
		if prev, ok := out[len(out)-1].(ast.Text); ok &&
			prev.Opts.ID == "" && t.Opts.ID == "" {
			prev.Content += t.Content
			out[len(out)-1] = prev
			changed = true

			continue
		}
		out = append(out, s)
	}

	return out, changed
}

// headerParser parses '#'-prefixed headlines, deriving an id from the
// headline text.
func headerParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.NewCharSet('#'),
		Build: func(*RecursiveParsers) parse.Parser[ast.Block] {
			hashes := parse.SomeOf('#')
			line := parse.KeepRight(parse.SomeWS(), parse.RestOfLine())

			return parse.Map(
				parse.Seq(hashes, line),
				func(pair parse.Pair[string, string]) ast.Block {
					title := strings.TrimSpace(pair.Second)

					return ast.Header{
						Level:   len(pair.First),
						Content: []ast.Span{Unparsed(title)},
						Opts:    ast.Options{ID: slug(title)},
					}
				},
			)
		},
	}
}

// slug derives a link target id from headline text.
func slug(title string) string {
	var sb strings.Builder
	lastDash := true
	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'A' && c <= 'Z':
			sb.WriteByte(c - 'A' + 'a')
			lastDash = false
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			sb.WriteByte(c)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimRight(sb.String(), "-")
}

// codeFenceParser parses ``` fenced code blocks with an optional
// language tag.
func codeFenceParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.NewCharSet('`'),
		Build: func(*RecursiveParsers) parse.Parser[ast.Block] {
			return parse.New(func(ctx parse.Context) parse.Result[ast.Block] {
				opening := parse.Seq(
					parse.Literal("```"),
					parse.RestOfLine(),
				).Parse(ctx)
				if !opening.IsSuccess() {
					return parse.FailWith[ast.Block](opening.Failure())
				}
				lang := strings.TrimSpace(opening.Value().Second)

				body := parse.DelimitedBy("\n```").AcceptEOF().
					Parser().Parse(opening.Next())
				text := body.Value()
				next := body.Next()
				rest := parse.RestOfLine().Parse(next)

				return parse.Success[ast.Block](ast.CodeBlock{
					Language: lang,
					Text:     text,
				}, rest.Next())
			})
		},
	}
}

// quotedBlockParser parses '>'-prefixed quotations, with child
// content parsed recursively.
func quotedBlockParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.NewCharSet('>'),
		Build: func(rec *RecursiveParsers) parse.Parser[ast.Block] {
			prefix := parse.Source(parse.Seq(
				parse.Literal(">"),
				parse.WS(),
			))
			slicer := parse.Block(prefix, prefix, nil)

			return parse.Map(slicer, func(b parse.BlockSource) ast.Block {
				return ast.QuotedBlock{
					Content: rec.ParseBlocks(b.String()),
				}
			})
		},
	}
}

// bulletListParser parses '-'-prefixed list items with indented
// continuation lines.
func bulletListParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.NewCharSet('-'),
		Build: func(rec *RecursiveParsers) parse.Parser[ast.Block] {
			item := listItemParser("- ", rec)

			return parse.Map(
				parse.RepMin(item, 1),
				func(items []ast.ListItem) ast.Block {
					return ast.ListBlock{
						Kind:  ast.BulletList,
						Items: items,
					}
				},
			)
		},
	}
}

// orderedListParser parses 'N.'-prefixed list items.
func orderedListParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.CharSetRange('0', '9'),
		Build: func(rec *RecursiveParsers) parse.Parser[ast.Block] {
			marker := parse.Source(parse.Seq(
				parse.Digits(),
				parse.Seq(parse.Literal("."), parse.SomeWS()),
			))
			item := parse.New(func(ctx parse.Context) parse.Result[ast.ListItem] {
				return parseListItem(ctx, marker, rec)
			})

			return parse.Map(
				parse.RepMin(item, 1),
				func(items []ast.ListItem) ast.Block {
					return ast.ListBlock{
						Kind:  ast.OrderedList,
						Items: items,
					}
				},
			)
		},
	}
}

func listItemParser(
	marker string,
	rec *RecursiveParsers,
) parse.Parser[ast.ListItem] {
	markerParser := parse.Literal(marker)

	return parse.New(func(ctx parse.Context) parse.Result[ast.ListItem] {
		return parseListItem(ctx, markerParser, rec)
	})
}

// parseListItem slices one list item: the marker line plus following
// lines indented at least to the marker's width.
func parseListItem(
	ctx parse.Context,
	marker parse.Parser[string],
	rec *RecursiveParsers,
) parse.Result[ast.ListItem] {
	m := marker.Parse(ctx)
	if !m.IsSuccess() {
		return parse.FailWith[ast.ListItem](m.Failure())
	}
	indent := len(m.Value())
	first := parse.RestOfLine().Parse(m.Next())
	lines := []string{first.Value()}
	current := first.Next()
	for !current.AtEnd() {
		if parse.BlankLine().Parse(current).IsSuccess() {
			break
		}
		line := parse.KeepRight(
			parse.Literal(strings.Repeat(" ", indent)),
			parse.RestOfLine(),
		).Parse(current)
		if !line.IsSuccess() {
			break
		}
		lines = append(lines, line.Value())
		current = line.Next()
	}

	return parse.Success(ast.ListItem{
		Content: rec.ParseBlocks(strings.Join(lines, "\n")),
	}, current)
}

// linkDefinitionParser parses '[id]: target' definitions.
func linkDefinitionParser() BlockParserBuilder {
	return BlockParserBuilder{
		StartChars: parse.NewCharSet('['),
		Build: func(*RecursiveParsers) parse.Parser[ast.Block] {
			id := parse.KeepRight(
				parse.Literal("["),
				parse.DelimitedBy("]:").FailOn('\n').NonEmpty().Parser(),
			)
			target := parse.KeepRight(parse.WS(), parse.RestOfLine())

			return parse.Map(
				parse.Seq(id, target),
				func(pair parse.Pair[string, string]) ast.Block {
					return ast.LinkDefinition{
						ID:     pair.First,
						Target: strings.TrimSpace(pair.Second),
					}
				},
			)
		},
	}
}

// strongParser parses **strong** emphasis.
func strongParser() SpanParserBuilder {
	return SpanParserBuilder{
		Build: func(rec *RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(
				parse.NewCharSet('*'),
				parse.Map(SpanEnclosure("**"), func(text string) ast.Span {
					return ast.Strong{Content: rec.ParseSpans(text)}
				}),
			)
		},
	}
}

// emphasisParser parses *emphasized* text.
func emphasisParser() SpanParserBuilder {
	return SpanParserBuilder{
		Build: func(rec *RecursiveParsers) parse.Prefixed[ast.Span] {
			return parse.NewPrefixed(
				parse.NewCharSet('*'),
				parse.Map(SpanEnclosure("*"), func(text string) ast.Span {
					return ast.Emphasized{Content: rec.ParseSpans(text)}
				}),
			)
		},
	}
}

// literalParser parses `literal` inline code; the content is not
// parsed further.
func literalParser() SpanParserBuilder {
	return SpanParserBuilder{
		Build: func(*RecursiveParsers) parse.Prefixed[ast.Span] {
			body := parse.KeepRight(
				parse.Literal("`"),
				parse.DelimitedBy("`").FailOn('\n').NonEmpty().Parser(),
			)

			return parse.NewPrefixed(
				parse.NewCharSet('`'),
				parse.Map(body, func(text string) ast.Span {
					return ast.Literal{Content: text}
				}),
			)
		},
	}
}

// linkParser parses [text](url) inline links and [text][id]
// references resolved during rewriting.
func linkParser() SpanParserBuilder {
	return SpanParserBuilder{
		Build: func(rec *RecursiveParsers) parse.Prefixed[ast.Span] {
			p := parse.New(func(ctx parse.Context) parse.Result[ast.Span] {
				label := parse.KeepRight(
					parse.Literal("["),
					parse.DelimitedBy("]").FailOn('\n').Parser(),
				).Parse(ctx)
				if !label.IsSuccess() {
					return parse.FailWith[ast.Span](label.Failure())
				}
				content := rec.ParseSpans(label.Value())

				after := label.Next()
				if !after.AtEnd() && after.Char() == '(' {
					url := parse.KeepRight(
						parse.Literal("("),
						parse.DelimitedBy(")").FailOn('\n').Parser(),
					).Parse(after)
					if !url.IsSuccess() {
						return parse.FailWith[ast.Span](url.Failure())
					}

					return parse.Success[ast.Span](ast.SpanLink{
						Content: content,
						Target:  ast.ExternalTarget(url.Value()),
					}, url.Next())
				}
				if !after.AtEnd() && after.Char() == '[' {
					id := parse.KeepRight(
						parse.Literal("["),
						parse.DelimitedBy("]").FailOn('\n').NonEmpty().Parser(),
					).Parse(after)
					if !id.IsSuccess() {
						return parse.FailWith[ast.Span](id.Failure())
					}

					return parse.Success[ast.Span](ast.LinkIDReference{
						Content: content,
						ID:      id.Value(),
						Source:  ctx.Capture(id.Next()),
						At:      ctx.Fragment(),
					}, id.Next())
				}

				return parse.Fail[ast.Span](
					ctx, parse.Fixed("expected link target"),
				)
			})

			return parse.NewPrefixed(parse.NewCharSet('['), p)
		},
	}
}

// contextRefSpanParser parses ${key} substitutions inside markup
// text, deferring resolution to the Resolve phase.
func contextRefSpanParser() SpanParserBuilder {
	return SpanParserBuilder{
		Build: func(*RecursiveParsers) parse.Prefixed[ast.Span] {
			p := parse.New(func(ctx parse.Context) parse.Result[ast.Span] {
				inner := parse.KeepRight(
					parse.Literal("${"),
					parse.Seq(
						parse.Opt(parse.Literal("?")),
						parse.DelimitedBy("}").FailOn('\n').NonEmpty().Parser(),
					),
				).Parse(ctx)
				if !inner.IsSuccess() {
					return parse.FailWith[ast.Span](inner.Failure())
				}

				return parse.Success[ast.Span](ast.ContextReference{
					Key:      strings.TrimSpace(inner.Value().Second),
					Optional: inner.Value().First.IsDefined(),
					Source:   ctx.Capture(inner.Next()),
					At:       ctx.Fragment(),
				}, inner.Next())
			})

			return parse.NewPrefixed(parse.NewCharSet('$'), p)
		},
	}
}

// BuildSections folds a flat block sequence into nested sections:
// each header governs the blocks up to the next header of the same or
// a higher level.
func BuildSections(blocks []ast.Block) []ast.Block {
	result, _ := buildSectionsFrom(blocks, 0, 0)

	return result
}

func buildSectionsFrom(
	blocks []ast.Block,
	start, level int,
) ([]ast.Block, int) {
	var out []ast.Block
	i := start
	for i < len(blocks) {
		header, ok := blocks[i].(ast.Header)
		if !ok {
			out = append(out, blocks[i])
			i++

			continue
		}
		if level > 0 && header.Level <= level {
			return out, i
		}
		content, next := buildSectionsFrom(blocks, i+1, header.Level)
		out = append(out, ast.Section{
			Header:  header,
			Content: content,
			Opts:    ast.Options{ID: header.Opts.ID},
		})
		i = next
	}

	return out, i
}

// PropagateLiteralMarkers implements the '::' paragraph suffix: a
// paragraph ending in '::' marks a directly following code block as
// literal, and the marker itself is reduced to ':'. Any other
// following block is left unchanged.
func PropagateLiteralMarkers(blocks []ast.Block) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		para, ok := blocks[i].(ast.Paragraph)
		if !ok || !endsWithLiteralMarker(para) {
			out = append(out, blocks[i])

			continue
		}
		out = append(out, trimLiteralMarker(para))
		if i+1 < len(blocks) {
			if next, ok := blocks[i+1].(ast.CodeBlock); ok {
				next.Opts = next.Opts.AddStyles("literal")
				out = append(out, next)
				i++
			}
		}
	}

	return out
}

func endsWithLiteralMarker(p ast.Paragraph) bool {
	if len(p.Content) == 0 {
		return false
	}
	text, ok := lastText(p.Content)

	return ok && strings.HasSuffix(text, "::")
}

func trimLiteralMarker(p ast.Paragraph) ast.Paragraph {
	content := make([]ast.Span, len(p.Content))
	copy(content, p.Content)
	last := len(content) - 1
	if t, ok := content[last].(ast.Text); ok {
		t.Content = strings.TrimSuffix(t.Content, "::") + ":"
		content[last] = t
	}
	p.Content = content

	return p
}

func lastText(spans []ast.Span) (string, bool) {
	if len(spans) == 0 {
		return "", false
	}
	t, ok := spans[len(spans)-1].(ast.Text)

	return t.Content, ok
}
