package markup

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/vpath"
)

func parseDoc(t *testing.T, input string) *ast.Document {
	t.Helper()
	engine := New(Flavor())
	doc, err := engine.ParseDocument(input, vpath.Parse("/doc.md"))
	require.NoError(t, err)

	return doc
}

// diffText renders a unified diff for failure messages.
func diffText(want, got string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})

	return text
}

func TestParagraphWithEmphasis(t *testing.T) {
	doc := parseDoc(t, "this *is* bold")

	require.Len(t, doc.Content.Content, 1)
	para, ok := doc.Content.Content[0].(ast.Paragraph)
	require.True(t, ok)
	require.Len(t, para.Content, 3)

	assert.Equal(t, ast.NewText("this "), para.Content[0])
	em, ok := para.Content[1].(ast.Emphasized)
	require.True(t, ok)
	assert.Equal(t, []ast.Span{ast.NewText("is")}, em.Content)
	assert.Equal(t, ast.NewText(" bold"), para.Content[2])
}

func TestSpanDispatchOnlyTriesMatchingStartChars(t *testing.T) {
	calls := 0
	probe := ExtensionBundle{
		Description: "probe",
		SpanParsers: []SpanParserBuilder{{
			Build: func(*RecursiveParsers) parse.Prefixed[ast.Span] {
				return parse.NewPrefixed(
					parse.NewCharSet('*'),
					parse.New(func(ctx parse.Context) parse.Result[ast.Span] {
						calls++

						return parse.Fail[ast.Span](
							ctx, parse.Fixed("probe"),
						)
					}),
				)
			},
		}},
		UseInStrict: true,
	}

	engine := New(Flavor(), probe)
	_, err := engine.ParseDocument("this *is* bold", vpath.Parse("/d.md"))
	require.NoError(t, err)

	// The probe runs at the opening asterisk only: the closing one is
	// consumed by the emphasis parser, and no other character
	// dispatches to the '*' parsers at all.
	assert.Equal(t, 1, calls)
}

func TestDelimiterBoundaryRule(t *testing.T) {
	doc := parseDoc(t, "a*b*c")

	require.Len(t, doc.Content.Content, 1)
	para, ok := doc.Content.Content[0].(ast.Paragraph)
	require.True(t, ok)
	require.Len(t, para.Content, 1)
	assert.Equal(t, ast.NewText("a*b*c"), para.Content[0])
}

func TestStrongBeforeEmphasis(t *testing.T) {
	doc := parseDoc(t, "x **very** strong")

	para := doc.Content.Content[0].(ast.Paragraph)
	require.Len(t, para.Content, 3)
	strong, ok := para.Content[1].(ast.Strong)
	require.True(t, ok)
	assert.Equal(t, []ast.Span{ast.NewText("very")}, strong.Content)
}

func TestLiteralSpan(t *testing.T) {
	doc := parseDoc(t, "use `go test` here")

	para := doc.Content.Content[0].(ast.Paragraph)
	require.Len(t, para.Content, 3)
	lit, ok := para.Content[1].(ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "go test", lit.Content)
}

func TestHeadersBuildSections(t *testing.T) {
	doc := parseDoc(t, `# Title

intro

## Sub Section

content
`)

	require.Len(t, doc.Content.Content, 1)
	section, ok := doc.Content.Content[0].(ast.Section)
	require.True(t, ok)
	assert.Equal(t, 1, section.Header.Level)
	assert.Equal(t, "title", section.Header.Opts.ID)

	require.Len(t, section.Content, 2)
	sub, ok := section.Content[1].(ast.Section)
	require.True(t, ok)
	assert.Equal(t, 2, sub.Header.Level)
	assert.Equal(t, "sub-section", sub.Header.Opts.ID)
}

func TestCodeFence(t *testing.T) {
	doc := parseDoc(t, "```go\nfunc main() {}\n```\n\nafter")

	require.Len(t, doc.Content.Content, 2)
	code, ok := doc.Content.Content[0].(ast.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "go", code.Language)
	assert.Equal(t, "func main() {}", code.Text)
}

func TestQuotedBlock(t *testing.T) {
	doc := parseDoc(t, "> quoted *text*\n> more")

	quote, ok := doc.Content.Content[0].(ast.QuotedBlock)
	require.True(t, ok)
	require.Len(t, quote.Content, 1)
	para, ok := quote.Content[0].(ast.Paragraph)
	require.True(t, ok)
	require.Len(t, para.Content, 3)
	_, ok = para.Content[1].(ast.Emphasized)
	assert.True(t, ok)
}

func TestBulletList(t *testing.T) {
	doc := parseDoc(t, "- one\n- two\n  continued\n- three")

	list, ok := doc.Content.Content[0].(ast.ListBlock)
	require.True(t, ok)
	assert.Equal(t, ast.BulletList, list.Kind)
	require.Len(t, list.Items, 3)

	second := list.Items[1]
	para := second.Content[0].(ast.Paragraph)
	text := para.Content[0].(ast.Text)
	assert.Equal(t, "two\ncontinued", text.Content)
}

func TestOrderedList(t *testing.T) {
	doc := parseDoc(t, "1. first\n2. second")

	list, ok := doc.Content.Content[0].(ast.ListBlock)
	require.True(t, ok)
	assert.Equal(t, ast.OrderedList, list.Kind)
	assert.Len(t, list.Items, 2)
}

func TestLinkDefinitionAndInlineLink(t *testing.T) {
	doc := parseDoc(t, "[site]: https://example.com\n\nsee [here](https://x.io) and [there][site]")

	require.Len(t, doc.Content.Content, 2)
	def, ok := doc.Content.Content[0].(ast.LinkDefinition)
	require.True(t, ok)
	assert.Equal(t, "site", def.ID)
	assert.Equal(t, "https://example.com", def.Target)

	para := doc.Content.Content[1].(ast.Paragraph)
	var inline *ast.SpanLink
	var ref *ast.LinkIDReference
	for _, s := range para.Content {
		switch v := s.(type) {
		case ast.SpanLink:
			inline = &v
		case ast.LinkIDReference:
			ref = &v
		}
	}
	require.NotNil(t, inline)
	assert.Equal(t, "https://x.io", inline.Target.URL)
	require.NotNil(t, ref)
	assert.Equal(t, "site", ref.ID)
}

func TestConfigHeaderExtraction(t *testing.T) {
	doc := parseDoc(t, "{% title = \"My Page\", nav.depth = 2 %}\n\nbody text")

	title, err := doc.Config.GetString("title")
	require.NoError(t, err)
	assert.Equal(t, "My Page", title)

	depth, err := doc.Config.GetInt("nav.depth")
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	require.Len(t, doc.Content.Content, 1)
	para := doc.Content.Content[0].(ast.Paragraph)
	assert.Equal(t, ast.NewText("body text"), para.Content[0])
}

func TestConfigHeaderParseErrorBubblesUp(t *testing.T) {
	engine := New(Flavor())
	_, err := engine.ParseDocument(
		"{% title = \"unclosed %}\n\nbody",
		vpath.Parse("/doc.md"),
	)
	require.Error(t, err)
}

func TestLineEndingNormalization(t *testing.T) {
	doc := parseDoc(t, "one\r\ntwo\rthree")

	para := doc.Content.Content[0].(ast.Paragraph)
	assert.Equal(t, ast.NewText("one\ntwo\nthree"), para.Content[0])
}

func TestLiteralMarkerPropagation(t *testing.T) {
	doc := parseDoc(t, "example::\n\n```\nraw text\n```")

	require.Len(t, doc.Content.Content, 2)
	para := doc.Content.Content[0].(ast.Paragraph)
	assert.Equal(t, ast.NewText("example:"), para.Content[0])

	code, ok := doc.Content.Content[1].(ast.CodeBlock)
	require.True(t, ok)
	assert.True(t, code.Opts.HasStyle("literal"))
}

func TestContextReferenceSpanProducesResolver(t *testing.T) {
	doc := parseDoc(t, "{% ref = value %}\n\nbefore ${ref} after")

	para := doc.Content.Content[0].(ast.Paragraph)
	var ref *ast.ContextReference
	for _, s := range para.Content {
		if r, ok := s.(ast.ContextReference); ok {
			ref = &r
		}
	}
	require.NotNil(t, ref)
	assert.Equal(t, "ref", ref.Key)
	assert.False(t, ref.Optional)
}

func TestStrictModeEscalatesInvalidNodes(t *testing.T) {
	lenient := New(Flavor())
	strict := NewStrict(Flavor())
	input := "text with ${unterminated"

	// The unterminated reference is no reference at all, so both
	// engines keep it as plain text.
	for _, e := range []*Engine{lenient, strict} {
		_, err := e.ParseDocument(input, vpath.Parse("/d.md"))
		require.NoError(t, err)
	}

	// An invalid block, however, passes leniently and fails strictly.
	invalid := ExtensionBundle{
		BlockParsers: []BlockParserBuilder{{
			StartChars: parse.NewCharSet('!'),
			Build: func(*RecursiveParsers) parse.Parser[ast.Block] {
				return parse.Map(
					parse.KeepRight(parse.Literal("!"), parse.RestOfLine()),
					func(text string) ast.Block {
						return ast.InvalidBlock{
							Message: "bad construct",
							Source:  "!" + text,
						}
					},
				)
			},
		}},
		UseInStrict: true,
	}

	doc, err := New(Flavor(), invalid).
		ParseDocument("!boom", vpath.Parse("/d.md"))
	require.NoError(t, err)
	_, isInvalid := doc.Content.Content[0].(ast.InvalidBlock)
	assert.True(t, isInvalid)

	_, err = NewStrict(Flavor(), invalid).
		ParseDocument("!boom", vpath.Parse("/d.md"))
	var docErr *InvalidDocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, []string{"bad construct"}, docErr.Messages)
}

func TestStrictModeDropsNonStrictBundles(t *testing.T) {
	marker := ExtensionBundle{
		SpanParsers: []SpanParserBuilder{{
			Build: func(*RecursiveParsers) parse.Prefixed[ast.Span] {
				return parse.NewPrefixed(
					parse.NewCharSet('%'),
					parse.As(
						parse.Literal("%%"),
						ast.Span(ast.NewText("<marker>")),
					),
				)
			},
		}},
		UseInStrict: false,
	}

	doc, err := New(Flavor(), marker).
		ParseDocument("a %% b", vpath.Parse("/d.md"))
	require.NoError(t, err)
	para := doc.Content.Content[0].(ast.Paragraph)
	assert.Equal(t, ast.NewText("<marker>"), para.Content[1])

	doc, err = NewStrict(Flavor(), marker).
		ParseDocument("a %% b", vpath.Parse("/d.md"))
	require.NoError(t, err)
	para = doc.Content.Content[0].(ast.Paragraph)
	require.Len(t, para.Content, 1)
	assert.Equal(t, ast.NewText("a %% b"), para.Content[0])
}

func TestExtensionPrecedenceOverHost(t *testing.T) {
	// An extension claims '#' and wins over the host header parser.
	override := ExtensionBundle{
		BlockParsers: []BlockParserBuilder{{
			StartChars: parse.NewCharSet('#'),
			Build: func(*RecursiveParsers) parse.Parser[ast.Block] {
				return parse.Map(
					parse.KeepRight(parse.Literal("## "), parse.RestOfLine()),
					func(text string) ast.Block {
						return ast.CodeBlock{Language: "override", Text: text}
					},
				)
			},
		}},
		UseInStrict: true,
	}

	doc, err := New(Flavor(), override).
		ParseDocument("## taken over", vpath.Parse("/d.md"))
	require.NoError(t, err)
	code, ok := doc.Content.Content[0].(ast.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, "override", code.Language)

	// With low precedence the host header parser wins again.
	override.BlockParsers[0].LowPrecedence = true
	doc, err = New(Flavor(), override).
		ParseDocument("## stays header", vpath.Parse("/d.md"))
	require.NoError(t, err)
	_, isSection := doc.Content.Content[0].(ast.Section)
	assert.True(t, isSection)
}

func TestTemplateParsing(t *testing.T) {
	engine := New(Flavor())
	tpl, err := engine.ParseTemplate(
		"<title>${title}</title>\n${document.content}\n",
		vpath.Parse("/default.template.html"),
	)
	require.NoError(t, err)

	parts := tpl.Root.Parts
	require.Len(t, parts, 5)
	assert.Equal(t, ast.TemplateString{Text: "<title>"}, parts[0])
	assert.Equal(
		t,
		ast.TemplateContextReference{Key: "title"},
		parts[1],
	)
	assert.Equal(t, ast.TemplateString{Text: "</title>\n"}, parts[2])
	assert.Equal(
		t,
		ast.TemplateContextReference{Key: "document.content"},
		parts[3],
	)
}

func TestFragmentExtraction(t *testing.T) {
	engine := New(Flavor())
	doc, err := engine.ParseDocument("body", vpath.Parse("/d.md"))
	require.NoError(t, err)
	assert.Empty(t, doc.Fragments)

	// Fragment blocks are moved out of the main flow.
	frag := &ast.Document{
		Path: vpath.Parse("/d.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.ExtensionBlock{
				Name: FragmentBlockName,
				Payload: Fragment{
					Name:    "sidebar",
					Content: ast.Paragraph{Content: []ast.Span{ast.NewText("aside")}},
				},
			},
			ast.Paragraph{Content: []ast.Span{ast.NewText("main")}},
		}},
		Fragments: make(map[string]ast.Element),
	}
	extractFragments(frag)
	require.Len(t, frag.Content.Content, 1)
	require.Contains(t, frag.Fragments, "sidebar")
}

func TestUnparsedRoundTrip(t *testing.T) {
	raw, ok := unparsedText(Unparsed("some *text*"))
	require.True(t, ok)
	assert.Equal(t, "some *text*", raw)

	_, ok = unparsedText(ast.NewText("plain"))
	assert.False(t, ok)
}

func TestDiffHelperProducesOutput(t *testing.T) {
	d := diffText("a\nb\n", "a\nc\n")
	assert.Contains(t, d, "-b")
	assert.Contains(t, d, "+c")
}
