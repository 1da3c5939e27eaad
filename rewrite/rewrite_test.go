package rewrite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/vpath"
)

func linkingDoc(path, defID, refID string) *ast.Document {
	return &ast.Document{
		Path: vpath.Parse(path),
		Content: ast.RootElement{Content: []ast.Block{
			ast.LinkDefinition{ID: defID, Target: "https://example.com/" + defID},
			ast.Paragraph{Content: []ast.Span{
				ast.NewText("see "),
				ast.LinkIDReference{
					Content: []ast.Span{ast.NewText("link")},
					ID:      refID,
					Source:  "[link][" + refID + "]",
				},
			}},
		}},
		Config: config.Empty(),
	}
}

func astDiff(a, b ast.RootElement) string {
	return cmp.Diff(a, b, cmpopts.IgnoreUnexported(parse.Fragment{}))
}

func TestLinkReferenceResolution(t *testing.T) {
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{linkingDoc("/a.md", "foo", "foo")},
		Config:    config.Empty(),
	}

	result := New().RewriteTree(tree)

	para := result.Documents[0].Content.Content[1].(ast.Paragraph)
	link, ok := para.Content[1].(ast.SpanLink)
	require.True(t, ok, "expected span link, got %T", para.Content[1])
	assert.Equal(t, "https://example.com/foo", link.Target.URL)
	assert.Equal(t, []ast.Span{ast.NewText("link")}, link.Content)
}

func TestUnresolvedLinkReference(t *testing.T) {
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{linkingDoc("/a.md", "foo", "missing")},
		Config:    config.Empty(),
	}

	result := New().RewriteTree(tree)

	para := result.Documents[0].Content.Content[1].(ast.Paragraph)
	invalid, ok := para.Content[1].(ast.InvalidSpan)
	require.True(t, ok, "expected invalid span, got %T", para.Content[1])
	assert.Equal(t, "unresolved link reference: missing", invalid.Message)
	assert.Equal(t, "[link][missing]", invalid.Source)
}

func TestDuplicateTargetRendersInvalidAtUseSites(t *testing.T) {
	// Two documents define the same unique id; both use sites turn
	// into invalid spans, the rest of the AST is unchanged.
	tree := &ast.DocumentTree{
		Path: vpath.Root,
		Documents: []*ast.Document{
			linkingDoc("/a.md", "foo", "foo"),
			linkingDoc("/b.md", "foo", "foo"),
		},
		Config: config.Empty(),
	}

	result := New().RewriteTree(tree)

	for _, doc := range result.Documents {
		para, ok := doc.Content.Content[1].(ast.Paragraph)
		require.True(t, ok)
		require.Len(t, para.Content, 2)
		assert.Equal(t, ast.NewText("see "), para.Content[0])

		invalid, ok := para.Content[1].(ast.InvalidSpan)
		require.True(
			t, ok,
			"expected invalid span in %s, got %T",
			doc.Path, para.Content[1],
		)
		assert.Equal(t, "duplicate target id: foo", invalid.Message)

		// Everything outside the use site is untouched.
		_, ok = doc.Content.Content[0].(ast.LinkDefinition)
		assert.True(t, ok)
	}
}

func TestHeaderTargetsResolveAcrossDocuments(t *testing.T) {
	source := &ast.Document{
		Path: vpath.Parse("/src.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Section{
				Header: ast.Header{
					Level:   1,
					Content: []ast.Span{ast.NewText("Intro")},
					Opts:    ast.Options{ID: "intro"},
				},
			},
		}},
		Config: config.Empty(),
	}
	user := &ast.Document{
		Path: vpath.Parse("/use.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Content: []ast.Span{
				ast.LinkIDReference{
					Content: []ast.Span{ast.NewText("go")},
					ID:      "intro",
				},
			}},
		}},
		Config: config.Empty(),
	}
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{source, user},
		Config:    config.Empty(),
	}

	result := New().RewriteTree(tree)

	para := result.Documents[1].Content.Content[0].(ast.Paragraph)
	link, ok := para.Content[0].(ast.SpanLink)
	require.True(t, ok, "got %T", para.Content[0])
	assert.True(t, link.Target.Internal)
	assert.Equal(t, "/src.md#intro", link.Target.Path)
}

func TestLinkAliasChain(t *testing.T) {
	doc := &ast.Document{
		Path: vpath.Parse("/a.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.LinkDefinition{ID: "alias", Target: "real"},
			ast.LinkDefinition{ID: "real", Target: "https://example.com/page"},
			ast.Paragraph{Content: []ast.Span{
				ast.LinkIDReference{
					Content: []ast.Span{ast.NewText("x")},
					ID:      "alias",
				},
			}},
		}},
		Config: config.Empty(),
	}
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{doc},
		Config:    config.Empty(),
	}

	result := New().RewriteTree(tree)

	para := result.Documents[0].Content.Content[2].(ast.Paragraph)
	link, ok := para.Content[0].(ast.SpanLink)
	require.True(t, ok, "got %T", para.Content[0])
	assert.Equal(t, "https://example.com/page", link.Target.URL)
}

func TestCircularLinkAlias(t *testing.T) {
	doc := &ast.Document{
		Path: vpath.Parse("/a.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.LinkDefinition{ID: "a", Target: "b"},
			ast.LinkDefinition{ID: "b", Target: "a"},
			ast.Paragraph{Content: []ast.Span{
				ast.LinkIDReference{
					Content: []ast.Span{ast.NewText("x")},
					ID:      "a",
					Source:  "[x][a]",
				},
			}},
		}},
		Config: config.Empty(),
	}
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{doc},
		Config:    config.Empty(),
	}

	result := New().RewriteTree(tree)

	para := result.Documents[0].Content.Content[2].(ast.Paragraph)
	invalid, ok := para.Content[0].(ast.InvalidSpan)
	require.True(t, ok, "got %T", para.Content[0])
	assert.Equal(t, "circular link alias: a", invalid.Message)
}

func TestRuleReplaceAndRemove(t *testing.T) {
	doc := &ast.Document{
		Path: vpath.Parse("/d.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Content: []ast.Span{
				ast.NewText("keep"),
				ast.Literal{Content: "drop me"},
				ast.Emphasized{Content: []ast.Span{ast.NewText("shout")}},
			}},
		}},
		Config: config.Empty(),
	}

	rules := RuleBuilder{
		Phase: ast.PhaseResolve,
		Build: func(*ast.DocumentCursor) Rules {
			return Rules{Spans: []SpanRule{
				func(s ast.Span) (ast.Span, Action) {
					switch n := s.(type) {
					case ast.Literal:
						return nil, ActionRemove
					case ast.Emphasized:
						return ast.Strong{Content: n.Content}, ActionReplace
					default:
						return s, ActionKeep
					}
				},
			}}
		},
	}

	result := New(rules).RewriteDocument(doc)

	para := result.Content.Content[0].(ast.Paragraph)
	require.Len(t, para.Content, 2)
	assert.Equal(t, ast.NewText("keep"), para.Content[0])
	strong, ok := para.Content[1].(ast.Strong)
	require.True(t, ok)
	assert.Equal(t, []ast.Span{ast.NewText("shout")}, strong.Content)
}

func TestPhaseOrdering(t *testing.T) {
	var order []string
	builder := func(phase ast.Phase, name string) RuleBuilder {
		return RuleBuilder{
			Phase: phase,
			Build: func(*ast.DocumentCursor) Rules {
				return Rules{Blocks: []BlockRule{
					func(b ast.Block) (ast.Block, Action) {
						if _, ok := b.(ast.Paragraph); ok {
							order = append(order, name)
						}

						return b, ActionKeep
					},
				}}
			},
		}
	}

	doc := &ast.Document{
		Path: vpath.Parse("/d.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Content: []ast.Span{ast.NewText("x")}},
		}},
		Config: config.Empty(),
	}

	New(
		builder(ast.PhaseResolve, "resolve"),
		builder(ast.PhaseBuild, "build"),
	).RewriteDocument(doc)

	assert.Equal(t, []string{"build", "resolve"}, order)
}

func TestBottomUpTraversal(t *testing.T) {
	var visited []string
	rule := RuleBuilder{
		Phase: ast.PhaseBuild,
		Build: func(*ast.DocumentCursor) Rules {
			return Rules{
				Blocks: []BlockRule{
					func(b ast.Block) (ast.Block, Action) {
						switch b.(type) {
						case ast.Paragraph:
							visited = append(visited, "paragraph")
						case ast.BlockSequence:
							visited = append(visited, "sequence")
						}

						return b, ActionKeep
					},
				},
			}
		},
	}

	doc := &ast.Document{
		Path: vpath.Parse("/d.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.BlockSequence{Content: []ast.Block{
				ast.Paragraph{Content: []ast.Span{ast.NewText("inner")}},
			}},
		}},
		Config: config.Empty(),
	}

	New(rule).RewriteDocument(doc)

	assert.Equal(t, []string{"paragraph", "sequence"}, visited)
}

func TestRewriteIdempotentAfterResolution(t *testing.T) {
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{linkingDoc("/a.md", "foo", "foo")},
		Config:    config.Empty(),
	}

	rewriter := New()
	once := rewriter.RewriteTree(tree)
	twice := rewriter.RewriteTree(once)

	diff := astDiff(
		once.Documents[0].Content,
		twice.Documents[0].Content,
	)
	assert.Empty(t, diff)
}

func TestRenderPhaseEscalatesSurvivingResolvers(t *testing.T) {
	doc := &ast.Document{
		Path: vpath.Parse("/d.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Content: []ast.Span{
				ast.ExtensionSpan{
					Name:    "test.resolver",
					Payload: renderOnlyResolver{},
				},
			}},
		}},
		Config: config.Empty(),
	}
	tree := &ast.DocumentTree{
		Path:      vpath.Root,
		Documents: []*ast.Document{doc},
		Config:    config.Empty(),
	}

	rewriter := New()

	// Build and Resolve leave the render-only resolver untouched.
	resolved := rewriter.RewriteTree(tree)
	para := resolved.Documents[0].Content.Content[0].(ast.Paragraph)
	_, stillThere := para.Content[0].(ast.ExtensionSpan)
	assert.True(t, stillThere)

	// The Render phase runs it; the phase check in the cursor's
	// output format is visible to the resolver.
	rendered := rewriter.Render(resolved, "html")
	para = rendered.Documents[0].Content.Content[0].(ast.Paragraph)
	text, ok := para.Content[0].(ast.Text)
	require.True(t, ok, "got %T", para.Content[0])
	assert.Equal(t, "format:html", text.Content)
}

// renderOnlyResolver resolves only in the Render phase, emitting the
// cursor's output format.
type renderOnlyResolver struct{}

func (renderOnlyResolver) RunsIn(p ast.Phase) bool {
	return p == ast.PhaseRender
}

func (renderOnlyResolver) ResolveSpan(c *ast.DocumentCursor) ast.Span {
	return ast.Text{Content: "format:" + c.OutputFormat}
}

func (renderOnlyResolver) UnresolvedMessage() string {
	return "unresolved render node"
}

func TestApplyTemplate(t *testing.T) {
	doc := &ast.Document{
		Path: vpath.Parse("/page.md"),
		Content: ast.RootElement{Content: []ast.Block{
			ast.Paragraph{Content: []ast.Span{ast.NewText("body")}},
		}},
		Config: config.NewBuilder().WithString("title", "My Title").Build(),
	}
	cursor := ast.NewDocumentCursor(doc, nil, nil)

	tpl := ast.TemplateRoot{Parts: []ast.TemplateSpan{
		ast.TemplateString{Text: "<h1>"},
		ast.TemplateContextReference{Key: "title"},
		ast.TemplateString{Text: "</h1>"},
		ast.TemplateContextReference{Key: ast.ContentKey},
	}}

	result := ApplyTemplate(tpl, cursor)

	require.Len(t, result.Content, 1)
	root, ok := result.Content[0].(ast.TemplateRoot)
	require.True(t, ok)
	require.Len(t, root.Parts, 4)
	assert.Equal(t, ast.TemplateString{Text: "<h1>"}, root.Parts[0])
	assert.Equal(t, ast.TemplateString{Text: "My Title"}, root.Parts[1])

	embedded, ok := root.Parts[3].(ast.TemplateElement)
	require.True(t, ok)
	seq, ok := embedded.Element.(ast.BlockSequence)
	require.True(t, ok)
	assert.Equal(t, doc.Content.Content, seq.Content)
}

func TestApplyTemplateMissingReference(t *testing.T) {
	doc := &ast.Document{
		Path:   vpath.Parse("/page.md"),
		Config: config.Empty(),
	}
	cursor := ast.NewDocumentCursor(doc, nil, nil)

	required := ast.TemplateRoot{Parts: []ast.TemplateSpan{
		ast.TemplateContextReference{Key: "absent"},
	}}
	result := ApplyTemplate(required, cursor)
	root := result.Content[0].(ast.TemplateRoot)
	el, ok := root.Parts[0].(ast.TemplateElement)
	require.True(t, ok)
	invalid, ok := el.Element.(ast.InvalidSpan)
	require.True(t, ok)
	assert.Equal(t, "unresolved reference: absent", invalid.Message)

	optional := ast.TemplateRoot{Parts: []ast.TemplateSpan{
		ast.TemplateContextReference{Key: "absent", Optional: true},
	}}
	result = ApplyTemplate(optional, cursor)
	root = result.Content[0].(ast.TemplateRoot)
	assert.Equal(t, ast.TemplateString{}, root.Parts[0])
}

func TestTreeConfigFallbackThroughCursor(t *testing.T) {
	doc := &ast.Document{
		Path:   vpath.Parse("/sub/page.md"),
		Config: config.NewBuilder().WithString("local", "doc").Build(),
	}
	sub := &ast.DocumentTree{
		Path:      vpath.Parse("/sub"),
		Documents: []*ast.Document{doc},
		Config:    config.NewBuilder().WithString("shared", "sub").Build(),
	}
	root := &ast.DocumentTree{
		Path:     vpath.Root,
		Subtrees: []*ast.DocumentTree{sub},
		Config: config.NewBuilder().
			WithString("shared", "root").
			WithString("global", "top").
			Build(),
	}

	rootCursor := ast.NewTreeCursor(root)
	subCursor := rootCursor.Children()[0]
	docCursor := subCursor.DocumentCursors(nil)[0]

	for key, want := range map[string]string{
		"local":  "doc",
		"shared": "sub", // closer tree wins
		"global": "top",
	} {
		v, ok := docCursor.ResolveReference(key)
		require.True(t, ok, "key %s", key)
		s, err := config.String().Decode(v)
		require.NoError(t, err)
		assert.Equal(t, want, s, "key %s", key)
	}
}
