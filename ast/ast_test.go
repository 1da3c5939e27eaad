package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/vpath"
)

func TestOptions(t *testing.T) {
	var opts Options
	assert.False(t, opts.HasID())
	assert.False(t, opts.HasStyle("x"))

	opts = opts.WithID("intro").AddStyles("a", "b", "a")
	assert.True(t, opts.HasID())
	assert.Equal(t, []string{"a", "b"}, opts.Styles)

	// AddStyles does not mutate the receiver.
	extended := opts.AddStyles("c")
	assert.Equal(t, []string{"a", "b"}, opts.Styles)
	assert.Equal(t, []string{"a", "b", "c"}, extended.Styles)
}

func TestSelectors(t *testing.T) {
	unique := UniqueSelector("foo")
	path := PathSelector(vpath.Parse("/doc.md"), "foo")

	assert.NotEqual(t, unique, path)
	assert.Equal(t, unique, UniqueSelector("foo"))
	assert.Equal(t, "foo", unique.String())
	assert.Equal(t, "/doc.md#foo", path.String())
	assert.Equal(t, "anonymous", AnonymousSelector(2).String())
}

func TestTargetIndexDuplicates(t *testing.T) {
	idx := NewTargetIndex()
	sel := UniqueSelector("foo")

	idx.Add(Target{
		Sel:  sel,
		Path: vpath.Parse("/a.md"),
		Link: ExternalTarget("https://a"),
	})

	target, state := idx.Lookup(sel)
	assert.Equal(t, TargetFound, state)
	assert.Equal(t, "https://a", target.Link.URL)

	// A second definition marks the selector as duplicate.
	idx.Add(Target{
		Sel:  sel,
		Path: vpath.Parse("/b.md"),
		Link: ExternalTarget("https://b"),
	})
	_, state = idx.Lookup(sel)
	assert.Equal(t, TargetDuplicate, state)

	_, state = idx.Lookup(UniqueSelector("other"))
	assert.Equal(t, TargetMissing, state)
}

func TestTreePosition(t *testing.T) {
	root := TreePosition{}
	first := root.Child(0)
	second := root.Child(1)
	nested := first.Child(3)

	assert.True(t, first.Before(second))
	assert.True(t, first.Before(nested))
	assert.False(t, second.Before(first))
	assert.True(t, nested.Before(second))
}

func TestTreeValidate(t *testing.T) {
	valid := &DocumentTree{
		Path: vpath.Root,
		Documents: []*Document{
			{Path: vpath.Parse("/a.md")},
			{Path: vpath.Parse("/b.md")},
		},
		Subtrees: []*DocumentTree{
			{Path: vpath.Parse("/sub")},
		},
	}
	require.NoError(t, valid.Validate())

	duplicate := &DocumentTree{
		Path: vpath.Root,
		Documents: []*Document{
			{Path: vpath.Parse("/a.md")},
			{Path: vpath.Parse("/a.md")},
		},
	}
	assert.Error(t, duplicate.Validate())

	relative := &DocumentTree{Path: vpath.Parse("rel")}
	assert.Error(t, relative.Validate())
}

func TestTreeSelection(t *testing.T) {
	inner := &Document{Path: vpath.Parse("/sub/inner.md")}
	tree := &DocumentTree{
		Path:      vpath.Root,
		Documents: []*Document{{Path: vpath.Parse("/top.md")}},
		Subtrees: []*DocumentTree{{
			Path:      vpath.Parse("/sub"),
			Documents: []*Document{inner},
		}},
	}

	doc, ok := tree.SelectDocument(vpath.Parse("/sub/inner.md"))
	require.True(t, ok)
	assert.Equal(t, inner, doc)

	_, ok = tree.SelectDocument(vpath.Parse("/sub/missing.md"))
	assert.False(t, ok)

	all := tree.AllDocuments()
	require.Len(t, all, 2)
	assert.Equal(t, "/top.md", all[0].Path.String())
	assert.Equal(t, "/sub/inner.md", all[1].Path.String())
}

func TestVisitAndInvalidCollection(t *testing.T) {
	root := RootElement{Content: []Block{
		Section{
			Header: Header{Level: 1, Content: []Span{NewText("h")}},
			Content: []Block{
				Paragraph{Content: []Span{
					NewText("ok"),
					InvalidSpan{Message: "bad span"},
				}},
				InvalidBlock{Message: "bad block"},
			},
		},
	}}

	var kinds []string
	VisitRoot(root, func(e Element) bool {
		if _, ok := e.(Paragraph); ok {
			kinds = append(kinds, "paragraph")
		}

		return true
	})
	assert.Equal(t, []string{"paragraph"}, kinds)

	invalid := InvalidElements(root)
	require.Len(t, invalid, 2)
}

func TestDocumentCursorConfigMerging(t *testing.T) {
	doc := &Document{
		Path:   vpath.Parse("/p.md"),
		Config: config.NewBuilder().WithString("k", "doc").Build(),
	}
	tree := &DocumentTree{
		Path:      vpath.Root,
		Documents: []*Document{doc},
		Config: config.NewBuilder().
			WithString("k", "tree").
			WithString("only", "tree").
			Build(),
	}

	cursor := NewTreeCursor(tree).DocumentCursors(nil)[0]

	v, ok := cursor.ResolveReference("k")
	require.True(t, ok)
	s, err := config.String().Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "doc", s)

	v, ok = cursor.ResolveReference("only")
	require.True(t, ok)
	s, err = config.String().Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "tree", s)

	_, ok = cursor.ResolveReference("missing")
	assert.False(t, ok)
}

func TestResolverUnwrapping(t *testing.T) {
	direct := LinkIDReference{ID: "x"}
	r, ok := AsSpanResolver(direct)
	require.True(t, ok)
	assert.True(t, r.RunsIn(PhaseResolve))
	assert.False(t, r.RunsIn(PhaseBuild))

	wrapped := ExtensionSpan{Name: "w", Payload: LinkIDReference{ID: "y"}}
	_, ok = AsSpanResolver(wrapped)
	assert.True(t, ok)

	_, ok = AsSpanResolver(NewText("plain"))
	assert.False(t, ok)
}
