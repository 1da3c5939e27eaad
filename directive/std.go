package directive

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/markup"
)

// StdRegistry returns a registry preloaded with the standard
// directives: @:toc and @:fragment.
func StdRegistry() *Registry {
	return NewRegistry().
		AddBlock(TOCDirective()).
		AddBlock(FragmentDirective())
}

// TOCDirective builds a table of contents from the section structure
// of all documents in the tree. It requests cursor access, so the
// actual list is produced during the Resolve phase.
func TOCDirective() *BlockDirective {
	return &BlockDirective{
		Name: "toc",
		Parts: []Part{
			OptAttr("depth", AsInt),
			Cursor(),
		},
		Assemble: func(inv *Invocation) (ast.Block, error) {
			depth := inv.Int("depth")
			if depth == 0 {
				depth = 6
			}

			var items []ast.ListItem
			for _, doc := range inv.Cursor.AllDocuments() {
				items = append(
					items,
					tocEntries(doc, doc.Content.Content, 1, depth)...)
			}

			return ast.ListBlock{
				Kind:  ast.BulletList,
				Items: items,
				Opts:  ast.Options{Styles: []string{"toc"}},
			}, nil
		},
	}
}

// tocEntries collects one list item per section, nesting child
// sections as sub-lists.
func tocEntries(
	doc *ast.Document,
	blocks []ast.Block,
	level, maxDepth int,
) []ast.ListItem {
	if level > maxDepth {
		return nil
	}
	var items []ast.ListItem
	for _, b := range blocks {
		section, ok := b.(ast.Section)
		if !ok {
			continue
		}
		link := ast.SpanLink{
			Content: section.Header.Content,
			Target: ast.InternalTarget(
				doc.Path.String() + "#" + section.Header.Opts.ID,
			),
		}
		content := []ast.Block{ast.Paragraph{Content: []ast.Span{link}}}
		if children := tocEntries(
			doc, section.Content, level+1, maxDepth,
		); len(children) > 0 {
			content = append(content, ast.ListBlock{
				Kind:  ast.BulletList,
				Items: children,
			})
		}
		items = append(items, ast.ListItem{Content: content})
	}

	return items
}

// FragmentDirective stores its body under a name in the document's
// fragment map instead of the main content flow.
func FragmentDirective() *BlockDirective {
	return &BlockDirective{
		Name: "fragment",
		Parts: []Part{
			Pos(0, AsString),
			Body(),
		},
		Assemble: func(inv *Invocation) (ast.Block, error) {
			return ast.ExtensionBlock{
				Name: markup.FragmentBlockName,
				Payload: markup.Fragment{
					Name: inv.StringAt(0),
					Content: ast.BlockSequence{
						Content: inv.Body(),
					},
				},
			}, nil
		},
	}
}
