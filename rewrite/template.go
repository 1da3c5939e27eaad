package rewrite

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
)

// ApplyTemplate rewrites a template's context references against a
// document's cursor and embeds the document content, producing the
// document's final root element.
//
// The reserved key "document.content" inserts the document's blocks;
// every other key resolves against the merged configuration.
func ApplyTemplate(
	tpl ast.TemplateRoot,
	cursor *ast.DocumentCursor,
) ast.RootElement {
	parts := make([]ast.TemplateSpan, 0, len(tpl.Parts))
	for _, part := range tpl.Parts {
		ref, ok := part.(ast.TemplateContextReference)
		if !ok {
			parts = append(parts, part)

			continue
		}
		parts = append(parts, resolveContextReference(ref, cursor))
	}

	return ast.RootElement{
		Content: []ast.Block{
			ast.TemplateRoot{Parts: parts, Opts: tpl.Opts},
		},
	}
}

func resolveContextReference(
	ref ast.TemplateContextReference,
	cursor *ast.DocumentCursor,
) ast.TemplateSpan {
	if ref.Key == ast.ContentKey {
		return ast.TemplateElement{
			Element: ast.BlockSequence{
				Content: cursor.Doc.Content.Content,
			},
		}
	}

	v, ok := cursor.ResolveReference(ref.Key)
	if !ok {
		if ref.Optional {
			return ast.TemplateString{}
		}

		return ast.TemplateElement{
			Element: ast.InvalidSpan{
				Message: "unresolved reference: " + ref.Key,
				Source:  "${" + ref.Key + "}",
			},
		}
	}

	return ast.TemplateString{Text: renderValue(v)}
}

func renderValue(v config.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}

	return v.Render()
}
