package ast

import (
	"fmt"

	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/vpath"
)

// TreePosition locates a document or subtree within its tree: the
// child indices on the way down from the root. Positions order
// documents for navigation and tables of contents.
type TreePosition []int

// Child returns the position extended by one level.
func (p TreePosition) Child(index int) TreePosition {
	out := make(TreePosition, 0, len(p)+1)
	out = append(out, p...)
	out = append(out, index)

	return out
}

// Before reports whether p orders before other in depth-first order.
func (p TreePosition) Before(other TreePosition) bool {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			return p[i] < other[i]
		}
	}

	return len(p) < len(other)
}

// Document is a single parsed markup document.
type Document struct {
	Path      vpath.Path
	Content   RootElement
	Fragments map[string]Element
	Config    config.Config
	Position  TreePosition
}

// Name returns the document's file name within its parent.
func (d *Document) Name() string {
	return d.Path.Name()
}

// WithContent returns a copy of the document with new content.
func (d *Document) WithContent(content RootElement) *Document {
	copied := *d

	copied.Content = content

	return &copied
}

// TemplateDocument is a parsed template.
type TemplateDocument struct {
	Path   vpath.Path
	Root   TemplateRoot
	Config config.Config
}

// DocumentTree is the recursive container of documents and subtrees,
// plus templates, static asset stubs and the tree-level
// configuration.
//
// Invariants: the tree path is absolute; names are unique within a
// parent; the tree's Config is the parsed directory configuration,
// with parent fallbacks applied on demand by cursors.
type DocumentTree struct {
	Path      vpath.Path
	Documents []*Document
	Subtrees  []*DocumentTree
	Templates []*TemplateDocument
	Static    []vpath.Path
	Config    config.Config
}

// Validate checks the tree invariants recursively.
func (t *DocumentTree) Validate() error {
	if !t.Path.IsAbsolute() {
		return fmt.Errorf("tree path %q is not absolute", t.Path)
	}
	seen := make(map[string]bool)
	claim := func(name string) error {
		if seen[name] {
			return fmt.Errorf(
				"duplicate name %q under %q", name, t.Path,
			)
		}
		seen[name] = true

		return nil
	}
	for _, d := range t.Documents {
		if err := claim(d.Path.Name()); err != nil {
			return err
		}
	}
	for _, sub := range t.Subtrees {
		if err := claim(sub.Path.Name()); err != nil {
			return err
		}
		if err := sub.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// AllDocuments returns the tree's documents in depth-first order,
// documents before subtrees at each level.
func (t *DocumentTree) AllDocuments() []*Document {
	out := make([]*Document, 0, len(t.Documents))
	out = append(out, t.Documents...)
	for _, sub := range t.Subtrees {
		out = append(out, sub.AllDocuments()...)
	}

	return out
}

// SelectDocument finds a document by absolute path anywhere in the
// tree.
func (t *DocumentTree) SelectDocument(path vpath.Path) (*Document, bool) {
	for _, d := range t.Documents {
		if d.Path.Equal(path) {
			return d, true
		}
	}
	for _, sub := range t.Subtrees {
		if !path.IsUnder(sub.Path) {
			continue
		}
		if d, ok := sub.SelectDocument(path); ok {
			return d, true
		}
	}

	return nil, false
}

// SelectTemplate finds a template by absolute path anywhere in the
// tree.
func (t *DocumentTree) SelectTemplate(path vpath.Path) (*TemplateDocument, bool) {
	for _, tpl := range t.Templates {
		if tpl.Path.Equal(path) {
			return tpl, true
		}
	}
	for _, sub := range t.Subtrees {
		if tpl, ok := sub.SelectTemplate(path); ok {
			return tpl, true
		}
	}

	return nil, false
}
