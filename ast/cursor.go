package ast

import "github.com/connerohnesorge/weft/config"

// TreeCursor is an immutable view over a document tree node and its
// ancestry. Navigation reconstructs child cursors on demand, so trees
// hold no parent references.
type TreeCursor struct {
	Tree   *DocumentTree
	Parent *TreeCursor

	merged config.Config
}

// NewTreeCursor creates the root cursor over a tree.
func NewTreeCursor(root *DocumentTree) *TreeCursor {
	return &TreeCursor{Tree: root, merged: root.Config}
}

// Root returns the cursor of the tree root.
func (tc *TreeCursor) Root() *TreeCursor {
	current := tc
	for current.Parent != nil {
		current = current.Parent
	}

	return current
}

// Config returns the tree configuration with all parent
// configurations applied as fallbacks.
func (tc *TreeCursor) Config() config.Config {
	return tc.merged
}

// ChildTree returns a cursor over the given subtree with this cursor
// as parent.
func (tc *TreeCursor) ChildTree(sub *DocumentTree) *TreeCursor {
	return &TreeCursor{
		Tree:   sub,
		Parent: tc,
		merged: sub.Config.WithFallback(tc.merged),
	}
}

// Children returns cursors for all direct subtrees.
func (tc *TreeCursor) Children() []*TreeCursor {
	out := make([]*TreeCursor, len(tc.Tree.Subtrees))
	for i, sub := range tc.Tree.Subtrees {
		out[i] = tc.ChildTree(sub)
	}

	return out
}

// DocumentCursors returns cursors for the documents directly in this
// tree node.
func (tc *TreeCursor) DocumentCursors(targets *TargetIndex) []*DocumentCursor {
	out := make([]*DocumentCursor, len(tc.Tree.Documents))
	for i, d := range tc.Tree.Documents {
		out[i] = NewDocumentCursor(d, tc, targets)
	}

	return out
}

// DocumentCursor is a zipper over one document within its tree: it
// exposes the document, its parent and root tree cursors, the merged
// configuration and the global link targets collected from sibling
// documents.
type DocumentCursor struct {
	Doc     *Document
	Parent  *TreeCursor
	Targets *TargetIndex

	// OutputFormat is set during render-phase rewriting.
	OutputFormat string

	merged config.Config
}

// NewDocumentCursor creates a cursor for a document under the given
// tree cursor.
func NewDocumentCursor(
	doc *Document,
	parent *TreeCursor,
	targets *TargetIndex,
) *DocumentCursor {
	merged := doc.Config
	if parent != nil {
		merged = merged.WithFallback(parent.Config())
	}
	if targets == nil {
		targets = NewTargetIndex()
	}

	return &DocumentCursor{
		Doc:     doc,
		Parent:  parent,
		Targets: targets,
		merged:  merged,
	}
}

// Root returns the cursor of the tree root.
func (dc *DocumentCursor) Root() *TreeCursor {
	if dc.Parent == nil {
		return nil
	}

	return dc.Parent.Root()
}

// Config returns the document configuration with the parent chain
// applied as fallbacks.
func (dc *DocumentCursor) Config() config.Config {
	return dc.merged
}

// ResolveReference looks up a dotted key in the merged configuration.
func (dc *DocumentCursor) ResolveReference(key string) (config.Value, bool) {
	return dc.merged.Lookup(key)
}

// AllDocuments returns every document of the tree in depth-first
// order, or just the current document when the cursor is detached
// from a tree.
func (dc *DocumentCursor) AllDocuments() []*Document {
	root := dc.Root()
	if root == nil {
		return []*Document{dc.Doc}
	}

	return root.Tree.AllDocuments()
}

// WithOutputFormat returns a copy of the cursor carrying the output
// format for render-phase rules.
func (dc *DocumentCursor) WithOutputFormat(format string) *DocumentCursor {
	copied := *dc

	copied.OutputFormat = format

	return &copied
}
