package rewrite

import (
	"strings"

	"github.com/connerohnesorge/weft/ast"
)

// Rewriter drives the ordered rewrite phases over a document tree.
// Build and Resolve run once per tree; Render runs once per output
// format.
type Rewriter struct {
	builders []RuleBuilder
}

// New creates a rewriter with the given rule builders. Builders are
// grouped by phase; declaration order decides rule order within a
// phase.
func New(builders ...RuleBuilder) *Rewriter {
	return &Rewriter{builders: builders}
}

// RewriteTree runs the Build and Resolve phases over every document.
// The global target index is built from all documents before any
// resolve walk, so cross-document references resolve independently of
// traversal order.
func (r *Rewriter) RewriteTree(root *ast.DocumentTree) *ast.DocumentTree {
	targets := CollectTargets(root)
	result := root
	for _, phase := range []ast.Phase{ast.PhaseBuild, ast.PhaseResolve} {
		result = r.rewritePhase(result, phase, targets, "")
	}

	return result
}

// Render runs the Render phase for one output format over every
// document.
func (r *Rewriter) Render(
	root *ast.DocumentTree,
	format string,
) *ast.DocumentTree {
	targets := CollectTargets(root)

	return r.rewritePhase(root, ast.PhaseRender, targets, format)
}

// RewriteDocument runs Build and Resolve over a single document
// outside any tree.
func (r *Rewriter) RewriteDocument(doc *ast.Document) *ast.Document {
	targets := ast.NewTargetIndex()
	collectDocumentTargets(doc, targets)
	result := doc
	for _, phase := range []ast.Phase{ast.PhaseBuild, ast.PhaseResolve} {
		cursor := ast.NewDocumentCursor(result, nil, targets)
		content := RewriteDocument(
			result.Content, cursor, phase, r.rulesFor(phase, cursor),
		)
		result = result.WithContent(content)
	}

	return result
}

func (r *Rewriter) rulesFor(
	phase ast.Phase,
	cursor *ast.DocumentCursor,
) Rules {
	var rules Rules
	for _, b := range r.builders {
		if b.Phase != phase {
			continue
		}
		rules = rules.Merge(b.Build(cursor))
	}

	return rules
}

func (r *Rewriter) rewritePhase(
	tree *ast.DocumentTree,
	phase ast.Phase,
	targets *ast.TargetIndex,
	format string,
) *ast.DocumentTree {
	cursor := ast.NewTreeCursor(tree)

	return r.rewriteSubtree(tree, cursor, phase, targets, format)
}

func (r *Rewriter) rewriteSubtree(
	tree *ast.DocumentTree,
	cursor *ast.TreeCursor,
	phase ast.Phase,
	targets *ast.TargetIndex,
	format string,
) *ast.DocumentTree {
	result := *tree

	result.Documents = make([]*ast.Document, len(tree.Documents))
	for i, doc := range tree.Documents {
		docCursor := ast.NewDocumentCursor(doc, cursor, targets)
		if format != "" {
			docCursor = docCursor.WithOutputFormat(format)
		}
		content := RewriteDocument(
			doc.Content, docCursor, phase,
			r.rulesFor(phase, docCursor),
		)
		result.Documents[i] = doc.WithContent(content)
	}

	result.Subtrees = make([]*ast.DocumentTree, len(tree.Subtrees))
	for i, sub := range tree.Subtrees {
		result.Subtrees[i] = r.rewriteSubtree(
			sub, cursor.ChildTree(sub), phase, targets, format,
		)
	}

	return &result
}

// CollectTargets builds the global target index by unioning the link
// targets of every document: link definitions and identified
// headers. Duplicate unique selectors are marked and render as
// invalid spans at use sites.
func CollectTargets(root *ast.DocumentTree) *ast.TargetIndex {
	targets := ast.NewTargetIndex()
	for _, doc := range root.AllDocuments() {
		collectDocumentTargets(doc, targets)
	}

	return targets
}

func collectDocumentTargets(doc *ast.Document, targets *ast.TargetIndex) {
	ast.VisitRoot(doc.Content, func(e ast.Element) bool {
		switch n := e.(type) {
		case ast.LinkDefinition:
			target := ast.Target{
				Sel:  ast.UniqueSelector(n.ID),
				Path: doc.Path,
			}
			if alias := aliasIDFor(n.Target); alias != "" {
				target.Alias = alias
			} else {
				target.Link = linkTargetFor(n.Target)
			}
			targets.Add(target)
		case ast.Header:
			if n.Opts.HasID() {
				targets.Add(ast.Target{
					Sel:  ast.UniqueSelector(n.Opts.ID),
					Path: doc.Path,
					Link: ast.InternalTarget(
						doc.Path.String() + "#" + n.Opts.ID,
					),
				})
			}
		}

		return true
	})
}

// linkTargetFor classifies a textual target as internal (tree path)
// or external (URL).
func linkTargetFor(target string) ast.LinkTarget {
	if strings.HasPrefix(target, "/") {
		return ast.InternalTarget(target)
	}

	return ast.ExternalTarget(target)
}

// aliasIDFor reports whether a link definition target is an alias to
// another target id rather than a destination: a bare name without
// path or scheme characters.
func aliasIDFor(target string) string {
	if target == "" || strings.ContainsAny(target, ":/.#? \t") {
		return ""
	}

	return target
}
