package rewrite

import "github.com/connerohnesorge/weft/ast"

// RewriteDocument applies one phase's rules to a document's content,
// walking bottom-up so containers only ever see already-processed
// children. At each node the installed rules run first, then — when
// the node is a resolver participating in the phase — its resolve
// function.
func RewriteDocument(
	content ast.RootElement,
	cursor *ast.DocumentCursor,
	phase ast.Phase,
	rules Rules,
) ast.RootElement {
	r := &docRewriter{cursor: cursor, phase: phase, rules: rules}

	return ast.RootElement{Content: r.rewriteBlocks(content.Content)}
}

type docRewriter struct {
	cursor *ast.DocumentCursor
	phase  ast.Phase
	rules  Rules
}

func (r *docRewriter) rewriteBlocks(blocks []ast.Block) []ast.Block {
	out := make([]ast.Block, 0, len(blocks))
	for _, b := range blocks {
		if rewritten, keep := r.rewriteBlock(b, true); keep {
			out = append(out, rewritten)
		}
	}

	return out
}

// rewriteBlock processes children, applies rules and runs resolvers.
// applyResolver is false when re-processing a node a resolver just
// returned, so a resolver cannot feed itself back in endlessly.
func (r *docRewriter) rewriteBlock(
	block ast.Block,
	applyResolver bool,
) (ast.Block, bool) {
	block = r.rebuildBlock(block)

	block, action := applyBlockRules(r.rules.Blocks, block)
	if action == ActionRemove {
		return nil, false
	}

	if resolver, ok := ast.AsBlockResolver(block); ok {
		if applyResolver && resolver.RunsIn(r.phase) {
			return r.rewriteBlock(resolver.ResolveBlock(r.cursor), false)
		}
		if r.phase == ast.PhaseRender {
			return ast.InvalidBlock{
				Message: resolver.UnresolvedMessage(),
			}, true
		}
	}

	return block, true
}

// rebuildBlock reconstructs a container block with rewritten
// children.
func (r *docRewriter) rebuildBlock(block ast.Block) ast.Block {
	switch n := block.(type) {
	case ast.Paragraph:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.Header:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.BlockSequence:
		n.Content = r.rewriteBlocks(n.Content)

		return n
	case ast.QuotedBlock:
		n.Content = r.rewriteBlocks(n.Content)
		n.Attribution = r.rewriteSpans(n.Attribution)

		return n
	case ast.ListBlock:
		items := make([]ast.ListItem, len(n.Items))
		for i, item := range n.Items {
			item.Content = r.rewriteBlocks(item.Content)
			items[i] = item
		}
		n.Items = items

		return n
	case ast.Section:
		header, keep := r.rewriteBlock(n.Header, true)
		if h, ok := header.(ast.Header); keep && ok {
			n.Header = h
		}
		n.Content = r.rewriteBlocks(n.Content)

		return n
	case ast.TemplateRoot:
		n.Parts = r.rewriteTemplateSpans(n.Parts)

		return n
	default:
		return block
	}
}

func (r *docRewriter) rewriteSpans(spans []ast.Span) []ast.Span {
	out := make([]ast.Span, 0, len(spans))
	for _, s := range spans {
		if rewritten, keep := r.rewriteSpan(s, true); keep {
			out = append(out, rewritten)
		}
	}

	return out
}

func (r *docRewriter) rewriteSpan(
	span ast.Span,
	applyResolver bool,
) (ast.Span, bool) {
	span = r.rebuildSpan(span)

	span, action := applySpanRules(r.rules.Spans, span)
	if action == ActionRemove {
		return nil, false
	}

	if resolver, ok := ast.AsSpanResolver(span); ok {
		if applyResolver && resolver.RunsIn(r.phase) {
			return r.rewriteSpan(resolver.ResolveSpan(r.cursor), false)
		}
		if r.phase == ast.PhaseRender {
			return ast.InvalidSpan{
				Message: resolver.UnresolvedMessage(),
			}, true
		}
	}

	return span, true
}

func (r *docRewriter) rebuildSpan(span ast.Span) ast.Span {
	switch n := span.(type) {
	case ast.Emphasized:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.Strong:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.SpanSequence:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.SpanLink:
		n.Content = r.rewriteSpans(n.Content)

		return n
	case ast.LinkIDReference:
		n.Content = r.rewriteSpans(n.Content)

		return n
	default:
		return span
	}
}

func (r *docRewriter) rewriteTemplateSpans(
	parts []ast.TemplateSpan,
) []ast.TemplateSpan {
	out := make([]ast.TemplateSpan, 0, len(parts))
	for _, part := range parts {
		if el, ok := part.(ast.TemplateElement); ok {
			switch inner := el.Element.(type) {
			case ast.Block:
				if rewritten, keep := r.rewriteBlock(inner, true); keep {
					el.Element = rewritten
					out = append(out, el)
				}

				continue
			case ast.Span:
				if rewritten, keep := r.rewriteSpan(inner, true); keep {
					el.Element = rewritten
					out = append(out, el)
				}

				continue
			}
		}
		out = append(out, part)
	}

	return out
}
