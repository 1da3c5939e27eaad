package ast

// Children returns the direct child elements of a node. Leaf nodes
// return nil. The returned slice is freshly allocated.
func Children(e Element) []Element {
	switch n := e.(type) {
	case Paragraph:
		return spanChildren(n.Content)
	case Header:
		return spanChildren(n.Content)
	case BlockSequence:
		return blockChildren(n.Content)
	case QuotedBlock:
		out := blockChildren(n.Content)

		return append(out, spanChildren(n.Attribution)...)
	case ListBlock:
		var out []Element
		for _, item := range n.Items {
			out = append(out, blockChildren(item.Content)...)
		}

		return out
	case Section:
		out := []Element{n.Header}

		return append(out, blockChildren(n.Content)...)
	case TemplateRoot:
		var out []Element
		for _, part := range n.Parts {
			out = append(out, part)
		}

		return out
	case TemplateElement:
		return []Element{n.Element}
	case Emphasized:
		return spanChildren(n.Content)
	case Strong:
		return spanChildren(n.Content)
	case SpanSequence:
		return spanChildren(n.Content)
	case SpanLink:
		return spanChildren(n.Content)
	case LinkIDReference:
		return spanChildren(n.Content)
	default:
		return nil
	}
}

func spanChildren(spans []Span) []Element {
	out := make([]Element, len(spans))
	for i, s := range spans {
		out[i] = s
	}

	return out
}

func blockChildren(blocks []Block) []Element {
	out := make([]Element, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}

	return out
}

// Visit walks an element tree depth-first, parents before children.
// The visitor returning false prunes the subtree.
func Visit(e Element, visit func(Element) bool) {
	if !visit(e) {
		return
	}
	for _, child := range Children(e) {
		Visit(child, visit)
	}
}

// VisitRoot walks every block of a root element.
func VisitRoot(root RootElement, visit func(Element) bool) {
	for _, b := range root.Content {
		Visit(b, visit)
	}
}

// InvalidElements collects all invalid nodes in a root element in
// source order.
func InvalidElements(root RootElement) []Element {
	var out []Element
	VisitRoot(root, func(e Element) bool {
		switch e.(type) {
		case InvalidBlock, InvalidSpan:
			out = append(out, e)
		}

		return true
	})

	return out
}
