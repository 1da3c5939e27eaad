// Package ast defines the document model produced by the markup
// engine: the sealed Block and Span hierarchies, documents and
// document trees, templates, link targets and the cursor used during
// rewriting.
//
// All nodes are immutable after creation; rewriting produces new
// nodes and preserves sharing for untouched subtrees.
package ast

// Options carries the optional id and style set every node supports.
type Options struct {
	ID     string
	Styles []string
}

// HasID reports whether an id is set.
func (o Options) HasID() bool {
	return o.ID != ""
}

// HasStyle reports whether the given style is present.
func (o Options) HasStyle(style string) bool {
	for _, s := range o.Styles {
		if s == style {
			return true
		}
	}

	return false
}

// AddStyles returns a copy of the options with styles appended,
// skipping duplicates.
func (o Options) AddStyles(styles ...string) Options {
	merged := make([]string, len(o.Styles), len(o.Styles)+len(styles))
	copy(merged, o.Styles)
	for _, s := range styles {
		exists := false
		for _, existing := range merged {
			if existing == s {
				exists = true

				break
			}
		}
		if !exists {
			merged = append(merged, s)
		}
	}
	o.Styles = merged

	return o
}

// WithID returns a copy of the options with the id set.
func (o Options) WithID(id string) Options {
	o.ID = id

	return o
}

// Element is the interface shared by every AST node.
type Element interface {
	// Options returns the node's id and styles.
	Options() Options
}

// Block is a top-level rectangular region of markup. The hierarchy is
// sealed; extensions contribute variants through ExtensionBlock.
type Block interface {
	Element
	blockNode()
}

// Span is an inline element inside a block. The hierarchy is sealed;
// extensions contribute variants through ExtensionSpan.
type Span interface {
	Element
	spanNode()
}

// Phase identifies a rewrite phase. Phases run in declared order;
// deferred resolver nodes state which phases they participate in.
type Phase uint8

const (
	// PhaseBuild runs structural rules such as section building.
	PhaseBuild Phase = iota
	// PhaseResolve resolves references, substitutions and fragments.
	PhaseResolve
	// PhaseRender runs output-specific transforms; the output format
	// travels on the cursor.
	PhaseRender
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "Build"
	case PhaseResolve:
		return "Resolve"
	case PhaseRender:
		return "Render"
	default:
		return "Unknown"
	}
}

// SpanResolver marks a span whose final form is computed in a later
// rewrite phase, given a cursor. Span nodes implement it directly;
// extension spans may instead carry a payload implementing it, which
// AsSpanResolver unwraps.
type SpanResolver interface {
	// RunsIn reports whether the resolver participates in the phase.
	RunsIn(Phase) bool

	// ResolveSpan computes the replacement node.
	ResolveSpan(*DocumentCursor) Span

	// UnresolvedMessage is the error shown when the resolver survives
	// all of its phases.
	UnresolvedMessage() string
}

// BlockResolver marks a block whose final form is computed in a later
// rewrite phase, given a cursor. Block nodes implement it directly;
// extension blocks may instead carry a payload implementing it, which
// AsBlockResolver unwraps.
type BlockResolver interface {
	// RunsIn reports whether the resolver participates in the phase.
	RunsIn(Phase) bool

	// ResolveBlock computes the replacement node.
	ResolveBlock(*DocumentCursor) Block

	// UnresolvedMessage is the error shown when the resolver survives
	// all of its phases.
	UnresolvedMessage() string
}

// AsSpanResolver extracts the resolver capability of a span, looking
// through extension span payloads.
func AsSpanResolver(s Span) (SpanResolver, bool) {
	if r, ok := s.(SpanResolver); ok {
		return r, true
	}
	if ext, ok := s.(ExtensionSpan); ok {
		if r, ok := ext.Payload.(SpanResolver); ok {
			return r, true
		}
	}

	return nil, false
}

// AsBlockResolver extracts the resolver capability of a block,
// looking through extension block payloads.
func AsBlockResolver(b Block) (BlockResolver, bool) {
	if r, ok := b.(BlockResolver); ok {
		return r, true
	}
	if ext, ok := b.(ExtensionBlock); ok {
		if r, ok := ext.Payload.(BlockResolver); ok {
			return r, true
		}
	}

	return nil, false
}
