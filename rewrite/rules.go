// Package rewrite provides the multi-pass AST rewriter: ordered
// phases, bottom-up rule application, deferred resolver handling,
// global link-target indexing and template application.
package rewrite

import "github.com/connerohnesorge/weft/ast"

// Action signals the intended effect of a rule on a node.
type Action uint8

const (
	// ActionKeep leaves the node unchanged; the returned node is
	// ignored.
	ActionKeep Action = iota
	// ActionReplace substitutes the returned node for the original.
	ActionReplace
	// ActionRemove deletes the node from its parent's children.
	ActionRemove
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "Keep"
	case ActionReplace:
		return "Replace"
	case ActionRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// SpanRule is a partial function applied to every span bottom-up.
type SpanRule func(ast.Span) (ast.Span, Action)

// BlockRule is a partial function applied to every block bottom-up.
type BlockRule func(ast.Block) (ast.Block, Action)

// Rules is the set of rules active for one document in one phase.
type Rules struct {
	Spans  []SpanRule
	Blocks []BlockRule
}

// Merge combines two rule sets, keeping declaration order.
func (r Rules) Merge(other Rules) Rules {
	return Rules{
		Spans:  append(append([]SpanRule{}, r.Spans...), other.Spans...),
		Blocks: append(append([]BlockRule{}, r.Blocks...), other.Blocks...),
	}
}

// RuleBuilder contributes rules for one phase. The builder runs once
// per document so that rules can close over the cursor.
type RuleBuilder struct {
	Phase ast.Phase
	Build func(*ast.DocumentCursor) Rules
}

// applySpanRules runs all span rules in order on a node. A Replace
// feeds the replacement to the remaining rules; a Remove stops the
// chain.
func applySpanRules(rules []SpanRule, span ast.Span) (ast.Span, Action) {
	result := ActionKeep
	for _, rule := range rules {
		replacement, action := rule(span)
		switch action {
		case ActionRemove:
			return nil, ActionRemove
		case ActionReplace:
			span = replacement
			result = ActionReplace
		case ActionKeep:
		}
	}

	return span, result
}

// applyBlockRules runs all block rules in order on a node.
func applyBlockRules(rules []BlockRule, block ast.Block) (ast.Block, Action) {
	result := ActionKeep
	for _, rule := range rules {
		replacement, action := rule(block)
		switch action {
		case ActionRemove:
			return nil, ActionRemove
		case ActionReplace:
			block = replacement
			result = ActionReplace
		case ActionKeep:
		}
	}

	return block, result
}
