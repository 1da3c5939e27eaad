package hocon

import "github.com/connerohnesorge/weft/config"

// expr is a node of the unresolved configuration tree. Substitution
// placeholders and value concatenations survive parsing and are only
// collapsed during Resolve.
type expr interface {
	exprNode()
}

// litExpr is a literal scalar value.
type litExpr struct {
	value config.Value
}

// arrayExpr is an unresolved array.
type arrayExpr struct {
	elems []expr
}

// objectExpr is an unresolved object: a field list in source order.
// Duplicate keys are folded during resolution.
type objectExpr struct {
	fields []field
}

// substExpr is a substitution placeholder ${path} or ${?path}.
type substExpr struct {
	path     string
	optional bool
}

// concatExpr is a sequence of adjacent values on the same line. The
// whitespace between parts is preserved for string concatenation.
type concatExpr struct {
	parts []concatPart
}

// concatPart is one element of a concatenation and the whitespace
// separating it from the previous part.
type concatPart struct {
	ws    string
	value expr
}

func (litExpr) exprNode()    {}
func (arrayExpr) exprNode()  {}
func (objectExpr) exprNode() {}
func (substExpr) exprNode()  {}
func (concatExpr) exprNode() {}

// field is a single key/value entry of an object body.
type field struct {
	path     []string
	value    expr
	selfAdd  bool // += assignment
}

// Unresolved is the intermediate result of parsing: the field tree
// with substitution placeholders still in place. Resolve expands it
// into a config.Config.
type Unresolved struct {
	root objectExpr
}
