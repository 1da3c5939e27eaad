package config

import "github.com/connerohnesorge/weft/vpath"

// Scope identifies the level of the document tree at which a
// configuration value was defined. Scopes order fallback precedence:
// more specific scopes override broader ones.
type Scope uint8

const (
	// GlobalScope marks values from the application-wide defaults.
	GlobalScope Scope = iota
	// TreeScope marks values from a directory-level configuration.
	TreeScope
	// DocumentScope marks values from an in-document header.
	DocumentScope
	// TemplateScope marks values defined inside a template.
	TemplateScope
	// DirectiveScope marks attribute objects of a directive call.
	DirectiveScope
)

// String returns a human-readable name for the scope.
func (s Scope) String() string {
	switch s {
	case GlobalScope:
		return "Global"
	case TreeScope:
		return "Tree"
	case DocumentScope:
		return "Document"
	case TemplateScope:
		return "Template"
	case DirectiveScope:
		return "Directive"
	default:
		return "Unknown"
	}
}

// Origin records where a configuration value was defined.
type Origin struct {
	Scope Scope
	Path  vpath.Path
}

// NewOrigin creates an origin for the given scope and virtual path.
func NewOrigin(scope Scope, path vpath.Path) Origin {
	return Origin{Scope: scope, Path: path}
}

// String renders the origin for error messages.
func (o Origin) String() string {
	return o.Scope.String() + "(" + o.Path.String() + ")"
}
