// Package hocon parses the HOCON-compatible configuration surface
// syntax into an unresolved tree and resolves it, with substitution
// expansion and fallback chaining, into a config.Config.
//
// The parser is built on the parse combinator kit; no external
// configuration library is involved.
package hocon

import (
	"fmt"

	"github.com/connerohnesorge/weft/parse"
)

// ParseError indicates malformed configuration syntax.
type ParseError struct {
	Message  string
	Position parse.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"configuration syntax error at %d:%d: %s",
		e.Position.Line, e.Position.Column, e.Message,
	)
}

// ResolveError indicates that a parsed configuration could not be
// resolved.
type ResolveError struct {
	Message string
	Key     string
}

func (e *ResolveError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf(
			"cannot resolve configuration key %q: %s",
			e.Key, e.Message,
		)
	}

	return "cannot resolve configuration: " + e.Message
}

// CircularSubstitutionError indicates a substitution cycle.
type CircularSubstitutionError struct {
	Path string
}

func (e *CircularSubstitutionError) Error() string {
	return fmt.Sprintf(
		"circular substitution involving %q",
		e.Path,
	)
}

// UnresolvedSubstitutionError indicates a required substitution whose
// path is absent from self and every fallback.
type UnresolvedSubstitutionError struct {
	Path string
}

func (e *UnresolvedSubstitutionError) Error() string {
	return fmt.Sprintf("unresolved substitution ${%s}", e.Path)
}
