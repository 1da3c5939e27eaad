package ast

import (
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/parse"
)

// LinkIDReference is an unresolved link by target id, produced by the
// span pass and resolved against the global target index during the
// Resolve phase.
type LinkIDReference struct {
	Content []Span
	ID      string
	Source  string
	At      parse.Fragment
	Opts    Options
}

// Options returns the node's id and styles.
func (l LinkIDReference) Options() Options { return l.Opts }
func (LinkIDReference) spanNode()          {}

// RunsIn reports whether the resolver participates in the phase.
func (LinkIDReference) RunsIn(p Phase) bool {
	return p == PhaseResolve
}

// UnresolvedMessage is the error shown when the resolver survives all
// of its phases.
func (l LinkIDReference) UnresolvedMessage() string {
	return "unresolved link reference: " + l.ID
}

// ResolveSpan looks the id up in the global target index, following
// alias chains. An alias cycle renders as an invalid span.
func (l LinkIDReference) ResolveSpan(cursor *DocumentCursor) Span {
	seen := make(map[string]bool)
	id := l.ID
	for {
		if seen[id] {
			return InvalidSpan{
				Message: "circular link alias: " + l.ID,
				Source:  l.Source,
				At:      l.At,
			}
		}
		seen[id] = true

		target, state := cursor.Targets.Lookup(UniqueSelector(id))
		switch state {
		case TargetFound:
			if target.Alias != "" {
				id = target.Alias

				continue
			}

			return SpanLink{
				Content: l.Content,
				Target:  target.Link,
				Opts:    l.Opts,
			}
		case TargetDuplicate:
			return InvalidSpan{
				Message: "duplicate target id: " + id,
				Source:  l.Source,
				At:      l.At,
			}
		default:
			return InvalidSpan{
				Message: "unresolved link reference: " + id,
				Source:  l.Source,
				At:      l.At,
			}
		}
	}
}

// ContextReference is a ${key} substitution inside markup text,
// resolved against the document's merged configuration during the
// Resolve phase.
type ContextReference struct {
	Key      string
	Optional bool
	Source   string
	At       parse.Fragment
	Opts     Options
}

// Options returns the node's id and styles.
func (c ContextReference) Options() Options { return c.Opts }
func (ContextReference) spanNode()          {}

// RunsIn reports whether the resolver participates in the phase.
func (ContextReference) RunsIn(p Phase) bool {
	return p == PhaseResolve
}

// UnresolvedMessage is the error shown when the resolver survives all
// of its phases.
func (c ContextReference) UnresolvedMessage() string {
	return "unresolved reference: " + c.Key
}

// ResolveSpan looks the key up in the merged configuration.
func (c ContextReference) ResolveSpan(cursor *DocumentCursor) Span {
	v, ok := cursor.ResolveReference(c.Key)
	if !ok {
		if c.Optional {
			return Text{}
		}

		return InvalidSpan{
			Message: c.UnresolvedMessage(),
			Source:  c.Source,
			At:      c.At,
		}
	}

	return Text{Content: renderConfigValue(v), Opts: c.Opts}
}

// renderConfigValue produces the inline textual form of a
// configuration value: strings stay raw, everything else renders in
// configuration syntax.
func renderConfigValue(v config.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}

	return v.Render()
}
