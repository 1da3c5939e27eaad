package ast

import "github.com/connerohnesorge/weft/vpath"

// SelectorKind classifies link target selectors.
type SelectorKind uint8

const (
	// SelectorUnique addresses a target by a tree-wide unique name.
	SelectorUnique SelectorKind = iota
	// SelectorPath addresses a target by document path plus name.
	SelectorPath
	// SelectorAnonymous addresses the n-th anonymous target.
	SelectorAnonymous
	// SelectorAutonumber addresses an auto-numbered footnote target.
	SelectorAutonumber
	// SelectorAutosymbol addresses an auto-symbol footnote target.
	SelectorAutosymbol
)

// Selector identifies a link, footnote or citation target within the
// tree. Selectors are comparable and usable as map keys.
type Selector struct {
	Kind  SelectorKind
	Name  string
	Path  string
	Index int
}

// UniqueSelector creates a selector for a tree-wide unique name.
func UniqueSelector(name string) Selector {
	return Selector{Kind: SelectorUnique, Name: name}
}

// PathSelector creates a selector scoped to one document.
func PathSelector(path vpath.Path, name string) Selector {
	return Selector{
		Kind: SelectorPath,
		Name: name,
		Path: path.String(),
	}
}

// AnonymousSelector creates a selector for the n-th anonymous target.
func AnonymousSelector(index int) Selector {
	return Selector{Kind: SelectorAnonymous, Index: index}
}

// AutonumberSelector creates the selector for auto-numbered targets.
func AutonumberSelector(index int) Selector {
	return Selector{Kind: SelectorAutonumber, Index: index}
}

// AutosymbolSelector creates the selector for auto-symbol targets.
func AutosymbolSelector(index int) Selector {
	return Selector{Kind: SelectorAutosymbol, Index: index}
}

// String renders the selector for error messages.
func (s Selector) String() string {
	switch s.Kind {
	case SelectorPath:
		return s.Path + "#" + s.Name
	case SelectorAnonymous:
		return "anonymous"
	case SelectorAutonumber:
		return "autonumber"
	case SelectorAutosymbol:
		return "autosymbol"
	default:
		return s.Name
	}
}

// Target is a resolved link destination registered under a selector.
// A target may instead be an alias for another target id; alias
// chains are followed at use sites, with cycles reported there.
type Target struct {
	Sel   Selector
	Path  vpath.Path // document that defined the target
	Link  LinkTarget
	Alias string
}

// TargetState is the outcome of a target index lookup.
type TargetState uint8

const (
	// TargetMissing means no definition exists for the selector.
	TargetMissing TargetState = iota
	// TargetFound means exactly one definition exists.
	TargetFound
	// TargetDuplicate means the unique selector was defined more than
	// once; use sites must render an error.
	TargetDuplicate
)

// TargetIndex is the global map of selectors to targets, built by
// unioning per-document target providers before any resolve phase.
type TargetIndex struct {
	entries    map[Selector]Target
	duplicates map[Selector]bool
}

// NewTargetIndex creates an empty index.
func NewTargetIndex() *TargetIndex {
	return &TargetIndex{
		entries:    make(map[Selector]Target),
		duplicates: make(map[Selector]bool),
	}
}

// Add registers a target. A second definition under the same unique
// selector marks the selector as duplicate.
func (i *TargetIndex) Add(t Target) {
	if _, exists := i.entries[t.Sel]; exists {
		i.duplicates[t.Sel] = true

		return
	}
	i.entries[t.Sel] = t
}

// Lookup returns the target registered for a selector and the state
// of the lookup.
func (i *TargetIndex) Lookup(sel Selector) (Target, TargetState) {
	if i.duplicates[sel] {
		return Target{}, TargetDuplicate
	}
	t, ok := i.entries[sel]
	if !ok {
		return Target{}, TargetMissing
	}

	return t, TargetFound
}

// Selectors returns all registered selectors, including duplicates.
func (i *TargetIndex) Selectors() []Selector {
	out := make([]Selector, 0, len(i.entries))
	for sel := range i.entries {
		out = append(out, sel)
	}

	return out
}
