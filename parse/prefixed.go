package parse

// Prefixed pairs a parser with the set of characters that may legally
// start a successful match. Engines use start sets to build dispatch
// tables so that inline hot loops only try parsers whose set contains
// the character at the current position.
//
// Invariant: when the inner parser succeeds from a context c, the
// source byte at c's offset is a member of StartChars.
type Prefixed[T any] struct {
	StartChars CharSet
	Parser     Parser[T]
}

// NewPrefixed pairs a parser with its start set.
func NewPrefixed[T any](start CharSet, p Parser[T]) Prefixed[T] {
	return Prefixed[T]{StartChars: start, Parser: p}
}

// Parse runs the inner parser. The start set is advisory; callers
// performing dispatch should consult StartChars first.
func (p Prefixed[T]) Parse(ctx Context) Result[T] {
	return p.Parser.Parse(ctx)
}

// MapPrefixed transforms the success value, keeping the start set:
// mapping never changes what character a match can begin with.
func MapPrefixed[A, B any](p Prefixed[A], f func(A) B) Prefixed[B] {
	return Prefixed[B]{
		StartChars: p.StartChars,
		Parser:     Map(p.Parser, f),
	}
}

// ChoicePrefixed combines alternatives into one prefixed parser whose
// start set is the union of the alternatives' sets.
func ChoicePrefixed[T any](alternatives ...Prefixed[T]) Prefixed[T] {
	var start CharSet
	parsers := make([]Parser[T], len(alternatives))
	for i, alt := range alternatives {
		start = start.Union(alt.StartChars)
		parsers[i] = alt.Parser
	}

	return Prefixed[T]{StartChars: start, Parser: Choice(parsers...)}
}
