package parse

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCharClasses(t *testing.T) {
	assert.Equal(t, "123", Digits().ParseString("123abc").Value())
	assert.Equal(t, "abc", Alpha().ParseString("abc123").Value())
	assert.Equal(t, "a1b2", AlphaNum().ParseString("a1b2-").Value())
	assert.Equal(t, "deadBEEF42", Hex().ParseString("deadBEEF42z").Value())
	assert.False(t, Digits().ParseString("abc").IsSuccess())
}

func TestAnyOfNeverFails(t *testing.T) {
	r := AnyOf('a', 'b').ParseString("xyz")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "", r.Value())
	assert.Equal(t, 0, r.Next().Offset())
}

func TestSomeNot(t *testing.T) {
	r := SomeNot('*', '\n').ParseString("hello*world")
	assert.Equal(t, "hello", r.Value())

	assert.False(t, SomeNot('h').ParseString("hello").IsSuccess())
}

func TestCharRange(t *testing.T) {
	p := CharRange('a', 'f')
	assert.Equal(t, byte('c'), p.ParseString("c").Value())
	assert.False(t, p.ParseString("g").IsSuccess())
}

func TestCharsBetween(t *testing.T) {
	p := CharsBetween(IsDigit, 2, 4)

	assert.False(t, p.ParseString("1").IsSuccess())
	assert.Equal(t, "12", p.ParseString("12").Value())
	assert.Equal(t, "1234", p.ParseString("123456").Value())
}

func TestWS(t *testing.T) {
	r := WS().ParseString(" \t x")
	assert.Equal(t, " \t ", r.Value())

	// Vertical whitespace is not consumed.
	r = WS().ParseString("\nx")
	assert.Equal(t, "", r.Value())
}

func TestEOL(t *testing.T) {
	r := EOL().ParseString("\nrest")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 1, r.Next().Offset())

	// EOL succeeds at end of input without consuming.
	r = EOL().ParseString("")
	assert.True(t, r.IsSuccess())

	assert.False(t, EOL().ParseString("x").IsSuccess())
}

func TestBlankLine(t *testing.T) {
	r := BlankLine().ParseString("   \nnext")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 4, r.Next().Offset())

	assert.False(t, BlankLine().ParseString("  x\n").IsSuccess())
	assert.False(t, BlankLine().ParseString("").IsSuccess())
}

func TestRestOfLine(t *testing.T) {
	r := RestOfLine().ParseString("first\nsecond")
	assert.Equal(t, "first", r.Value())
	assert.Equal(t, 6, r.Next().Offset())

	// Without a trailing newline the remainder is consumed.
	r = RestOfLine().ParseString("last")
	assert.Equal(t, "last", r.Value())
	assert.True(t, r.Next().AtEnd())
}

func TestDelimiterBoundaries(t *testing.T) {
	star := Delim("*").
		PrevNot(IsAlphaNum).
		NextNot(IsSpace).
		Parser()

	// At start of input the PrevNot check passes.
	assert.True(t, star.ParseString("*bold").IsSuccess())

	// Preceded by a letter: rejected.
	after := Literal("a").ParseString("a*b")
	assert.False(t, star.Parse(after.Next()).IsSuccess())

	// Followed by whitespace: rejected.
	assert.False(t, star.ParseString("* x").IsSuccess())

	// At end of input the NextNot check passes.
	assert.True(t, star.ParseString("*").IsSuccess())
}

func TestDelimitedBy(t *testing.T) {
	p := DelimitedBy("*").Parser()

	r := p.ParseString("text*rest")
	assert.Equal(t, "text", r.Value())
	assert.Equal(t, 5, r.Next().Offset())

	// Unclosed delimiter fails.
	assert.False(t, p.ParseString("text").IsSuccess())
}

func TestDelimitedByModifiers(t *testing.T) {
	failOn := DelimitedBy("*").FailOn('\n').Parser()
	assert.False(t, failOn.ParseString("te\nxt*").IsSuccess())

	acceptEOF := DelimitedBy("*").AcceptEOF().Parser()
	r := acceptEOF.ParseString("text")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "text", r.Value())

	nonEmpty := DelimitedBy("*").NonEmpty().Parser()
	assert.False(t, nonEmpty.ParseString("*x").IsSuccess())

	keep := DelimitedBy("*").KeepDelimiter().Parser()
	r = keep.ParseString("ab*")
	assert.Equal(t, "ab", r.Value())
	assert.Equal(t, 2, r.Next().Offset())
}

func TestCharSet(t *testing.T) {
	s := CharSetFromString("abc")
	assert.True(t, s.Contains('a'))
	assert.False(t, s.Contains('d'))

	u := s.Union(NewCharSet('d'))
	assert.True(t, u.Contains('d'))
	assert.True(t, u.Contains('a'))
	assert.False(t, s.Contains('d')) // original unchanged

	assert.True(t, CharSet{}.IsEmpty())
	assert.Equal(t, []byte{'a', 'b', 'c', 'd'}, u.Members())
}

func TestPrefixedChoiceUnionsStartSets(t *testing.T) {
	a := NewPrefixed(NewCharSet('a'), Literal("a"))
	b := NewPrefixed(NewCharSet('b'), Literal("b"))

	combined := ChoicePrefixed(a, b)
	assert.True(t, combined.StartChars.Contains('a'))
	assert.True(t, combined.StartChars.Contains('b'))
	assert.False(t, combined.StartChars.Contains('c'))

	assert.Equal(t, "b", combined.Parse(NewContext("b")).Value())
}

func TestMapPrefixedKeepsStartSet(t *testing.T) {
	p := NewPrefixed(NewCharSet('x'), Literal("x"))
	mapped := MapPrefixed(p, func(s string) int { return len(s) })

	assert.True(t, mapped.StartChars.Contains('x'))
	assert.Equal(t, 1, mapped.Parse(NewContext("x")).Value())
}

func TestBlockSlicer(t *testing.T) {
	prefix := Literal("> ")
	p := Block(prefix, prefix, nil)

	input := "> first\n> second\n\nafter"
	r := p.ParseString(input)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, []string{"first", "second"}, r.Value().Lines)

	// Stops before the blank line.
	assert.Equal(t, "\nafter", r.Next().Input())
}

func TestBlockSlicerWithNextBlockPrefix(t *testing.T) {
	first := Literal("> ")
	next := Literal("> ")
	p := Block(first, first, &next)

	input := "> a\n\n> b\nend"
	r := p.ParseString(input)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, []string{"a", "", "b"}, r.Value().Lines)
}

func TestIndentedBlock(t *testing.T) {
	p := IndentedBlock(IndentedBlockSpec{
		MinIndent:         2,
		FirstLineIndented: true,
	})

	input := "   first\n  second\nnot indented"
	r := p.ParseString(input)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 2, r.Value().Indent)
	assert.Equal(t, []string{" first", "second"}, r.Value().Lines)
	assert.Equal(t, "not indented", r.Next().Input())
}

func TestIndentedBlockFirstLineUnindented(t *testing.T) {
	p := IndentedBlock(IndentedBlockSpec{MinIndent: 2})

	input := "term\n  definition\n  more\nnext"
	r := p.ParseString(input)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, []string{"term", "definition", "more"}, r.Value().Lines)
}

func TestIndentedBlockEndsOnBlankLine(t *testing.T) {
	p := IndentedBlock(IndentedBlockSpec{
		MinIndent:         2,
		FirstLineIndented: true,
		EndsOnBlankLine:   true,
	})

	input := "  a\n\n  b"
	r := p.ParseString(input)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, []string{"a"}, r.Value().Lines)
}

func TestPositionTracking(t *testing.T) {
	ctx := NewContext("one\ntwo\nthree")
	assert.Equal(t, Position{Line: 1, Column: 1}, ctx.Position())
	assert.Equal(t, Position{Line: 2, Column: 1}, ctx.Consume(4).Position())
	assert.Equal(t, Position{Line: 2, Column: 2}, ctx.Consume(5).Position())
	assert.Equal(t, Position{Line: 3, Column: 5}, ctx.Consume(12).Position())
}
