package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLiteral(t *testing.T) {
	r := Literal("abc").ParseString("abcdef")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "abc", r.Value())
	assert.Equal(t, 3, r.Next().Offset())

	r = Literal("abc").ParseString("abx")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, 0, r.Failure().At.Offset())
	assert.Equal(t, "expected 'abc'", r.Failure().Message())
}

func TestParseIsPure(t *testing.T) {
	p := Seq(Literal("a"), SomeWhile(IsDigit))
	ctx := NewContext("a123b")

	first := p.Parse(ctx)
	second := p.Parse(ctx)

	assert.Equal(t, first.Value(), second.Value())
	assert.Equal(t, first.Next().Offset(), second.Next().Offset())
}

func TestSeq(t *testing.T) {
	p := Seq(Literal("foo"), Literal("bar"))

	r := p.ParseString("foobar")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, Pair[string, string]{First: "foo", Second: "bar"}, r.Value())

	r = p.ParseString("fooxxx")
	assert.False(t, r.IsSuccess())
	// Failure position is where the second parser failed.
	assert.Equal(t, 3, r.Failure().At.Offset())
}

func TestKeepLeftKeepRight(t *testing.T) {
	l := KeepLeft(Literal("a"), Literal("b"))
	r := KeepRight(Literal("a"), Literal("b"))

	assert.Equal(t, "a", l.ParseString("ab").Value())
	assert.Equal(t, "b", r.ParseString("ab").Value())
	assert.Equal(t, 2, l.ParseString("ab").Next().Offset())
}

func TestChoiceFirstSuccessWins(t *testing.T) {
	p := Choice(Literal("aa"), Literal("ab"))

	assert.Equal(t, "aa", p.ParseString("aa").Value())
	assert.Equal(t, "ab", p.ParseString("ab").Value())
}

func TestChoiceReturnsFurthestFailure(t *testing.T) {
	// The first alternative fails at offset 2, the second at offset 1.
	p := Choice(
		Source(Seq(Literal("ab"), Literal("c"))),
		Source(Seq(Literal("a"), Literal("x"))),
	)

	r := p.ParseString("abz")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, 2, r.Failure().At.Offset())
}

func TestChoiceTieBreakPrefersLater(t *testing.T) {
	first := WithMessage(Literal("x"), "first")
	second := WithMessage(Literal("y"), "second")

	r := Choice(first, second).ParseString("z")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, "second", r.Failure().Message())
}

func TestMapDoesNotChangePosition(t *testing.T) {
	p := Map(Literal("abc"), strings.ToUpper)

	r := p.ParseString("abcdef")
	assert.Equal(t, "ABC", r.Value())
	assert.Equal(t, 3, r.Next().Offset())
}

func TestFlatMap(t *testing.T) {
	// Parse a digit count, then exactly that many 'x' characters.
	p := FlatMap(Digit(), func(d byte) Parser[string] {
		n := int(d - '0')

		return CharsBetween(func(c byte) bool { return c == 'x' }, n, n)
	})

	assert.Equal(t, "xxx", p.ParseString("3xxx").Value())
	assert.False(t, p.ParseString("3xx").IsSuccess())
}

func TestEvalMap(t *testing.T) {
	p := EvalMap(Digits(), func(s string) (string, error) {
		if len(s) > 3 {
			return "", errors.New("number too long")
		}

		return s, nil
	})

	assert.True(t, p.ParseString("123").IsSuccess())
	r := p.ParseString("12345")
	assert.False(t, r.IsSuccess())
	assert.Equal(t, "number too long", r.Failure().Message())
}

func TestCollect(t *testing.T) {
	even := Collect(Digits(), func(s string) (string, bool) {
		last := s[len(s)-1]

		return s, (last-'0')%2 == 0
	})

	assert.True(t, even.ParseString("42").IsSuccess())
	assert.False(t, even.ParseString("43").IsSuccess())
}

func TestOptAlwaysSucceeds(t *testing.T) {
	p := Opt(Literal("ab"))

	r := p.ParseString("abc")
	assert.True(t, r.IsSuccess())
	v, ok := r.Value().Get()
	assert.True(t, ok)
	assert.Equal(t, "ab", v)
	assert.Equal(t, 2, r.Next().Offset())

	r = p.ParseString("xy")
	assert.True(t, r.IsSuccess())
	assert.False(t, r.Value().IsDefined())
	assert.Equal(t, 0, r.Next().Offset())
}

func TestRep(t *testing.T) {
	p := Rep(Literal("ab"))

	r := p.ParseString("ababx")
	assert.Equal(t, []string{"ab", "ab"}, r.Value())
	assert.Equal(t, 4, r.Next().Offset())

	// Zero matches still succeed.
	r = p.ParseString("x")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 0, len(r.Value()))
}

func TestRepBounds(t *testing.T) {
	min2 := RepMin(Literal("a"), 2)
	assert.False(t, min2.ParseString("a").IsSuccess())
	assert.True(t, min2.ParseString("aa").IsSuccess())

	max2 := RepBetween(Literal("a"), 0, 2)
	r := max2.ParseString("aaaa")
	assert.Equal(t, 2, len(r.Value()))
	assert.Equal(t, 2, r.Next().Offset())
}

func TestRepSep(t *testing.T) {
	p := RepSep(Digits(), Literal(","))

	r := p.ParseString("1,22,333")
	assert.Equal(t, []string{"1", "22", "333"}, r.Value())

	// A trailing separator is left unconsumed.
	r = p.ParseString("1,2,")
	assert.Equal(t, []string{"1", "2"}, r.Value())
	assert.Equal(t, 3, r.Next().Offset())

	// Empty input yields an empty result.
	r = p.ParseString("x")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 0, len(r.Value()))
}

func TestNotIsZeroWidth(t *testing.T) {
	p := Not(Literal("a"))

	r := p.ParseString("b")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, 0, r.Next().Offset())

	assert.False(t, p.ParseString("a").IsSuccess())
}

func TestLookaheadIsZeroWidth(t *testing.T) {
	p := Lookahead(Literal("abc"))

	r := p.ParseString("abcdef")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "abc", r.Value())
	assert.Equal(t, 0, r.Next().Offset())
}

func TestLookbehind(t *testing.T) {
	// Match "b" only when preceded by "a".
	p := KeepRight(Lookbehind(1, Literal("a")), Literal("b"))

	r := Literal("a").ParseString("ab")
	r2 := p.Parse(r.Next())
	assert.True(t, r2.IsSuccess())
	assert.Equal(t, 2, r2.Next().Offset())

	r = Literal("x").ParseString("xb")
	assert.False(t, p.Parse(r.Next()).IsSuccess())
}

func TestSourceReturnsConsumedSlice(t *testing.T) {
	inner := Seq(Digits(), Literal("px"))
	p := Source(inner)

	ctx := NewContext("42pxrest")
	r := p.Parse(ctx)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "42px", r.Value())
	assert.Equal(t, ctx.Source()[:r.Next().Offset()], r.Value())
}

func TestWithCursor(t *testing.T) {
	p := KeepRight(Literal("ab"), WithCursor(Digits()))

	r := p.ParseString("ab123")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "123", r.Value().Value)
	assert.Equal(t, 2, r.Value().Fragment.Offset)
	assert.Equal(t, Position{Line: 1, Column: 3}, r.Value().Fragment.Position())
}

func TestLazyAllowsRecursion(t *testing.T) {
	// nested := "(" nested ")" | digits
	var nested Parser[string]
	nested = Lazy(func() Parser[string] {
		return Choice(
			Source(Seq(Literal("("), Seq(nested, Literal(")")))),
			Digits(),
		)
	})

	assert.Equal(t, "((7))", nested.ParseString("((7))").Value())
	assert.False(t, nested.ParseString("((7)").IsSuccess())
}

func TestLazyMessageNotEvaluatedOnSuccess(t *testing.T) {
	evaluated := false
	failing := New(func(ctx Context) Result[string] {
		return Fail[string](ctx, func() string {
			evaluated = true

			return "boom"
		})
	})

	r := Choice(failing, Literal("a")).ParseString("a")
	assert.True(t, r.IsSuccess())
	assert.False(t, evaluated)
}
