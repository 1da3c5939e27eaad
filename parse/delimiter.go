package parse

// Delimiter matches a fixed delimiter string with optional boundary
// checks on the characters immediately before and after the match.
// Boundary predicates are not consulted at the edges of the input: a
// check on a missing neighbouring byte always passes.
type Delimiter struct {
	delim   string
	prevNot func(byte) bool
	nextNot func(byte) bool
}

// Delim creates a delimiter matcher for the given string.
func Delim(s string) Delimiter {
	return Delimiter{delim: s}
}

// PrevNot adds a boundary check: the match fails when the byte before
// the delimiter satisfies pred. At the beginning of input the check
// always passes.
func (d Delimiter) PrevNot(pred func(byte) bool) Delimiter {
	d.prevNot = pred

	return d
}

// NextNot adds a boundary check: the match fails when the byte after
// the delimiter satisfies pred. At the end of input the check always
// passes.
func (d Delimiter) NextNot(pred func(byte) bool) Delimiter {
	d.nextNot = pred

	return d
}

// Parser converts the delimiter into a parser returning the matched
// delimiter string.
func (d Delimiter) Parser() Parser[string] {
	return New(func(ctx Context) Result[string] {
		if ctx.Remaining() < len(d.delim) ||
			ctx.Source()[ctx.Offset():ctx.Offset()+len(d.delim)] != d.delim {
			return Fail[string](ctx, func() string {
				return "expected delimiter " + quote(d.delim)
			})
		}
		if d.prevNot != nil {
			if prev, ok := ctx.CharAt(-1); ok && d.prevNot(prev) {
				return Fail[string](ctx, func() string {
					return "delimiter " + quote(d.delim) +
						" not allowed after preceding character"
				})
			}
		}
		if d.nextNot != nil {
			if next, ok := ctx.CharAt(len(d.delim)); ok && d.nextNot(next) {
				return Fail[string](ctx, func() string {
					return "delimiter " + quote(d.delim) +
						" not allowed before following character"
				})
			}
		}

		return Success(d.delim, ctx.Consume(len(d.delim)))
	})
}

// DelimitedText matches text up to a closing delimiter, with
// modifiers controlling edge behavior.
type DelimitedText struct {
	end       string
	failOn    CharSet
	hasFailOn bool
	acceptEOF bool
	nonEmpty  bool
	keepDelim bool
}

// DelimitedBy creates a matcher for text terminated by end. By
// default the delimiter is consumed but not returned, empty content
// is accepted, and running into the end of input is a failure.
func DelimitedBy(end string) DelimitedText {
	return DelimitedText{end: end}
}

// FailOn aborts the match when any of the given bytes appears before
// the closing delimiter.
func (d DelimitedText) FailOn(chars ...byte) DelimitedText {
	d.failOn = NewCharSet(chars...)
	d.hasFailOn = true

	return d
}

// AcceptEOF treats the end of input like a closing delimiter.
func (d DelimitedText) AcceptEOF() DelimitedText {
	d.acceptEOF = true

	return d
}

// NonEmpty requires at least one byte of content before the
// delimiter.
func (d DelimitedText) NonEmpty() DelimitedText {
	d.nonEmpty = true

	return d
}

// KeepDelimiter leaves the closing delimiter unconsumed.
func (d DelimitedText) KeepDelimiter() DelimitedText {
	d.keepDelim = true

	return d
}

// Parser converts the matcher into a parser returning the enclosed
// text without the delimiter.
func (d DelimitedText) Parser() Parser[string] {
	return New(func(ctx Context) Result[string] {
		src := ctx.Source()
		pos := ctx.Offset()
		for pos < len(src) {
			if d.hasFailOn && d.failOn.Contains(src[pos]) {
				return Fail[string](ctx.Consume(pos-ctx.Offset()), func() string {
					return "illegal character before delimiter " +
						quote(d.end)
				})
			}
			if len(d.end) > 0 && pos+len(d.end) <= len(src) &&
				src[pos:pos+len(d.end)] == d.end {
				text := src[ctx.Offset():pos]
				if d.nonEmpty && len(text) == 0 {
					return Fail[string](ctx, Fixed("expected non-empty text"))
				}
				consumed := pos - ctx.Offset()
				if !d.keepDelim {
					consumed += len(d.end)
				}

				return Success(text, ctx.Consume(consumed))
			}
			pos++
		}
		if d.acceptEOF {
			text := src[ctx.Offset():]
			if d.nonEmpty && len(text) == 0 {
				return Fail[string](ctx, Fixed("expected non-empty text"))
			}

			return Success(text, ctx.Consume(len(text)))
		}

		return Fail[string](ctx, func() string {
			return "unclosed delimiter, expected " + quote(d.end)
		})
	})
}
