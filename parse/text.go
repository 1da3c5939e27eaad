package parse

// Literal matches the exact string s and returns it.
func Literal(s string) Parser[string] {
	return New(func(ctx Context) Result[string] {
		if ctx.Remaining() < len(s) ||
			ctx.Source()[ctx.Offset():ctx.Offset()+len(s)] != s {
			return Fail[string](ctx, func() string {
				return "expected " + quote(s)
			})
		}

		return Success(s, ctx.Consume(len(s)))
	})
}

// OneIf matches a single byte satisfying pred.
func OneIf(pred func(byte) bool) Parser[byte] {
	return New(func(ctx Context) Result[byte] {
		if ctx.AtEnd() || !pred(ctx.Char()) {
			return Fail[byte](ctx, Fixed("unexpected character"))
		}

		return Success(ctx.Char(), ctx.Consume(1))
	})
}

// OneOf matches a single byte that is a member of the given set.
func OneOf(chars ...byte) Parser[byte] {
	set := NewCharSet(chars...)

	return OneIf(set.Contains)
}

// OneNot matches a single byte that is not a member of the given set.
func OneNot(chars ...byte) Parser[byte] {
	set := NewCharSet(chars...)

	return OneIf(func(c byte) bool { return !set.Contains(c) })
}

// CharRange matches a single byte in the inclusive range lo..hi.
func CharRange(lo, hi byte) Parser[byte] {
	return OneIf(func(c byte) bool { return c >= lo && c <= hi })
}

// charsWhile consumes consecutive bytes satisfying pred, with
// inclusive length bounds. A max of zero means unbounded.
func charsWhile(pred func(byte) bool, min, max int) Parser[string] {
	return New(func(ctx Context) Result[string] {
		src := ctx.Source()
		start := ctx.Offset()
		end := start
		for end < len(src) && pred(src[end]) {
			if max > 0 && end-start == max {
				break
			}
			end++
		}
		if end-start < min {
			return Fail[string](ctx, func() string {
				return "expected at least " + itoa(min) +
					" matching characters"
			})
		}

		return Success(src[start:end], ctx.Consume(end-start))
	})
}

// AnyWhile consumes zero or more bytes satisfying pred. Never fails.
func AnyWhile(pred func(byte) bool) Parser[string] {
	return charsWhile(pred, 0, 0)
}

// SomeWhile consumes one or more bytes satisfying pred.
func SomeWhile(pred func(byte) bool) Parser[string] {
	return charsWhile(pred, 1, 0)
}

// AnyOf consumes zero or more bytes from the given set. Never fails.
func AnyOf(chars ...byte) Parser[string] {
	set := NewCharSet(chars...)

	return charsWhile(set.Contains, 0, 0)
}

// SomeOf consumes one or more bytes from the given set.
func SomeOf(chars ...byte) Parser[string] {
	set := NewCharSet(chars...)

	return charsWhile(set.Contains, 1, 0)
}

// AnyNot consumes zero or more bytes outside the given set. Never
// fails.
func AnyNot(chars ...byte) Parser[string] {
	set := NewCharSet(chars...)

	return charsWhile(func(c byte) bool { return !set.Contains(c) }, 0, 0)
}

// SomeNot consumes one or more bytes outside the given set.
func SomeNot(chars ...byte) Parser[string] {
	set := NewCharSet(chars...)

	return charsWhile(func(c byte) bool { return !set.Contains(c) }, 1, 0)
}

// CharsBetween consumes bytes satisfying pred with explicit inclusive
// length bounds; max zero means unbounded.
func CharsBetween(pred func(byte) bool, min, max int) Parser[string] {
	return charsWhile(pred, min, max)
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool { return c >= '0' && c <= '9' }

// IsAlpha reports whether c is an ASCII letter.
func IsAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsAlphaNum reports whether c is an ASCII letter or digit.
func IsAlphaNum(c byte) bool { return IsAlpha(c) || IsDigit(c) }

// IsHex reports whether c is an ASCII hexadecimal digit.
func IsHex(c byte) bool {
	return IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IsSpace reports whether c is horizontal whitespace.
func IsSpace(c byte) bool { return c == ' ' || c == '\t' }

// Digit matches a single decimal digit.
func Digit() Parser[byte] { return OneIf(IsDigit) }

// Digits matches one or more decimal digits.
func Digits() Parser[string] { return SomeWhile(IsDigit) }

// Alpha matches one or more ASCII letters.
func Alpha() Parser[string] { return SomeWhile(IsAlpha) }

// AlphaNum matches one or more ASCII letters or digits.
func AlphaNum() Parser[string] { return SomeWhile(IsAlphaNum) }

// Hex matches one or more hexadecimal digits.
func Hex() Parser[string] { return SomeWhile(IsHex) }

// WS consumes zero or more horizontal whitespace characters. Never
// fails.
func WS() Parser[string] { return AnyOf(' ', '\t') }

// SomeWS consumes one or more horizontal whitespace characters.
func SomeWS() Parser[string] { return SomeOf(' ', '\t') }

// EOF succeeds only at the end of input.
func EOF() Parser[struct{}] {
	return New(func(ctx Context) Result[struct{}] {
		if !ctx.AtEnd() {
			return Fail[struct{}](ctx, Fixed("expected end of input"))
		}

		return Success(struct{}{}, ctx)
	})
}

// EOL matches a newline, consuming it, or succeeds without consuming
// at the end of input.
func EOL() Parser[struct{}] {
	return New(func(ctx Context) Result[struct{}] {
		if ctx.AtEnd() {
			return Success(struct{}{}, ctx)
		}
		if ctx.Char() == '\n' {
			return Success(struct{}{}, ctx.Consume(1))
		}

		return Fail[struct{}](ctx, Fixed("expected end of line"))
	})
}

// BlankLine matches a line containing only horizontal whitespace,
// consuming it including its newline. It fails when the line carries
// any other content.
func BlankLine() Parser[string] {
	return New(func(ctx Context) Result[string] {
		src := ctx.Source()
		end := ctx.Offset()
		for end < len(src) && IsSpace(src[end]) {
			end++
		}
		if end < len(src) && src[end] != '\n' {
			return Fail[string](ctx, Fixed("expected blank line"))
		}
		if end < len(src) {
			end++ // consume the newline
		} else if end == ctx.Offset() {
			return Fail[string](ctx, Fixed("expected blank line"))
		}

		return Success(src[ctx.Offset():end], ctx.Consume(end-ctx.Offset()))
	})
}

// RestOfLine consumes the remainder of the current line including its
// newline, returning the text without the newline. Never fails.
func RestOfLine() Parser[string] {
	return New(func(ctx Context) Result[string] {
		src := ctx.Source()
		end := ctx.Offset()
		for end < len(src) && src[end] != '\n' {
			end++
		}
		text := src[ctx.Offset():end]
		if end < len(src) {
			end++
		}

		return Success(text, ctx.Consume(end-ctx.Offset()))
	})
}

func quote(s string) string {
	return "'" + s + "'"
}
