package markup

import (
	"strings"

	"github.com/connerohnesorge/weft/parse"
)

// Inline delimiter boundary rules. A delimiter may start a construct
// only when preceded by the beginning of input, whitespace or opening
// punctuation, and not immediately followed by whitespace; it may end
// a construct only when not preceded by whitespace and followed by
// the end of input, whitespace or closing punctuation. Paired
// characters (parentheses, quotation marks) participate in the
// preceding-character rule.

// openingPreChars are the characters that may legally precede an
// opening delimiter.
const openingPreChars = " \t\n-([{<'\""

// closingPostChars are the characters that may legally follow a
// closing delimiter.
const closingPostChars = " \t\n-.,:;!?'\")]}>"

// isValidPre reports whether c may precede an opening delimiter.
func isValidPre(c byte) bool {
	return strings.IndexByte(openingPreChars, c) >= 0
}

// isValidPost reports whether c may follow a closing delimiter.
func isValidPost(c byte) bool {
	return strings.IndexByte(closingPostChars, c) >= 0
}

// OpeningDelimiter matches delim in a position where an inline
// construct may start. At the beginning of input the preceding-
// character rule passes.
func OpeningDelimiter(delim string) parse.Parser[string] {
	return parse.Delim(delim).
		PrevNot(func(c byte) bool { return !isValidPre(c) }).
		NextNot(parse.IsSpace).
		Parser()
}

// ClosingDelimiter matches delim in a position where an inline
// construct may end. At the end of input the following-character rule
// passes.
func ClosingDelimiter(delim string) parse.Parser[string] {
	return parse.Delim(delim).
		PrevNot(parse.IsSpace).
		NextNot(func(c byte) bool { return !isValidPost(c) }).
		Parser()
}

// SpanEnclosure builds a parser for text enclosed in delim on both
// sides, obeying the boundary rules. The enclosed text must not be
// empty and must not span a line break.
func SpanEnclosure(delim string) parse.Parser[string] {
	open := OpeningDelimiter(delim)
	body := parse.New(func(ctx parse.Context) parse.Result[string] {
		src := ctx.Source()
		for pos := ctx.Offset(); pos < len(src); pos++ {
			if src[pos] == '\n' {
				break
			}
			if !strings.HasPrefix(src[pos:], delim) || pos == ctx.Offset() {
				continue
			}
			end := ClosingDelimiter(delim).
				Parse(ctx.Consume(pos - ctx.Offset()))
			if !end.IsSuccess() {
				continue
			}

			return parse.Success(
				src[ctx.Offset():pos],
				end.Next(),
			)
		}

		return parse.Fail[string](ctx, func() string {
			return "unclosed inline delimiter '" + delim + "'"
		})
	})

	return parse.KeepRight(open, body)
}
