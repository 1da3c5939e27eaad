package parse

import "strings"

// BlockSource is the text of a sliced block together with the
// indentation that was stripped from it. Nested parsers re-parse the
// dedented text.
type BlockSource struct {
	Lines  []string
	Indent int
}

// String joins the block's lines back into a single text.
func (b BlockSource) String() string {
	return strings.Join(b.Lines, "\n")
}

// IsEmpty reports whether the block contains no lines.
func (b BlockSource) IsEmpty() bool {
	return len(b.Lines) == 0
}

// Block slices consecutive lines into a block. The first line must
// match firstLinePrefix, every following line must match linePrefix;
// the matched prefix is stripped from each line. Slicing stops at a
// blank line unless nextBlockPrefix is given and matches the line
// following the blank, in which case the blank line is included and
// slicing continues.
func Block(
	firstLinePrefix Parser[string],
	linePrefix Parser[string],
	nextBlockPrefix *Parser[string],
) Parser[BlockSource] {
	return New(func(ctx Context) Result[BlockSource] {
		first := KeepRight(firstLinePrefix, RestOfLine()).Parse(ctx)
		if !first.IsSuccess() {
			return FailWith[BlockSource](first.Failure())
		}
		lines := []string{first.Value()}
		current := first.Next()

		for !current.AtEnd() {
			if blank := BlankLine().Parse(current); blank.IsSuccess() {
				if nextBlockPrefix == nil {
					break
				}
				after := Lookahead(*nextBlockPrefix).Parse(blank.Next())
				if !after.IsSuccess() {
					break
				}
				lines = append(lines, "")
				current = blank.Next()

				continue
			}
			line := KeepRight(linePrefix, RestOfLine()).Parse(current)
			if !line.IsSuccess() {
				break
			}
			lines = append(lines, line.Value())
			current = line.Next()
		}

		return Success(BlockSource{Lines: lines}, current)
	})
}

// IndentedBlockSpec configures IndentedBlock slicing.
type IndentedBlockSpec struct {
	// MinIndent is the smallest indentation in spaces a continuation
	// line must carry. Defaults to one.
	MinIndent int

	// MaxIndent caps how much indentation is stripped; deeper
	// indentation is preserved in the dedented text. Zero means no
	// cap.
	MaxIndent int

	// EndsOnBlankLine stops slicing at the first blank line instead
	// of allowing blank lines between indented lines.
	EndsOnBlankLine bool

	// FirstLineIndented requires the first line to be indented too;
	// otherwise the first line starts at the current offset and only
	// continuation lines must be indented.
	FirstLineIndented bool
}

// IndentedBlock slices consecutive lines by indentation, producing
// the dedented text and the detected minimum indentation.
func IndentedBlock(spec IndentedBlockSpec) Parser[BlockSource] {
	minIndent := spec.MinIndent
	if minIndent < 1 {
		minIndent = 1
	}

	return New(func(ctx Context) Result[BlockSource] {
		type rawLine struct {
			text   string
			indent int // -1 for blank lines
		}

		var raw []rawLine
		current := ctx
		firstLine := true
		for !current.AtEnd() {
			if blank := BlankLine().Parse(current); blank.IsSuccess() {
				if firstLine || spec.EndsOnBlankLine {
					break
				}
				// A blank line only belongs to the block when another
				// sufficiently indented line follows.
				probe := blank.Next()
				indent := countIndent(probe, spec.MaxIndent)
				if indent < minIndent {
					break
				}
				raw = append(raw, rawLine{indent: -1})
				current = blank.Next()

				continue
			}

			indent := countIndent(current, spec.MaxIndent)
			if firstLine && !spec.FirstLineIndented {
				line := RestOfLine().Parse(current)
				raw = append(raw, rawLine{text: line.Value(), indent: 0})
				current = line.Next()
				firstLine = false

				continue
			}
			if indent < minIndent {
				break
			}
			line := RestOfLine().Parse(current.Consume(indent))
			raw = append(raw, rawLine{text: line.Value(), indent: indent})
			current = line.Next()
			firstLine = false
		}

		if len(raw) == 0 {
			return Fail[BlockSource](ctx, Fixed("expected indented block"))
		}

		// Detected indentation is the minimum over indented lines.
		detected := 0
		for _, l := range raw {
			if l.indent <= 0 {
				continue
			}
			if detected == 0 || l.indent < detected {
				detected = l.indent
			}
		}

		lines := make([]string, 0, len(raw))
		for _, l := range raw {
			if l.indent < 0 {
				lines = append(lines, "")

				continue
			}
			extra := l.indent - detected
			if l.indent == 0 || extra < 0 {
				extra = 0
			}
			lines = append(lines, strings.Repeat(" ", extra)+l.text)
		}

		return Success(
			BlockSource{Lines: lines, Indent: detected},
			current,
		)
	})
}

// countIndent counts leading spaces at the context position, treating
// a tab as a single space column. A maxIndent of zero means no cap.
func countIndent(ctx Context, maxIndent int) int {
	src := ctx.Source()
	count := 0
	for i := ctx.Offset(); i < len(src); i++ {
		if src[i] != ' ' && src[i] != '\t' {
			break
		}
		count++
		if maxIndent > 0 && count == maxIndent {
			break
		}
	}

	return count
}
