// Package markup provides the two-phase markup engine: a block pass
// slicing the input into block elements and a span pass re-parsing
// the text inside blocks into inline elements. Both phases are
// extensible through bundles; dispatch in the inline hot path is
// driven by start-character tables.
package markup

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/rewrite"
)

// RecursiveParsers is the handle passed to recursive parsers. It
// closes over the full parser set of the engine, so user extensions
// compose with the host language and with each other.
type RecursiveParsers struct {
	engine *Engine
	nest   int
}

// ParseBlocks parses child content as blocks.
func (r *RecursiveParsers) ParseBlocks(source string) []ast.Block {
	return r.engine.parseBlockSource(source, r.nest+1)
}

// ParseSpans parses child content as inline spans.
func (r *RecursiveParsers) ParseSpans(source string) []ast.Span {
	return r.engine.parseSpanSource(source)
}

// BlockParserBuilder contributes one block parser to the engine.
type BlockParserBuilder struct {
	// StartChars drives the block dispatch table. A builder without
	// start characters joins the low-precedence fallback list tried
	// at every position.
	StartChars parse.CharSet

	// LowPrecedence moves the parser behind the host language's
	// parsers; by default extensions win over the host.
	LowPrecedence bool

	// Build receives the recursive parser handle and produces the
	// parser. It is invoked once when the engine assembles its root
	// parser.
	Build func(rec *RecursiveParsers) parse.Parser[ast.Block]
}

// SpanParserBuilder contributes one span parser to the engine.
type SpanParserBuilder struct {
	// LowPrecedence moves the parser behind the host language's
	// parsers for the same start characters.
	LowPrecedence bool

	// Build receives the recursive parser handle and produces the
	// prefixed parser used in the span dispatch table.
	Build func(rec *RecursiveParsers) parse.Prefixed[ast.Span]
}

// TemplateParserBuilder contributes one parser for template syntax
// beyond literal text and ${...} context references, such as template
// directives.
type TemplateParserBuilder struct {
	// Build receives the recursive parser handle and produces the
	// prefixed parser used in the template dispatch table.
	Build func(rec *RecursiveParsers) parse.Prefixed[ast.TemplateSpan]
}

// RootHooks are the input/output hooks of a bundle.
type RootHooks struct {
	// PreProcessInput runs over the raw input before block parsing,
	// after line ending normalization.
	PreProcessInput func(string) string

	// PostProcessBlocks runs over the parsed block sequence before
	// the document is assembled. Hooks implement features like
	// section building and literal-block marker propagation.
	PostProcessBlocks func([]ast.Block) []ast.Block

	// PostProcessDocument runs over the assembled document.
	PostProcessDocument func(*ast.Document) *ast.Document
}

// ExtensionBundle is the registration surface for syntax extensions:
// block parsers, span parsers, rewrite rules and processing hooks.
// Bundles compose by concatenation; declaration order breaks ties
// within the same precedence class.
type ExtensionBundle struct {
	Description     string
	BlockParsers    []BlockParserBuilder
	SpanParsers     []SpanParserBuilder
	TemplateParsers []TemplateParserBuilder
	RewriteRules    []rewrite.RuleBuilder
	RootHooks       RootHooks

	// UseInStrict keeps the bundle active in strict mode.
	UseInStrict bool
}

// MergeBundles concatenates bundles in declaration order.
func MergeBundles(bundles ...ExtensionBundle) ExtensionBundle {
	var merged ExtensionBundle
	merged.UseInStrict = true
	for _, b := range bundles {
		if b.Description != "" {
			if merged.Description != "" {
				merged.Description += " + "
			}
			merged.Description += b.Description
		}
		merged.BlockParsers = append(merged.BlockParsers, b.BlockParsers...)
		merged.SpanParsers = append(merged.SpanParsers, b.SpanParsers...)
		merged.TemplateParsers = append(
			merged.TemplateParsers, b.TemplateParsers...)
		merged.RewriteRules = append(merged.RewriteRules, b.RewriteRules...)
		merged.RootHooks = mergeHooks(merged.RootHooks, b.RootHooks)
		if !b.UseInStrict {
			merged.UseInStrict = false
		}
	}

	return merged
}

func mergeHooks(a, b RootHooks) RootHooks {
	return RootHooks{
		PreProcessInput:     composeString(a.PreProcessInput, b.PreProcessInput),
		PostProcessBlocks:   composeBlocks(a.PostProcessBlocks, b.PostProcessBlocks),
		PostProcessDocument: composeDoc(a.PostProcessDocument, b.PostProcessDocument),
	}
}

func composeString(a, b func(string) string) func(string) string {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(s string) string { return b(a(s)) }
	}
}

func composeBlocks(
	a, b func([]ast.Block) []ast.Block,
) func([]ast.Block) []ast.Block {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(blocks []ast.Block) []ast.Block { return b(a(blocks)) }
	}
}

func composeDoc(
	a, b func(*ast.Document) *ast.Document,
) func(*ast.Document) *ast.Document {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return func(d *ast.Document) *ast.Document { return b(a(d)) }
	}
}

// unparsedSpanName tags the extension span carrying raw inline text
// between the block and span passes.
const unparsedSpanName = "markup.unparsed"

// Unparsed wraps raw inline text produced by a block parser; the span
// pass replaces it with parsed inline content.
func Unparsed(text string) ast.Span {
	return ast.ExtensionSpan{Name: unparsedSpanName, Payload: text}
}

// unparsedText extracts the raw text of an Unparsed span.
func unparsedText(s ast.Span) (string, bool) {
	ext, ok := s.(ast.ExtensionSpan)
	if !ok || ext.Name != unparsedSpanName {
		return "", false
	}
	text, ok := ext.Payload.(string)

	return text, ok
}
