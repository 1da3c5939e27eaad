package markup

import (
	"strings"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/hocon"
	"github.com/connerohnesorge/weft/parse"
	"github.com/connerohnesorge/weft/rewrite"
	"github.com/connerohnesorge/weft/vpath"
)

// maxNestLevel bounds recursive block parsing; deeper nesting turns
// into an invalid block instead of unbounded recursion.
const maxNestLevel = 64

// Engine is the assembled two-phase parser for one markup flavor plus
// its extensions. Engines are immutable after construction and safe
// to share.
type Engine struct {
	bundles       []ExtensionBundle
	strict        bool
	hooks         RootHooks
	rules         []rewrite.RuleBuilder
	blockTable    [256][]parse.Parser[ast.Block]
	blockFallback []parse.Parser[ast.Block]
	spanTable     [256][]parse.Parser[ast.Span]
	spanFallback  []parse.Parser[ast.Span]
	templateTable [256][]parse.Parser[ast.TemplateSpan]
}

// New assembles an engine from the host language bundle and any
// number of extension bundles. Extension parsers take precedence over
// the host's unless they declare low precedence.
func New(host ExtensionBundle, extensions ...ExtensionBundle) *Engine {
	return assemble(host, extensions, false)
}

// NewStrict assembles an engine in strict mode: bundles not marked
// for strict use are dropped, and any invalid node escalates to an
// error from ParseDocument.
func NewStrict(host ExtensionBundle, extensions ...ExtensionBundle) *Engine {
	kept := make([]ExtensionBundle, 0, len(extensions))
	for _, b := range extensions {
		if b.UseInStrict {
			kept = append(kept, b)
		}
	}

	return assemble(host, kept, true)
}

func assemble(
	host ExtensionBundle,
	extensions []ExtensionBundle,
	strict bool,
) *Engine {
	e := &Engine{strict: strict}
	e.bundles = append([]ExtensionBundle{}, extensions...)
	e.bundles = append(e.bundles, host)

	all := append(append([]ExtensionBundle{}, extensions...), host)
	for _, b := range all {
		e.hooks = mergeHooks(e.hooks, b.RootHooks)
		e.rules = append(e.rules, b.RewriteRules...)
	}

	rec := &RecursiveParsers{engine: e}

	// Precedence classes: extension parsers, host parsers, then the
	// low-precedence declarations in the same relative order.
	ext := MergeBundles(extensions...)
	for _, class := range []struct {
		builders []BlockParserBuilder
		low      bool
	}{
		{ext.BlockParsers, false},
		{host.BlockParsers, false},
		{ext.BlockParsers, true},
		{host.BlockParsers, true},
	} {
		for _, builder := range class.builders {
			if builder.LowPrecedence != class.low {
				continue
			}
			p := builder.Build(rec)
			if builder.StartChars.IsEmpty() {
				e.blockFallback = append(e.blockFallback, p)

				continue
			}
			for _, c := range builder.StartChars.Members() {
				e.blockTable[c] = append(e.blockTable[c], p)
			}
		}
	}

	for _, builders := range [][]TemplateParserBuilder{
		ext.TemplateParsers,
		host.TemplateParsers,
	} {
		for _, builder := range builders {
			p := builder.Build(rec)
			for _, c := range p.StartChars.Members() {
				e.templateTable[c] = append(e.templateTable[c], p.Parser)
			}
		}
	}
	ref := ContextReferenceParser()
	for _, c := range ref.StartChars.Members() {
		e.templateTable[c] = append(e.templateTable[c], ref.Parser)
	}

	for _, class := range []struct {
		builders []SpanParserBuilder
		low      bool
	}{
		{ext.SpanParsers, false},
		{host.SpanParsers, false},
		{ext.SpanParsers, true},
		{host.SpanParsers, true},
	} {
		for _, builder := range class.builders {
			if builder.LowPrecedence != class.low {
				continue
			}
			p := builder.Build(rec)
			if p.StartChars.IsEmpty() {
				e.spanFallback = append(e.spanFallback, p.Parser)

				continue
			}
			for _, c := range p.StartChars.Members() {
				e.spanTable[c] = append(e.spanTable[c], p.Parser)
			}
		}
	}

	return e
}

// RewriteRules returns the rule builders contributed by all bundles,
// for wiring into a rewrite.Rewriter.
func (e *Engine) RewriteRules() []rewrite.RuleBuilder {
	return append([]rewrite.RuleBuilder{}, e.rules...)
}

// NormalizeInput converts all line endings to a single newline.
func NormalizeInput(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")

	return strings.ReplaceAll(input, "\r", "\n")
}

// InvalidDocumentError is returned in strict mode when a document
// contains invalid nodes.
type InvalidDocumentError struct {
	Path     vpath.Path
	Messages []string
}

func (e *InvalidDocumentError) Error() string {
	return "document " + e.Path.String() +
		" contains invalid elements: " +
		strings.Join(e.Messages, "; ")
}

// ParseDocument parses one document: line ending normalization, input
// hooks, config header extraction, the block pass, the span pass and
// the post-processing hooks.
func (e *Engine) ParseDocument(
	input string,
	path vpath.Path,
) (*ast.Document, error) {
	normalized := NormalizeInput(input)
	if pre := e.hooks.PreProcessInput; pre != nil {
		normalized = pre(normalized)
	}

	header, body := extractConfigHeader(normalized)
	cfg := config.Empty()
	if header != "" {
		unresolved, err := hocon.Parse(header)
		if err != nil {
			return nil, err
		}
		origin := config.NewOrigin(config.DocumentScope, path)
		cfg, err = unresolved.Resolve(nil, origin)
		if err != nil {
			return nil, err
		}
	}

	blocks := e.parseBlocks(parse.NewContextAt(body, path))
	blocks = e.spanPassBlocks(blocks)
	if post := e.hooks.PostProcessBlocks; post != nil {
		blocks = post(blocks)
	}

	doc := &ast.Document{
		Path:      path,
		Content:   ast.RootElement{Content: blocks},
		Fragments: make(map[string]ast.Element),
		Config:    cfg,
	}
	extractFragments(doc)
	if post := e.hooks.PostProcessDocument; post != nil {
		doc = post(doc)
	}

	if e.strict {
		if err := escalateInvalid(doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// ParseTemplate parses a template document: literal text, ${...}
// context references and template directives contributed by bundles.
func (e *Engine) ParseTemplate(
	input string,
	path vpath.Path,
) (*ast.TemplateDocument, error) {
	normalized := NormalizeInput(input)
	root := e.parseTemplateRoot(normalized)

	return &ast.TemplateDocument{
		Path:   path,
		Root:   root,
		Config: config.Empty(),
	}, nil
}

// parseBlocks is the block pass: it repeatedly skips blank lines,
// consults the prefix dispatch table and tries candidate parsers in
// declared order; the first success wins. Positions where no parser
// matches fall back to the built-in paragraph parser.
func (e *Engine) parseBlocks(ctx parse.Context) []ast.Block {
	if ctx.NestLevel() >= maxNestLevel {
		return []ast.Block{ast.InvalidBlock{
			Message: "exceeded maximum nesting depth",
			Source:  ctx.Input(),
			At:      ctx.Fragment(),
		}}
	}

	var blocks []ast.Block
	for {
		for {
			r := parse.BlankLine().Parse(ctx)
			if !r.IsSuccess() || r.Next().Offset() == ctx.Offset() {
				break
			}
			ctx = r.Next()
		}
		if ctx.AtEnd() {
			return blocks
		}

		block, next, ok := e.tryBlockParsers(ctx)
		if !ok {
			block, next = e.parseParagraph(ctx)
		}
		blocks = append(blocks, block)
		ctx = next
	}
}

func (e *Engine) tryBlockParsers(
	ctx parse.Context,
) (ast.Block, parse.Context, bool) {
	for _, p := range e.blockTable[ctx.Char()] {
		if r := p.Parse(ctx); r.IsSuccess() &&
			r.Next().Offset() > ctx.Offset() {
			return r.Value(), r.Next(), true
		}
	}
	for _, p := range e.blockFallback {
		if r := p.Parse(ctx); r.IsSuccess() &&
			r.Next().Offset() > ctx.Offset() {
			return r.Value(), r.Next(), true
		}
	}

	return nil, ctx, false
}

// parseParagraph is the built-in fallback: consecutive non-blank
// lines form a paragraph whose text is parsed in the span pass.
func (e *Engine) parseParagraph(
	ctx parse.Context,
) (ast.Block, parse.Context) {
	var lines []string
	current := ctx
	for !current.AtEnd() {
		if parse.BlankLine().Parse(current).IsSuccess() {
			break
		}
		r := parse.RestOfLine().Parse(current)
		lines = append(lines, r.Value())
		current = r.Next()
	}

	return ast.Paragraph{
		Content: []ast.Span{Unparsed(strings.Join(lines, "\n"))},
	}, current
}

// parseBlockSource runs the block pass over nested source text.
func (e *Engine) parseBlockSource(source string, nest int) []ast.Block {
	ctx := parse.NewContext(source)
	for i := 0; i < nest; i++ {
		ctx = ctx.Nest()
	}

	return e.spanPassBlocks(e.parseBlocks(ctx))
}

// parseSpanSource runs the span pass over raw inline text.
func (e *Engine) parseSpanSource(source string) []ast.Span {
	ctx := parse.NewContext(source)
	var spans []ast.Span
	textStart := 0

	flush := func(until int) {
		if until > textStart {
			spans = append(spans, ast.Text{
				Content: source[textStart:until],
			})
		}
	}

	for !ctx.AtEnd() {
		span, next, ok := e.trySpanParsers(ctx)
		if !ok {
			ctx = ctx.Consume(1)

			continue
		}
		flush(ctx.Offset())
		spans = append(spans, span)
		ctx = next
		textStart = ctx.Offset()
	}
	flush(len(source))

	return spans
}

// trySpanParsers consults the start-character dispatch table: of the
// prefixed parsers, only those whose start set contains the current
// character run; the fallback parsers without a start set run after
// them at every position.
func (e *Engine) trySpanParsers(
	ctx parse.Context,
) (ast.Span, parse.Context, bool) {
	for _, p := range e.spanTable[ctx.Char()] {
		if r := p.Parse(ctx); r.IsSuccess() &&
			r.Next().Offset() > ctx.Offset() {
			return r.Value(), r.Next(), true
		}
	}
	for _, p := range e.spanFallback {
		if r := p.Parse(ctx); r.IsSuccess() &&
			r.Next().Offset() > ctx.Offset() {
			return r.Value(), r.Next(), true
		}
	}

	return nil, ctx, false
}

// spanPassBlocks replaces every Unparsed placeholder in a block
// sequence with parsed inline content.
func (e *Engine) spanPassBlocks(blocks []ast.Block) []ast.Block {
	out := make([]ast.Block, len(blocks))
	for i, b := range blocks {
		out[i] = e.spanPassBlock(b)
	}

	return out
}

func (e *Engine) spanPassBlock(block ast.Block) ast.Block {
	switch n := block.(type) {
	case ast.Paragraph:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.Header:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.BlockSequence:
		n.Content = e.spanPassBlocks(n.Content)

		return n
	case ast.QuotedBlock:
		n.Content = e.spanPassBlocks(n.Content)
		n.Attribution = e.spanPassSpans(n.Attribution)

		return n
	case ast.ListBlock:
		items := make([]ast.ListItem, len(n.Items))
		for i, item := range n.Items {
			item.Content = e.spanPassBlocks(item.Content)
			items[i] = item
		}
		n.Items = items

		return n
	case ast.Section:
		header := e.spanPassBlock(n.Header)
		if h, ok := header.(ast.Header); ok {
			n.Header = h
		}
		n.Content = e.spanPassBlocks(n.Content)

		return n
	default:
		return block
	}
}

func (e *Engine) spanPassSpans(spans []ast.Span) []ast.Span {
	out := make([]ast.Span, 0, len(spans))
	for _, s := range spans {
		if raw, ok := unparsedText(s); ok {
			out = append(out, e.parseSpanSource(raw)...)

			continue
		}
		out = append(out, e.spanPassSpan(s))
	}

	return out
}

func (e *Engine) spanPassSpan(span ast.Span) ast.Span {
	switch n := span.(type) {
	case ast.Emphasized:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.Strong:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.SpanSequence:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.SpanLink:
		n.Content = e.spanPassSpans(n.Content)

		return n
	case ast.LinkIDReference:
		n.Content = e.spanPassSpans(n.Content)

		return n
	default:
		return span
	}
}

// extractFragments moves fragment blocks into the document's fragment
// map. Fragments are contributed as extension blocks by the directive
// support bundle.
func extractFragments(doc *ast.Document) {
	kept := make([]ast.Block, 0, len(doc.Content.Content))
	for _, b := range doc.Content.Content {
		if ext, ok := b.(ast.ExtensionBlock); ok &&
			ext.Name == FragmentBlockName {
			if f, ok := ext.Payload.(Fragment); ok {
				doc.Fragments[f.Name] = f.Content

				continue
			}
		}
		kept = append(kept, b)
	}
	doc.Content = ast.RootElement{Content: kept}
}

// FragmentBlockName tags extension blocks holding document fragments.
const FragmentBlockName = "markup.fragment"

// Fragment is the payload of a fragment extension block: named
// content stored outside the main document flow.
type Fragment struct {
	Name    string
	Content ast.Block
}

func escalateInvalid(doc *ast.Document) error {
	invalid := ast.InvalidElements(doc.Content)
	if len(invalid) == 0 {
		return nil
	}
	messages := make([]string, 0, len(invalid))
	for _, e := range invalid {
		switch n := e.(type) {
		case ast.InvalidBlock:
			messages = append(messages, n.Message)
		case ast.InvalidSpan:
			messages = append(messages, n.Message)
		}
	}

	return &InvalidDocumentError{Path: doc.Path, Messages: messages}
}

// extractConfigHeader splits a leading {% ... %} configuration header
// from the document body.
func extractConfigHeader(input string) (header, body string) {
	trimmed := strings.TrimLeft(input, " \t\n")
	if !strings.HasPrefix(trimmed, "{%") {
		return "", input
	}
	offset := len(input) - len(trimmed)
	end := strings.Index(trimmed, "%}")
	if end < 0 {
		return "", input
	}
	header = trimmed[2:end]
	body = input[:offset] + trimmed[end+2:]

	return header, body
}
