package directive

import (
	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/markup"
	"github.com/connerohnesorge/weft/parse"
)

// Registry collects directive declarations and converts them into an
// extension bundle for the markup engine.
type Registry struct {
	blocks     map[string]*BlockDirective
	spans      map[string]*SpanDirective
	templates  map[string]*TemplateDirective
	links      map[string]*LinkDirective
	separators map[string]bool
}

// NewRegistry creates an empty directive registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks:     make(map[string]*BlockDirective),
		spans:      make(map[string]*SpanDirective),
		templates:  make(map[string]*TemplateDirective),
		links:      make(map[string]*LinkDirective),
		separators: make(map[string]bool),
	}
}

// AddBlock registers a block directive.
func (r *Registry) AddBlock(d *BlockDirective) *Registry {
	r.blocks[d.Name] = d
	r.collectSeparators(d.Parts)

	return r
}

// AddSpan registers a span directive.
func (r *Registry) AddSpan(d *SpanDirective) *Registry {
	r.spans[d.Name] = d
	r.collectSeparators(d.Parts)

	return r
}

// AddTemplate registers a template directive.
func (r *Registry) AddTemplate(d *TemplateDirective) *Registry {
	r.templates[d.Name] = d
	r.collectSeparators(d.Parts)

	return r
}

// AddLink registers a link directive.
func (r *Registry) AddLink(d *LinkDirective) *Registry {
	r.links[d.Name] = d

	return r
}

func (r *Registry) collectSeparators(parts []Part) {
	for _, sep := range separatorsOf(parts) {
		r.separators[sep.Name] = true
	}
}

// Bundle converts the registry into an extension bundle contributing
// the directive invocation parsers for block, span and template
// positions.
func (r *Registry) Bundle() markup.ExtensionBundle {
	return markup.ExtensionBundle{
		Description: "directive support",
		BlockParsers: []markup.BlockParserBuilder{{
			StartChars: parse.NewCharSet('@'),
			Build: func(rec *markup.RecursiveParsers) parse.Parser[ast.Block] {
				return r.blockInvocationParser(rec)
			},
		}},
		SpanParsers: []markup.SpanParserBuilder{{
			Build: func(rec *markup.RecursiveParsers) parse.Prefixed[ast.Span] {
				return parse.NewPrefixed(
					parse.NewCharSet('@'),
					r.spanInvocationParser(rec),
				)
			},
		}},
		TemplateParsers: []markup.TemplateParserBuilder{{
			Build: func(rec *markup.RecursiveParsers) parse.Prefixed[ast.TemplateSpan] {
				return parse.NewPrefixed(
					parse.NewCharSet('@'),
					r.templateInvocationParser(rec),
				)
			},
		}},
		UseInStrict: true,
	}
}
