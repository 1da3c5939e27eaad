// Package astdump renders AST trees for the visual debug mode:
// an indented dump of the node structure with invalid nodes
// highlighted in place. The styled formatter targets terminals via
// lipgloss; the plain formatter suits tests and logs.
package astdump

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/connerohnesorge/weft/ast"
)

// Styles controls the appearance of the styled formatter.
type Styles struct {
	NodeName lipgloss.Style
	Content  lipgloss.Style
	Invalid  lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		NodeName: lipgloss.NewStyle().Bold(true),
		Content:  lipgloss.NewStyle().Faint(true),
		Invalid: lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true),
	}
}

// Formatter renders element trees.
type Formatter struct {
	styles  Styles
	styled  bool
	builder strings.Builder
}

// New creates a styled formatter.
func New(styles Styles) *Formatter {
	return &Formatter{styles: styles, styled: true}
}

// Plain creates a formatter without styling.
func Plain() *Formatter {
	return &Formatter{}
}

// FormatRoot renders a document root.
func (f *Formatter) FormatRoot(root ast.RootElement) string {
	f.builder.Reset()
	for _, b := range root.Content {
		f.format(b, 0)
	}

	return strings.TrimRight(f.builder.String(), "\n")
}

// Format renders a single element subtree.
func (f *Formatter) Format(e ast.Element) string {
	f.builder.Reset()
	f.format(e, 0)

	return strings.TrimRight(f.builder.String(), "\n")
}

func (f *Formatter) format(e ast.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	name, detail, invalid := describe(e)

	line := indent + f.styleName(name, invalid)
	if detail != "" {
		line += " " + f.styleDetail(detail, invalid)
	}
	if opts := e.Options(); opts.HasID() || len(opts.Styles) > 0 {
		line += " " + f.styleDetail(formatOptions(opts), invalid)
	}
	f.builder.WriteString(line + "\n")

	for _, child := range ast.Children(e) {
		f.format(child, depth+1)
	}
}

func (f *Formatter) styleName(name string, invalid bool) string {
	if !f.styled {
		return name
	}
	if invalid {
		return f.styles.Invalid.Render(name)
	}

	return f.styles.NodeName.Render(name)
}

func (f *Formatter) styleDetail(detail string, invalid bool) string {
	if !f.styled {
		return detail
	}
	if invalid {
		return f.styles.Invalid.Render(detail)
	}

	return f.styles.Content.Render(detail)
}

func formatOptions(opts ast.Options) string {
	var parts []string
	if opts.HasID() {
		parts = append(parts, "#"+opts.ID)
	}
	for _, s := range opts.Styles {
		parts = append(parts, "."+s)
	}

	return "{" + strings.Join(parts, " ") + "}"
}

// describe returns the display name, inline detail and invalid flag
// of a node.
func describe(e ast.Element) (name, detail string, invalid bool) {
	switch n := e.(type) {
	case ast.Paragraph:
		return "Paragraph", "", false
	case ast.Header:
		return "Header", fmt.Sprintf("level=%d", n.Level), false
	case ast.BlockSequence:
		return "BlockSequence", "", false
	case ast.QuotedBlock:
		return "QuotedBlock", "", false
	case ast.CodeBlock:
		return "CodeBlock", quoteDetail(n.Language, n.Text), false
	case ast.ListBlock:
		return "ListBlock", n.Kind.String(), false
	case ast.ListItem:
		return "ListItem", "", false
	case ast.Section:
		return "Section", "", false
	case ast.LinkDefinition:
		return "LinkDefinition",
			fmt.Sprintf("[%s]: %s", n.ID, n.Target), false
	case ast.TemplateRoot:
		return "TemplateRoot", "", false
	case ast.TemplateString:
		return "TemplateString", quote(n.Text), false
	case ast.TemplateContextReference:
		return "TemplateContextReference", n.Key, false
	case ast.TemplateElement:
		return "TemplateElement", "", false
	case ast.InvalidBlock:
		return "InvalidBlock", quote(n.Message), true
	case ast.Text:
		return "Text", quote(n.Content), false
	case ast.Emphasized:
		return "Emphasized", "", false
	case ast.Strong:
		return "Strong", "", false
	case ast.Literal:
		return "Literal", quote(n.Content), false
	case ast.SpanSequence:
		return "SpanSequence", "", false
	case ast.SpanLink:
		return "SpanLink", linkDetail(n.Target), false
	case ast.LinkIDReference:
		return "LinkIDReference", "[" + n.ID + "]", false
	case ast.ContextReference:
		return "ContextReference", "${" + n.Key + "}", false
	case ast.InvalidSpan:
		return "InvalidSpan", quote(n.Message), true
	case ast.ExtensionBlock:
		return "ExtensionBlock", n.Name, false
	case ast.ExtensionSpan:
		return "ExtensionSpan", n.Name, false
	default:
		return fmt.Sprintf("%T", e), "", false
	}
}

func quote(s string) string {
	if len(s) > 60 {
		s = s[:57] + "..."
	}

	return fmt.Sprintf("%q", s)
}

func quoteDetail(lang, text string) string {
	if lang == "" {
		return quote(text)
	}

	return lang + " " + quote(text)
}
