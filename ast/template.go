package ast

// TemplateSpan is a part of a parsed template: literal text, a
// context reference or an embedded element.
type TemplateSpan interface {
	Element
	templateNode()
}

// TemplateRoot is the root of a parsed template document. Applying it
// to a document rewrites the context references against the
// document's cursor.
type TemplateRoot struct {
	Parts []TemplateSpan
	Opts  Options
}

// Options returns the node's id and styles.
func (t TemplateRoot) Options() Options { return t.Opts }
func (TemplateRoot) blockNode()         {}

// TemplateString is literal template text copied to the output.
type TemplateString struct {
	Text string
	Opts Options
}

// Options returns the node's id and styles.
func (t TemplateString) Options() Options { return t.Opts }
func (TemplateString) templateNode()      {}

// TemplateContextReference is a ${key} reference inside a template,
// resolved against the target document's cursor. The reserved key
// "document.content" inserts the document's block content.
type TemplateContextReference struct {
	Key      string
	Optional bool
	Opts     Options
}

// Options returns the node's id and styles.
func (t TemplateContextReference) Options() Options { return t.Opts }
func (TemplateContextReference) templateNode()      {}

// TemplateElement embeds a block or span produced by a template
// directive into the template.
type TemplateElement struct {
	Element Element
	Opts    Options
}

// Options returns the node's id and styles.
func (t TemplateElement) Options() Options { return t.Opts }
func (TemplateElement) templateNode()      {}

// ContentKey is the reserved context reference inserting the
// document's own content during template application.
const ContentKey = "document.content"
