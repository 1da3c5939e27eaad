package ast

import "github.com/connerohnesorge/weft/parse"

// Text is plain inline text.
type Text struct {
	Content string
	Opts    Options
}

// Options returns the node's id and styles.
func (t Text) Options() Options { return t.Opts }
func (Text) spanNode()          {}

// NewText creates a plain text span.
func NewText(content string) Text {
	return Text{Content: content}
}

// Emphasized is inline emphasis.
type Emphasized struct {
	Content []Span
	Opts    Options
}

// Options returns the node's id and styles.
func (e Emphasized) Options() Options { return e.Opts }
func (Emphasized) spanNode()          {}

// Strong is strong inline emphasis.
type Strong struct {
	Content []Span
	Opts    Options
}

// Options returns the node's id and styles.
func (s Strong) Options() Options { return s.Opts }
func (Strong) spanNode()          {}

// Literal is verbatim inline text.
type Literal struct {
	Content string
	Opts    Options
}

// Options returns the node's id and styles.
func (l Literal) Options() Options { return l.Opts }
func (Literal) spanNode()          {}

// SpanSequence is a generic container for a list of spans.
type SpanSequence struct {
	Content []Span
	Opts    Options
}

// Options returns the node's id and styles.
func (s SpanSequence) Options() Options { return s.Opts }
func (SpanSequence) spanNode()          {}

// LinkTarget is the destination of a resolved link: either external
// (URL) or internal (a path inside the document tree).
type LinkTarget struct {
	URL      string
	Internal bool
	Path     string
}

// ExternalTarget creates a target for a URL outside the tree.
func ExternalTarget(url string) LinkTarget {
	return LinkTarget{URL: url}
}

// InternalTarget creates a target for a document inside the tree.
func InternalTarget(path string) LinkTarget {
	return LinkTarget{Internal: true, Path: path}
}

// SpanLink is a resolved hyperlink.
type SpanLink struct {
	Content []Span
	Target  LinkTarget
	Title   string
	Opts    Options
}

// Options returns the node's id and styles.
func (s SpanLink) Options() Options { return s.Opts }
func (SpanLink) spanNode()          {}

// InvalidSpan replaces an inline construct that failed after its
// start marker had been accepted, or a resolver that could not
// resolve.
type InvalidSpan struct {
	Message string
	Source  string
	At      parse.Fragment
	Opts    Options
}

// Options returns the node's id and styles.
func (i InvalidSpan) Options() Options { return i.Opts }
func (InvalidSpan) spanNode()          {}

// ExtensionSpan is the open subtype for extension-contributed span
// variants. The payload is interpreted by the contributing bundle.
type ExtensionSpan struct {
	Name    string
	Payload any
	Opts    Options
}

// Options returns the node's id and styles.
func (e ExtensionSpan) Options() Options { return e.Opts }
func (ExtensionSpan) spanNode()          {}
