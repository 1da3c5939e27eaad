package ast

import "github.com/connerohnesorge/weft/parse"

// RootElement is the root container of a parsed document.
type RootElement struct {
	Content []Block
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Content []Span
	Opts    Options
}

// Options returns the node's id and styles.
func (p Paragraph) Options() Options { return p.Opts }
func (Paragraph) blockNode()         {}

// NewParagraph creates a paragraph over the given spans.
func NewParagraph(spans ...Span) Paragraph {
	return Paragraph{Content: spans}
}

// Header is a section headline with its level.
type Header struct {
	Level   int
	Content []Span
	Opts    Options
}

// Options returns the node's id and styles.
func (h Header) Options() Options { return h.Opts }
func (Header) blockNode()         {}

// BlockSequence is a generic container for a list of blocks.
type BlockSequence struct {
	Content []Block
	Opts    Options
}

// Options returns the node's id and styles.
func (b BlockSequence) Options() Options { return b.Opts }
func (BlockSequence) blockNode()         {}

// QuotedBlock is a quotation with an optional attribution.
type QuotedBlock struct {
	Content     []Block
	Attribution []Span
	Opts        Options
}

// Options returns the node's id and styles.
func (q QuotedBlock) Options() Options { return q.Opts }
func (QuotedBlock) blockNode()         {}

// CodeBlock is verbatim text, optionally tagged with a language. A
// literal block without language information uses an empty Language.
type CodeBlock struct {
	Language string
	Text     string
	Opts     Options
}

// Options returns the node's id and styles.
func (c CodeBlock) Options() Options { return c.Opts }
func (CodeBlock) blockNode()         {}

// ListKind distinguishes bullet from ordered lists.
type ListKind uint8

const (
	// BulletList is an unordered list.
	BulletList ListKind = iota
	// OrderedList is an enumerated list.
	OrderedList
)

// String returns a human-readable name for the list kind.
func (k ListKind) String() string {
	if k == OrderedList {
		return "ordered"
	}

	return "bullet"
}

// ListItem is a single entry of a list block.
type ListItem struct {
	Content []Block
	Opts    Options
}

// Options returns the node's id and styles.
func (l ListItem) Options() Options { return l.Opts }

// ListBlock is a bullet or ordered list.
type ListBlock struct {
	Kind  ListKind
	Items []ListItem
	Opts  Options
}

// Options returns the node's id and styles.
func (l ListBlock) Options() Options { return l.Opts }
func (ListBlock) blockNode()         {}

// Section is a header together with the blocks it governs. Sections
// nest through their content.
type Section struct {
	Header  Header
	Content []Block
	Opts    Options
}

// Options returns the node's id and styles.
func (s Section) Options() Options { return s.Opts }
func (Section) blockNode()         {}

// LinkDefinition is a link target definition collected during the
// block pass; it renders to nothing but contributes a link target.
type LinkDefinition struct {
	ID     string
	Target string
	Opts   Options
}

// Options returns the node's id and styles.
func (l LinkDefinition) Options() Options { return l.Opts }
func (LinkDefinition) blockNode()         {}

// InvalidBlock replaces a block construct that failed after its start
// marker had been accepted. It carries the error message and the
// original source so that a debug render mode can show it in place.
type InvalidBlock struct {
	Message string
	Source  string
	At      parse.Fragment
	Opts    Options
}

// Options returns the node's id and styles.
func (i InvalidBlock) Options() Options { return i.Opts }
func (InvalidBlock) blockNode()         {}

// ExtensionBlock is the open subtype for extension-contributed block
// variants. The payload is interpreted by the contributing bundle.
type ExtensionBlock struct {
	Name    string
	Payload any
	Opts    Options
}

// Options returns the node's id and styles.
func (e ExtensionBlock) Options() Options { return e.Opts }
func (ExtensionBlock) blockNode()         {}
