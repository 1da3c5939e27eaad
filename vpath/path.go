// Package vpath provides virtual paths within a logical document tree.
//
// A Path addresses a document, template or asset inside a DocumentTree
// without any reference to a physical filesystem. Paths are immutable
// values; navigation methods return new values.
package vpath

import "strings"

// Separator is the segment separator used by virtual paths.
const Separator = "/"

// Path is a location inside the logical document tree.
// The zero value is the relative current path ".".
type Path struct {
	segments []string
	absolute bool
}

// Root is the absolute root of every document tree.
var Root = Path{absolute: true}

// Parse interprets a slash-separated string as a virtual path.
// A leading slash makes the path absolute. "." and empty segments are
// dropped; ".." segments are preserved for later resolution.
func Parse(s string) Path {
	absolute := strings.HasPrefix(s, Separator)
	var segments []string
	for _, seg := range strings.Split(s, Separator) {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}

	return Path{segments: segments, absolute: absolute}
}

// IsAbsolute reports whether the path starts at the tree root.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// IsRoot reports whether the path is the tree root itself.
func (p Path) IsRoot() bool {
	return p.absolute && len(p.segments) == 0
}

// Name returns the final segment, or "" for the root and the empty
// relative path.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}

	return p.segments[len(p.segments)-1]
}

// Basename returns the final segment with its suffix removed.
func (p Path) Basename() string {
	name := p.Name()
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[:idx]
	}

	return name
}

// Suffix returns the suffix of the final segment without the leading
// dot, or "" when there is none.
func (p Path) Suffix() string {
	name := p.Name()
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[idx+1:]
	}

	return ""
}

// WithSuffix returns a copy of the path with the final segment's suffix
// replaced (or added).
func (p Path) WithSuffix(suffix string) Path {
	if len(p.segments) == 0 {
		return p
	}
	segments := append([]string(nil), p.segments...)
	segments[len(segments)-1] = p.Basename() + "." + suffix

	return Path{segments: segments, absolute: p.absolute}
}

// Parent returns the enclosing path. The parent of the root is the
// root itself.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}

	return Path{
		segments: p.segments[:len(p.segments)-1],
		absolute: p.absolute,
	}
}

// Child returns the path extended by one segment.
func (p Path) Child(name string) Path {
	segments := make([]string, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, name)

	return Path{segments: segments, absolute: p.absolute}
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.segments)
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	if p.segments == nil {
		return nil
	}
	out := make([]string, len(p.segments))
	copy(out, p.segments)

	return out
}

// Resolve interprets other relative to this path. Absolute arguments
// are returned unchanged; relative arguments are appended with ".."
// segments collapsing toward the root.
func (p Path) Resolve(other Path) Path {
	if other.absolute {
		return other
	}
	segments := append([]string(nil), p.segments...)
	for _, seg := range other.segments {
		if seg == ".." {
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}

			continue
		}
		segments = append(segments, seg)
	}

	return Path{segments: segments, absolute: p.absolute}
}

// RelativeTo expresses this path relative to base. Both paths must be
// absolute; otherwise the receiver is returned unchanged.
func (p Path) RelativeTo(base Path) Path {
	if !p.absolute || !base.absolute {
		return p
	}
	common := 0
	for common < len(p.segments) && common < len(base.segments) &&
		p.segments[common] == base.segments[common] {
		common++
	}
	var segments []string
	for range base.segments[common:] {
		segments = append(segments, "..")
	}
	segments = append(segments, p.segments[common:]...)

	return Path{segments: segments}
}

// IsUnder reports whether the path is located inside other (or equal
// to it). Both paths must be absolute.
func (p Path) IsUnder(other Path) bool {
	if !p.absolute || !other.absolute ||
		len(other.segments) > len(p.segments) {
		return false
	}
	for i, seg := range other.segments {
		if p.segments[i] != seg {
			return false
		}
	}

	return true
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(other Path) bool {
	if p.absolute != other.absolute ||
		len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}

	return true
}

// String renders the path in slash notation. The root renders as "/",
// the empty relative path as ".".
func (p Path) String() string {
	if len(p.segments) == 0 {
		if p.absolute {
			return Separator
		}

		return "."
	}
	joined := strings.Join(p.segments, Separator)
	if p.absolute {
		return Separator + joined
	}

	return joined
}
