package hocon

import (
	"strings"

	"github.com/connerohnesorge/weft/config"
)

// node is one key of the merged unresolved tree. Assignments are kept
// as ordered layers: either a set of child nodes (from an object
// value or dotted path) or a raw expression (scalar, array,
// substitution, concatenation). Resolution folds the layers in source
// order under the merge rules.
type node struct {
	layers []layer
}

type layer struct {
	children *nodeMap // nil for expression layers
	expr     expr
	selfAdd  bool
}

// nodeMap is an ordered map of child names to nodes.
type nodeMap struct {
	keys  []string
	nodes map[string]*node
}

func newNodeMap() *nodeMap {
	return &nodeMap{nodes: make(map[string]*node)}
}

func (m *nodeMap) get(key string) *node {
	if n, ok := m.nodes[key]; ok {
		return n
	}
	n := &node{}
	m.keys = append(m.keys, key)
	m.nodes[key] = n

	return n
}

func (m *nodeMap) lookup(key string) (*node, bool) {
	n, ok := m.nodes[key]

	return n, ok
}

// fold adds a field list to the map, creating nested nodes for dotted
// paths and splicing object values into child layers.
func (m *nodeMap) fold(fields []field) {
	for _, f := range fields {
		target := m
		for _, seg := range f.path[:len(f.path)-1] {
			target = target.get(seg).childLayer()
		}
		leaf := target.get(f.path[len(f.path)-1])
		if obj, ok := f.value.(objectExpr); ok && !f.selfAdd {
			children := newNodeMap()
			children.fold(obj.fields)
			leaf.layers = append(leaf.layers, layer{children: children})

			continue
		}
		leaf.layers = append(leaf.layers, layer{
			expr:    f.value,
			selfAdd: f.selfAdd,
		})
	}
}

// childLayer returns the node's trailing children layer, appending a
// fresh one when the last layer is an expression.
func (n *node) childLayer() *nodeMap {
	if len(n.layers) > 0 {
		last := n.layers[len(n.layers)-1]
		if last.children != nil {
			return last.children
		}
	}
	children := newNodeMap()
	n.layers = append(n.layers, layer{children: children})

	return children
}

// absent is the sentinel for optional substitutions whose path is
// missing; fields resolving to it are omitted.
type resolved struct {
	value  config.Value
	absent bool
}

// resolver carries the state of one Resolve call.
type resolver struct {
	root       *nodeMap
	fallback   *config.Config
	origin     config.Origin
	inProgress map[string]bool
	cache      map[string]resolved
}

// Resolve expands all substitutions and merges duplicate keys,
// producing an immutable configuration. Substitution paths are looked
// up first in the configuration itself, then in the fallback chain.
// The first error encountered is returned.
func (u *Unresolved) Resolve(
	fallback *config.Config,
	origin config.Origin,
) (config.Config, error) {
	root := newNodeMap()
	root.fold(u.root.fields)
	r := &resolver{
		root:       root,
		fallback:   fallback,
		origin:     origin,
		inProgress: make(map[string]bool),
		cache:      make(map[string]resolved),
	}

	obj := config.NewObject()
	for _, key := range root.keys {
		res, err := r.resolveNode(root.nodes[key], key)
		if err != nil {
			return config.Config{}, err
		}
		if res.absent {
			continue
		}
		obj.Set(key, res.value)
	}

	return config.NewConfig(obj, origin), nil
}

// resolveNode folds a node's layers into a single value. path is the
// dotted path of the node, used for self-references and cycle
// detection.
func (r *resolver) resolveNode(n *node, path string) (resolved, error) {
	if cached, ok := r.cache[path]; ok {
		return cached, nil
	}
	if r.inProgress[path] {
		return resolved{}, &CircularSubstitutionError{Path: path}
	}
	r.inProgress[path] = true
	defer delete(r.inProgress, path)

	acc := resolved{absent: true}
	for _, l := range n.layers {
		var (
			res resolved
			err error
		)
		switch {
		case l.children != nil:
			res, err = r.resolveChildren(l.children, path)
		case l.selfAdd:
			// 'a += x' desugars to 'a = ${?a} [x]'.
			res, err = r.resolveConcat(concatExpr{parts: []concatPart{
				{value: substExpr{path: path, optional: true}},
				{ws: " ", value: arrayExpr{elems: []expr{l.expr}}},
			}}, selfRef{path: path, acc: acc})
		default:
			res, err = r.resolveExpr(l.expr, selfRef{
				path: path,
				acc:  acc,
			})
		}
		if err != nil {
			return resolved{}, err
		}
		if res.absent {
			continue
		}
		if acc.absent {
			acc = res

			continue
		}
		acc = resolved{value: mergeValues(acc.value, res.value)}
	}
	r.cache[path] = acc

	return acc, nil
}

// resolveChildren builds an object value from a children layer.
func (r *resolver) resolveChildren(
	m *nodeMap,
	parentPath string,
) (resolved, error) {
	obj := config.NewObject()
	for _, key := range m.keys {
		childPath := key
		if parentPath != "" {
			childPath = parentPath + "." + key
		}
		res, err := r.resolveNode(m.nodes[key], childPath)
		if err != nil {
			return resolved{}, err
		}
		if res.absent {
			continue
		}
		obj.Set(key, res.value)
	}

	return resolved{
		value: config.ObjectValue(obj).WithOrigin(r.origin),
	}, nil
}

// selfRef carries the path currently being resolved and the value
// accumulated from its earlier layers, so that self-referential
// substitutions (notably the ${?a} produced by 'a += x') see the
// preceding assignments instead of reporting a cycle.
type selfRef struct {
	path string
	acc  resolved
}

func (r *resolver) resolveExpr(e expr, self selfRef) (resolved, error) {
	switch v := e.(type) {
	case litExpr:
		return resolved{value: v.value.WithOrigin(r.origin)}, nil
	case arrayExpr:
		elems := make([]config.Value, 0, len(v.elems))
		for _, el := range v.elems {
			res, err := r.resolveExpr(el, self)
			if err != nil {
				return resolved{}, err
			}
			if res.absent {
				continue
			}
			elems = append(elems, res.value)
		}

		return resolved{
			value: config.ArrayValue(elems).WithOrigin(r.origin),
		}, nil
	case objectExpr:
		m := newNodeMap()
		m.fold(v.fields)

		return r.resolveChildren(m, self.path)
	case substExpr:
		return r.resolveSubst(v, self)
	case concatExpr:
		return r.resolveConcat(v, self)
	default:
		return resolved{}, &ResolveError{Message: "unknown expression"}
	}
}

func (r *resolver) resolveSubst(s substExpr, self selfRef) (resolved, error) {
	// Self-reference: use the value accumulated so far, falling
	// through to the fallback chain when there is none yet. A
	// required self-reference with no earlier value and no fallback
	// is a cycle of length one.
	if s.path == self.path {
		if !self.acc.absent {
			return self.acc, nil
		}
		res, err := r.lookupFallback(s)
		if _, unresolvedSelf := err.(*UnresolvedSubstitutionError); unresolvedSelf {
			return resolved{}, &CircularSubstitutionError{Path: s.path}
		}

		return res, err
	}

	if n, ok := r.lookupNode(s.path); ok {
		res, err := r.resolveNode(n, s.path)
		if err != nil {
			return resolved{}, err
		}
		if !res.absent {
			return res, nil
		}
	}

	return r.lookupFallback(s)
}

// lookupNode navigates the merged tree by dotted path, descending
// only through children layers. A path reaching through a value that
// is not a literal object (such as one produced by a substitution) is
// not found here; resolveSubst then looks the full path up in the
// fallback configuration only.
func (r *resolver) lookupNode(path string) (*node, bool) {
	segments := strings.Split(path, ".")
	current := r.root
	for i, seg := range segments {
		n, ok := current.lookup(seg)
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return n, true
		}
		var next *nodeMap
		for j := len(n.layers) - 1; j >= 0; j-- {
			if n.layers[j].children != nil {
				next = n.layers[j].children

				break
			}
		}
		if next == nil {
			return nil, false
		}
		current = next
	}

	return nil, false
}

func (r *resolver) lookupFallback(s substExpr) (resolved, error) {
	if r.fallback != nil {
		if v, ok := r.fallback.Lookup(s.path); ok {
			return resolved{value: v}, nil
		}
	}
	if s.optional {
		return resolved{absent: true}, nil
	}

	return resolved{}, &UnresolvedSubstitutionError{Path: s.path}
}

// resolveConcat combines adjacent values: arrays concatenate, objects
// merge, anything else joins as a string with the original
// whitespace preserved. Absent optional substitutions contribute
// nothing.
func (r *resolver) resolveConcat(c concatExpr, self selfRef) (resolved, error) {
	type part struct {
		ws    string
		value config.Value
	}
	var parts []part
	for _, p := range c.parts {
		res, err := r.resolveExpr(p.value, self)
		if err != nil {
			return resolved{}, err
		}
		if res.absent {
			continue
		}
		parts = append(parts, part{ws: p.ws, value: res.value})
	}
	if len(parts) == 0 {
		return resolved{absent: true}, nil
	}
	if len(parts) == 1 {
		return resolved{value: parts[0].value}, nil
	}

	allArrays, allObjects := true, true
	for _, p := range parts {
		if p.value.Kind() != config.KindArray {
			allArrays = false
		}
		if p.value.Kind() != config.KindObject {
			allObjects = false
		}
	}

	switch {
	case allArrays:
		var elems []config.Value
		for _, p := range parts {
			arr, _ := p.value.AsArray()
			elems = append(elems, arr...)
		}

		return resolved{
			value: config.ArrayValue(elems).WithOrigin(r.origin),
		}, nil
	case allObjects:
		merged := parts[0].value
		for _, p := range parts[1:] {
			merged = mergeValues(merged, p.value)
		}

		return resolved{value: merged}, nil
	default:
		var sb strings.Builder
		for i, p := range parts {
			if i > 0 {
				sb.WriteString(p.ws)
			}
			sb.WriteString(renderScalar(p.value))
		}

		return resolved{
			value: config.StringValue(sb.String()).
				WithOrigin(r.origin),
		}, nil
	}
}

// renderScalar renders a value for string concatenation: strings stay
// raw, other kinds use their textual form.
func renderScalar(v config.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}

	return v.Render()
}

// mergeValues applies the configuration merge rules: objects merge
// recursively, everything else is replaced by the later value.
func mergeValues(earlier, later config.Value) config.Value {
	eo, eok := earlier.AsObject()
	lo, lok := later.AsObject()
	if eok && lok {
		return config.ObjectValue(eo.Merge(lo)).
			WithOrigin(later.Origin())
	}

	return later
}
