// Package input assembles document trees from a virtual filesystem.
// All file access goes through afero.Fs, so callers decide the IO
// model: an OS directory, an in-memory tree or any other
// implementation.
package input

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/connerohnesorge/weft/ast"
	"github.com/connerohnesorge/weft/config"
	"github.com/connerohnesorge/weft/hocon"
	"github.com/connerohnesorge/weft/markup"
	"github.com/connerohnesorge/weft/vpath"
)

// ConfigFileName is the per-directory configuration file.
const ConfigFileName = "directory.conf"

// templateMarker tags template files: name.template.<suffix>.
const templateMarker = ".template."

// TreeBuilder scans a filesystem into a DocumentTree, parsing markup
// files, templates and per-directory configuration.
type TreeBuilder struct {
	fs       afero.Fs
	engine   *markup.Engine
	suffixes map[string]bool
}

// NewTreeBuilder creates a builder reading from fs and parsing
// markup with the given engine. Files with the given suffixes are
// treated as markup documents; the default is "md".
func NewTreeBuilder(
	fs afero.Fs,
	engine *markup.Engine,
	suffixes ...string,
) *TreeBuilder {
	if len(suffixes) == 0 {
		suffixes = []string{"md"}
	}
	set := make(map[string]bool, len(suffixes))
	for _, s := range suffixes {
		set[s] = true
	}

	return &TreeBuilder{fs: fs, engine: engine, suffixes: set}
}

// Build scans the directory into a document tree rooted at the
// virtual root path.
func (b *TreeBuilder) Build(dir string) (*ast.DocumentTree, error) {
	tree, err := b.buildTree(dir, vpath.Root, nil)
	if err != nil {
		return nil, err
	}
	assignPositions(tree, nil)
	if err := tree.Validate(); err != nil {
		return nil, err
	}

	return tree, nil
}

func (b *TreeBuilder) buildTree(
	dir string,
	treePath vpath.Path,
	position ast.TreePosition,
) (*ast.DocumentTree, error) {
	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name() < infos[j].Name()
	})

	tree := &ast.DocumentTree{Path: treePath, Config: config.Empty()}
	for _, info := range infos {
		name := info.Name()
		full := path.Join(dir, name)
		childPath := treePath.Child(name)

		switch {
		case info.IsDir():
			sub, err := b.buildTree(full, childPath, nil)
			if err != nil {
				return nil, err
			}
			tree.Subtrees = append(tree.Subtrees, sub)
		case name == ConfigFileName:
			cfg, err := b.readConfig(full, childPath)
			if err != nil {
				return nil, err
			}
			tree.Config = cfg
		case strings.Contains(name, templateMarker):
			tpl, err := b.readTemplate(full, childPath)
			if err != nil {
				return nil, err
			}
			tree.Templates = append(tree.Templates, tpl)
		case b.suffixes[childPath.Suffix()]:
			doc, err := b.readDocument(full, childPath)
			if err != nil {
				return nil, err
			}
			tree.Documents = append(tree.Documents, doc)
		default:
			tree.Static = append(tree.Static, childPath)
		}
	}

	return tree, nil
}

func (b *TreeBuilder) readConfig(
	file string,
	at vpath.Path,
) (config.Config, error) {
	data, err := afero.ReadFile(b.fs, file)
	if err != nil {
		return config.Empty(), err
	}
	unresolved, err := hocon.Parse(string(data))
	if err != nil {
		return config.Empty(), fmt.Errorf("in %q: %w", file, err)
	}
	origin := config.NewOrigin(config.TreeScope, at)

	cfg, err := unresolved.Resolve(nil, origin)
	if err != nil {
		return config.Empty(), fmt.Errorf("in %q: %w", file, err)
	}

	return cfg, nil
}

func (b *TreeBuilder) readDocument(
	file string,
	at vpath.Path,
) (*ast.Document, error) {
	data, err := afero.ReadFile(b.fs, file)
	if err != nil {
		return nil, err
	}
	doc, err := b.engine.ParseDocument(string(data), at)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", file, err)
	}

	return doc, nil
}

func (b *TreeBuilder) readTemplate(
	file string,
	at vpath.Path,
) (*ast.TemplateDocument, error) {
	data, err := afero.ReadFile(b.fs, file)
	if err != nil {
		return nil, err
	}
	tpl, err := b.engine.ParseTemplate(string(data), at)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", file, err)
	}

	return tpl, nil
}

// assignPositions numbers documents and subtrees depth-first,
// documents before subtrees at each level.
func assignPositions(tree *ast.DocumentTree, base ast.TreePosition) {
	index := 0
	for _, doc := range tree.Documents {
		doc.Position = base.Child(index)
		index++
	}
	for _, sub := range tree.Subtrees {
		assignPositions(sub, base.Child(index))
		index++
	}
}
