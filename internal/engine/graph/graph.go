package graph

import (
	"path"
	"sort"
	"strings"
	"sync"

	"layerguard/internal/engine/parser"
)

// ImportGraph maps every walked file to the in-project files it imports, in
// import order. Duplicate edges are kept. The graph is read-only once built.
type ImportGraph struct {
	files map[string]bool
	edges map[string][]string
	nodes []string

	cyclesOnce    sync.Once
	cycles        [][]string
	canonicalOnce sync.Once
	canonical     [][]string
}

// Build resolves each file's specifiers against the walked file set. Only
// relative specifiers (leading "." or "/") can become edges; anything that
// does not resolve to a walked file is dropped.
func Build(files []string, specifiers map[string][]string) *ImportGraph {
	g := &ImportGraph{
		files: make(map[string]bool, len(files)),
		edges: make(map[string][]string, len(files)),
	}
	for _, file := range files {
		g.files[file] = true
	}
	for _, file := range files {
		if _, seen := g.edges[file]; seen {
			continue
		}
		targets := []string{}
		for _, spec := range specifiers[file] {
			if target, ok := g.ResolveSpecifier(file, spec); ok {
				targets = append(targets, target)
			}
		}
		g.edges[file] = targets
		g.nodes = append(g.nodes, file)
	}
	sort.Strings(g.nodes)
	return g
}

// ResolveSpecifier finds the walked file a relative specifier refers to,
// trying the literal path, then each source extension, then a directory
// index file. Specifiers starting with "/" are rooted at the project root.
func (g *ImportGraph) ResolveSpecifier(from, specifier string) (string, bool) {
	base, ok := JoinSpecifier(from, specifier)
	if !ok {
		return "", false
	}
	for _, candidate := range candidates(base) {
		if g.files[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// JoinSpecifier returns the project-relative path a relative specifier points
// at, without checking that anything exists there.
func JoinSpecifier(from, specifier string) (string, bool) {
	if !parser.IsRelativeSpecifier(specifier) {
		return "", false
	}
	if strings.HasPrefix(specifier, "/") {
		return path.Clean(strings.TrimLeft(specifier, "/")), true
	}
	return path.Join(path.Dir(from), specifier), true
}

func candidates(base string) []string {
	out := make([]string, 0, 1+2*len(parser.SourceExtensions))
	out = append(out, base)
	for _, ext := range parser.SourceExtensions {
		out = append(out, base+ext)
	}
	for _, ext := range parser.SourceExtensions {
		out = append(out, base+"/index"+ext)
	}
	return out
}

// Nodes returns every file in the graph, sorted.
func (g *ImportGraph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

func (g *ImportGraph) Has(file string) bool {
	_, ok := g.edges[file]
	return ok
}

// Imports returns the files imported by file in import order.
func (g *ImportGraph) Imports(file string) []string {
	return g.edges[file]
}

func (g *ImportGraph) EdgeCount() int {
	total := 0
	for _, targets := range g.edges {
		total += len(targets)
	}
	return total
}

// Importers returns the files that import file directly, sorted.
func (g *ImportGraph) Importers(file string) []string {
	var out []string
	for _, node := range g.nodes {
		for _, target := range g.edges[node] {
			if target == file {
				out = append(out, node)
				break
			}
		}
	}
	return out
}

// Cycles runs cycle detection once per graph and shares the result.
func (g *ImportGraph) Cycles() [][]string {
	g.cyclesOnce.Do(func() {
		g.cycles = DetectCycles(g)
	})
	return g.cycles
}

// CanonicalCycles is Cycles with each cycle rotated to lead with its smallest
// file and repeats removed, computed once.
func (g *ImportGraph) CanonicalCycles() [][]string {
	g.canonicalOnce.Do(func() {
		g.canonical = DistinctCycles(g.Cycles())
	})
	return g.canonical
}
