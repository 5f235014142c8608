package parser

import (
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Location is a 1-based source position. Columns count bytes.
type Location struct {
	Line   int
	Column int
}

// SyntaxTree keeps a parsed tree together with the source it was parsed from.
type SyntaxTree struct {
	Path     string
	Source   []byte
	Language Language

	tree *sitter.Tree
}

func (t *SyntaxTree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// HasErrors reports whether the parser had to recover from syntax errors.
func (t *SyntaxTree) HasErrors() bool {
	root := t.Root()
	return root != nil && root.HasError()
}

func (t *SyntaxTree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

func (t *SyntaxTree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.Source[node.StartByte():node.EndByte()])
}

func (t *SyntaxTree) Location(node *sitter.Node) Location {
	pos := node.StartPosition()
	return Location{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// Visitor is called for each node in pre-order. Returning false skips the
// node's children.
type Visitor func(node *sitter.Node) bool

// Walk visits node and its descendants in source order.
func Walk(node *sitter.Node, visit Visitor) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		Walk(node.Child(i), visit)
	}
}

// LineIndex maps byte offsets in a source to 1-based line/column pairs using
// the parser's byte-column convention.
type LineIndex struct {
	starts []int
}

func NewLineIndex(source []byte) LineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return LineIndex{starts: starts}
}

func (idx LineIndex) Location(offset int) Location {
	if offset < 0 {
		return Location{Line: 1, Column: 1}
	}
	line := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Location{Line: line + 1, Column: offset - idx.starts[line] + 1}
}
