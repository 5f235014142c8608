package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Import is one module dependency declared by a file.
type Import struct {
	Specifier  string
	BoundNames []string
	IsTypeOnly bool
	// ReExport marks `export ... from` statements.
	ReExport bool
	Location Location
}

// IsRelative reports whether the specifier names a path rather than a package.
func (i Import) IsRelative() bool {
	return IsRelativeSpecifier(i.Specifier)
}

func IsRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/")
}

// ExtractImports returns the file's top-level import declarations and
// re-exports in source order.
func ExtractImports(tree *SyntaxTree) []Import {
	root := tree.Root()
	if root == nil {
		return nil
	}
	var imports []Import
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		switch node.Kind() {
		case "import_statement":
			if imp, ok := extractImport(tree, node); ok {
				imports = append(imports, imp)
			}
		case "export_statement":
			if imp, ok := extractReExport(tree, node); ok {
				imports = append(imports, imp)
			}
		}
	}
	return imports
}

// ImportsPackage reports whether any import names pkg exactly.
func ImportsPackage(imports []Import, pkg string) bool {
	for _, imp := range imports {
		if imp.Specifier == pkg {
			return true
		}
	}
	return false
}

func extractImport(tree *SyntaxTree, node *sitter.Node) (Import, bool) {
	specifier, ok := sourceSpecifier(tree, node)
	if !ok {
		return Import{}, false
	}
	imp := Import{
		Specifier:  specifier,
		IsTypeOnly: hasTypeKeyword(node),
		Location:   tree.Location(node),
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "import_clause" {
			imp.BoundNames = importClauseNames(tree, child)
		}
	}
	return imp, true
}

func extractReExport(tree *SyntaxTree, node *sitter.Node) (Import, bool) {
	specifier, ok := sourceSpecifier(tree, node)
	if !ok {
		return Import{}, false
	}
	imp := Import{
		Specifier:  specifier,
		IsTypeOnly: hasTypeKeyword(node),
		ReExport:   true,
		Location:   tree.Location(node),
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "export_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec.Kind() == "export_specifier" {
					imp.BoundNames = append(imp.BoundNames, specifierName(tree, spec))
				}
			}
		case "namespace_export":
			if name := lastIdentifier(tree, child); name != "" {
				imp.BoundNames = append(imp.BoundNames, name)
			}
		}
	}
	return imp, true
}

func sourceSpecifier(tree *SyntaxTree, node *sitter.Node) (string, bool) {
	source := node.ChildByFieldName("source")
	if source == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child.Kind() == "string" {
				source = child
				break
			}
		}
	}
	if source == nil {
		return "", false
	}
	return trimQuoted(tree.Text(source)), true
}

func importClauseNames(tree *SyntaxTree, clause *sitter.Node) []string {
	var names []string
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			names = append(names, tree.Text(child))
		case "namespace_import":
			if name := lastIdentifier(tree, child); name != "" {
				names = append(names, name)
			}
		case "named_imports":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec.Kind() == "import_specifier" {
					names = append(names, specifierName(tree, spec))
				}
			}
		}
	}
	return names
}

// specifierName returns the local binding: the alias when present.
func specifierName(tree *SyntaxTree, spec *sitter.Node) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return trimQuoted(tree.Text(alias))
	}
	if name := spec.ChildByFieldName("name"); name != nil {
		return trimQuoted(tree.Text(name))
	}
	return strings.TrimSpace(tree.Text(spec))
}

func lastIdentifier(tree *SyntaxTree, node *sitter.Node) string {
	name := ""
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child.Kind() == "identifier" {
			name = tree.Text(child)
		}
	}
	return name
}

// hasTypeKeyword detects `import type` and `export type ... from`.
func hasTypeKeyword(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "type" && !child.IsNamed() {
			return true
		}
	}
	return false
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}
