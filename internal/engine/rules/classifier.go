package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"layerguard/internal/engine/parser"
)

var functionKinds = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
}

// ComponentFunction is a function whose name marks it as a UI component or
// hook.
type ComponentFunction struct {
	Name string
	Node *sitter.Node
}

// Body returns the function body, which for arrow functions may be a bare
// expression.
func (f ComponentFunction) Body() *sitter.Node {
	return f.Node.ChildByFieldName("body")
}

// FunctionName returns a function's own name or, for anonymous functions, the
// name of the variable it initializes.
func FunctionName(tree *parser.SyntaxTree, node *sitter.Node) string {
	if node == nil || !functionKinds[node.Kind()] {
		return ""
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return tree.Text(name)
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "variable_declarator" {
		return ""
	}
	value := parent.ChildByFieldName("value")
	if value == nil || value.StartByte() != node.StartByte() || value.EndByte() != node.EndByte() {
		return ""
	}
	name := parent.ChildByFieldName("name")
	if name == nil || name.Kind() != "identifier" {
		return ""
	}
	return tree.Text(name)
}

// IsComponentName accepts names starting with an upper-case letter or the
// literal prefix "use".
func IsComponentName(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "use") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// IsComponentFunction reports whether node is a named function that looks
// like a component or hook.
func IsComponentFunction(tree *parser.SyntaxTree, node *sitter.Node) bool {
	return IsComponentName(FunctionName(tree, node))
}

// ComponentFunctions lists qualifying functions in source order, including
// ones nested inside other functions.
func ComponentFunctions(tree *parser.SyntaxTree) []ComponentFunction {
	var out []ComponentFunction
	parser.Walk(tree.Root(), func(node *sitter.Node) bool {
		if name := FunctionName(tree, node); IsComponentName(name) {
			out = append(out, ComponentFunction{Name: name, Node: node})
		}
		return true
	})
	return out
}

// ComponentFile returns the qualifying functions of a file that imports the
// configured framework. Files that do not import it, or have no qualifying
// function, are not component files and yield nil.
func ComponentFile(ctx *Context) []ComponentFunction {
	if ctx.Tree == nil || !parser.ImportsPackage(ctx.Imports, ctx.Config.ComponentFramework) {
		return nil
	}
	return ComponentFunctions(ctx.Tree)
}
