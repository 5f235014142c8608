package rules

import (
	"fmt"
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"layerguard/internal/engine/parser"
)

// Detection is one heuristic hit inside a component file.
type Detection struct {
	Location parser.Location
	Message  string
}

// Detector is a heuristic strategy over a component file. Detectors only run
// when ComponentFile found at least one qualifying function.
type Detector interface {
	Detect(ctx *Context, components []ComponentFunction) []Detection
}

var loopKinds = map[string]string{
	"for_statement":    "for loop",
	"for_in_statement": "for-in/of loop",
	"while_statement":  "while loop",
	"do_statement":     "do-while loop",
}

// Computed access such as items[0] parses as subscript_expression and counts
// as a property access.
var simpleConditionKinds = map[string]bool{
	"identifier":           true,
	"member_expression":    true,
	"subscript_expression": true,
	"binary_expression":    true,
}

// StructuralDetector walks component bodies and flags loops and conditionals
// whose test is more than an identifier, property access or binary
// expression.
type StructuralDetector struct{}

func (StructuralDetector) Detect(ctx *Context, components []ComponentFunction) []Detection {
	var out []Detection
	type nodeKey struct {
		start uint
		kind  string
	}
	seen := make(map[nodeKey]bool)
	for _, fn := range components {
		body := fn.Body()
		if body == nil {
			continue
		}
		parser.Walk(body, func(node *sitter.Node) bool {
			label := flaggedConstruct(node)
			key := nodeKey{start: node.StartByte(), kind: node.Kind()}
			if label == "" || seen[key] {
				return true
			}
			seen[key] = true
			msg := fmt.Sprintf("Component %q contains a %s. Extract business logic into a hook or utility in the features or domain layer.", fn.Name, label)
			out = append(out, Detection{Location: ctx.Tree.Location(node), Message: msg})
			return true
		})
	}
	return out
}

func flaggedConstruct(node *sitter.Node) string {
	kind := node.Kind()
	if label, ok := loopKinds[kind]; ok {
		return label
	}
	switch kind {
	case "if_statement":
		if !isSimpleCondition(node.ChildByFieldName("condition")) {
			return "complex if condition"
		}
	case "ternary_expression":
		if !isSimpleCondition(node.ChildByFieldName("condition")) {
			return "complex ternary condition"
		}
	}
	return ""
}

func isSimpleCondition(node *sitter.Node) bool {
	for node != nil && node.Kind() == "parenthesized_expression" {
		node = node.NamedChild(0)
	}
	return node != nil && simpleConditionKinds[node.Kind()]
}

type fetchPattern struct {
	label string
	re    *regexp.Regexp
}

var fetchPatterns = []fetchPattern{
	{label: "fetch()", re: regexp.MustCompile(`fetch\s*\(`)},
	{label: "axios", re: regexp.MustCompile(`\baxios\.`)},
	{label: ".get()", re: regexp.MustCompile(`\.get\s*\(`)},
	{label: ".post()", re: regexp.MustCompile(`\.post\s*\(`)},
	{label: ".put()", re: regexp.MustCompile(`\.put\s*\(`)},
	{label: ".delete()", re: regexp.MustCompile(`\.delete\s*\(`)},
	{label: "fetch inside useEffect", re: regexp.MustCompile(`useEffect\s*\(\s*(?:async\s+)?(?:\([^)]*\)\s*=>|function\s*\([^)]*\))\s*\{[^}]*\bfetch\b`)},
	{label: "axios inside useEffect", re: regexp.MustCompile(`useEffect\s*\(\s*(?:async\s+)?(?:\([^)]*\)\s*=>|function\s*\([^)]*\))\s*\{[^}]*\baxios\b`)},
}

// TextualDetector scans raw source with fixed patterns. Matches inside
// comments and string literals count too.
type TextualDetector struct{}

func (TextualDetector) Detect(ctx *Context, _ []ComponentFunction) []Detection {
	index := parser.NewLineIndex(ctx.Source)
	var out []Detection
	for _, pattern := range fetchPatterns {
		for _, loc := range pattern.re.FindAllIndex(ctx.Source, -1) {
			out = append(out, Detection{
				Location: index.Location(loc[0]),
				Message:  fmt.Sprintf("Data fetching (%s) in a UI component. Move requests into a feature-layer hook or service.", pattern.label),
			})
		}
	}
	return out
}
