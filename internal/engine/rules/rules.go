package rules

import (
	"sort"

	"layerguard/internal/core/config"
	"layerguard/internal/engine/graph"
	"layerguard/internal/engine/parser"
)

const (
	IDLayerBoundary = "layer-import-boundary"
	IDBusinessLogic = "no-business-logic-in-components"
	IDDataFetching  = "no-data-fetching-in-ui"
	IDCircularDeps  = "no-circular-layer-deps"
)

// Violation is a single finding pinned to a 1-based source position.
type Violation struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	RuleID  string `json:"ruleId"`
}

// Result holds a rule's violations in the order the rule produced them.
type Result struct {
	Violations []Violation
}

func (r Result) Passed() bool {
	return len(r.Violations) == 0
}

// Context is everything a rule may look at for one file. Rules treat it as
// read-only; Graph and Tree are shared with other goroutines.
type Context struct {
	File    string
	Source  []byte
	Tree    *parser.SyntaxTree
	Imports []parser.Import
	Config  *config.ArchitectureConfig
	// Graph is nil when the caller did not build one.
	Graph *graph.ImportGraph
}

func (c *Context) violation(loc parser.Location, ruleID, message string) Violation {
	return Violation{
		File:    c.File,
		Line:    loc.Line,
		Column:  loc.Column,
		Message: message,
		RuleID:  ruleID,
	}
}

// Rule is a named check over one file. A rule whose toggle is off must still
// be callable and return an empty result.
type Rule interface {
	Name() string
	Description() string
	Execute(ctx *Context) Result
}

// Engine runs registered rules in registration order.
type Engine struct {
	rules []Rule
}

func NewEngine(rules ...Rule) *Engine {
	e := &Engine{}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Execute concatenates every rule's violations: rule order first, then the
// order within each rule.
func (e *Engine) Execute(ctx *Context) Result {
	var out Result
	for _, r := range e.rules {
		res := r.Execute(ctx)
		out.Violations = append(out.Violations, res.Violations...)
	}
	return out
}

// Aggregate folds per-file results into one result ordered by file, line,
// column and rule id, independent of the order the results were produced in.
func Aggregate(results []Result) Result {
	var out Result
	for _, res := range results {
		out.Violations = append(out.Violations, res.Violations...)
	}
	SortViolations(out.Violations)
	return out
}

func SortViolations(v []Violation) {
	sort.SliceStable(v, func(i, j int) bool {
		a, b := v[i], v[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}
