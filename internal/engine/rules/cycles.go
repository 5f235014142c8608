package rules

import (
	"fmt"
	"strings"

	"layerguard/internal/engine/parser"
)

// CircularDependencyRule reports each import cycle once, on the cycle's
// lexicographically smallest file at 1:1.
type CircularDependencyRule struct{}

func NewCircularDependencyRule() *CircularDependencyRule {
	return &CircularDependencyRule{}
}

func (r *CircularDependencyRule) Name() string { return IDCircularDeps }

func (r *CircularDependencyRule) Description() string {
	d, _ := Describe(IDCircularDeps)
	return d.Description
}

func (r *CircularDependencyRule) Execute(ctx *Context) Result {
	if ctx.Graph == nil || !ctx.Config.Rules.NoCircularDependencies {
		return Result{}
	}
	var res Result
	for _, cycle := range ctx.Graph.CanonicalCycles() {
		if cycle[0] != ctx.File {
			continue
		}
		res.Violations = append(res.Violations, ctx.violation(
			parser.Location{Line: 1, Column: 1},
			IDCircularDeps,
			fmt.Sprintf("Circular dependency detected: %s", strings.Join(cycle, " -> ")),
		))
	}
	return res
}
