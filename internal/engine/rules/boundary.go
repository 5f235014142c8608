package rules

import (
	"fmt"
	"strings"

	"layerguard/internal/engine/graph"
	"layerguard/internal/engine/layers"
)

// LayerBoundaryRule flags relative imports that cross into a layer the
// importing layer does not allow.
type LayerBoundaryRule struct {
	resolver *layers.Resolver
}

func NewLayerBoundaryRule(resolver *layers.Resolver) *LayerBoundaryRule {
	return &LayerBoundaryRule{resolver: resolver}
}

func (r *LayerBoundaryRule) Name() string { return IDLayerBoundary }

func (r *LayerBoundaryRule) Description() string {
	d, _ := Describe(IDLayerBoundary)
	return d.Description
}

func (r *LayerBoundaryRule) Execute(ctx *Context) Result {
	if !ctx.Config.Rules.EnforceFeatureBoundaries {
		return Result{}
	}
	fromLayer, ok := r.resolver.Resolve(ctx.File)
	if !ok {
		return Result{}
	}
	layer, _ := ctx.Config.Layer(fromLayer)

	var res Result
	for _, imp := range ctx.Imports {
		if !imp.IsRelative() {
			continue
		}
		target, ok := r.target(ctx, imp.Specifier)
		if !ok {
			continue
		}
		toLayer, ok := r.resolver.Resolve(target)
		if !ok || toLayer == fromLayer || layer.Allows(toLayer) {
			continue
		}
		res.Violations = append(res.Violations, ctx.violation(imp.Location, IDLayerBoundary, boundaryMessage(fromLayer, toLayer, layer.AllowedImports)))
	}
	return res
}

// target prefers the file the graph resolved the import to and falls back to
// the joined specifier path for imports that did not resolve.
func (r *LayerBoundaryRule) target(ctx *Context, specifier string) (string, bool) {
	if ctx.Graph != nil {
		if resolved, ok := ctx.Graph.ResolveSpecifier(ctx.File, specifier); ok {
			return resolved, true
		}
	}
	return graph.JoinSpecifier(ctx.File, specifier)
}

func boundaryMessage(from, to string, allowed []string) string {
	list := "none"
	if len(allowed) > 0 {
		list = strings.Join(allowed, ", ")
	}
	return fmt.Sprintf("Layer %q cannot import from layer %q. Allowed imports: %s", from, to, list)
}
