package rules

import (
	"layerguard/internal/core/config"
	"layerguard/internal/engine/layers"
)

// Descriptor documents a built-in rule for reports and generated docs.
type Descriptor struct {
	ID          string
	Toggle      string
	Description string
	Guidance    string
}

var Catalog = []Descriptor{
	{
		ID:          IDLayerBoundary,
		Toggle:      config.ToggleFeatureBoundaries,
		Description: "Files may only import from their own layer or from layers listed in allowedImports.",
		Guidance:    "Move the shared code into a layer both sides may import, or invert the dependency.",
	},
	{
		ID:          IDBusinessLogic,
		Toggle:      config.ToggleBusinessLogic,
		Description: "UI components must not contain loops or complex conditionals.",
		Guidance:    "Extract the logic into a hook or utility in the features or domain layer.",
	},
	{
		ID:          IDDataFetching,
		Toggle:      config.ToggleDataFetching,
		Description: "UI components must not fetch data directly.",
		Guidance:    "Call a feature-layer hook or service that owns the request.",
	},
	{
		ID:          IDCircularDeps,
		Toggle:      config.ToggleCircularDeps,
		Description: "Files must not import each other in a cycle.",
		Guidance:    "Break the cycle by moving the shared piece into a lower layer.",
	},
}

// Describe looks up a rule descriptor by id.
func Describe(id string) (Descriptor, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// DefaultEngine registers the built-in rules in their canonical order.
func DefaultEngine(cfg *config.ArchitectureConfig) *Engine {
	return NewEngine(
		NewLayerBoundaryRule(layers.NewResolver(cfg)),
		NewBusinessLogicRule(),
		NewDataFetchingRule(),
		NewCircularDependencyRule(),
	)
}
