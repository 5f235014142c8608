package config

import (
	"slices"
	"strings"
)

const (
	DefaultComponentFramework = "react"
	DefaultRulesOutput        = ".cursor/rules/architecture.mdc"
)

// Rule toggle keys as they appear under the `rules` table of the document.
const (
	ToggleFeatureBoundaries = "enforceFeatureBoundaries"
	ToggleBusinessLogic     = "noBusinessLogicInComponents"
	ToggleDataFetching      = "noDataFetchingInUI"
	ToggleCircularDeps      = "noCircularDependencies"
)

// ToggleKeys lists every recognised rule toggle in documentation order.
var ToggleKeys = []string{
	ToggleFeatureBoundaries,
	ToggleBusinessLogic,
	ToggleDataFetching,
	ToggleCircularDeps,
}

// LayerConfig names a layer and the layers it may import from.
type LayerConfig struct {
	Name           string
	AllowedImports []string
}

// Allows reports whether target is in the allow-list.
func (l LayerConfig) Allows(target string) bool {
	return slices.Contains(l.AllowedImports, target)
}

type RuleToggles struct {
	EnforceFeatureBoundaries    bool
	NoBusinessLogicInComponents bool
	NoDataFetchingInUI          bool
	NoCircularDependencies      bool
}

// DefaultRuleToggles enables every rule.
func DefaultRuleToggles() RuleToggles {
	return RuleToggles{
		EnforceFeatureBoundaries:    true,
		NoBusinessLogicInComponents: true,
		NoDataFetchingInUI:          true,
		NoCircularDependencies:      true,
	}
}

// Enabled looks a toggle up by its document key. Unknown keys report false.
func (r RuleToggles) Enabled(key string) bool {
	switch key {
	case ToggleFeatureBoundaries:
		return r.EnforceFeatureBoundaries
	case ToggleBusinessLogic:
		return r.NoBusinessLogicInComponents
	case ToggleDataFetching:
		return r.NoDataFetchingInUI
	case ToggleCircularDeps:
		return r.NoCircularDependencies
	}
	return false
}

func (r *RuleToggles) set(key string, value bool) bool {
	switch key {
	case ToggleFeatureBoundaries:
		r.EnforceFeatureBoundaries = value
	case ToggleBusinessLogic:
		r.NoBusinessLogicInComponents = value
	case ToggleDataFetching:
		r.NoDataFetchingInUI = value
	case ToggleCircularDeps:
		r.NoCircularDependencies = value
	default:
		return false
	}
	return true
}

// ArchitectureConfig is the loaded architecture document. Layers keep their
// document order, which is the order the layer resolver tries them in.
type ArchitectureConfig struct {
	Layers             []LayerConfig
	Rules              RuleToggles
	ComponentFramework string
	Exclude            []string
	RulesOutput        string

	// Source is the file the config was read from, empty when built in code.
	Source string

	index    map[string]int
	warnings []string
}

// New builds a config from layers in the given order with default extras.
func New(layers []LayerConfig, rules RuleToggles) *ArchitectureConfig {
	cfg := &ArchitectureConfig{
		Layers:             layers,
		Rules:              rules,
		ComponentFramework: DefaultComponentFramework,
		RulesOutput:        DefaultRulesOutput,
	}
	cfg.reindex()
	return cfg
}

func (c *ArchitectureConfig) reindex() {
	c.index = make(map[string]int, len(c.Layers))
	for i, layer := range c.Layers {
		c.index[layer.Name] = i
	}
}

// Layer returns the named layer. Configs not built by New or a loader have
// no index and are scanned instead, so Layer never writes to c.
func (c *ArchitectureConfig) Layer(name string) (LayerConfig, bool) {
	if c.index == nil {
		for _, layer := range c.Layers {
			if layer.Name == name {
				return layer, true
			}
		}
		return LayerConfig{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return LayerConfig{}, false
	}
	return c.Layers[i], true
}

// LayerNames returns layer names in document order.
func (c *ArchitectureConfig) LayerNames() []string {
	names := make([]string, 0, len(c.Layers))
	for _, layer := range c.Layers {
		names = append(names, layer.Name)
	}
	return names
}

// Warnings are non-fatal findings from loading, such as allow-list entries
// that reference undeclared layers.
func (c *ArchitectureConfig) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func (c *ArchitectureConfig) collectWarnings() {
	c.warnings = nil
	for _, layer := range c.Layers {
		for _, allowed := range layer.AllowedImports {
			if _, ok := c.Layer(allowed); !ok {
				c.warnings = append(c.warnings, "layers."+layer.Name+".allowedImports references undeclared layer \""+allowed+"\"")
			}
			if allowed == layer.Name {
				c.warnings = append(c.warnings, "layers."+layer.Name+".allowedImports lists the layer itself; same-layer imports are always allowed")
			}
		}
	}
}

func (c *ArchitectureConfig) applyDefaults() {
	if strings.TrimSpace(c.ComponentFramework) == "" {
		c.ComponentFramework = DefaultComponentFramework
	}
	if strings.TrimSpace(c.RulesOutput) == "" {
		c.RulesOutput = DefaultRulesOutput
	}
}
