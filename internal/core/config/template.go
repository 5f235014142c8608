package config

import "fmt"

const tomlTemplate = `# layerguard architecture definition.
# Layers are matched against path segments in the order listed here.

[layers.domain]
allowedImports = []

[layers.shared]
allowedImports = []

[layers.features]
allowedImports = ["domain", "shared"]

[layers.ui]
allowedImports = ["features", "shared"]

[rules]
enforceFeatureBoundaries = true
noBusinessLogicInComponents = true
noDataFetchingInUI = true
noCircularDependencies = true
`

const yamlTemplate = `# layerguard architecture definition.
# Layers are matched against path segments in the order listed here.
layers:
  domain:
    allowedImports: []
  shared:
    allowedImports: []
  features:
    allowedImports: [domain, shared]
  ui:
    allowedImports: [features, shared]
rules:
  enforceFeatureBoundaries: true
  noBusinessLogicInComponents: true
  noDataFetchingInUI: true
  noCircularDependencies: true
`

const jsonTemplate = `{
  "layers": {
    "domain": { "allowedImports": [] },
    "shared": { "allowedImports": [] },
    "features": { "allowedImports": ["domain", "shared"] },
    "ui": { "allowedImports": ["features", "shared"] }
  },
  "rules": {
    "enforceFeatureBoundaries": true,
    "noBusinessLogicInComponents": true,
    "noDataFetchingInUI": true,
    "noCircularDependencies": true
  }
}
`

// Template returns a starter architecture document in the given format.
func Template(format Format) (string, error) {
	switch format {
	case FormatTOML:
		return tomlTemplate, nil
	case FormatYAML:
		return yamlTemplate, nil
	case FormatJSON:
		return jsonTemplate, nil
	}
	return "", fmt.Errorf("no template for format %q", format)
}
