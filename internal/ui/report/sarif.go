package report

import (
	"encoding/json"

	"layerguard/internal/core/app"
	"layerguard/internal/engine/rules"
	"layerguard/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	Help             sarifMessage           `json:"help"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

// GenerateSARIF builds a SARIF v2.1.0 document with one rule descriptor per
// built-in rule. Violation paths are already root-relative, so URIs are
// anchored at %SRCROOT%.
func GenerateSARIF(r app.Report) ([]byte, error) {
	descriptors := make([]sarifRule, 0, len(rules.Catalog))
	index := make(map[string]int, len(rules.Catalog))
	for i, d := range rules.Catalog {
		index[d.ID] = i
		descriptors = append(descriptors, sarifRule{
			ID:               d.ID,
			Name:             ruleName(d.ID),
			ShortDescription: sarifMessage{Text: d.Description},
			Help:             sarifMessage{Text: d.Guidance},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}

	results := make([]sarifResult, 0, len(r.Violations))
	for _, v := range r.Violations {
		results = append(results, sarifResult{
			RuleID:    v.RuleID,
			RuleIndex: index[v.RuleID],
			Level:     "error",
			Message:   sarifMessage{Text: v.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.File, URIBaseID: "%SRCROOT%"},
					Region:           sarifRegion{StartLine: v.Line, StartColumn: v.Column},
				},
			}},
		})
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "layerguard",
						Version: version.Version,
						Rules:   descriptors,
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ruleName turns a kebab-case rule id into the PascalCase name SARIF viewers
// display.
func ruleName(id string) string {
	out := make([]byte, 0, len(id))
	upper := true
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '-' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
