package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	lgerrors "layerguard/internal/core/errors"
	"layerguard/internal/shared/util"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// CandidateFiles are tried in order by Discover.
var CandidateFiles = []string{
	"layerguard.toml",
	"layerguard.yaml",
	"layerguard.yml",
	"layerguard.json",
}

// FormatFromPath picks the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("unsupported config extension %q (use .toml, .yaml, .yml or .json)", filepath.Ext(path)))
}

// Discover returns the first candidate config file present in root.
func Discover(root string) (string, error) {
	for _, name := range CandidateFiles {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	err := lgerrors.New(lgerrors.CodeConfig, "no configuration file found (expected one of "+strings.Join(CandidateFiles, ", ")+")")
	return "", lgerrors.AddContext(err, lgerrors.CtxPath, root)
}

// Loader resolves the config for a project root: an explicit path wins,
// otherwise the first candidate file in the root is used.
type Loader struct{}

func (Loader) LoadConfig(root, explicitPath string) (*ArchitectureConfig, error) {
	path := strings.TrimSpace(explicitPath)
	if path == "" {
		found, err := Discover(root)
		if err != nil {
			return nil, err
		}
		path = found
	}
	return Load(path)
}

// Load reads and validates an architecture document.
func Load(path string) (*ArchitectureConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lgerrors.AddContext(lgerrors.Wrap(err, lgerrors.CodeConfig, "failed to read configuration"), lgerrors.CtxPath, path)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, lgerrors.AddContext(err, lgerrors.CtxPath, path)
	}
	cfg.Source = path
	return cfg, nil
}

// Parse decodes data in the given format into a validated config.
func Parse(data []byte, format Format) (*ArchitectureConfig, error) {
	var (
		raw   any
		order []string
		err   error
	)
	switch format {
	case FormatTOML:
		raw, order, err = decodeTOML(data)
	case FormatYAML:
		raw, order, err = decodeYAML(data)
	case FormatJSON:
		raw, order, err = decodeJSON(data)
	default:
		return nil, lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("unsupported config format %q", format))
	}
	if err != nil {
		return nil, lgerrors.Wrap(err, lgerrors.CodeConfig, fmt.Sprintf("invalid %s document", format))
	}
	return fromRaw(raw, order)
}

func decodeTOML(data []byte) (any, []string, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, nil, err
	}
	var order []string
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) < 2 || key[0] != "layers" || seen[key[1]] {
			continue
		}
		seen[key[1]] = true
		order = append(order, key[1])
	}
	return raw, order, nil
}

func decodeYAML(data []byte) (any, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil, nil
	}
	root := doc.Content[0]
	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, nil, err
	}
	var order []string
	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value != "layers" || root.Content[i+1].Kind != yaml.MappingNode {
				continue
			}
			layers := root.Content[i+1]
			for j := 0; j+1 < len(layers.Content); j += 2 {
				order = append(order, layers.Content[j].Value)
			}
		}
	}
	return raw, order, nil
}

func decodeJSON(data []byte) (any, []string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	order, err := jsonLayerOrder(data)
	if err != nil {
		return nil, nil, err
	}
	return raw, order, nil
}

// jsonLayerOrder streams the document to recover key order under "layers",
// which map decoding discards.
func jsonLayerOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		if key != "layers" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		open, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := open.(json.Delim); !ok || delim != '{' {
			continue
		}
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := nameTok.(string)
			order = append(order, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return nil, err
		}
	}
	return order, nil
}

func fromRaw(raw any, order []string) (*ArchitectureConfig, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, lgerrors.New(lgerrors.CodeConfig, "configuration document must be an object")
	}

	layersRaw, present := doc["layers"]
	if !present {
		return nil, lgerrors.New(lgerrors.CodeConfig, "configuration must define layers")
	}
	layersDoc, ok := layersRaw.(map[string]any)
	if !ok {
		return nil, lgerrors.New(lgerrors.CodeConfig, "layers must be an object mapping layer names to settings")
	}

	cfg := &ArchitectureConfig{Rules: DefaultRuleToggles()}
	for _, name := range orderedLayerNames(layersDoc, order) {
		layer, err := parseLayer(name, layersDoc[name])
		if err != nil {
			return nil, err
		}
		cfg.Layers = append(cfg.Layers, layer)
	}

	unknownRules, err := parseRules(doc["rules"], &cfg.Rules)
	if err != nil {
		return nil, err
	}

	framework, err := optionalString(doc, "componentFramework")
	if err != nil {
		return nil, err
	}
	cfg.ComponentFramework = framework

	rulesOutput, err := optionalString(doc, "rulesOutput")
	if err != nil {
		return nil, err
	}
	cfg.RulesOutput = rulesOutput

	exclude, err := stringList(doc["exclude"], "exclude")
	if err != nil {
		return nil, err
	}
	cfg.Exclude = exclude

	cfg.applyDefaults()
	cfg.reindex()
	cfg.collectWarnings()
	for _, key := range unknownRules {
		cfg.warnings = append(cfg.warnings, fmt.Sprintf("rules.%s is not a known rule toggle (known: %s)", key, strings.Join(ToggleKeys, ", ")))
	}
	return cfg, nil
}

// orderedLayerNames trusts the recovered document order and appends any
// layer it missed in sorted order.
func orderedLayerNames(layers map[string]any, order []string) []string {
	names := make([]string, 0, len(layers))
	seen := make(map[string]bool, len(layers))
	for _, name := range order {
		if _, ok := layers[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range layers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func parseLayer(name string, raw any) (LayerConfig, error) {
	if strings.TrimSpace(name) == "" {
		return LayerConfig{}, lgerrors.New(lgerrors.CodeConfig, "layer names must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		err := lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("layers.%s: layer names must be a single path segment", name))
		return LayerConfig{}, lgerrors.AddContext(err, lgerrors.CtxLayer, name)
	}
	layer := LayerConfig{Name: name, AllowedImports: []string{}}
	if raw == nil {
		return layer, nil
	}
	settings, ok := raw.(map[string]any)
	if !ok {
		err := lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("layers.%s must be an object", name))
		return LayerConfig{}, lgerrors.AddContext(err, lgerrors.CtxLayer, name)
	}
	allowed, err := stringList(settings["allowedImports"], "layers."+name+".allowedImports")
	if err != nil {
		return LayerConfig{}, lgerrors.AddContext(err, lgerrors.CtxLayer, name)
	}
	if allowed != nil {
		layer.AllowedImports = allowed
	}
	return layer, nil
}

// parseRules applies known toggles and returns the keys it did not recognise.
func parseRules(raw any, toggles *RuleToggles) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	rules, ok := raw.(map[string]any)
	if !ok {
		return nil, lgerrors.New(lgerrors.CodeConfig, "rules must be an object of boolean toggles")
	}
	var unknown []string
	for _, key := range util.SortedStringKeys(rules) {
		value, ok := rules[key].(bool)
		if !ok {
			err := lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("rules.%s must be a boolean", key))
			return nil, lgerrors.AddContext(err, lgerrors.CtxRule, key)
		}
		if !toggles.set(key, value) {
			unknown = append(unknown, key)
		}
	}
	return unknown, nil
}

func stringList(raw any, field string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, lgerrors.New(lgerrors.CodeConfig, field+" must be a list")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, lgerrors.New(lgerrors.CodeConfig, fmt.Sprintf("%s[%d] must be a string", field, i))
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalString(doc map[string]any, field string) (string, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", lgerrors.New(lgerrors.CodeConfig, field+" must be a string")
	}
	return strings.TrimSpace(s), nil
}
