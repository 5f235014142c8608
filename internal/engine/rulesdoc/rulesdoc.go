// Package rulesdoc renders the architecture config as a rules document for AI
// coding assistants.
package rulesdoc

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"layerguard/internal/core/config"
	"layerguard/internal/core/errors"
	"layerguard/internal/engine/parser"
	"layerguard/internal/engine/rules"
	"layerguard/internal/shared/util"
)

// Render is a pure function of the config: layers in document order with
// their allowed imports, then every enabled rule with its guidance.
func Render(cfg *config.ArchitectureConfig) string {
	var b strings.Builder

	globs := make([]string, 0, len(parser.SourceExtensions))
	for _, ext := range parser.SourceExtensions {
		globs = append(globs, `"**/*`+ext+`"`)
	}
	b.WriteString("---\n")
	b.WriteString("description: Architecture layers and rules enforced by layerguard\n")
	fmt.Fprintf(&b, "globs: [%s]\n", strings.Join(globs, ", "))
	b.WriteString("alwaysApply: true\n")
	b.WriteString("---\n\n")

	b.WriteString("# Architecture Rules\n\n")
	b.WriteString("This project is organized into layers. A file belongs to the first layer,\n")
	b.WriteString("in the order below, whose name appears as a directory in its path.\n")
	b.WriteString("Files may always import from their own layer.\n\n")

	b.WriteString("## Layers\n\n")
	for _, layer := range cfg.Layers {
		fmt.Fprintf(&b, "### %s (`%s/`)\n\n", Title(layer.Name), layer.Name)
		if len(layer.AllowedImports) == 0 {
			b.WriteString("- May not import from any other layer.\n\n")
			continue
		}
		allowed := make([]string, 0, len(layer.AllowedImports))
		for _, name := range layer.AllowedImports {
			allowed = append(allowed, "`"+name+"`")
		}
		fmt.Fprintf(&b, "- May import from: %s.\n\n", strings.Join(allowed, ", "))
	}

	b.WriteString("## Rules\n\n")
	active := 0
	for _, d := range rules.Catalog {
		if !cfg.Rules.Enabled(d.Toggle) {
			continue
		}
		active++
		fmt.Fprintf(&b, "### %s\n\n", d.ID)
		fmt.Fprintf(&b, "%s %s\n\n", d.Description, d.Guidance)
		if d.ID == rules.IDBusinessLogic || d.ID == rules.IDDataFetching {
			fmt.Fprintf(&b, "Applies to functions named in PascalCase or starting with `use` in files that import `%s`.\n\n", cfg.ComponentFramework)
		}
	}
	if active == 0 {
		b.WriteString("No rules are enabled.\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Title turns a layer name such as "sharedKernel" or "data_access" into a
// heading. Names of one or two letters are treated as acronyms.
func Title(name string) string {
	var words []string
	for _, part := range camelcase.Split(name) {
		if !isWord(part) {
			continue
		}
		words = append(words, capitalize(part))
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func capitalize(word string) string {
	if len(word) <= 2 {
		return strings.ToUpper(word)
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// OutputPath resolves the config's rulesOutput against the project root.
func OutputPath(root string, cfg *config.ArchitectureConfig) string {
	out := cfg.RulesOutput
	if out == "" {
		out = config.DefaultRulesOutput
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(root, filepath.FromSlash(out))
}

// Write renders the document to its output path, creating directories.
func Write(root string, cfg *config.ArchitectureConfig) (string, error) {
	path := OutputPath(root, cfg)
	if err := util.WriteStringWithDirs(path, Render(cfg), 0o644); err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write rules document"), errors.CtxPath, path)
	}
	return path, nil
}
