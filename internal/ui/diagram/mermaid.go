package diagram

import (
	"fmt"
	"strings"
	"unicode"

	"layerguard/internal/core/app"
)

// Mermaid renders a flowchart with one node per layer. Link indexes follow
// edge order so linkStyle can color cycle and violation edges.
func Mermaid(g app.LayerGraph) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	names := make([]string, 0, len(g.Layers))
	for _, layer := range g.Layers {
		names = append(names, layer.Name)
	}
	ids := makeMermaidIDs(names)

	for _, layer := range g.Layers {
		fmt.Fprintf(&b, "  %s[\"%s\\n(%s)\"]\n", ids[layer.Name], escapeMermaidLabel(layer.Name), files(layer.Files))
	}

	var cycleLinks, violationLinks []int
	cycleNodes := make(map[string]bool)
	if len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for i, e := range g.Edges {
		switch {
		case e.Cyclic:
			cycleLinks = append(cycleLinks, i)
			cycleNodes[e.From] = true
			cycleNodes[e.To] = true
		case !e.Allowed:
			violationLinks = append(violationLinks, i)
		}
		fmt.Fprintf(&b, "  %s -->|%s| %s\n", ids[e.From], edgeLabel(e), ids[e.To])
	}

	b.WriteString("\n")
	if len(names) > 0 {
		b.WriteString("  classDef layerNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px;\n")
		fmt.Fprintf(&b, "  class %s layerNode;\n", strings.Join(toIDs(names, ids), ","))
	}
	if len(cycleNodes) > 0 {
		var cyclic []string
		for _, name := range names {
			if cycleNodes[name] {
				cyclic = append(cyclic, name)
			}
		}
		b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px;\n")
		fmt.Fprintf(&b, "  class %s cycleNode;\n", strings.Join(toIDs(cyclic, ids), ","))
	}
	if len(cycleLinks) > 0 {
		fmt.Fprintf(&b, "  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(cycleLinks))
	}
	if len(violationLinks) > 0 {
		fmt.Fprintf(&b, "  linkStyle %s stroke:#a64d00,stroke-width:2px,stroke-dasharray:5 3;\n", joinInts(violationLinks))
	}
	return b.String()
}

func sanitizeMermaidID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "layer"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "l_" + out
	}
	// "end" is a Mermaid keyword.
	if strings.EqualFold(out, "end") {
		return out + "_"
	}
	return out
}

// makeMermaidIDs gives every name a distinct identifier, suffixing
// collisions such as "data-api" and "data_api".
func makeMermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func joinInts(v []int) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}
