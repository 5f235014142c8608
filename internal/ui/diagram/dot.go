package diagram

import (
	"fmt"
	"strings"

	"layerguard/internal/core/app"
)

// DOT renders a Graphviz digraph with one node per layer. Forbidden edges are
// dashed orange and edges on an import cycle are red.
func DOT(g app.LayerGraph) string {
	var buf strings.Builder

	buf.WriteString("digraph layers {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10, fillcolor=\"white\", color=\"darkslategrey\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.6;\n\n")

	cycleLayers := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Cyclic {
			cycleLayers[e.From] = true
			cycleLayers[e.To] = true
		}
	}

	for _, layer := range g.Layers {
		label := fmt.Sprintf("%s\\n(%s)", layer.Name, files(layer.Files))
		if cycleLayers[layer.Name] {
			fmt.Fprintf(&buf, "  %q [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", layer.Name, label)
		} else {
			fmt.Fprintf(&buf, "  %q [label=\"%s\"];\n", layer.Name, label)
		}
	}
	buf.WriteString("\n")

	for _, e := range g.Edges {
		switch {
		case e.Cyclic:
			fmt.Fprintf(&buf, "  %q -> %q [color=\"red\", penwidth=3.0, label=%q];\n", e.From, e.To, edgeLabel(e))
		case !e.Allowed:
			fmt.Fprintf(&buf, "  %q -> %q [color=\"darkorange\", style=dashed, penwidth=2.0, label=%q];\n", e.From, e.To, edgeLabel(e))
		default:
			fmt.Fprintf(&buf, "  %q -> %q [color=\"forestgreen\", label=%q];\n", e.From, e.To, edgeLabel(e))
		}
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_allowed [label=\"Allowed import\", shape=plaintext, fontcolor=\"forestgreen\"];\n")
	buf.WriteString("    legend_violation [label=\"Forbidden import\", shape=plaintext, fontcolor=\"darkorange\"];\n")
	buf.WriteString("    legend_cycle [label=\"Import cycle\", shape=plaintext, fontcolor=\"red\"];\n")
	buf.WriteString("  }\n")
	buf.WriteString("}\n")
	return buf.String()
}

func files(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
