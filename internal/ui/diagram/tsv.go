package diagram

import (
	"fmt"
	"strings"

	"layerguard/internal/core/app"
)

// TSV lists one row per layer edge.
func TSV(g app.LayerGraph) string {
	var buf strings.Builder
	buf.WriteString("From\tTo\tImports\tAllowed\tCyclic\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "%s\t%s\t%d\t%t\t%t\n", e.From, e.To, e.Imports, e.Allowed, e.Cyclic)
	}
	return buf.String()
}
