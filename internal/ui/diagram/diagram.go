// Package diagram renders the layer dependency graph as Graphviz DOT,
// Mermaid or TSV.
package diagram

import (
	"fmt"
	"io"
	"strings"

	"layerguard/internal/core/app"
	"layerguard/internal/core/errors"
)

type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatTSV     Format = "tsv"
)

var Formats = []Format{FormatDOT, FormatMermaid, FormatTSV}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", errors.Newf(errors.CodeValidationError, "unknown diagram format %q (expected dot, mermaid or tsv)", s)
}

func Render(w io.Writer, format Format, g app.LayerGraph) error {
	var out string
	switch format {
	case FormatDOT:
		out = DOT(g)
	case FormatMermaid:
		out = Mermaid(g)
	case FormatTSV:
		out = TSV(g)
	default:
		return errors.Newf(errors.CodeNotSupported, "diagram format %q is not supported", format)
	}
	_, err := io.WriteString(w, out)
	return err
}

func edgeLabel(e app.LayerEdge) string {
	label := fmt.Sprintf("%d", e.Imports)
	switch {
	case e.Cyclic:
		label += " CYCLE"
	case !e.Allowed:
		label += " VIOLATION"
	}
	return label
}
