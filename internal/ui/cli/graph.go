package cli

import (
	"github.com/spf13/cobra"

	"layerguard/internal/ui/diagram"
)

func newGraphCmd(s *session) *cobra.Command {
	var diagramType string

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print the layer dependency diagram",
		Long: "Collapse the import graph onto the configured layers and print it as Graphviz DOT, " +
			"Mermaid or TSV. Forbidden edges and edges on import cycles are highlighted.",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			format, err := diagram.ParseFormat(diagramType)
			if err != nil {
				return usageError(err)
			}
			svc, cleanup, err := s.service(root, false)
			if err != nil {
				return err
			}
			defer cleanup()

			g, err := svc.LayerGraph(cmd.Context(), root, s.settings.Config)
			if err != nil {
				return err
			}
			return diagram.Render(cmd.OutOrStdout(), format, g)
		},
	}

	cmd.Flags().StringVar(&diagramType, "type", string(diagram.FormatMermaid), "Diagram format: dot, mermaid or tsv")
	return cmd
}
