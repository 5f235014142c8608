package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"layerguard/internal/core/app"
)

func newTraceCmd(s *session) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "trace <from> <to>",
		Short: "Show the shortest import chain between two files",
		Long: "Print the shortest chain of relative imports leading from one file to another. " +
			"Both files are given relative to the project root. Exits 1 when there is no chain.",
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot([]string{path})
			if err != nil {
				return err
			}
			svc, cleanup, err := s.service(root, false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Trace(cmd.Context(), app.TraceRequest{
				Root:       root,
				ConfigPath: s.settings.Config,
				From:       args[0],
				To:         args[1],
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !result.Found {
				fmt.Fprintf(out, "No import chain from %s to %s\n", args[0], args[1])
				if len(result.Importers) == 0 {
					fmt.Fprintf(out, "%s is not imported by any analyzed file\n", args[1])
				} else {
					fmt.Fprintf(out, "Imported directly by: %s\n", strings.Join(result.Importers, ", "))
				}
				return failed("no import chain")
			}
			fmt.Fprintln(out, strings.Join(result.Chain, " -> "))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Project root")
	return cmd
}
