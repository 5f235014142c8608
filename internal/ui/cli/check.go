package cli

import (
	"github.com/spf13/cobra"

	"layerguard/internal/core/app"
	"layerguard/internal/ui/report"
)

func newCheckCmd(s *session) *cobra.Command {
	var (
		changedOnly bool
		record      bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check a project against its architecture document",
		Long: "Analyze every source file under the project root and report layer boundary " +
			"violations, import cycles between layers, business logic in components and " +
			"data fetching in UI code. Exits 1 when any violation is found.",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(s.settings.Format)
			if err != nil {
				return usageError(err)
			}

			svc, cleanup, err := s.service(root, record)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Check(cmd.Context(), app.CheckRequest{
				Root:        root,
				ConfigPath:  s.settings.Config,
				ChangedOnly: changedOnly,
				Record:      record,
			})
			if err != nil {
				return err
			}
			if err := report.Render(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}
			if !result.Passed {
				return failed("architecture violations found")
			}
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format: text, pretty, json or sarif")
	cmd.Flags().BoolVar(&changedOnly, "changed-only", false, "Only report violations in files changed in the git worktree")
	cmd.Flags().BoolVar(&record, "record", false, "Save a summary of this run to the history database")
	return cmd
}
