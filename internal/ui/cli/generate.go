package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"layerguard/internal/engine/rulesdoc"
)

func newGenerateCmd(s *session) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate the rules document for AI coding assistants",
		Long: "Render the architecture document as a markdown rules file listing every layer, " +
			"what it may import and the enabled rules. The file is written to rulesOutput " +
			"(default .cursor/rules/architecture.mdc).",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			svc, cleanup, err := s.service(root, false)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := svc.LoadConfig(root, s.settings.Config)
			if err != nil {
				return err
			}
			if stdout {
				_, err := io.WriteString(cmd.OutOrStdout(), rulesdoc.Render(cfg))
				return err
			}
			path, err := rulesdoc.Write(root, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", relOrAbs(path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the document instead of writing it")
	return cmd
}
