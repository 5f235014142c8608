package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate the architecture document without analyzing sources",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
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
			out := cmd.OutOrStdout()
			for _, warning := range cfg.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			fmt.Fprintf(out, "Configuration OK: %s (%s: %s)\n",
				relOrAbs(cfg.Source), plural(len(cfg.Layers), "layer"), strings.Join(cfg.LayerNames(), ", "))
			return nil
		},
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
