package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"layerguard/internal/shared/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "layerguard %s\n", version.String())
		},
	}
}
