package cli

import (
	"github.com/spf13/cobra"

	"layerguard/internal/mcp"
)

func newMCPCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the layerguard MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(s))
	return cmd
}

func newMCPServeCmd(s *session) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the layerguard MCP server (stdio)",
		Long: "Start the MCP server on stdio so AI coding assistants can run checks, " +
			"read the rules document and trace imports for one project.",
		Args: usageArgs(cobra.NoArgs),
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

			srv := mcp.NewServer(mcp.Options{
				Root:       root,
				ConfigPath: s.settings.Config,
				Service:    svc,
			})
			return mcp.ServeStdio(srv)
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Project root")
	return cmd
}
