package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"layerguard/internal/core/config"
	"layerguard/internal/shared/util"
)

var initFileNames = map[config.Format]string{
	config.FormatTOML: "layerguard.toml",
	config.FormatYAML: "layerguard.yaml",
	config.FormatJSON: "layerguard.json",
}

func newInitCmd(_ *session) *cobra.Command {
	var (
		docType string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter architecture document",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			format := config.Format(docType)
			name, ok := initFileNames[format]
			if !ok {
				return usageError(fmt.Errorf("--type must be one of: toml, yaml, json (got %q)", docType))
			}
			if !force {
				if existing, err := config.Discover(root); err == nil {
					return usageError(fmt.Errorf("%s already exists (use --force to overwrite)", existing))
				}
			}

			content, err := config.Template(format)
			if err != nil {
				return err
			}
			path := filepath.Join(root, name)
			if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", relOrAbs(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "type", string(config.FormatTOML), "Document format: toml, yaml or json")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing architecture document")
	return cmd
}

// relOrAbs shortens path relative to the working directory when it is below it.
func relOrAbs(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := util.RelSlash(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}
