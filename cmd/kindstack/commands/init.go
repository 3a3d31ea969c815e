package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindlab/kindstack/cmd/kindstack/handlers"
	"github.com/kindlab/kindstack/internal/config"
)

// Init returns the command that creates a configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a kindstack configuration file",
		Long: `Create a kindstack configuration file.

When run in a terminal, an interactive wizard asks for the cluster name,
worker count, and which stack components to deploy. Without a terminal the
default configuration is written.

Examples:
  # Interactive setup
  kindstack init

  # Write to a different file
  kindstack init -o staging.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFile, "Path to write the configuration file")

	return cmd
}
