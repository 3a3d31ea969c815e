package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindlab/kindstack/cmd/kindstack/handlers"
)

// Down returns the command that tears everything down.
func Down() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Remove the bridges and delete the cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Down(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kindstack.yaml)")

	return cmd
}
