package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindlab/kindstack/cmd/kindstack/handlers"
)

// Status returns the command that reports cluster, stack, and bridge state.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cluster, component, and bridge status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kindstack.yaml)")

	return cmd
}
