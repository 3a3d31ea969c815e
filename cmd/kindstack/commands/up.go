package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindlab/kindstack/cmd/kindstack/handlers"
)

// Up returns the command that brings up the cluster, stack, and bridges.
func Up() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create the cluster and deploy the full stack",
		Long: `Create the Kind cluster, deploy the stack, and start the local bridges.

Every phase is idempotent: an existing cluster is reused, Helm releases are
upgraded in place, and running bridge containers are left alone. Re-run
'kindstack up' after changing the configuration to converge on it.

Examples:
  # Bring everything up using kindstack.yaml in the current directory
  kindstack up

  # Use a specific config file
  kindstack up -c staging.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kindstack.yaml)")

	return cmd
}
