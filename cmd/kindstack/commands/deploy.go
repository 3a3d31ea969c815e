package commands

import (
	"github.com/spf13/cobra"

	"github.com/kindlab/kindstack/cmd/kindstack/handlers"
)

// Deploy returns the command that deploys the stack onto an existing cluster.
func Deploy() *cobra.Command {
	var (
		configPath string
		only       string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the stack onto an existing cluster",
		Long: `Deploy the stack onto an existing cluster without touching the cluster
itself or the bridges.

Use --only to re-run a single step, for example after building the
controller image:

  kindstack deploy --only controller

Steps: namespaces, secrets, monitoring, loki, argo-events, event-wiring,
controller.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath, only)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: kindstack.yaml)")
	cmd.Flags().StringVar(&only, "only", "", "Deploy a single step by name")

	return cmd
}
