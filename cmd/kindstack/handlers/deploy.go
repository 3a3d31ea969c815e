package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/stack"
)

// Deploy runs the stack deployment against an existing cluster. If only is
// non-empty, just that step runs.
func Deploy(ctx context.Context, configPath, only string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if only != "" && !stack.KnownStep(only) {
		return fmt.Errorf("unknown step %q", only)
	}

	provisioner := newProvisioner(cfg)
	exists, err := provisioner.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("cluster %q does not exist, run 'kindstack up' first", cfg.ClusterName)
	}

	kubeconfig, err := provisioner.Kubeconfig()
	if err != nil {
		return err
	}

	docker, err := newDockerClient()
	if err != nil {
		return err
	}

	deployer, err := newDeployer(cfg, kubeconfig, docker)
	if err != nil {
		return err
	}

	if only != "" {
		log.Printf("Deploying step: %s", only)
		if err := deployer.InstallStep(ctx, only); err != nil {
			return fmt.Errorf("step %s failed: %w", only, err)
		}
		fmt.Printf("Step %s deployed.\n", only)
		return nil
	}

	result, err := deployer.Deploy(ctx)
	if err != nil {
		return fmt.Errorf("stack deployment failed: %w", err)
	}

	fmt.Printf("Stack deployed (%d steps).\n", len(result.Completed))
	if len(result.Degraded) > 0 {
		fmt.Printf("Skipped components: %v (see messages above for how to deploy them)\n", result.Degraded)
	}
	return nil
}
