package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack"
)

// Up provisions the cluster, deploys the stack, and starts the bridges.
//
// The sequence is fixed: the cluster must exist before anything can deploy
// into it, and bridges come last so they only ever point at services that
// are already reachable. Each phase is idempotent, so re-running `up`
// converges an existing deployment instead of failing.
func Up(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log.Printf("Bringing up stack for cluster: %s", cfg.ClusterName)

	provisioner := newProvisioner(cfg)
	if err := provisioner.Ensure(); err != nil {
		return fmt.Errorf("failed to ensure cluster: %w", err)
	}

	kubeconfig, err := provisioner.Kubeconfig()
	if err != nil {
		return err
	}
	if err := writeKubeconfig(cfg.KubeconfigPath, kubeconfig); err != nil {
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

	result, err := deployer.Deploy(ctx)
	if err != nil {
		return fmt.Errorf("stack deployment failed: %w", err)
	}

	bridges := newBridgeManager(docker, cfg.ClusterName)
	if err := bridges.EnsureAll(ctx, cfg.Bridges); err != nil {
		return fmt.Errorf("failed to start bridges: %w", err)
	}

	printUpSuccess(cfg, result.Degraded)
	return nil
}

// printUpSuccess outputs the endpoints and any degraded components.
func printUpSuccess(cfg *config.Config, degraded []string) {
	fmt.Printf("\nStack is up!\n")
	fmt.Printf("Kubeconfig saved to: %s\n", cfg.KubeconfigPath)
	fmt.Println()

	for _, b := range cfg.Bridges {
		switch b.Name {
		case "grafana":
			fmt.Printf("  Grafana:  http://127.0.0.1:%d\n", b.LocalPort)
		case "webhook":
			fmt.Printf("  Webhook:  http://127.0.0.1:%d/deploy (bearer token in secret %s/%s)\n",
				b.LocalPort, config.NamespaceEvents, stack.WebhookTokenSecret)
		default:
			fmt.Printf("  %s: 127.0.0.1:%d -> %s:%d\n", b.Name, b.LocalPort, b.TargetHost, b.TargetPort)
		}
	}

	if len(degraded) > 0 {
		fmt.Printf("\nSkipped components: %v (see messages above for how to deploy them)\n", degraded)
	}
}
