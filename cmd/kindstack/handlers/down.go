package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/cluster"
)

// Down removes the bridges and deletes the cluster. Bridge teardown is
// best-effort; a missing cluster is reported but is not a failure.
func Down(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	docker, err := newDockerClient()
	if err != nil {
		return err
	}

	bridges := newBridgeManager(docker, cfg.ClusterName)
	if err := bridges.RemoveAll(ctx); err != nil {
		log.Printf("Warning: bridge teardown incomplete: %v", err)
	}

	provisioner := newProvisioner(cfg)
	if err := provisioner.Delete(); err != nil {
		if errors.Is(err, cluster.ErrClusterNotFound) {
			fmt.Printf("Cluster %q does not exist, nothing to delete.\n", cfg.ClusterName)
			return nil
		}
		return fmt.Errorf("failed to delete cluster: %w", err)
	}

	fmt.Printf("Cluster %q deleted.\n", cfg.ClusterName)
	return nil
}
