// Package handlers implements the business logic for CLI commands.
//
// Handler functions are called by command definitions in the commands
// package. They are framework-agnostic and can be tested independently of
// the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/kindlab/kindstack/internal/bridge"
	"github.com/kindlab/kindstack/internal/cluster"
	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/dockerutil"
	"github.com/kindlab/kindstack/internal/stack"
)

// ClusterProvisioner matches cluster.Provisioner, for test injection.
type ClusterProvisioner interface {
	Ensure() error
	Delete() error
	Exists() (bool, error)
	Kubeconfig() ([]byte, error)
}

// StackDeployer matches stack.Deployer, for test injection.
type StackDeployer interface {
	Deploy(ctx context.Context) (*stack.Result, error)
	InstallStep(ctx context.Context, stepName string) error
	Status(ctx context.Context) ([]stack.ComponentStatus, error)
}

// BridgeManager matches bridge.Manager, for test injection.
type BridgeManager interface {
	EnsureAll(ctx context.Context, bridges []config.BridgeConfig) error
	List(ctx context.Context) ([]bridge.Status, error)
	RemoveAll(ctx context.Context) error
}

// Factory function variables - replaced in tests for dependency injection.
var (
	loadConfigFile = config.LoadFile
	findConfigFile = config.FindConfigFile
	writeFile      = os.WriteFile

	newProvisioner = func(cfg *config.Config) ClusterProvisioner {
		return cluster.NewProvisioner(cfg)
	}

	newDockerClient = func() (*dockerutil.Client, error) {
		return dockerutil.New()
	}

	newDeployer = func(cfg *config.Config, kubeconfig []byte, docker *dockerutil.Client) (StackDeployer, error) {
		return stack.NewDeployer(cfg, kubeconfig, docker)
	}

	newBridgeManager = func(docker *dockerutil.Client, clusterName string) BridgeManager {
		return bridge.NewManager(docker, clusterName)
	}
)

// loadConfig loads and validates the configuration. If configPath is empty,
// it looks for kindstack.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'kindstack init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// writeKubeconfig persists the cluster kubeconfig so kubectl users can
// reach the cluster directly.
func writeKubeconfig(path string, kubeconfig []byte) error {
	if err := writeFile(path, kubeconfig, 0o600); err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}
	return nil
}
