package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles for status output.
var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Status reports cluster existence, component release status, and bridge
// container state.
func Status(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	provisioner := newProvisioner(cfg)
	exists, err := provisioner.Exists()
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render("Cluster"))
	if !exists {
		fmt.Printf("  %s: %s\n", cfg.ClusterName, warnStyle.Render("not found"))
		fmt.Println("\nRun 'kindstack up' to create it.")
		return nil
	}
	fmt.Printf("  %s: %s\n", cfg.ClusterName, okStyle.Render("running"))

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

	statuses, err := deployer.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stack status: %w", err)
	}

	fmt.Println(headingStyle.Render("\nComponents"))
	for _, s := range statuses {
		detail := s.Detail
		if detail == "deployed" || detail == "ready" {
			detail = okStyle.Render(detail)
		} else {
			detail = warnStyle.Render(detail)
		}
		fmt.Printf("  %-12s %s\n", s.Name, detail)
	}

	bridges := newBridgeManager(docker, cfg.ClusterName)
	bridgeStatuses, err := bridges.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list bridges: %w", err)
	}

	fmt.Println(headingStyle.Render("\nBridges"))
	if len(bridgeStatuses) == 0 {
		fmt.Println("  none")
		return nil
	}
	for _, b := range bridgeStatuses {
		state := b.State
		if state == "running" {
			state = okStyle.Render(state)
		} else {
			state = warnStyle.Render(state)
		}
		fmt.Printf("  %-12s %s (%s)\n", b.Name, state, b.Container)
	}
	return nil
}
