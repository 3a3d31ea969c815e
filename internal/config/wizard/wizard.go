// Package wizard implements the interactive `kindstack init` questionnaire.
package wizard

import (
	"context"
	"fmt"
	"slices"

	"github.com/kindlab/kindstack/internal/config"
)

// Component keys offered in the wizard.
const (
	ComponentMonitoring = "monitoring"
	ComponentLoki       = "loki"
	ComponentEvents     = "events"
	ComponentController = "controller"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	ClusterName string
	Workers     int

	// Components selected for deployment.
	Components []string

	GrafanaAdminUser string
	WebhookPort      int
	ControllerImage  string
}

// RunWizard runs the interactive configuration wizard. The context is used
// for cancellation support (e.g. Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runClusterGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	if err := runComponentsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("components: %w", err)
	}

	if err := runSettingsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	return result, nil
}

// ToConfig converts wizard answers into a validated configuration.
func (r *WizardResult) ToConfig() *config.Config {
	cfg := config.Default()
	cfg.ClusterName = r.ClusterName
	cfg.Workers = r.Workers

	cfg.Stack.Monitoring.Enabled = slices.Contains(r.Components, ComponentMonitoring)
	cfg.Stack.Loki.Enabled = slices.Contains(r.Components, ComponentLoki)
	cfg.Stack.Events.Enabled = slices.Contains(r.Components, ComponentEvents)
	cfg.Stack.Controller.Enabled = slices.Contains(r.Components, ComponentController)

	if r.GrafanaAdminUser != "" {
		cfg.Stack.Monitoring.GrafanaAdminUser = r.GrafanaAdminUser
	}
	if r.WebhookPort != 0 {
		cfg.Stack.Events.WebhookPort = r.WebhookPort
	}
	if r.ControllerImage != "" {
		cfg.Stack.Controller.Image = r.ControllerImage
	}

	// Bridges follow the selected components.
	cfg.Bridges = config.DefaultBridges(cfg)
	return cfg
}
