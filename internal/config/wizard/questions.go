package wizard

import (
	"context"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// workerCountOptions are the worker node counts offered for a local cluster.
var workerCountOptions = []huh.Option[int]{
	huh.NewOption("0 (control plane only)", 0),
	huh.NewOption("1", 1),
	huh.NewOption("2", 2),
	huh.NewOption("3", 3),
}

// componentOptions describe the stack components offered in the wizard.
var componentOptions = []huh.Option[string]{
	huh.NewOption("Monitoring - Prometheus, Grafana, Alertmanager", ComponentMonitoring),
	huh.NewOption("Loki - log aggregation", ComponentLoki),
	huh.NewOption("Argo Events - webhook-driven automation", ComponentEvents),
	huh.NewOption("Controller - locally built platform controller", ComponentController),
}

// runClusterGroup prompts for cluster name and worker count.
func runClusterGroup(ctx context.Context, result *WizardResult) error {
	result.ClusterName = "kindstack"
	result.Workers = 1

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("1-32 lowercase alphanumeric characters or hyphens").
				Placeholder("kindstack").
				Value(&result.ClusterName).
				Validate(validateClusterName),
			huh.NewSelect[int]().
				Title("Worker Nodes").
				Description("Workers in addition to the control plane").
				Options(workerCountOptions...).
				Value(&result.Workers),
		).Title("Cluster"),
	).RunWithContext(ctx)
}

// runComponentsGroup prompts for which stack components to deploy.
func runComponentsGroup(ctx context.Context, result *WizardResult) error {
	result.Components = []string{
		ComponentMonitoring,
		ComponentLoki,
		ComponentEvents,
		ComponentController,
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Stack Components").
				Description("Select the components to deploy").
				Options(componentOptions...).
				Value(&result.Components),
		).Title("Components"),
	).RunWithContext(ctx)
}

// runSettingsGroup prompts for per-component settings, skipping questions
// for components that were not selected.
func runSettingsGroup(ctx context.Context, result *WizardResult) error {
	selected := make(map[string]bool, len(result.Components))
	for _, c := range result.Components {
		selected[c] = true
	}

	var fields []huh.Field

	if selected[ComponentMonitoring] {
		result.GrafanaAdminUser = "admin"
		fields = append(fields, huh.NewInput().
			Title("Grafana Admin User").
			Value(&result.GrafanaAdminUser))
	}

	if selected[ComponentEvents] {
		webhookPort := "12000"
		fields = append(fields, huh.NewInput().
			Title("Webhook Port").
			Description("Local port the webhook bridge listens on").
			Value(&webhookPort).
			Validate(validatePort))
		defer func() {
			result.WebhookPort, _ = strconv.Atoi(webhookPort)
		}()
	}

	if selected[ComponentController] {
		result.ControllerImage = "kindstack/controller:dev"
		fields = append(fields, huh.NewInput().
			Title("Controller Image").
			Description("Locally built image reference").
			Value(&result.ControllerImage).
			Validate(validateImage))
	}

	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(fields...).Title("Settings"),
	).RunWithContext(ctx)
}

// validateClusterName validates the cluster name format.
func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if !clusterNameRegex.MatchString(s) {
		return errClusterNameInvalid
	}
	return nil
}

// validatePort validates a TCP port number string.
func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return errPortInvalid
	}
	return nil
}

// validateImage requires a non-empty image reference.
func validateImage(s string) error {
	if s == "" {
		return errImageRequired
	}
	return nil
}
