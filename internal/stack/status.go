package stack

import (
	"context"
	"fmt"

	"github.com/kindlab/kindstack/internal/config"
)

// ComponentStatus reports the state of one deployed component.
type ComponentStatus struct {
	Name   string
	Detail string
}

// Status reports the state of each enabled component: Helm release status
// for the charts, rollout state for the controller.
func (d *Deployer) Status(ctx context.Context) ([]ComponentStatus, error) {
	var statuses []ComponentStatus

	releases := []struct {
		component string
		enabled   bool
		namespace string
		release   string
	}{
		{StepMonitoring, d.cfg.Stack.Monitoring.Enabled, config.NamespaceMonitoring, MonitoringRelease},
		{StepLoki, d.cfg.Stack.Loki.Enabled, config.NamespaceMonitoring, LokiRelease},
		{StepArgoEvents, d.cfg.Stack.Events.Enabled, config.NamespaceEvents, ArgoEventsRelease},
	}

	for _, r := range releases {
		if !r.enabled {
			continue
		}
		helmClient, err := d.newHelmClient(r.namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create helm client: %w", err)
		}
		status, err := helmClient.ReleaseStatus(r.release)
		if err != nil {
			return nil, fmt.Errorf("failed to get status of release %q: %w", r.release, err)
		}
		statuses = append(statuses, ComponentStatus{Name: r.component, Detail: status})
	}

	if d.cfg.Stack.Controller.Enabled {
		ready, err := d.k8s.DeploymentReady(ctx, config.NamespacePlatform, ControllerDeployment)
		if err != nil {
			return nil, fmt.Errorf("failed to check controller deployment: %w", err)
		}
		detail := "not ready"
		if ready {
			detail = "ready"
		}
		statuses = append(statuses, ComponentStatus{Name: StepController, Detail: detail})
	}

	return statuses, nil
}
