package stack

import (
	"context"
	"fmt"

	"github.com/kindlab/kindstack/internal/config"
)

// Step names, usable with `deploy --only`.
const (
	StepNamespaces  = "namespaces"
	StepSecrets     = "secrets"
	StepMonitoring  = "monitoring"
	StepLoki        = "loki"
	StepArgoEvents  = "argo-events"
	StepEventWiring = "event-wiring"
	StepController  = "controller"
)

// StackStep defines a single deployment step with its install order.
type StackStep struct {
	Name  string
	Order int
}

// EnabledSteps returns the ordered list of steps for the configuration.
// Namespaces and secrets always run; chart and controller steps follow
// their component toggles. Event wiring depends on the argo-events chart
// having installed the CRDs, so it only runs when events are enabled.
func EnabledSteps(cfg *config.Config) []StackStep {
	steps := []StackStep{
		{Name: StepNamespaces, Order: 1},
		{Name: StepSecrets, Order: 2},
	}

	if cfg.Stack.Monitoring.Enabled {
		steps = append(steps, StackStep{Name: StepMonitoring, Order: 3})
	}
	if cfg.Stack.Loki.Enabled {
		steps = append(steps, StackStep{Name: StepLoki, Order: 4})
	}
	if cfg.Stack.Events.Enabled {
		steps = append(steps, StackStep{Name: StepArgoEvents, Order: 5})
		steps = append(steps, StackStep{Name: StepEventWiring, Order: 6})
	}
	if cfg.Stack.Controller.Enabled {
		steps = append(steps, StackStep{Name: StepController, Order: 7})
	}

	return steps
}

// InstallStep runs a single step by name. Prerequisites within a step
// (namespaces, CRD waits) are handled inside the step itself.
func (d *Deployer) InstallStep(ctx context.Context, stepName string) error {
	switch stepName {
	case StepNamespaces:
		return d.ensureNamespaces(ctx)
	case StepSecrets:
		return d.ensureSecrets(ctx)
	case StepMonitoring:
		return d.installMonitoring(ctx)
	case StepLoki:
		return d.installLoki(ctx)
	case StepArgoEvents:
		return d.installArgoEvents(ctx)
	case StepEventWiring:
		return d.applyEventWiring(ctx)
	case StepController:
		return d.deployController(ctx)
	default:
		return fmt.Errorf("unknown stack step: %s", stepName)
	}
}

// KnownStep reports whether name is a valid step for `deploy --only`.
func KnownStep(name string) bool {
	switch name {
	case StepNamespaces, StepSecrets, StepMonitoring, StepLoki,
		StepArgoEvents, StepEventWiring, StepController:
		return true
	}
	return false
}
