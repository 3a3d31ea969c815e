package stack

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log"
	"text/template"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack/helm"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// ArgoEventsRelease is the Helm release name for Argo Events.
const ArgoEventsRelease = "argo-events"

// argoEventsGroupVersion is the API group serving the event CRs.
const argoEventsGroupVersion = "argoproj.io/v1alpha1"

// eventKinds are the CRDs the wiring step depends on.
var eventKinds = []string{"EventBus", "EventSource", "Sensor"}

// installArgoEvents installs the Argo Events chart (controller plus CRDs)
// and blocks until the CRDs are served, so the wiring step can apply CRs.
func (d *Deployer) installArgoEvents(ctx context.Context) error {
	log.Printf("[stack] Installing Argo Events...")

	helmClient, err := d.newHelmClient(config.NamespaceEvents)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	values := helm.Values{
		"crds": helm.Values{
			"install": true,
		},
	}
	spec := helm.GetChartSpec("argo-events", d.cfg.Stack.Events.Helm)

	if _, err := helmClient.InstallOrUpgrade(ctx, ArgoEventsRelease, spec, values); err != nil {
		return fmt.Errorf("failed to install argo-events: %w", err)
	}

	for _, kind := range eventKinds {
		if err := d.k8s.WaitForAPIResource(ctx, argoEventsGroupVersion, kind, d.cfg.StepTimeout.Std()); err != nil {
			return err
		}
	}

	log.Printf("[stack] Argo Events installed, CRDs served")
	return nil
}

// eventManifestData feeds the embedded event manifest templates.
type eventManifestData struct {
	Namespace       string
	WebhookPort     int
	WebhookNodePort int
}

// applyEventWiring applies the EventBus, the webhook EventSource with its
// NodePort service, and the logging Sensor with its service account. The
// EventBus must be running before the EventSource and Sensor connect to it.
func (d *Deployer) applyEventWiring(ctx context.Context) error {
	data := eventManifestData{
		Namespace:       config.NamespaceEvents,
		WebhookPort:     d.cfg.Stack.Events.WebhookPort,
		WebhookNodePort: config.WebhookNodePort,
	}

	log.Printf("[stack] Applying EventBus...")
	if err := d.applyManifestTemplate(ctx, "manifests/eventbus.yaml", data); err != nil {
		return err
	}
	if err := d.k8s.WaitForPodsReady(ctx, config.NamespaceEvents,
		"eventbus-name=default", d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] Applying webhook EventSource...")
	if err := d.applyManifestTemplate(ctx, "manifests/eventsource.yaml", data); err != nil {
		return err
	}
	if err := d.k8s.WaitForPodsReady(ctx, config.NamespaceEvents,
		"eventsource-name=webhook", d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] Applying Sensor...")
	if err := d.applyManifestTemplate(ctx, "manifests/sensor.yaml", data); err != nil {
		return err
	}
	if err := d.k8s.WaitForPodsReady(ctx, config.NamespaceEvents,
		"sensor-name=webhook-deploy", d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] Event wiring applied")
	return nil
}

// applyManifestTemplate renders an embedded manifest template and applies
// the result with Server-Side Apply.
func (d *Deployer) applyManifestTemplate(ctx context.Context, name string, data any) error {
	raw, err := manifestFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read embedded manifest %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("failed to parse manifest template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render manifest template %s: %w", name, err)
	}

	if err := d.k8s.ApplyManifests(ctx, buf.Bytes(), fieldManager); err != nil {
		return fmt.Errorf("failed to apply %s: %w", name, err)
	}
	return nil
}
