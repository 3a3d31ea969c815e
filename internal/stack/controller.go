package stack

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/config"
)

// ControllerDeployment is the controller's Deployment name in the platform
// namespace.
const ControllerDeployment = "kindstack-controller"

// controllerManifestData feeds the controller manifest template.
type controllerManifestData struct {
	Namespace       string
	EventsNamespace string
	Image           string
}

// deployController deploys the platform controller from a locally built
// image. If the image is absent from the Docker daemon the step is skipped
// with a remediation hint instead of failing: the rest of the stack works
// without the controller, and the image can be built and deployed later.
func (d *Deployer) deployController(ctx context.Context) error {
	image := d.cfg.Stack.Controller.Image

	exists, err := d.docker.ImageExists(ctx, image)
	if err != nil {
		return fmt.Errorf("failed to check controller image: %w", err)
	}
	if !exists {
		log.Printf("[stack] WARNING: controller SKIPPED - image %q not found in local Docker daemon", image)
		fmt.Printf("\nController image %q is not built yet. To deploy it later:\n", image)
		fmt.Printf("  docker build -t %s ./controller\n", image)
		fmt.Printf("  kindstack deploy --only %s\n\n", StepController)
		d.degraded = append(d.degraded, StepController)
		return nil
	}

	log.Printf("[stack] Loading controller image %q into cluster nodes...", image)
	if err := d.docker.LoadImageIntoNodes(ctx, image, nodeContainers(d.cfg)); err != nil {
		return fmt.Errorf("failed to load controller image: %w", err)
	}

	log.Printf("[stack] Deploying controller...")
	data := controllerManifestData{
		Namespace:       config.NamespacePlatform,
		EventsNamespace: config.NamespaceEvents,
		Image:           image,
	}
	if err := d.applyManifestTemplate(ctx, "manifests/controller.yaml", data); err != nil {
		return err
	}

	if err := d.k8s.WaitForDeployment(ctx, config.NamespacePlatform,
		ControllerDeployment, d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] Controller deployed")
	return nil
}

// nodeContainers returns the Docker container names of the cluster's nodes,
// following kind's naming: <cluster>-control-plane, <cluster>-worker,
// <cluster>-worker2, and so on.
func nodeContainers(cfg *config.Config) []string {
	nodes := []string{cfg.ClusterName + "-control-plane"}
	for i := 0; i < cfg.Workers; i++ {
		if i == 0 {
			nodes = append(nodes, cfg.ClusterName+"-worker")
			continue
		}
		nodes = append(nodes, fmt.Sprintf("%s-worker%d", cfg.ClusterName, i+1))
	}
	return nodes
}
