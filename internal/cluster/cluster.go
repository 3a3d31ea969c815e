// Package cluster provisions and manages the local Kind cluster.
package cluster

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
	kindcmd "sigs.k8s.io/kind/pkg/cmd"

	"github.com/kindlab/kindstack/internal/config"
)

// ErrClusterNotFound is returned when an operation targets a cluster that
// does not exist.
var ErrClusterNotFound = errors.New("kind cluster not found")

// KindProvider describes the subset of kind's cluster.Provider used here.
// It exists so tests can substitute a fake.
type KindProvider interface {
	Create(name string, opts ...cluster.CreateOption) error
	Delete(name, kubeconfigPath string) error
	List() ([]string, error)
	KubeConfig(name string, internal bool) (string, error)
}

// Provisioner manages the lifecycle of the Kind cluster.
type Provisioner struct {
	cfg      *config.Config
	provider KindProvider
}

// NewProvisioner creates a provisioner backed by kind's Docker provider,
// using kind's own CLI logger so progress output matches the kind CLI.
func NewProvisioner(cfg *config.Config) *Provisioner {
	return &Provisioner{
		cfg: cfg,
		provider: cluster.NewProvider(
			cluster.ProviderWithLogger(kindcmd.NewLogger()),
		),
	}
}

// NewProvisionerWithProvider creates a provisioner with an explicit provider,
// for tests.
func NewProvisionerWithProvider(cfg *config.Config, provider KindProvider) *Provisioner {
	return &Provisioner{cfg: cfg, provider: provider}
}

// Ensure creates the cluster if it does not already exist. Re-running against
// an existing cluster is a no-op.
func (p *Provisioner) Ensure() error {
	exists, err := p.Exists()
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}
	if exists {
		log.Printf("[cluster] Kind cluster %q already exists, skipping create", p.cfg.ClusterName)
		return nil
	}

	log.Printf("[cluster] Creating Kind cluster %q (%d worker(s))...", p.cfg.ClusterName, p.cfg.Workers)
	opts := []cluster.CreateOption{
		cluster.CreateWithV1Alpha4Config(kindConfig(p.cfg)),
		cluster.CreateWithKubeconfigPath(p.cfg.KubeconfigPath),
		cluster.CreateWithDisplayUsage(false),
		cluster.CreateWithDisplaySalutation(false),
	}
	if err := p.provider.Create(p.cfg.ClusterName, opts...); err != nil {
		return fmt.Errorf("failed to create kind cluster: %w", err)
	}

	log.Printf("[cluster] Kind cluster %q created", p.cfg.ClusterName)
	return nil
}

// Delete removes the cluster. Returns ErrClusterNotFound if it does not exist.
func (p *Provisioner) Delete() error {
	exists, err := p.Exists()
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrClusterNotFound, p.cfg.ClusterName)
	}

	if err := p.provider.Delete(p.cfg.ClusterName, p.cfg.KubeconfigPath); err != nil {
		return fmt.Errorf("failed to delete kind cluster: %w", err)
	}
	log.Printf("[cluster] Kind cluster %q deleted", p.cfg.ClusterName)
	return nil
}

// Exists reports whether the configured cluster exists.
func (p *Provisioner) Exists() (bool, error) {
	clusters, err := p.List()
	if err != nil {
		return false, err
	}
	return slices.Contains(clusters, p.cfg.ClusterName), nil
}

// List returns the names of all kind clusters known to the provider.
func (p *Provisioner) List() ([]string, error) {
	clusters, err := p.provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list kind clusters: %w", err)
	}
	return clusters, nil
}

// Kubeconfig returns the cluster's kubeconfig bytes for in-memory clients.
func (p *Provisioner) Kubeconfig() ([]byte, error) {
	kc, err := p.provider.KubeConfig(p.cfg.ClusterName, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig for cluster %q: %w", p.cfg.ClusterName, err)
	}
	return []byte(kc), nil
}

// ControlPlaneContainer returns the Docker container name of the cluster's
// control-plane node, the default bridge target.
func ControlPlaneContainer(clusterName string) string {
	return clusterName + "-control-plane"
}

// kindConfig builds the v1alpha4 cluster config: one control plane plus the
// configured number of workers. The fixed NodePorts are mapped through to the
// loopback interface so services are reachable even without bridges.
func kindConfig(cfg *config.Config) *v1alpha4.Cluster {
	controlPlane := v1alpha4.Node{
		Role: v1alpha4.ControlPlaneRole,
		ExtraPortMappings: []v1alpha4.PortMapping{
			{
				ContainerPort: config.GrafanaNodePort,
				HostPort:      config.GrafanaNodePort,
				ListenAddress: "127.0.0.1",
				Protocol:      v1alpha4.PortMappingProtocolTCP,
			},
			{
				ContainerPort: config.WebhookNodePort,
				HostPort:      config.WebhookNodePort,
				ListenAddress: "127.0.0.1",
				Protocol:      v1alpha4.PortMappingProtocolTCP,
			},
		},
	}
	if cfg.NodeImage != "" {
		controlPlane.Image = cfg.NodeImage
	}

	nodes := []v1alpha4.Node{controlPlane}
	for range cfg.Workers {
		worker := v1alpha4.Node{Role: v1alpha4.WorkerRole}
		if cfg.NodeImage != "" {
			worker.Image = cfg.NodeImage
		}
		nodes = append(nodes, worker)
	}

	return &v1alpha4.Cluster{
		Name:  cfg.ClusterName,
		Nodes: nodes,
	}
}
