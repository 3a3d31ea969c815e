// Package bridge runs socat relay containers that expose cluster NodePorts
// on localhost. Each bridge joins the kind Docker network and forwards a
// 127.0.0.1 port to a target host and port inside that network.
package bridge

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/docker/go-connections/nat"
	"golang.org/x/sync/errgroup"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/dockerutil"
)

const (
	// SocatImage is the relay image used for bridge containers.
	SocatImage = "alpine/socat:latest"

	// KindNetwork is the Docker network kind attaches its nodes to.
	KindNetwork = "kind"

	// labelCluster marks bridge containers with the cluster they serve.
	labelCluster = "io.kindstack.cluster"

	// labelBridge carries the bridge name from the configuration.
	labelBridge = "io.kindstack.bridge"
)

// ContainerName returns the Docker container name for a configured bridge.
func ContainerName(bridgeName string) string {
	return "kindstack-bridge-" + bridgeName
}

// Manager creates and tears down bridge containers.
type Manager struct {
	docker      *dockerutil.Client
	clusterName string
}

// NewManager returns a Manager operating on behalf of the named cluster.
func NewManager(docker *dockerutil.Client, clusterName string) *Manager {
	return &Manager{docker: docker, clusterName: clusterName}
}

// EnsureAll starts every configured bridge concurrently. Bridges that are
// already running are left alone; stopped leftovers are replaced.
func (m *Manager) EnsureAll(ctx context.Context, bridges []config.BridgeConfig) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, b := range bridges {
		g.Go(func() error {
			if err := m.Ensure(ctx, b); err != nil {
				return fmt.Errorf("bridge %q: %w", b.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Ensure starts a single bridge container if it is not already running.
func (m *Manager) Ensure(ctx context.Context, b config.BridgeConfig) error {
	name := ContainerName(b.Name)

	existing, err := m.docker.FindContainer(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.State == "running" {
			log.Printf("[bridge] %s already running on 127.0.0.1:%d", name, b.LocalPort)
			return nil
		}
		// A stopped relay is stale: its target or ports may have changed.
		if err := m.docker.RemoveContainer(ctx, existing.ID); err != nil {
			return err
		}
	}

	containerPort, err := nat.NewPort("tcp", strconv.Itoa(b.LocalPort))
	if err != nil {
		return fmt.Errorf("invalid local port %d: %w", b.LocalPort, err)
	}

	spec := dockerutil.ContainerSpec{
		Name:  name,
		Image: SocatImage,
		Cmd: []string{
			fmt.Sprintf("tcp-listen:%d,fork,reuseaddr", b.LocalPort),
			fmt.Sprintf("tcp-connect:%s:%d", b.TargetHost, b.TargetPort),
		},
		Labels: map[string]string{
			labelCluster: m.clusterName,
			labelBridge:  b.Name,
		},
		Network:      KindNetwork,
		ExposedPorts: nat.PortSet{containerPort: struct{}{}},
		PortBindings: nat.PortMap{
			containerPort: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: strconv.Itoa(b.LocalPort)},
			},
		},
		RestartAlways: true,
	}

	if _, err := m.docker.RunContainer(ctx, spec); err != nil {
		return err
	}
	log.Printf("[bridge] %s forwarding 127.0.0.1:%d -> %s:%d",
		name, b.LocalPort, b.TargetHost, b.TargetPort)
	return nil
}

// Status describes one bridge container.
type Status struct {
	Name      string
	Container string
	State     string
}

// List returns the bridge containers labeled for this cluster.
func (m *Manager) List(ctx context.Context) ([]Status, error) {
	containers, err := m.docker.ListByLabel(ctx, labelCluster, m.clusterName)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(containers))
	for _, ctr := range containers {
		name := ctr.Labels[labelBridge]
		containerName := ""
		if len(ctr.Names) > 0 {
			containerName = ctr.Names[0][1:]
		}
		statuses = append(statuses, Status{
			Name:      name,
			Container: containerName,
			State:     ctr.State,
		})
	}
	return statuses, nil
}

// RemoveAll tears down every bridge container for this cluster. Failures are
// logged and the teardown continues; the first error is returned.
func (m *Manager) RemoveAll(ctx context.Context) error {
	containers, err := m.docker.ListByLabel(ctx, labelCluster, m.clusterName)
	if err != nil {
		return err
	}

	var firstErr error
	for _, ctr := range containers {
		if err := m.docker.RemoveContainer(ctx, ctr.ID); err != nil {
			log.Printf("[bridge] failed to remove %s: %v", ctr.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
	}
	return firstErr
}
