package dockerutil

import (
	"context"
	"fmt"
	"slices"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
)

// ContainerSpec describes a container to run.
type ContainerSpec struct {
	Name          string
	Image         string
	Cmd           []string
	Labels        map[string]string
	Network       string
	PortBindings  nat.PortMap
	ExposedPorts  nat.PortSet
	RestartAlways bool
}

// FindContainer looks up a container by exact name, running or not.
// Returns nil if no container matches.
func (c *Client) FindContainer(ctx context.Context, name string) (*container.Summary, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	// The name filter matches substrings, so check for the exact name.
	for _, ctr := range containers {
		if slices.Contains(ctr.Names, "/"+name) {
			return &ctr, nil
		}
	}
	return nil, nil
}

// ListByLabel returns all containers carrying the given label value.
func (c *Client) ListByLabel(ctx context.Context, key, value string) ([]container.Summary, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", key+"="+value)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers by label %s=%s: %w", key, value, err)
	}
	return containers, nil
}

// RunContainer creates and starts a container from the spec, pulling the
// image first if needed. Returns the container ID.
func (c *Client) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	if err := c.EnsureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	config := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Cmd,
		Labels:       spec.Labels,
		ExposedPorts: spec.ExposedPorts,
	}
	hostConfig := &container.HostConfig{
		PortBindings: spec.PortBindings,
	}
	if spec.RestartAlways {
		hostConfig.RestartPolicy = container.RestartPolicy{Name: container.RestartPolicyAlways}
	}

	var netConfig *network.NetworkingConfig
	if spec.Network != "" {
		netConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {},
			},
		}
	}

	resp, err := c.api.ContainerCreate(ctx, config, hostConfig, netConfig, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %q: %w", spec.Name, err)
	}
	if err := c.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %q: %w", spec.Name, err)
	}
	return resp.ID, nil
}

// RemoveContainer stops and removes a container by ID or name.
func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	if err := c.api.ContainerStop(ctx, id, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container %q: %w", id, err)
	}
	if err := c.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %q: %w", id, err)
	}
	return nil
}
