package dockerutil

import (
	"bytes"
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// ExecInContainer runs a command inside a container and returns its stdout.
// A non-zero exit code is an error carrying the command's stderr.
func (c *Client) ExecInContainer(ctx context.Context, containerName string, cmd []string) (string, error) {
	execConfig := container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := c.api.ContainerExecCreate(ctx, containerName, execConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create exec in %q: %w", containerName, err)
	}

	resp, err := c.api.ContainerExecAttach(ctx, execID.ID, container.ExecStartOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to attach to exec in %q: %w", containerName, err)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	_, _ = stdcopy.StdCopy(&stdout, &stderr, resp.Reader)

	inspect, err := c.api.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return "", fmt.Errorf("failed to inspect exec in %q: %w", containerName, err)
	}
	if inspect.ExitCode != 0 {
		return "", fmt.Errorf("command %v in %q exited with code %d: %s",
			cmd, containerName, inspect.ExitCode, stderr.String())
	}

	return stdout.String(), nil
}
