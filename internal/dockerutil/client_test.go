package dockerutil

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeAPI is an in-memory stand-in for the Docker daemon.
type fakeAPI struct {
	images      map[string]bool
	inspectErr  error
	pullErr     error
	pulled      []string
	saveErr     error
	saveContent string

	containers []container.Summary
	listErr    error

	createErr     error
	createdName   string
	createdConfig *container.Config
	createdHost   *container.HostConfig
	createdNet    *network.NetworkingConfig

	startErr error
	stopErr  error
	removeEr error
	started  []string
	stopped  []string
	removed  []string

	copyErr    error
	copiedDst  map[string][]byte
	copiedPath string

	execCreateErr  error
	execAttachErr  error
	execInspectErr error
	execCmds       [][]string
	execExitCode   int
	execStdout     string
	execStderr     string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		images:    make(map[string]bool),
		copiedDst: make(map[string][]byte),
	}
}

func (f *fakeAPI) ImageInspect(_ context.Context, ref string, _ ...client.ImageInspectOption) (image.InspectResponse, error) {
	if f.inspectErr != nil {
		return image.InspectResponse{}, f.inspectErr
	}
	if !f.images[ref] {
		return image.InspectResponse{}, fmt.Errorf("no such image %s: %w", ref, cerrdefs.ErrNotFound)
	}
	return image.InspectResponse{ID: "sha256:deadbeef"}, nil
}

func (f *fakeAPI) ImagePull(_ context.Context, ref string, _ image.PullOptions) (io.ReadCloser, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	f.pulled = append(f.pulled, ref)
	f.images[ref] = true
	return io.NopCloser(bytes.NewReader([]byte("{}"))), nil
}

func (f *fakeAPI) ImageSave(_ context.Context, _ []string, _ ...client.ImageSaveOption) (io.ReadCloser, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return io.NopCloser(bytes.NewReader([]byte(f.saveContent))), nil
}

func (f *fakeAPI) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.listErr
}

func (f *fakeAPI) ContainerCreate(_ context.Context, config *container.Config, hostConfig *container.HostConfig, netConfig *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	f.createdName = name
	f.createdConfig = config
	f.createdHost = hostConfig
	f.createdNet = netConfig
	return container.CreateResponse{ID: "ctr-" + name}, nil
}

func (f *fakeAPI) ContainerStart(_ context.Context, id string, _ container.StartOptions) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, id)
	return nil
}

func (f *fakeAPI) ContainerStop(_ context.Context, id string, _ container.StopOptions) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeAPI) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	if f.removeEr != nil {
		return f.removeEr
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) CopyToContainer(_ context.Context, id, dstPath string, content io.Reader, _ container.CopyToContainerOptions) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.copiedDst[id] = data
	f.copiedPath = dstPath
	return nil
}

func (f *fakeAPI) ContainerExecCreate(_ context.Context, _ string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	if f.execCreateErr != nil {
		return container.ExecCreateResponse{}, f.execCreateErr
	}
	f.execCmds = append(f.execCmds, options.Cmd)
	return container.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeAPI) ContainerExecAttach(_ context.Context, _ string, _ container.ExecStartOptions) (types.HijackedResponse, error) {
	if f.execAttachErr != nil {
		return types.HijackedResponse{}, f.execAttachErr
	}

	var mux bytes.Buffer
	if f.execStdout != "" {
		_, _ = stdcopy.NewStdWriter(&mux, stdcopy.Stdout).Write([]byte(f.execStdout))
	}
	if f.execStderr != "" {
		_, _ = stdcopy.NewStdWriter(&mux, stdcopy.Stderr).Write([]byte(f.execStderr))
	}
	return types.HijackedResponse{
		Conn:   nopConn{},
		Reader: bufio.NewReader(&mux),
	}, nil
}

func (f *fakeAPI) ContainerExecInspect(_ context.Context, _ string) (container.ExecInspect, error) {
	if f.execInspectErr != nil {
		return container.ExecInspect{}, f.execInspectErr
	}
	return container.ExecInspect{ExitCode: f.execExitCode}, nil
}

// nopConn satisfies the Close call HijackedResponse makes.
type nopConn struct{ net.Conn }

func (nopConn) Close() error { return nil }
