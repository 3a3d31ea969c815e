package dockerutil

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/docker/docker/api/types/container"
)

// Kind node containers mount a tmpfs on /tmp that the copy API cannot write
// through, so staged archives go under /root instead.
const nodeStagingDir = "/root"

// LoadImageIntoNodes exports an image from the local Docker daemon and imports
// it into containerd on each of the given kind node containers.
func (c *Client) LoadImageIntoNodes(ctx context.Context, imageRef string, nodes []string) error {
	tarPath, err := c.saveImageToTempFile(ctx, imageRef)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tarPath) }()

	for _, node := range nodes {
		log.Printf("[image] Loading %q into node %s...", imageRef, node)
		if err := c.importImageIntoNode(ctx, node, tarPath); err != nil {
			return fmt.Errorf("failed to load image into node %s: %w", node, err)
		}
	}
	return nil
}

// saveImageToTempFile streams docker save output to a temp file and returns
// its path. The caller removes the file.
func (c *Client) saveImageToTempFile(ctx context.Context, imageRef string) (string, error) {
	reader, err := c.SaveImage(ctx, imageRef)
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	tmpFile, err := os.CreateTemp("", "kindstack-image-*.tar")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write image tar: %w", err)
	}
	return tmpFile.Name(), nil
}

// importImageIntoNode copies the image tar into the node container and runs
// ctr import against the k8s.io containerd namespace.
func (c *Client) importImageIntoNode(ctx context.Context, node, tarPath string) error {
	stagedPath := path.Join(nodeStagingDir, "kindstack-image-load.tar")

	if err := c.copyFileToContainer(ctx, node, tarPath, stagedPath); err != nil {
		return err
	}

	cmd := []string{"ctr", "--namespace=k8s.io", "images", "import", "--digests", stagedPath}
	if _, err := c.ExecInContainer(ctx, node, cmd); err != nil {
		return fmt.Errorf("ctr import failed: %w", err)
	}

	_, _ = c.ExecInContainer(ctx, node, []string{"rm", "-f", stagedPath})
	return nil
}

// copyFileToContainer wraps a host file in a tar archive and copies it to
// dstPath inside the container, as the copy API requires.
func (c *Client) copyFileToContainer(ctx context.Context, containerName, srcPath, dstPath string) error {
	srcFile, err := os.Open(srcPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", srcPath, err)
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", srcPath, err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	header := &tar.Header{
		Name: path.Base(dstPath),
		Mode: 0o644,
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := io.Copy(tw, srcFile); err != nil {
		return fmt.Errorf("failed to write file to tar: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}

	err = c.api.CopyToContainer(ctx, containerName, path.Dir(dstPath), &buf, container.CopyToContainerOptions{})
	if err != nil {
		return fmt.Errorf("failed to copy to container %q: %w", containerName, err)
	}
	return nil
}
