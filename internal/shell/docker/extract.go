package docker

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/google/uuid"
)

// probeEntrypoint is never executed; it only lets images without a CMD be
// created.
var probeEntrypoint = []string{"/bin/true"}

// ExtractFiles copies files out of image. files maps paths inside the image
// to destination paths on the host. A stopped probe container is created
// from the image and removed again afterwards.
func (d *DockerClient) ExtractFiles(ctx context.Context, imageName string, files map[string]string) (err error) {
	exists, err := d.ImageExists(ctx, imageName)
	if err != nil {
		return err
	}
	if !exists {
		return NewDockerError("ExtractFiles", "image", imageName, "image not found", ErrImageNotFound)
	}

	name := "di-probe-" + uuid.NewString()
	resp, err := d.cli.ContainerCreate(ctx, &container.Config{
		Image:      imageName,
		Entrypoint: probeEntrypoint,
	}, nil, nil, nil, name)
	if err != nil {
		return NewDockerError("ExtractFiles", "container", name, err.Error(), err)
	}
	defer func() {
		rmErr := d.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		if rmErr != nil && !client.IsErrNotFound(rmErr) && err == nil {
			err = NewDockerError("ExtractFiles", "container", resp.ID, "failed to remove probe container", rmErr)
		}
	}()

	for source, destination := range files {
		if err := d.copyFile(ctx, resp.ID, source, destination); err != nil {
			return err
		}
	}
	return nil
}

func (d *DockerClient) copyFile(ctx context.Context, containerID, source, destination string) error {
	reader, _, err := d.cli.CopyFromContainer(ctx, containerID, source)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewDockerError("CopyFile", "file", source, "file not found", ErrFileNotFound)
		}
		return NewDockerError("CopyFile", "file", source, err.Error(), err)
	}
	defer reader.Close()

	if err := untarFile(reader, destination); err != nil {
		return NewDockerError("CopyFile", "file", source, err.Error(), err)
	}
	return nil
}

// untarFile writes the first entry of the archive to destination. The
// entry must be a regular file.
func untarFile(r io.Reader, destination string) error {
	tr := tar.NewReader(r)
	header, err := tr.Next()
	if errors.Is(err, io.EOF) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	if header.Typeflag != tar.TypeReg {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, header.Name)
	}

	f, err := os.OpenFile(destination, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, tr); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
