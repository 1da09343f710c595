package validator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	DefaultImage = "ghcr.io/w3c/epubcheck:latest"
	DataDir      = "/data"
	Label        = "x2epub-epubcheck"
)

// DockerConfig holds configuration for the containerised validator.
type DockerConfig struct {
	Image  string
	Labels map[string]string // Optional labels for containers (used for test cleanup)
}

// Docker runs epubcheck in a throwaway container with the archive's
// directory bind-mounted read-only.
type Docker struct {
	cli    *client.Client
	image  string
	labels map[string]string
	logger *slog.Logger
}

// NewDocker creates a docker-backed validator.
func NewDocker(cfg DockerConfig, logger *slog.Logger) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if cfg.Image == "" {
		cfg.Image = DefaultImage
	}
	if logger == nil {
		logger = slog.Default()
	}

	labels := map[string]string{Label: "true"}
	for k, v := range cfg.Labels {
		labels[k] = v
	}

	return &Docker{cli: cli, image: cfg.Image, labels: labels, logger: logger}, nil
}

// Image returns the epubcheck image in use.
func (d *Docker) Image() string {
	return d.image
}

// Close closes the Docker client.
func (d *Docker) Close() error {
	return d.cli.Close()
}

// Validate runs epubcheck on epubPath inside a container and removes the container afterwards.
func (d *Docker) Validate(ctx context.Context, epubPath string) (*Report, error) {
	abs, err := filepath.Abs(epubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", epubPath, err)
	}

	if _, err := d.cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker is not running: %w", err)
	}
	if err := d.ensureImage(ctx); err != nil {
		return nil, err
	}

	resp, err := d.cli.ContainerCreate(ctx,
		&container.Config{
			Image:  d.image,
			Cmd:    []string{path.Join(DataDir, filepath.Base(abs))},
			Labels: d.labels,
		},
		&container.HostConfig{
			Mounts: []mount.Mount{{
				Type:     mount.TypeBind,
				Source:   filepath.Dir(abs),
				Target:   DataDir,
				ReadOnly: true,
			}},
		},
		nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		// the run context may already be cancelled
		rmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.cli.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true}); err != nil {
			d.logger.Warn("failed to remove epubcheck container", "id", resp.ID, "error", err)
		}
	}()

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	var exitCode int64
	statusCh, errCh := d.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return nil, fmt.Errorf("failed waiting for epubcheck: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("epubcheck container failed: %s", status.Error.Message)
		}
		exitCode = status.StatusCode
	}

	output, err := d.logs(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:      epubPath,
		Validator: "docker",
		Valid:     exitCode == 0,
		Output:    output,
	}
	d.logger.Info("epubcheck finished", "path", epubPath, "image", d.image, "valid", report.Valid)
	return report, nil
}

func (d *Docker) logs(ctx context.Context, id string) (string, error) {
	logs, err := d.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get logs: %w", err)
	}
	defer logs.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, logs); err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return buf.String(), nil
}

// ensureImage pulls the epubcheck image if not present, retrying transient registry errors.
func (d *Docker) ensureImage(ctx context.Context) error {
	if _, err := d.cli.ImageInspect(ctx, d.image); err == nil {
		return nil
	}

	return retry.Do(
		func() error {
			reader, err := d.cli.ImagePull(ctx, d.image, image.PullOptions{})
			if err != nil {
				return fmt.Errorf("failed to pull image %s: %w", d.image, err)
			}
			defer reader.Close()

			// Drain reader to complete pull
			_, err = io.Copy(io.Discard, reader)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
}
