package deployer

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/model"
)

// DockerController implements Controller against the local Docker
// daemon (DOCKER_HOST environment applies).
type DockerController struct {
	logger zerolog.Logger
}

// NewDockerController creates a new DockerController.
func NewDockerController(logger zerolog.Logger) *DockerController {
	return &DockerController{
		logger: logger.With().Str("component", "docker-controller").Logger(),
	}
}

func (d *DockerController) newClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return cli, nil
}

func (d *DockerController) Status(ctx context.Context, containerName string) (*model.ContainerStatus, error) {
	cli, err := d.newClient()
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	inspect, err := cli.ContainerInspect(ctx, containerName)
	if err != nil {
		if client.IsErrNotFound(err) {
			return &model.ContainerStatus{State: "not_found"}, nil
		}
		return nil, fmt.Errorf("inspect container %s: %w", containerName, err)
	}

	status := &model.ContainerStatus{
		ContainerID: inspect.ID[:12],
		State:       inspect.State.Status,
		Running:     inspect.State.Running,
		StartedAt:   inspect.State.StartedAt,
	}
	if inspect.State.Health != nil {
		status.Health = inspect.State.Health.Status
	}
	return status, nil
}

func (d *DockerController) Start(ctx context.Context, containerName string) error {
	cli, err := d.newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	d.logger.Info().Str("container", containerName).Msg("starting container")
	if err := cli.ContainerStart(ctx, containerName, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container %s: %w", containerName, err)
	}
	return nil
}

func (d *DockerController) Stop(ctx context.Context, containerName string) error {
	cli, err := d.newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	d.logger.Info().Str("container", containerName).Msg("stopping container")
	if err := cli.ContainerStop(ctx, containerName, container.StopOptions{}); err != nil {
		return fmt.Errorf("stop container %s: %w", containerName, err)
	}
	return nil
}

func (d *DockerController) Restart(ctx context.Context, containerName string) error {
	cli, err := d.newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	d.logger.Info().Str("container", containerName).Msg("restarting container")
	if err := cli.ContainerRestart(ctx, containerName, container.StopOptions{}); err != nil {
		return fmt.Errorf("restart container %s: %w", containerName, err)
	}
	return nil
}

func (d *DockerController) TailLogs(ctx context.Context, containerName string, lines int) (string, error) {
	cli, err := d.newClient()
	if err != nil {
		return "", err
	}
	defer cli.Close()

	reader, err := cli.ContainerLogs(ctx, containerName, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(lines),
	})
	if err != nil {
		return "", fmt.Errorf("read logs for %s: %w", containerName, err)
	}
	defer reader.Close()

	// Docker multiplexes stdout/stderr on one stream.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, reader); err != nil {
		return "", fmt.Errorf("demux logs for %s: %w", containerName, err)
	}
	return buf.String(), nil
}
