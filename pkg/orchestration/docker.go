package orchestration

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/errors"
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/logging"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Compose sets these labels on every container it creates; they are the
// stable way to find a service's containers without shelling out.
const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// DockerOrchestrator implements Orchestrator against the Docker API,
// locating containers via the compose project/service labels.
type DockerOrchestrator struct {
	client  client.APIClient
	project string
	logger  logging.Logger
}

// NewDockerOrchestrator creates a Docker-backed orchestrator for the
// given compose project name.
func NewDockerOrchestrator(project string, logger logging.Logger) (*DockerOrchestrator, error) {
	cli, err := newDockerClient()
	if err != nil {
		return nil, errors.NewOrchestrationError("failed to create Docker client", err)
	}
	return &DockerOrchestrator{
		client:  cli,
		project: project,
		logger:  logger,
	}, nil
}

// newDockerClient creates a Docker client from the environment. If
// DOCKER_HOST is not set, common socket paths are probed so the client
// works with Docker Desktop and colima without extra configuration.
func newDockerClient() (*client.Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	if os.Getenv("DOCKER_HOST") == "" {
		if sock := findDockerSocket(); sock != "" {
			opts = append(opts, client.WithHost("unix://"+sock))
		}
	}

	return client.NewClientWithOpts(opts...)
}

// findDockerSocket returns the first existing Docker socket path, or ""
func findDockerSocket() string {
	candidates := []string{
		"/var/run/docker.sock",
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates,
			filepath.Join(home, ".docker", "run", "docker.sock"),
			filepath.Join(home, ".colima", "default", "docker.sock"),
		)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (d *DockerOrchestrator) serviceFilter(service string) filters.Args {
	args := filters.NewArgs(filters.Arg("label", composeProjectLabel+"="+d.project))
	if service != "" {
		args.Add("label", composeServiceLabel+"="+service)
	}
	return args
}

// listService lists the service's containers, newest first
func (d *DockerOrchestrator) listService(ctx context.Context, service string, all bool) ([]types.Container, error) {
	containers, err := d.client.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: d.serviceFilter(service),
	})
	if err != nil {
		return nil, errors.NewOrchestrationError("failed to list containers", err).WithContext("service", service)
	}
	sort.Slice(containers, func(i, j int) bool {
		return containers[i].Created > containers[j].Created
	})
	return containers, nil
}

func (d *DockerOrchestrator) ContainerID(ctx context.Context, service string) (string, error) {
	containers, err := d.listService(ctx, service, false)
	if err != nil {
		return "", err
	}
	if len(containers) == 0 {
		return "", nil
	}
	if len(containers) > 1 {
		d.logger.Debugf("Multiple running containers for service, using newest, service: %s, count: %d", service, len(containers))
	}
	return containers[0].ID, nil
}

func (d *DockerOrchestrator) Health(ctx context.Context, containerID string) (HealthStatus, error) {
	inspect, err := d.client.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return HealthAbsent, nil
		}
		return HealthUnknown, errors.NewOrchestrationError("failed to inspect container", err).WithContext("container_id", containerID)
	}
	return healthFromState(inspect.State), nil
}

// healthFromState maps the Docker container state to a HealthStatus.
// A running container without a healthcheck counts as healthy, matching
// compose's service_started condition. Exited and dead containers count
// as unhealthy.
func healthFromState(state *types.ContainerState) HealthStatus {
	if state == nil {
		return HealthUnknown
	}

	if state.Health != nil {
		switch state.Health.Status {
		case "starting":
			return HealthStarting
		case "healthy":
			return HealthHealthy
		case "unhealthy":
			return HealthUnhealthy
		case "none", "":
			// fall through to the lifecycle state
		default:
			return HealthUnknown
		}
	}

	switch state.Status {
	case "created", "restarting":
		return HealthStarting
	case "running":
		return HealthHealthy
	case "exited", "dead", "removing":
		return HealthUnhealthy
	default:
		return HealthUnknown
	}
}

func (d *DockerOrchestrator) Services(ctx context.Context) ([]ServiceStatus, error) {
	containers, err := d.listService(ctx, "", true)
	if err != nil {
		return nil, err
	}

	statuses := make([]ServiceStatus, 0, len(containers))
	for _, c := range containers {
		status := ServiceStatus{
			Service:       c.Labels[composeServiceLabel],
			ContainerID:   shortID(c.ID),
			ContainerName: containerDisplayName(c.Names),
			State:         c.State,
			Status:        c.Status,
			Health:        HealthUnknown,
		}

		// The list endpoint has no health field; inspect each container.
		// This is a diagnostics path, the project has a handful of
		// containers at most.
		if inspect, err := d.client.ContainerInspect(ctx, c.ID); err == nil {
			status.Health = healthFromState(inspect.State)
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Service < statuses[j].Service
	})
	return statuses, nil
}

func (d *DockerOrchestrator) Logs(ctx context.Context, service string, tail int) (string, error) {
	containers, err := d.listService(ctx, service, true)
	if err != nil {
		return "", err
	}
	if len(containers) == 0 {
		return "", errors.NewNotFoundError("no containers for service", nil).WithContext("service", service)
	}
	containerID := containers[0].ID

	reader, err := d.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return "", errors.NewOrchestrationError("failed to fetch container logs", err).WithContext("service", service)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if d.isTTY(ctx, containerID) {
		// TTY containers produce a raw stream without the multiplexing header
		_, err = io.Copy(&buf, reader)
	} else {
		// Interleave stdout and stderr, like compose's own log output
		_, err = stdcopy.StdCopy(&buf, &buf, reader)
	}
	if err != nil {
		return "", errors.NewOrchestrationError("failed to read container logs", err).WithContext("service", service)
	}
	return buf.String(), nil
}

func (d *DockerOrchestrator) isTTY(ctx context.Context, containerID string) bool {
	inspect, err := d.client.ContainerInspect(ctx, containerID)
	if err != nil || inspect.Config == nil {
		return false
	}
	return inspect.Config.Tty
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// containerDisplayName picks the first name and strips the leading slash
// the Docker API prepends
func containerDisplayName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}
