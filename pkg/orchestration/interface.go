package orchestration

import "context"

// HealthStatus is the orchestration-reported state of a service instance
type HealthStatus string

const (
	// HealthAbsent means no instance of the service exists yet
	HealthAbsent HealthStatus = "absent"
	// HealthStarting means the instance exists but its healthcheck has not passed yet
	HealthStarting HealthStatus = "starting"
	// HealthHealthy means the instance passed its healthcheck, or runs without one
	HealthHealthy HealthStatus = "healthy"
	// HealthUnhealthy means the orchestration layer explicitly reports the instance as failed
	HealthUnhealthy HealthStatus = "unhealthy"
	// HealthUnknown covers every state that cannot be classified
	HealthUnknown HealthStatus = "unknown"
)

// ServiceStatus is one row of the full service status listing
type ServiceStatus struct {
	Service       string
	ContainerID   string
	ContainerName string
	State         string // lifecycle state, e.g. "running"
	Status        string // human status line, e.g. "Up 3 seconds (healthy)"
	Health        HealthStatus
}

// Orchestrator is the query interface onto the container-orchestration
// layer. The wait session depends only on this interface, so the retry
// loop can be exercised with a fake implementation in tests.
type Orchestrator interface {
	// ContainerID returns the identifier of the running instance of the
	// named service, or "" when none is running yet.
	ContainerID(ctx context.Context, service string) (string, error)

	// Health returns the health status of the instance with the given id.
	Health(ctx context.Context, containerID string) (HealthStatus, error)

	// Services returns the status of every instance in the project.
	Services(ctx context.Context) ([]ServiceStatus, error)

	// Logs returns the last tail lines of output of the named service,
	// stdout and stderr interleaved.
	Logs(ctx context.Context, service string, tail int) (string, error)
}
