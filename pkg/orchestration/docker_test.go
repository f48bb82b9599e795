package orchestration

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
)

func TestHealthFromState(t *testing.T) {
	tests := []struct {
		name     string
		state    *types.ContainerState
		expected HealthStatus
	}{
		{
			name:     "nil state",
			state:    nil,
			expected: HealthUnknown,
		},
		{
			name:     "healthcheck starting",
			state:    &types.ContainerState{Status: "running", Health: &types.Health{Status: "starting"}},
			expected: HealthStarting,
		},
		{
			name:     "healthcheck healthy",
			state:    &types.ContainerState{Status: "running", Health: &types.Health{Status: "healthy"}},
			expected: HealthHealthy,
		},
		{
			name:     "healthcheck unhealthy",
			state:    &types.ContainerState{Status: "running", Health: &types.Health{Status: "unhealthy"}},
			expected: HealthUnhealthy,
		},
		{
			name:     "no healthcheck but running",
			state:    &types.ContainerState{Status: "running", Running: true},
			expected: HealthHealthy,
		},
		{
			name:     "healthcheck none falls back to lifecycle state",
			state:    &types.ContainerState{Status: "running", Health: &types.Health{Status: "none"}},
			expected: HealthHealthy,
		},
		{
			name:     "created",
			state:    &types.ContainerState{Status: "created"},
			expected: HealthStarting,
		},
		{
			name:     "restarting",
			state:    &types.ContainerState{Status: "restarting", Restarting: true},
			expected: HealthStarting,
		},
		{
			name:     "exited",
			state:    &types.ContainerState{Status: "exited", ExitCode: 1},
			expected: HealthUnhealthy,
		},
		{
			name:     "dead",
			state:    &types.ContainerState{Status: "dead"},
			expected: HealthUnhealthy,
		},
		{
			name:     "paused",
			state:    &types.ContainerState{Status: "paused", Paused: true},
			expected: HealthUnknown,
		},
		{
			name:     "unexpected healthcheck value",
			state:    &types.ContainerState{Status: "running", Health: &types.Health{Status: "confused"}},
			expected: HealthUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, healthFromState(tt.state))
		})
	}
}

func TestServiceFilter(t *testing.T) {
	d := &DockerOrchestrator{project: "aeroknite"}

	withService := d.serviceFilter("postgres")
	assert.True(t, withService.MatchKVList("label", map[string]string{
		composeProjectLabel: "aeroknite",
		composeServiceLabel: "postgres",
	}))
	assert.False(t, withService.MatchKVList("label", map[string]string{
		composeProjectLabel: "aeroknite",
		composeServiceLabel: "query-service",
	}))

	projectOnly := d.serviceFilter("")
	assert.True(t, projectOnly.MatchKVList("label", map[string]string{
		composeProjectLabel: "aeroknite",
		composeServiceLabel: "query-service",
	}))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestContainerDisplayName(t *testing.T) {
	assert.Equal(t, "aeroknite-postgres-1", containerDisplayName([]string{"/aeroknite-postgres-1"}))
	assert.Equal(t, "", containerDisplayName(nil))
}
