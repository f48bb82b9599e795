package waiter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/orchestration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStatusTable(t *testing.T) {
	out := &bytes.Buffer{}

	writeStatusTable(out, []orchestration.ServiceStatus{
		{
			Service:       "postgres",
			ContainerID:   "0123456789ab",
			ContainerName: "aeroknite-postgres-1",
			State:         "running",
			Status:        "Up 10 seconds (healthy)",
			Health:        orchestration.HealthHealthy,
		},
		{
			Service:       "query-service",
			ContainerID:   "fedcba987654",
			ContainerName: "aeroknite-query-service-1",
			State:         "restarting",
			Status:        "Restarting (1) 2 seconds ago",
			Health:        orchestration.HealthStarting,
		},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SERVICE")
	assert.Contains(t, lines[0], "HEALTH")
	assert.Contains(t, lines[1], "postgres")
	assert.Contains(t, lines[1], "healthy")
	assert.Contains(t, lines[2], "query-service")
	assert.Contains(t, lines[2], "starting")
}

func TestWriteStatusTable_Empty(t *testing.T) {
	out := &bytes.Buffer{}

	writeStatusTable(out, nil)

	assert.Contains(t, out.String(), "no containers found")
}

func TestDumpDiagnostics_AppendsMissingNewline(t *testing.T) {
	orch := newFakeOrchestrator(nil)
	orch.logs["postgres"] = "last line without newline"
	session, out := newTestSession(t, fastConfig("postgres"), orch)

	session.dumpDiagnostics(context.Background(), "postgres")

	assert.True(t, strings.HasSuffix(out.String(), "last line without newline\n"))
}
