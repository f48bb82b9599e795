package waiter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/orchestration"
)

// dumpDiagnostics writes the full service status table and the last
// LogTail log lines of the offending service. Best effort: if the
// orchestration layer cannot answer anymore, the reason is printed in
// place of the data.
func (s *Session) dumpDiagnostics(ctx context.Context, service string) {
	fmt.Fprintf(s.out, "\nService status:\n")
	statuses, err := s.orchestrator.Services(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "  (unavailable: %v)\n", err)
	} else {
		writeStatusTable(s.out, statuses)
	}

	fmt.Fprintf(s.out, "\nLast %d log lines, service: %s\n", s.config.LogTail, service)
	logs, err := s.orchestrator.Logs(ctx, service, s.config.LogTail)
	if err != nil {
		fmt.Fprintf(s.out, "  (unavailable: %v)\n", err)
		return
	}
	io.WriteString(s.out, logs)
	if logs != "" && !strings.HasSuffix(logs, "\n") {
		io.WriteString(s.out, "\n")
	}
}

func writeStatusTable(w io.Writer, statuses []orchestration.ServiceStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "  (no containers found for project)")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tCONTAINER ID\tNAME\tSTATE\tHEALTH\tSTATUS")
	for _, st := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			st.Service, st.ContainerID, st.ContainerName, st.State, st.Health, st.Status)
	}
	tw.Flush()
}
