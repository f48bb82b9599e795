// Package probe implements direct endpoint checks that can be layered on
// top of the orchestration-reported health: a service container may be
// "healthy" while its published port is not answering yet.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lumeria1/aeroknite-genai-rag/pkg/errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultCheckTimeout bounds a single probe attempt. The wait session's
// global deadline still bounds the overall retry loop.
const DefaultCheckTimeout = 5 * time.Second

// Checker performs a single endpoint check
type Checker interface {
	Check(ctx context.Context) error
	Target() string
}

// ParseSpec parses a "service=URL" probe specification as given on the
// command line and returns the service name and its checker.
func ParseSpec(spec string) (string, Checker, error) {
	service, target, found := strings.Cut(spec, "=")
	if !found || service == "" || target == "" {
		return "", nil, errors.NewValidationError("probe spec must have the form service=URL", nil).WithContext("spec", spec)
	}

	checker, err := New(target)
	if err != nil {
		return "", nil, err
	}
	return service, checker, nil
}

// New creates a checker for the target URL. The scheme selects the
// check type: http/https, tcp, or grpc.
func New(target string) (Checker, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, errors.NewValidationError("invalid probe URL", err).WithContext("target", target)
	}

	switch u.Scheme {
	case "http", "https":
		return &HTTPChecker{URL: target, Timeout: DefaultCheckTimeout}, nil
	case "tcp":
		if u.Port() == "" {
			return nil, errors.NewValidationError("tcp probe requires a port", nil).WithContext("target", target)
		}
		return &TCPChecker{Address: u.Host, Timeout: DefaultCheckTimeout}, nil
	case "grpc":
		if u.Port() == "" {
			return nil, errors.NewValidationError("grpc probe requires a port", nil).WithContext("target", target)
		}
		return &GRPCChecker{
			Address: u.Host,
			Service: strings.TrimPrefix(u.Path, "/"),
			Timeout: DefaultCheckTimeout,
		}, nil
	default:
		return nil, errors.NewValidationError("unsupported probe scheme: "+u.Scheme, nil).WithContext("target", target)
	}
}

// HTTPChecker passes when a GET on the URL returns a 2xx status
type HTTPChecker struct {
	URL     string
	Timeout time.Duration
}

func (c *HTTPChecker) Target() string { return c.URL }

func (c *HTTPChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("HTTP probe failed: %s", resp.Status)
}

// TCPChecker passes when the address accepts a connection
type TCPChecker struct {
	Address string
	Timeout time.Duration
}

func (c *TCPChecker) Target() string { return "tcp://" + c.Address }

func (c *TCPChecker) Check(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return fmt.Errorf("TCP connection failed: %w", err)
	}
	conn.Close()
	return nil
}

// GRPCChecker passes when the gRPC health service reports SERVING for
// the configured service name ("" checks overall server health)
type GRPCChecker struct {
	Address string
	Service string
	Timeout time.Duration
}

func (c *GRPCChecker) Target() string {
	if c.Service == "" {
		return "grpc://" + c.Address
	}
	return "grpc://" + c.Address + "/" + c.Service
}

func (c *GRPCChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	conn, err := grpc.NewClient(c.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("gRPC connection failed: %w", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: c.Service})
	if err != nil {
		return fmt.Errorf("gRPC health check failed: %w", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("gRPC health status: %s", resp.Status)
	}
	return nil
}
